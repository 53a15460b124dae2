package analysis

import (
	"math"

	"airdash/internal/dataset"
)

// ColumnStats is one row of the dataset preview: descriptive statistics of
// a single metric column over the whole table.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe computes per-column statistics for every metric column. Std is
// the sample standard deviation and is zero with fewer than two readings.
func Describe(table *dataset.Table) []ColumnStats {
	rng := fullRange(table)
	out := make([]ColumnStats, 0, len(dataset.Metrics()))
	for _, metric := range dataset.Metrics() {
		values := metricValues(table, metric, rng)
		cs := ColumnStats{Column: metric, Count: len(values)}
		if len(values) > 0 {
			cs.Min, cs.Mean, cs.Max = stats(values)
			cs.Std = stddev(values, cs.Mean)
		}
		out = append(out, cs)
	}
	return out
}

func stddev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
