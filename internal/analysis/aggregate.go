package analysis

import (
	"fmt"
	"sort"
	"time"

	"airdash/internal/dataset"
)

// AggregateRow is one bucket of an aggregated series.
type AggregateRow struct {
	BucketStart time.Time `json:"bucket_start"`
	Metric      string    `json:"metric"`
	Min         float64   `json:"min"`
	Mean        float64   `json:"mean"`
	Max         float64   `json:"max"`
	Count       int       `json:"count"`
}

type accumulator struct {
	min, max, sum float64
	count         int
}

// Aggregate buckets the readings inside rng by granularity and reduces each
// bucket to min, mean, max and count of the chosen metric. Rows come back
// in chronological order; a window with no readings yields an empty slice.
// The result is a pure function of the table and the arguments.
func Aggregate(table *dataset.Table, metric string, g Granularity, rng Range) ([]AggregateRow, error) {
	if !dataset.IsMetric(metric) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	if _, err := ParseGranularity(string(g)); err != nil {
		return nil, err
	}

	buckets := make(map[time.Time]*accumulator)
	for _, r := range table.Between(rng.From, rng.To) {
		v, _ := r.Value(metric)
		start := g.BucketStart(r.Timestamp)
		acc, ok := buckets[start]
		if !ok {
			buckets[start] = &accumulator{min: v, max: v, sum: v, count: 1}
			continue
		}
		if v < acc.min {
			acc.min = v
		}
		if v > acc.max {
			acc.max = v
		}
		acc.sum += v
		acc.count++
	}

	rows := make([]AggregateRow, 0, len(buckets))
	for start, acc := range buckets {
		rows = append(rows, AggregateRow{
			BucketStart: start,
			Metric:      metric,
			Min:         acc.min,
			Mean:        acc.sum / float64(acc.count),
			Max:         acc.max,
			Count:       acc.count,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].BucketStart.Before(rows[j].BucketStart) })
	return rows, nil
}
