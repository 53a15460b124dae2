package analysis

import (
	"fmt"
	"time"

	"airdash/internal/dataset"
)

// KPI compares one statistic of the current window against the window
// immediately before it. Previous and Delta are nil when the preceding
// window has no readings; DeltaPercent is additionally nil when the
// previous value is zero, instead of dividing by it.
type KPI struct {
	Current      float64  `json:"current"`
	Previous     *float64 `json:"previous"`
	Delta        *float64 `json:"delta"`
	DeltaPercent *float64 `json:"delta_percent"`
}

// Summary carries the min/mean/max KPIs of a metric over a window. Min,
// Mean and Max are nil when the window itself holds no readings.
type Summary struct {
	Metric        string    `json:"metric"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	Count         int       `json:"count"`
	PreviousCount int       `json:"previous_count"`
	Min           *KPI      `json:"min"`
	Mean          *KPI      `json:"mean"`
	Max           *KPI      `json:"max"`
}

// Summarize computes the KPI summary of metric over rng, comparing against
// the equal-length window ending where rng starts.
func Summarize(table *dataset.Table, metric string, rng Range) (Summary, error) {
	if !dataset.IsMetric(metric) {
		return Summary{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}

	current := metricValues(table, metric, rng)
	previous := metricValues(table, metric, rng.Previous())

	s := Summary{
		Metric:        metric,
		From:          rng.From,
		To:            rng.To,
		Count:         len(current),
		PreviousCount: len(previous),
	}
	if len(current) == 0 {
		return s, nil
	}

	mn, mean, mx := compareStats(current, previous)
	s.Min, s.Mean, s.Max = &mn, &mean, &mx
	return s, nil
}

func metricValues(table *dataset.Table, metric string, rng Range) []float64 {
	readings := table.Between(rng.From, rng.To)
	values := make([]float64, 0, len(readings))
	for _, r := range readings {
		v, ok := r.Value(metric)
		if !ok {
			continue
		}
		values = append(values, v)
	}
	return values
}

// stats returns min, mean and max of values. values must not be empty.
func stats(values []float64) (min, mean, max float64) {
	min, max = values[0], values[0]
	sum := 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return min, sum / float64(len(values)), max
}

// compareStats builds the three KPIs of current against previous. previous
// may be empty; current must not be.
func compareStats(current, previous []float64) (min, mean, max KPI) {
	cmn, cmean, cmx := stats(current)
	if len(previous) == 0 {
		return newKPI(cmn, nil), newKPI(cmean, nil), newKPI(cmx, nil)
	}
	pmn, pmean, pmx := stats(previous)
	return newKPI(cmn, &pmn), newKPI(cmean, &pmean), newKPI(cmx, &pmx)
}

func newKPI(current float64, previous *float64) KPI {
	k := KPI{Current: current, Previous: previous}
	if previous == nil {
		return k
	}
	delta := current - *previous
	k.Delta = &delta
	if *previous != 0 {
		pct := delta / *previous * 100
		k.DeltaPercent = &pct
	}
	return k
}
