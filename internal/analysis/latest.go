package analysis

import (
	"fmt"
	"time"

	"airdash/internal/dataset"
)

// PeriodSummary is the "latest period" KPI strip: the most recent calendar
// day, the last few daily means, or the last few weekly means, each
// compared against the window just before it.
type PeriodSummary struct {
	Metric        string      `json:"metric"`
	Granularity   Granularity `json:"granularity"`
	Label         string      `json:"label"`
	PreviousLabel string      `json:"previous_label,omitempty"`
	Count         int         `json:"count"`
	Min           KPI         `json:"min"`
	Mean          KPI         `json:"mean"`
	Max           KPI         `json:"max"`
}

const (
	weeklyWindowDays    = 7
	monthlyWindowWeeks  = 4
	dayLabelFormat      = "02/01/2006"
	shortDayLabelFormat = "02/01"
)

// LatestPeriod summarizes the most recent period of the whole table at the
// given granularity.
//
// Daily compares the readings of the last calendar day with data against
// the day immediately before it. Weekly reduces days to daily means and
// compares the last up-to-seven of them against the seven before; monthly
// does the same over weekly means with windows of four. Comparison windows
// never overlap the current one; a short history leaves them smaller or
// empty, which shows up as nil deltas.
func LatestPeriod(table *dataset.Table, metric string, g Granularity) (PeriodSummary, error) {
	if !dataset.IsMetric(metric) {
		return PeriodSummary{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	if _, err := ParseGranularity(string(g)); err != nil {
		return PeriodSummary{}, err
	}
	if table.Len() == 0 {
		return PeriodSummary{}, ErrNoData
	}

	switch g {
	case Weekly:
		return latestWindow(table, metric, Weekly, Daily, weeklyWindowDays)
	case Monthly:
		return latestWindow(table, metric, Monthly, Weekly, monthlyWindowWeeks)
	default:
		return latestDay(table, metric)
	}
}

// latestDay compares the raw readings of the last day with data against the
// calendar day before it. A gap before the last day means there is nothing
// to compare against, like a missing resample row.
func latestDay(table *dataset.Table, metric string) (PeriodSummary, error) {
	days, err := Aggregate(table, metric, Daily, fullRange(table))
	if err != nil {
		return PeriodSummary{}, err
	}
	if len(days) == 0 {
		return PeriodSummary{}, ErrNoData
	}

	cur := days[len(days)-1]
	current := metricValues(table, metric, dayRange(cur.BucketStart))

	var previous []float64
	var previousLabel string
	if len(days) > 1 {
		candidate := days[len(days)-2]
		if candidate.BucketStart.Equal(cur.BucketStart.AddDate(0, 0, -1)) {
			previous = metricValues(table, metric, dayRange(candidate.BucketStart))
			previousLabel = candidate.BucketStart.Format(dayLabelFormat)
		}
	}

	s := PeriodSummary{
		Metric:        metric,
		Granularity:   Daily,
		Label:         cur.BucketStart.Format(dayLabelFormat),
		PreviousLabel: previousLabel,
		Count:         len(current),
	}
	s.Min, s.Mean, s.Max = compareStats(current, previous)
	return s, nil
}

// latestWindow reduces the table to sub-period means and compares the last
// size of them against the up-to-size entries before.
func latestWindow(table *dataset.Table, metric string, g, sub Granularity, size int) (PeriodSummary, error) {
	rows, err := Aggregate(table, metric, sub, fullRange(table))
	if err != nil {
		return PeriodSummary{}, err
	}
	if len(rows) == 0 {
		return PeriodSummary{}, ErrNoData
	}

	curLo := len(rows) - size
	if curLo < 0 {
		curLo = 0
	}
	prevLo := curLo - size
	if prevLo < 0 {
		prevLo = 0
	}
	current := rows[curLo:]
	previous := rows[prevLo:curLo]

	s := PeriodSummary{
		Metric:      metric,
		Granularity: g,
		Label:       windowLabel(current, sub),
		Count:       len(current),
	}
	if len(previous) > 0 {
		s.PreviousLabel = windowLabel(previous, sub)
	}
	s.Min, s.Mean, s.Max = compareStats(means(current), means(previous))
	return s, nil
}

func means(rows []AggregateRow) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Mean
	}
	return out
}

// windowLabel formats "start - end" over the days a window of sub-buckets
// covers, end being the last day of the final bucket.
func windowLabel(rows []AggregateRow, sub Granularity) string {
	first := rows[0].BucketStart
	last := sub.Next(rows[len(rows)-1].BucketStart).AddDate(0, 0, -1)
	return first.Format(shortDayLabelFormat) + " - " + last.Format(shortDayLabelFormat)
}

func dayRange(start time.Time) Range {
	return Range{From: start, To: Daily.Next(start)}
}

// fullRange covers every reading in the table, inclusive of the last one.
func fullRange(table *dataset.Table) Range {
	first, last, ok := table.Bounds()
	if !ok {
		return Range{}
	}
	return Range{From: first, To: last.Add(time.Nanosecond)}
}
