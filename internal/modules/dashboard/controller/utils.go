package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"airdash/internal/analysis"
	"airdash/internal/dataset"
	"airdash/internal/modules/dashboard/session"
	"airdash/internal/modules/dashboard/views"
	"airdash/internal/utils"
)

const sessionCookie = "airdash_session"

const (
	dateLayout      = "2006-01-02"
	displayDate     = "02/01/2006"
	displayDateTime = "02/01/2006 15:04"
)

const (
	defaultPredictHorizon = 7
	maxPredictHorizon     = 30
	predictPreviewRows    = 10
)

// filtersFromQuery lifts the explorer filter params out of the request.
func filtersFromQuery(r *http.Request) session.Filters {
	q := r.URL.Query()
	return session.Filters{
		Metric:      q.Get("metric"),
		Granularity: q.Get("granularity"),
		From:        q.Get("from"),
		To:          q.Get("to"),
	}
}

// parseFilters validates filter values against the given defaults and maps
// the inclusive date window onto a half-open range: the chosen end date is
// pushed to the midnight after it. Unset dates stay zero, which downstream
// code treats as unbounded.
func parseFilters(f session.Filters, defaultMetric string, defaultGranularity analysis.Granularity) (string, analysis.Granularity, analysis.Range, error) {
	metric := f.Metric
	if metric == "" {
		metric = defaultMetric
	}
	if !dataset.IsMetric(metric) {
		return "", "", analysis.Range{}, fmt.Errorf("%w: %q", analysis.ErrUnknownMetric, metric)
	}

	g := defaultGranularity
	if f.Granularity != "" {
		parsed, err := analysis.ParseGranularity(f.Granularity)
		if err != nil {
			return "", "", analysis.Range{}, err
		}
		g = parsed
	}

	var rng analysis.Range
	if f.From != "" {
		from, err := time.ParseInLocation(dateLayout, f.From, time.UTC)
		if err != nil {
			return "", "", analysis.Range{}, errors.New("invalid 'from' (expected YYYY-MM-DD)")
		}
		rng.From = from
	}
	if f.To != "" {
		to, err := time.ParseInLocation(dateLayout, f.To, time.UTC)
		if err != nil {
			return "", "", analysis.Range{}, errors.New("invalid 'to' (expected YYYY-MM-DD)")
		}
		rng.To = to.AddDate(0, 0, 1)
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && rng.From.After(rng.To) {
		return "", "", analysis.Range{}, errors.New("'from' must be <= 'to'")
	}

	return metric, g, rng, nil
}

func parseSeriesQuery(r *http.Request, defaultMetric string, defaultGranularity analysis.Granularity) (string, analysis.Granularity, analysis.Range, error) {
	return parseFilters(filtersFromQuery(r), defaultMetric, defaultGranularity)
}

func parseReadingsQuery(r *http.Request) (from time.Time, to time.Time, limit int, err error) {
	q := r.URL.Query()

	if s := q.Get("from"); s != "" {
		from, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, 0, errors.New("invalid 'from' (expected RFC3339)")
		}
	}
	if s := q.Get("to"); s != "" {
		to, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, 0, errors.New("invalid 'to' (expected RFC3339)")
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, 0, errors.New("'from' must be <= 'to'")
	}

	limit = 100
	if s := q.Get("limit"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return time.Time{}, time.Time{}, 0, errors.New("invalid 'limit' (expected integer)")
		}
		if n <= 0 {
			return time.Time{}, time.Time{}, 0, errors.New("'limit' must be > 0")
		}
		if n > 1000 {
			return time.Time{}, time.Time{}, 0, errors.New("'limit' must be <= 1000")
		}
		limit = n
	}

	return from, to, limit, nil
}

func parsePredictHorizon(r *http.Request) int {
	s := r.URL.Query().Get("horizon")
	if s == "" {
		return defaultPredictHorizon
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return defaultPredictHorizon
	}
	if n > maxPredictHorizon {
		return maxPredictHorizon
	}
	return n
}

// resolveRange fills unset endpoints from the table bounds so window
// comparisons have a concrete length to mirror.
func resolveRange(table *dataset.Table, rng analysis.Range) analysis.Range {
	first, last, ok := table.Bounds()
	if !ok {
		return rng
	}
	if rng.From.IsZero() {
		rng.From = analysis.Daily.BucketStart(first)
	}
	if rng.To.IsZero() {
		rng.To = analysis.Daily.Next(analysis.Daily.BucketStart(last))
	}
	return rng
}

// seriesFor aggregates through the memo cache when one is configured.
// Cache keys include the dataset generation, so a reload never serves
// stale rows.
func (c *dashboardControllerImpl) seriesFor(table *dataset.Table, metric string, g analysis.Granularity, rng analysis.Range) ([]analysis.AggregateRow, error) {
	if c.cache == nil {
		return analysis.Aggregate(table, metric, g, rng)
	}
	key := analysis.SeriesKey(c.data.Generation(), metric, g, rng)
	if rows, ok := c.cache.Get(key); ok {
		return rows, nil
	}
	rows, err := analysis.Aggregate(table, metric, g, rng)
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, rows)
	return rows, nil
}

// writeDomainError maps domain errors onto HTTP statuses: bad filter input
// is the caller's fault, a missing or broken data file is ours.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrUnknownMetric), errors.Is(err, analysis.ErrUnknownGranularity):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analysis.ErrNoData):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dataset.ErrFileNotFound), errors.Is(err, dataset.ErrMalformedData):
		utils.WriteError(w, http.StatusServiceUnavailable, err.Error())
	default:
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func (c *dashboardControllerImpl) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if ck, err := r.Cookie(sessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func direction(delta float64) string {
	switch {
	case delta > 0:
		return "up"
	case delta < 0:
		return "down"
	default:
		return "flat"
	}
}

func kpiView(label string, k analysis.KPI) views.KPIView {
	v := views.KPIView{Label: label, Value: fmtFloat(k.Current)}
	if k.Delta != nil {
		v.Delta = fmt.Sprintf("%+.2f", *k.Delta)
		v.Direction = direction(*k.Delta)
	}
	if k.DeltaPercent != nil {
		v.DeltaPercent = fmt.Sprintf("%+.2f%%", *k.DeltaPercent)
	}
	return v
}

// summaryKPIs flattens a Summary into view cards. An empty current window
// has no indicators at all.
func summaryKPIs(s analysis.Summary) []views.KPIView {
	if s.Min == nil || s.Mean == nil || s.Max == nil {
		return nil
	}
	return []views.KPIView{
		kpiView("Min", *s.Min),
		kpiView("Mean", *s.Mean),
		kpiView("Max", *s.Max),
	}
}

func rangeLabel(rng analysis.Range) string {
	if rng.From.IsZero() || rng.To.IsZero() {
		return "all data"
	}
	end := rng.To.AddDate(0, 0, -1)
	return rng.From.Format(displayDate) + " - " + end.Format(displayDate)
}

func zeroAsNullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// Chart trace colors per granularity, shared with the explorer script.
func chartColor(g analysis.Granularity) string {
	switch g {
	case analysis.Weekly:
		return "#2ca02c"
	case analysis.Monthly:
		return "#ff7f0e"
	default:
		return "#1f77b4"
	}
}
