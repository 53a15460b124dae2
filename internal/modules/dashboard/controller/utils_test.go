package controller

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"airdash/internal/analysis"
	"airdash/internal/dataset"
	"airdash/internal/modules/dashboard/session"
)

func Test_parseFilters(t *testing.T) {
	t.Run("empty filters fall back to defaults", func(t *testing.T) {
		metric, g, rng, err := parseFilters(session.Filters{}, dataset.MetricP2, analysis.Daily)
		if err != nil {
			t.Fatalf("parseFilters() err = %v; want nil", err)
		}
		if metric != dataset.MetricP2 {
			t.Errorf("metric = %q; want %q", metric, dataset.MetricP2)
		}
		if g != analysis.Daily {
			t.Errorf("granularity = %q; want %q", g, analysis.Daily)
		}
		if !rng.IsZero() {
			t.Errorf("range = %+v; want zero", rng)
		}
	})

	t.Run("inclusive to date maps to next midnight", func(t *testing.T) {
		f := session.Filters{From: "2025-09-01", To: "2025-09-14"}
		_, _, rng, err := parseFilters(f, dataset.MetricP2, analysis.Daily)
		if err != nil {
			t.Fatalf("parseFilters() err = %v; want nil", err)
		}
		wantFrom := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
		wantTo := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
		if !rng.From.Equal(wantFrom) {
			t.Errorf("From = %v; want %v", rng.From, wantFrom)
		}
		if !rng.To.Equal(wantTo) {
			t.Errorf("To = %v; want %v", rng.To, wantTo)
		}
	})

	t.Run("single day window", func(t *testing.T) {
		f := session.Filters{From: "2025-09-01", To: "2025-09-01"}
		_, _, rng, err := parseFilters(f, dataset.MetricP2, analysis.Daily)
		if err != nil {
			t.Fatalf("parseFilters() err = %v; want nil", err)
		}
		if rng.Duration() != 24*time.Hour {
			t.Errorf("Duration() = %v; want 24h", rng.Duration())
		}
	})

	t.Run("unknown metric returns error", func(t *testing.T) {
		_, _, _, err := parseFilters(session.Filters{Metric: "pressure"}, dataset.MetricP2, analysis.Daily)
		if !errors.Is(err, analysis.ErrUnknownMetric) {
			t.Errorf("err = %v; want ErrUnknownMetric", err)
		}
	})

	t.Run("unknown granularity returns error", func(t *testing.T) {
		_, _, _, err := parseFilters(session.Filters{Granularity: "hourly"}, dataset.MetricP2, analysis.Daily)
		if !errors.Is(err, analysis.ErrUnknownGranularity) {
			t.Errorf("err = %v; want ErrUnknownGranularity", err)
		}
	})

	t.Run("invalid from returns error", func(t *testing.T) {
		_, _, _, err := parseFilters(session.Filters{From: "01/09/2025"}, dataset.MetricP2, analysis.Daily)
		if err == nil {
			t.Fatal("parseFilters() err = nil; want non-nil")
		}
		if err.Error() != "invalid 'from' (expected YYYY-MM-DD)" {
			t.Errorf("err = %q; want invalid 'from' (expected YYYY-MM-DD)", err.Error())
		}
	})

	t.Run("from after to returns error", func(t *testing.T) {
		f := session.Filters{From: "2025-09-14", To: "2025-09-01"}
		_, _, _, err := parseFilters(f, dataset.MetricP2, analysis.Daily)
		if err == nil {
			t.Fatal("parseFilters() err = nil; want non-nil")
		}
		if err.Error() != "'from' must be <= 'to'" {
			t.Errorf("err = %q; want 'from' must be <= 'to'", err.Error())
		}
	})
}

func Test_parseReadingsQuery(t *testing.T) {
	t.Run("no params returns defaults", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/readings", nil)
		from, to, limit, err := parseReadingsQuery(req)
		if err != nil {
			t.Fatalf("parseReadingsQuery() err = %v; want nil", err)
		}
		if !from.IsZero() || !to.IsZero() {
			t.Errorf("from.IsZero()=%v to.IsZero()=%v; want both true", from.IsZero(), to.IsZero())
		}
		if limit != 100 {
			t.Errorf("limit = %d; want 100", limit)
		}
	})

	t.Run("invalid from returns error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/readings?from=not-a-date", nil)
		_, _, _, err := parseReadingsQuery(req)
		if err == nil {
			t.Fatal("parseReadingsQuery() err = nil; want non-nil")
		}
		if err.Error() != "invalid 'from' (expected RFC3339)" {
			t.Errorf("err = %q; want invalid 'from' (expected RFC3339)", err.Error())
		}
	})

	t.Run("limit bounds", func(t *testing.T) {
		for query, wantErr := range map[string]string{
			"limit=0":    "'limit' must be > 0",
			"limit=-5":   "'limit' must be > 0",
			"limit=1001": "'limit' must be <= 1000",
			"limit=abc":  "invalid 'limit' (expected integer)",
		} {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/readings?"+query, nil)
			_, _, _, err := parseReadingsQuery(req)
			if err == nil || err.Error() != wantErr {
				t.Errorf("query %q: err = %v; want %q", query, err, wantErr)
			}
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/readings?limit=500", nil)
		_, _, limit, err := parseReadingsQuery(req)
		if err != nil {
			t.Fatalf("parseReadingsQuery() err = %v; want nil", err)
		}
		if limit != 500 {
			t.Errorf("limit = %d; want 500", limit)
		}
	})
}

func Test_parsePredictHorizon(t *testing.T) {
	for query, want := range map[string]int{
		"":            defaultPredictHorizon,
		"horizon=14":  14,
		"horizon=0":   defaultPredictHorizon,
		"horizon=abc": defaultPredictHorizon,
		"horizon=99":  maxPredictHorizon,
	} {
		req := httptest.NewRequest(http.MethodGet, "/predict?"+query, nil)
		if got := parsePredictHorizon(req); got != want {
			t.Errorf("query %q: horizon = %d; want %d", query, got, want)
		}
	}
}

func Test_resolveRange(t *testing.T) {
	base := time.Date(2025, 9, 3, 10, 30, 0, 0, time.UTC)
	table := dataset.NewTable([]dataset.Reading{
		{Timestamp: base},
		{Timestamp: base.AddDate(0, 0, 4)},
	})

	rng := resolveRange(table, analysis.Range{})
	wantFrom := time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)
	if !rng.From.Equal(wantFrom) {
		t.Errorf("From = %v; want %v", rng.From, wantFrom)
	}
	if !rng.To.Equal(wantTo) {
		t.Errorf("To = %v; want %v", rng.To, wantTo)
	}

	// Explicit endpoints survive untouched.
	explicit := analysis.Range{From: wantFrom, To: wantFrom.AddDate(0, 0, 2)}
	if got := resolveRange(table, explicit); got != explicit {
		t.Errorf("resolveRange(explicit) = %+v; want %+v", got, explicit)
	}

	// Empty table leaves the range alone.
	empty := dataset.NewTable(nil)
	if got := resolveRange(empty, analysis.Range{}); !got.IsZero() {
		t.Errorf("resolveRange(empty) = %+v; want zero", got)
	}
}

func Test_kpiView(t *testing.T) {
	delta := 2.5
	pct := 12.5
	v := kpiView("Mean", analysis.KPI{Current: 22.5, Delta: &delta, DeltaPercent: &pct})
	if v.Value != "22.50" {
		t.Errorf("Value = %q; want 22.50", v.Value)
	}
	if v.Delta != "+2.50" {
		t.Errorf("Delta = %q; want +2.50", v.Delta)
	}
	if v.DeltaPercent != "+12.50%" {
		t.Errorf("DeltaPercent = %q; want +12.50%%", v.DeltaPercent)
	}
	if v.Direction != "up" {
		t.Errorf("Direction = %q; want up", v.Direction)
	}

	down := -1.0
	v = kpiView("Min", analysis.KPI{Current: 5, Delta: &down})
	if v.Delta != "-1.00" || v.Direction != "down" {
		t.Errorf("Delta = %q Direction = %q; want -1.00 down", v.Delta, v.Direction)
	}

	v = kpiView("Max", analysis.KPI{Current: 7})
	if v.Delta != "" || v.DeltaPercent != "" || v.Direction != "" {
		t.Errorf("no-previous KPI should have empty delta fields; got %+v", v)
	}
}

func Test_rangeLabel(t *testing.T) {
	rng := analysis.Range{
		From: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
	}
	if got := rangeLabel(rng); got != "01/09/2025 - 14/09/2025" {
		t.Errorf("rangeLabel() = %q; want 01/09/2025 - 14/09/2025", got)
	}
	if got := rangeLabel(analysis.Range{}); got != "all data" {
		t.Errorf("rangeLabel(zero) = %q; want all data", got)
	}
}
