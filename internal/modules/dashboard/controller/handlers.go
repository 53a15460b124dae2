package controller

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"airdash/internal/analysis"
	"airdash/internal/dataset"
	"airdash/internal/modules/dashboard/session"
	"airdash/internal/modules/dashboard/views"
	"airdash/internal/utils"
)

func (c *dashboardControllerImpl) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := views.HomeData{
		Page:     views.Page{Title: "Home", Active: "home", Theme: c.opts.Theme},
		DataPath: c.opts.DataPath,
		Metric:   c.opts.DefaultMetric,
	}

	table, err := c.data.Snapshot()
	if err != nil {
		data.Err = err.Error()
	} else {
		data.Rows = table.Len()
		if first, last, ok := table.Bounds(); ok {
			data.From = first.Format(displayDateTime)
			data.To = last.Format(displayDateTime)
		}
		if loadedAt := c.data.LoadedAt(); !loadedAt.IsZero() {
			data.LoadedAt = loadedAt.UTC().Format(displayDateTime)
		}
		data.Cards = c.latestCards(table)
		for _, cs := range analysis.Describe(table) {
			data.Stats = append(data.Stats, views.StatRow{
				Column: cs.Column,
				Count:  cs.Count,
				Mean:   fmtFloat(cs.Mean),
				Std:    fmtFloat(cs.Std),
				Min:    fmtFloat(cs.Min),
				Max:    fmtFloat(cs.Max),
			})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.RenderHome(w, &data); err != nil {
		slog.Error("home template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
	}
}

// latestCards builds the latest-period block for every granularity. A
// granularity with no data is simply left out.
func (c *dashboardControllerImpl) latestCards(table *dataset.Table) []views.LatestCard {
	var cards []views.LatestCard
	for _, g := range analysis.Granularities() {
		if card := latestCard(table, c.opts.DefaultMetric, g); card != nil {
			cards = append(cards, *card)
		}
	}
	return cards
}

// latestCard builds the last-complete-period card for one metric and
// granularity, or nil when there is no data for it.
func latestCard(table *dataset.Table, metric string, g analysis.Granularity) *views.LatestCard {
	ps, err := analysis.LatestPeriod(table, metric, g)
	if err != nil {
		if !errors.Is(err, analysis.ErrNoData) {
			slog.Warn("latest period failed", "metric", metric, "granularity", g, "error", err)
		}
		return nil
	}
	return &views.LatestCard{
		Granularity:   titled(g),
		Label:         ps.Label,
		PreviousLabel: ps.PreviousLabel,
		Count:         ps.Count,
		KPIs: []views.KPIView{
			kpiView("Min", ps.Min),
			kpiView("Mean", ps.Mean),
			kpiView("Max", ps.Max),
		},
	}
}

func (c *dashboardControllerImpl) handleExplore(w http.ResponseWriter, r *http.Request) {
	sessionID := c.ensureSession(w, r)

	f := filtersFromQuery(r)
	if f == (session.Filters{}) {
		if saved, ok := c.sessions.Get(sessionID); ok {
			f = saved
		}
	}

	data := views.ExploreData{
		Page: views.Page{Title: "Explore", Active: "explore", Theme: c.opts.Theme},
	}

	table, err := c.data.Snapshot()
	if err != nil {
		data.Filters = c.filterOptions(nil, f)
		data.Results = views.ResultsData{Err: err.Error()}
		c.renderExplore(w, r, &data)
		return
	}

	metric, g, rng, err := parseFilters(f, c.opts.DefaultMetric, c.opts.DefaultGranularity)
	if err != nil {
		data.Filters = c.filterOptions(table, f)
		data.Results = views.ResultsData{Err: err.Error()}
		c.renderExplore(w, r, &data)
		return
	}

	c.sessions.Put(sessionID, session.Filters{
		Metric:      metric,
		Granularity: string(g),
		From:        f.From,
		To:          f.To,
	})

	data.Results = c.buildResults(table, metric, g, rng)
	data.Filters = c.filterOptions(table, session.Filters{
		Metric:      metric,
		Granularity: string(g),
		From:        data.Results.From,
		To:          data.Results.To,
	})
	c.renderExplore(w, r, &data)
}

// buildResults aggregates and summarizes the chosen window into the view
// model shared by the full page and the HTMX fragment.
func (c *dashboardControllerImpl) buildResults(table *dataset.Table, metric string, g analysis.Granularity, rng analysis.Range) views.ResultsData {
	res := views.ResultsData{
		Metric:      metric,
		Granularity: string(g),
		Color:       chartColor(g),
	}

	rng = resolveRange(table, rng)
	if !rng.From.IsZero() {
		res.From = rng.From.Format(dateLayout)
	}
	if !rng.To.IsZero() {
		res.To = rng.To.AddDate(0, 0, -1).Format(dateLayout)
	}
	res.RangeLabel = rangeLabel(rng)

	rows, err := c.seriesFor(table, metric, g, rng)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	for _, row := range rows {
		res.Rows = append(res.Rows, views.SeriesRow{
			Bucket: row.BucketStart.Format(displayDate),
			Min:    fmtFloat(row.Min),
			Mean:   fmtFloat(row.Mean),
			Max:    fmtFloat(row.Max),
			Count:  row.Count,
		})
	}

	summary, err := analysis.Summarize(table, metric, rng)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Count = summary.Count
	res.PreviousCount = summary.PreviousCount
	res.KPIs = summaryKPIs(summary)
	res.Latest = latestCard(table, metric, g)
	return res
}

func (c *dashboardControllerImpl) filterOptions(table *dataset.Table, f session.Filters) views.FilterOptions {
	opts := views.FilterOptions{
		Metrics:     dataset.Metrics(),
		Metric:      f.Metric,
		Granularity: f.Granularity,
		From:        f.From,
		To:          f.To,
	}
	if opts.Metric == "" {
		opts.Metric = c.opts.DefaultMetric
	}
	if opts.Granularity == "" {
		opts.Granularity = string(c.opts.DefaultGranularity)
	}
	for _, g := range analysis.Granularities() {
		opts.Granularities = append(opts.Granularities, string(g))
	}
	if table != nil {
		if first, last, ok := table.Bounds(); ok {
			opts.MinDate = first.Format(dateLayout)
			opts.MaxDate = last.Format(dateLayout)
		}
	}
	return opts
}

// renderExplore writes either the full page or, for HTMX requests, only
// the results fragment.
func (c *dashboardControllerImpl) renderExplore(w http.ResponseWriter, r *http.Request, data *views.ExploreData) {
	if r.Header.Get("HX-Request") == "true" {
		var buf bytes.Buffer
		if err := views.RenderResultsPartial(&buf, &data.Results); err != nil {
			slog.Error("explore partial render failed", "error", err)
			utils.WriteError(w, http.StatusInternalServerError, "failed to render")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(buf.Bytes()); err != nil {
			slog.Error("explore: write response failed", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.RenderExplore(w, data); err != nil {
		slog.Error("explore template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
	}
}

func (c *dashboardControllerImpl) handlePredict(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = c.opts.DefaultMetric
	}

	data := views.PredictData{
		Page:    views.Page{Title: "Predict", Active: "predict", Theme: c.opts.Theme},
		Metrics: dataset.Metrics(),
		Metric:  metric,
		Horizon: parsePredictHorizon(r),
		Columns: dataset.Columns(),
	}
	if !dataset.IsMetric(metric) {
		data.Metric = c.opts.DefaultMetric
		data.Err = fmt.Sprintf("unknown metric %q", metric)
	}

	table, err := c.data.Snapshot()
	if err != nil {
		data.Err = err.Error()
	} else {
		data.Rows = table.Len()
		if first, last, ok := table.Bounds(); ok {
			data.From = first.Format(displayDate)
			data.To = last.Format(displayDate)
		}
		for _, cs := range analysis.Describe(table) {
			data.Stats = append(data.Stats, views.StatRow{
				Column: cs.Column,
				Count:  cs.Count,
				Mean:   fmtFloat(cs.Mean),
				Std:    fmtFloat(cs.Std),
				Min:    fmtFloat(cs.Min),
				Max:    fmtFloat(cs.Max),
			})
		}
		for _, reading := range table.Head(predictPreviewRows) {
			data.Preview = append(data.Preview, views.PreviewRow{
				Timestamp:   reading.Timestamp.Format(displayDateTime),
				P0:          fmtFloat(reading.P0),
				P1:          fmtFloat(reading.P1),
				P2:          fmtFloat(reading.P2),
				Temperature: fmtFloat(reading.Temperature),
				Humidity:    fmtFloat(reading.Humidity),
			})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.RenderPredict(w, &data); err != nil {
		slog.Error("predict template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
	}
}

func titled(g analysis.Granularity) string {
	s := g.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
