package controller

import (
	"net/http"

	"airdash/internal/analysis"
	"airdash/internal/dataset"
	"airdash/internal/utils"
)

// metaResponse describes the loaded dataset for API clients.
type metaResponse struct {
	Columns       []string `json:"columns"`
	Metrics       []string `json:"metrics"`
	Granularities []string `json:"granularities"`
	Rows          int      `json:"rows"`
	From          any      `json:"from"`
	To            any      `json:"to"`
	LoadedAt      any      `json:"loaded_at"`
	Generation    uint64   `json:"generation"`
}

func (c *dashboardControllerImpl) handleMeta(w http.ResponseWriter, r *http.Request) {
	table, err := c.data.Snapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	meta := metaResponse{
		Columns:    dataset.Columns(),
		Metrics:    dataset.Metrics(),
		Rows:       table.Len(),
		LoadedAt:   zeroAsNullTime(c.data.LoadedAt()),
		Generation: c.data.Generation(),
	}
	for _, g := range analysis.Granularities() {
		meta.Granularities = append(meta.Granularities, string(g))
	}
	if first, last, ok := table.Bounds(); ok {
		meta.From = first
		meta.To = last
	}

	utils.WriteJSON(w, http.StatusOK, meta)
}

func (c *dashboardControllerImpl) handleSeries(w http.ResponseWriter, r *http.Request) {
	metric, g, rng, err := parseSeriesQuery(r, c.opts.DefaultMetric, c.opts.DefaultGranularity)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, err := c.data.Snapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rows, err := c.seriesFor(table, metric, g, rng)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

func (c *dashboardControllerImpl) handleSummary(w http.ResponseWriter, r *http.Request) {
	metric, _, rng, err := parseSeriesQuery(r, c.opts.DefaultMetric, c.opts.DefaultGranularity)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, err := c.data.Snapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	summary, err := analysis.Summarize(table, metric, resolveRange(table, rng))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

func (c *dashboardControllerImpl) handleLatestKPIs(w http.ResponseWriter, r *http.Request) {
	metric, g, _, err := parseSeriesQuery(r, c.opts.DefaultMetric, c.opts.DefaultGranularity)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, err := c.data.Snapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	period, err := analysis.LatestPeriod(table, metric, g)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, period)
}

func (c *dashboardControllerImpl) handleReadings(w http.ResponseWriter, r *http.Request) {
	from, to, limit, err := parseReadingsQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, err := c.data.Snapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	readings := table.Between(from, to)
	if len(readings) > limit {
		readings = readings[:limit]
	}
	utils.WriteJSON(w, http.StatusOK, readings)
}
