package controller

import (
	"net/http"
	"time"

	"airdash/internal/analysis"
	"airdash/internal/dataset"
	"airdash/internal/modules/dashboard/session"
)

// DashboardController serves the dashboard pages and the JSON API.
type DashboardController interface {
	RegisterRoutes(mux *http.ServeMux)
}

// dataProvider is the slice of dataset.Store the controller needs.
type dataProvider interface {
	Snapshot() (*dataset.Table, error)
	Generation() uint64
	LoadedAt() time.Time
}

// Options carries the UI defaults resolved from configuration.
type Options struct {
	DataPath           string
	Theme              string
	DefaultMetric      string
	DefaultGranularity analysis.Granularity
}

type dashboardControllerImpl struct {
	data     dataProvider
	sessions *session.Store
	cache    *analysis.SeriesCache
	opts     Options
}

// NewDashboardController wires the dataset provider, the session store and
// an optional series cache (nil disables memoization).
func NewDashboardController(data dataProvider, sessions *session.Store, cache *analysis.SeriesCache, opts Options) DashboardController {
	return &dashboardControllerImpl{data: data, sessions: sessions, cache: cache, opts: opts}
}

func (c *dashboardControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleHome)
	mux.HandleFunc("GET /explore", c.handleExplore)
	mux.HandleFunc("GET /predict", c.handlePredict)
	mux.HandleFunc("GET /api/v1/meta", c.handleMeta)
	mux.HandleFunc("GET /api/v1/series", c.handleSeries)
	mux.HandleFunc("GET /api/v1/summary", c.handleSummary)
	mux.HandleFunc("GET /api/v1/kpis/latest", c.handleLatestKPIs)
	mux.HandleFunc("GET /api/v1/readings", c.handleReadings)
}
