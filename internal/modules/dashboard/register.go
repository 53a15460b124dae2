package dashboard

import (
	"net/http"

	"airdash/internal/analysis"
	"airdash/internal/config"
	"airdash/internal/dataset"
	"airdash/internal/modules/dashboard/controller"
	"airdash/internal/modules/dashboard/session"
)

// RegisterFeature wires the dashboard pages and JSON API onto the mux.
func RegisterFeature(mux *http.ServeMux, store *dataset.Store, cfg config.Config) {
	sessions := session.NewStore(cfg.SessionTTL)
	var cache *analysis.SeriesCache
	if cfg.CacheEnabled {
		cache = analysis.NewSeriesCache(cfg.CacheTTL, cfg.CacheMaxEntries)
	}
	dashboardController := controller.NewDashboardController(store, sessions, cache, controller.Options{
		DataPath:           cfg.DataPath,
		Theme:              cfg.Theme,
		DefaultMetric:      cfg.DefaultMetric,
		DefaultGranularity: analysis.Granularity(cfg.DefaultGranularity),
	})
	dashboardController.RegisterRoutes(mux)
}
