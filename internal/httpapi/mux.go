package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"airdash/internal/dataset"
)

// NewMux assembles the base mux: health, metrics and static assets.
// Feature modules register their own routes on top.
func NewMux(store *dataset.Store, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, store)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	return mux
}
