package httpapi

import (
	"net/http"

	"airdash/internal/dataset"
	"airdash/internal/utils"
)

type snapshotter interface {
	Snapshot() (*dataset.Table, error)
}

func registerHealthcheck(mux *http.ServeMux, store snapshotter) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		table, err := store.Snapshot()
		if err != nil {
			utils.WriteError(w, http.StatusServiceUnavailable, "dataset not loaded")
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"rows":   table.Len(),
		})
	})
}
