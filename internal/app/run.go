package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"airdash/internal/config"
	"airdash/internal/dataset"
	"airdash/internal/httpapi"
	"airdash/internal/modules/dashboard"
	dashboardviews "airdash/internal/modules/dashboard/views"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"logFormat", cfg.LogFormat,
		"httpAddr", cfg.HTTPAddr(),
		"staticDir", cfg.StaticDir,
		"dataPath", cfg.DataPath,
		"watchData", cfg.WatchData,
		"theme", cfg.Theme,
		"defaultMetric", cfg.DefaultMetric,
		"defaultGranularity", cfg.DefaultGranularity,
		"cacheEnabled", cfg.CacheEnabled,
		"cacheTTL", cfg.CacheTTL,
		"cacheMaxEntries", cfg.CacheMaxEntries,
		"sessionTTL", cfg.SessionTTL,
	)

	if err := dashboardviews.LoadTemplates(); err != nil {
		return err
	}

	store := dataset.NewStore(cfg.DataPath)
	if err := store.Reload(); err != nil {
		// Not fatal: pages and the API surface the error, and the watcher
		// picks the file up once it appears.
		slog.Warn("initial data load failed", "path", cfg.DataPath, "error", err)
	} else {
		table, _ := store.Snapshot()
		slog.Info("data loaded", "path", cfg.DataPath, "rows", table.Len())
	}

	if cfg.WatchData {
		if err := store.Watch(ctx); err != nil {
			slog.Warn("data watch failed (continuing without live reload)", "error", err)
		}
	}

	mux := httpapi.NewMux(store, cfg.StaticDir)
	dashboard.RegisterFeature(mux, store, cfg)

	srv := httpapi.NewServer(cfg.HTTPAddr(), mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
