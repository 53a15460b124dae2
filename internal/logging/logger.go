package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"airdash/internal/config"
)

// New builds the process logger. The handler follows cfg.LogFormat:
// "text" is a colored console handler for terminals, "json" feeds log
// shippers, and "auto" picks text in dev and json everywhere else.
func New(cfg config.Config, version string, appName string) *slog.Logger {
	format := cfg.LogFormat
	if format == "auto" || format == "" {
		if cfg.AppEnv == "dev" {
			format = "text"
		} else {
			format = "json"
		}
	}

	if format == "text" {
		h := tint.NewHandler(os.Stdout, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}
