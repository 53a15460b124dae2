package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"airdash/internal/app"
	"airdash/internal/config"
	"airdash/internal/logging"
)

var (
	cfgFile  string
	flagHost string
	flagPort int
	flagData string
)

var rootCmd = &cobra.Command{
	Use:   "airdash",
	Short: "Air quality dashboard over a readings CSV",
	Long: `airdash serves a small web dashboard over an air quality CSV export:
aggregated series by day, ISO week or month, indicator comparisons against
the preceding period and a JSON API exposing the same numbers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// A local .env is optional; real environments set variables directly.
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd, &cfg); err != nil {
			return err
		}

		logger := logging.New(cfg, version, appName)
		slog.SetDefault(logger)

		slog.Info("starting",
			"app", appName,
			"version", version,
			"env", cfg.AppEnv,
			"log_level", cfg.LogLevel.String(),
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("run failed", "err", err)
			return err
		}

		slog.Info("shutting down")
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default airdash.toml in the working directory)")
	rootCmd.Flags().StringVar(&flagHost, "host", "", "bind address (overrides config)")
	rootCmd.Flags().IntVar(&flagPort, "port", 0, "listen port (overrides config)")
	rootCmd.Flags().StringVar(&flagData, "data", "", "readings CSV path (overrides config)")
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("host") {
		cfg.HTTPHost = flagHost
	}
	if cmd.Flags().Changed("port") {
		if flagPort < 1 || flagPort > 65535 {
			return fmt.Errorf("invalid port %d", flagPort)
		}
		cfg.HTTPPort = flagPort
	}
	if cmd.Flags().Changed("data") {
		abs, err := filepath.Abs(flagData)
		if err != nil {
			return err
		}
		cfg.DataPath = abs
	}
	return nil
}
