package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"airdash/internal/dataset"
)

// Config carries everything the process needs, resolved from defaults, an
// optional TOML file and AIRDASH_* environment variables (in ascending
// precedence).
type Config struct {
	AppEnv   string
	LogLevel slog.Level
	// LogFormat picks the handler: "text", "json", or "auto" to follow
	// AppEnv (text in dev, json in prod).
	LogFormat string

	HTTPHost string
	HTTPPort int

	// StaticDir is the absolute path of the directory served at /static/.
	// Relative values are resolved against the working directory at startup.
	StaticDir string

	// DataPath is the absolute path of the readings CSV. Same resolution
	// rule as StaticDir.
	DataPath string
	// WatchData reloads the dataset when the CSV changes on disk.
	WatchData bool

	Theme              string
	DefaultMetric      string
	DefaultGranularity string

	CacheEnabled    bool
	CacheTTL        time.Duration
	CacheMaxEntries int

	SessionTTL time.Duration
}

// HTTPAddr returns the listen address in host:port form.
func (c Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// Load resolves the configuration. file overrides the default search
// (airdash.toml in the working directory); a missing default file is fine,
// a missing explicit file is an error.
func Load(file string) (Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("airdash")
		v.SetConfigType("toml")
	}
	v.SetEnvPrefix("AIRDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8501)
	v.SetDefault("server.static_dir", "static")

	v.SetDefault("data.path", "data/readings.csv")
	v.SetDefault("data.watch", true)

	v.SetDefault("ui.theme", "light")
	v.SetDefault("ui.default_metric", dataset.MetricP2)
	v.SetDefault("ui.default_granularity", "daily")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "60s")
	v.SetDefault("cache.max_entries", 256)

	v.SetDefault("sessions.ttl", "30m")
}

func fromViper(v *viper.Viper) (Config, error) {
	appEnv := strings.TrimSpace(v.GetString("app.env"))
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid app.env %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(v.GetString("log.level"))
	if err != nil {
		return Config{}, err
	}

	logFormat := strings.ToLower(strings.TrimSpace(v.GetString("log.format")))
	switch logFormat {
	case "auto", "text", "json":
	default:
		return Config{}, fmt.Errorf("invalid log.format %q (allowed: auto, text, json)", logFormat)
	}

	port := v.GetInt("server.port")
	if port < 1 || port > 65535 {
		return Config{}, fmt.Errorf("invalid server.port %d (allowed: 1-65535)", port)
	}

	staticDir, err := filepath.Abs(strings.TrimSpace(v.GetString("server.static_dir")))
	if err != nil {
		return Config{}, fmt.Errorf("server.static_dir: %w", err)
	}
	dataPath, err := filepath.Abs(strings.TrimSpace(v.GetString("data.path")))
	if err != nil {
		return Config{}, fmt.Errorf("data.path: %w", err)
	}

	theme := strings.TrimSpace(v.GetString("ui.theme"))
	switch theme {
	case "light", "dark":
	default:
		return Config{}, fmt.Errorf("invalid ui.theme %q (allowed: light, dark)", theme)
	}

	metric := strings.TrimSpace(v.GetString("ui.default_metric"))
	if !dataset.IsMetric(metric) {
		return Config{}, fmt.Errorf("invalid ui.default_metric %q (allowed: %s)",
			metric, strings.Join(dataset.Metrics(), ", "))
	}

	granularity := strings.ToLower(strings.TrimSpace(v.GetString("ui.default_granularity")))
	switch granularity {
	case "daily", "weekly", "monthly":
	default:
		return Config{}, fmt.Errorf("invalid ui.default_granularity %q (allowed: daily, weekly, monthly)", granularity)
	}

	cacheTTL := v.GetDuration("cache.ttl")
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("invalid cache.ttl %q (must be a positive duration)", v.GetString("cache.ttl"))
	}
	cacheMaxEntries := v.GetInt("cache.max_entries")
	if cacheMaxEntries < 1 {
		return Config{}, fmt.Errorf("invalid cache.max_entries %d (must be >= 1)", cacheMaxEntries)
	}

	sessionTTL := v.GetDuration("sessions.ttl")
	if sessionTTL <= 0 {
		return Config{}, fmt.Errorf("invalid sessions.ttl %q (must be a positive duration)", v.GetString("sessions.ttl"))
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		LogFormat:          logFormat,
		HTTPHost:           strings.TrimSpace(v.GetString("server.host")),
		HTTPPort:           port,
		StaticDir:          staticDir,
		DataPath:           dataPath,
		WatchData:          v.GetBool("data.watch"),
		Theme:              theme,
		DefaultMetric:      metric,
		DefaultGranularity: granularity,
		CacheEnabled:       v.GetBool("cache.enabled"),
		CacheTTL:           cacheTTL,
		CacheMaxEntries:    cacheMaxEntries,
		SessionTTL:         sessionTTL,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log.level %q (allowed: debug, info, warn, error)", s)
	}
}
