// Package config reads process settings from the environment, after loading
// an optional .env file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"schema-reconciler/internal/datasource"
)

// Config is the process configuration.
type Config struct {
	// DataSources is the YAML file holding the data source configs.
	DataSources string
	// Catalog is a static attribute catalog file. Used when no database is
	// configured.
	Catalog string
	Log     LogConfig
	DB      DBConfig
	// Refresh is the introspection period for data sources whose refresh
	// rule does not give one.
	Refresh        time.Duration
	DefaultCluster string
	Aggregates     []datasource.AggregateRule
	SuffixLimit    int
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  slog.Level
	Format string
}

// DBConfig names the database introspected for attributes.
type DBConfig struct {
	Driver string
	DSN    string
}

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataSources:    getEnv("RECONCILER_CONFIG", "datasources.yaml"),
		Catalog:        getEnv("RECONCILER_CATALOG", ""),
		DB:             DBConfig{Driver: getEnv("RECONCILER_DB_DRIVER", ""), DSN: getEnv("RECONCILER_DB_DSN", "")},
		DefaultCluster: getEnv("RECONCILER_DEFAULT_CLUSTER", ""),
		Log:            LogConfig{Format: strings.ToLower(getEnv("RECONCILER_LOG_FORMAT", FormatText))},
	}

	if err := cfg.Log.Level.UnmarshalText([]byte(getEnv("RECONCILER_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("RECONCILER_LOG_LEVEL: %w", err)
	}

	if cfg.Log.Format != FormatText && cfg.Log.Format != FormatJSON {
		return nil, fmt.Errorf("RECONCILER_LOG_FORMAT: unknown format '%s'", cfg.Log.Format)
	}

	refresh, err := time.ParseDuration(getEnv("RECONCILER_REFRESH", "1m"))
	if err != nil || refresh <= 0 {
		return nil, fmt.Errorf("RECONCILER_REFRESH: invalid duration '%s'", os.Getenv("RECONCILER_REFRESH"))
	}

	cfg.Refresh = refresh

	if tokens := getEnv("RECONCILER_AGGREGATE_TOKENS", ""); tokens != "" {
		rules, err := datasource.ParseAggregateRules(tokens)
		if err != nil {
			return nil, fmt.Errorf("RECONCILER_AGGREGATE_TOKENS: %w", err)
		}

		if err := (datasource.AggregatePolicy{Rules: rules}).Validate(); err != nil {
			return nil, fmt.Errorf("RECONCILER_AGGREGATE_TOKENS: %w", err)
		}

		cfg.Aggregates = rules
	}

	cfg.SuffixLimit, err = getEnvInt("RECONCILER_SUFFIX_LIMIT", 0)
	if err != nil || cfg.SuffixLimit < 0 {
		return nil, fmt.Errorf("RECONCILER_SUFFIX_LIMIT: invalid value '%s'", os.Getenv("RECONCILER_SUFFIX_LIMIT"))
	}

	return cfg, nil
}

// Settings returns the engine settings. Unset values keep the engine
// defaults.
func (c *Config) Settings() datasource.Settings {
	s := datasource.DefaultSettings()

	if c.DefaultCluster != "" {
		s.DefaultCluster = c.DefaultCluster
	}

	if len(c.Aggregates) > 0 {
		s.Aggregates.Rules = c.Aggregates
	}

	if c.SuffixLimit > 0 {
		s.SuffixLimit = c.SuffixLimit
	}

	return s
}

// Logger returns a logger writing to w in the configured format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Log.Level}

	if c.Log.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	return strconv.Atoi(value)
}
