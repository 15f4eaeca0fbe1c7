// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the Skycast API.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// Environment is the deployment environment name.
	Environment string

	// PrefsPath is the path of the SQLite preferences store.
	PrefsPath string

	// ForecastURL and ArchiveURL override the Open-Meteo endpoints.
	ForecastURL string
	ArchiveURL  string

	// GeocodingURL overrides the Nominatim endpoint.
	GeocodingURL string

	// RequestTimeout is the per-request timeout for upstream calls.
	RequestTimeout time.Duration

	// ForecastTTL and HistoricalTTL override the cache freshness windows.
	ForecastTTL   time.Duration
	HistoricalTTL time.Duration

	// PrefetchPacing is the delay between successive prefetch fetches.
	PrefetchPacing time.Duration

	// PrefetchInterval is how often the periodic favorites re-warm runs.
	PrefetchInterval time.Duration

	// OTLPEndpoint and TelemetryEnabled control OpenTelemetry export.
	OTLPEndpoint     string
	TelemetryEnabled bool
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getenvDefault("PORT", "8080"),
		Environment:      getenvDefault("APP_ENV", "development"),
		PrefsPath:        getenvDefault("PREFS_DB_PATH", "skycast.db"),
		ForecastURL:      os.Getenv("OPENMETEO_FORECAST_URL"),
		ArchiveURL:       os.Getenv("OPENMETEO_ARCHIVE_URL"),
		GeocodingURL:     os.Getenv("NOMINATIM_URL"),
		OTLPEndpoint:     getenvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
	}

	var err error
	if cfg.RequestTimeout, err = getenvDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ForecastTTL, err = getenvDuration("FORECAST_CACHE_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HistoricalTTL, err = getenvDuration("HISTORICAL_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PrefetchPacing, err = getenvDuration("PREFETCH_PACING", 100*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.PrefetchInterval, err = getenvDuration("PREFETCH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
