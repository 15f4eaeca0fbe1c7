// Package main provides the entrypoint for the Skycast API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/api"
	"github.com/skycast/skycast/internal/config"
	"github.com/skycast/skycast/internal/faultinject"
	"github.com/skycast/skycast/internal/geocoding"
	"github.com/skycast/skycast/internal/geocoding/nominatim"
	"github.com/skycast/skycast/internal/prefetch"
	"github.com/skycast/skycast/internal/prefs"
	"github.com/skycast/skycast/internal/provider/resilience"
	"github.com/skycast/skycast/internal/telemetry"
	"github.com/skycast/skycast/internal/weather"
	"github.com/skycast/skycast/internal/weather/openmeteo"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "skycast-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Skycast API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Open the preferences store
	prefsRepo, err := prefs.NewSQLiteRepository(cfg.PrefsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open preferences store")
	}
	defer prefsRepo.Close()
	log.Info().
		Str("path", cfg.PrefsPath).
		Msg("preferences store opened")

	prefsService := prefs.NewService(prefs.ServiceConfig{
		Repository: prefsRepo,
		Logger:     log,
	})

	// Shared fault injector for the debug endpoints
	injector := faultinject.New()

	// Resilient HTTP clients, one circuit per upstream
	weatherClientCfg := resilience.DefaultClientConfig(openmeteo.ProviderName)
	weatherClientCfg.Timeout = cfg.RequestTimeout
	weatherClient := resilience.NewClient(weatherClientCfg)

	geoClientCfg := resilience.DefaultClientConfig(nominatim.ProviderName)
	geoClientCfg.Timeout = cfg.RequestTimeout
	geoClient := resilience.NewClient(geoClientCfg)

	// Initialize geocoding service
	geoService := geocoding.NewService(geocoding.ServiceConfig{
		Provider: nominatim.NewClient(nominatim.ClientConfig{
			BaseURL:    cfg.GeocodingURL,
			HTTPClient: geoClient,
			Injector:   injector,
			Logger:     log,
		}),
		Logger: log,
	})
	log.Info().Msg("geocoding service initialized")

	// Initialize weather service
	cache := weather.NewCache(weather.CacheConfig{
		ForecastTTL:   cfg.ForecastTTL,
		HistoricalTTL: cfg.HistoricalTTL,
	})
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: openmeteo.NewClient(openmeteo.ClientConfig{
			ForecastURL: cfg.ForecastURL,
			ArchiveURL:  cfg.ArchiveURL,
			HTTPClient:  weatherClient,
			Injector:    injector,
			Logger:      log,
		}),
		Cache:  cache,
		Logger: log,
	})
	log.Info().Msg("weather service initialized")

	// Initialize prefetch orchestrator
	orchestrator := prefetch.New(prefetch.Config{
		Weather: weatherService,
		Pacing:  cfg.PrefetchPacing,
		Logger:  log,
	})

	warmFavorites := func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		favorites, err := prefsService.Favorites(warmCtx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load favorites for warming")
			return
		}
		if len(favorites) == 0 {
			return
		}
		orchestrator.WarmFavorites(warmCtx, favorites)
	}

	// Warm the cache once at startup, then on a fixed schedule so
	// favorites stay inside the freshness window.
	go warmFavorites()

	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(cfg.PrefetchInterval).Do(warmFavorites); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule favorites warming")
	}
	scheduler.StartAsync()
	defer scheduler.Stop()
	log.Info().
		Dur("interval", cfg.PrefetchInterval).
		Msg("favorites warming scheduled")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:   Version,
		BuildTime: BuildTime,
		Logger:    log,
		Geocoding: geoService,
		Weather:   weatherService,
		Prefs:     prefsService,
		Prefetch:  orchestrator,
		Injector:  injector,
		Providers: map[string]*resilience.Client{
			openmeteo.ProviderName: weatherClient,
			nominatim.ProviderName: geoClient,
		},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
