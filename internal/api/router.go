// Package api provides the HTTP API for the Skycast dashboard backend.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/api/handler"
	"github.com/skycast/skycast/internal/api/middleware"
	"github.com/skycast/skycast/internal/faultinject"
	"github.com/skycast/skycast/internal/geocoding"
	"github.com/skycast/skycast/internal/prefetch"
	"github.com/skycast/skycast/internal/prefs"
	"github.com/skycast/skycast/internal/provider/resilience"
	"github.com/skycast/skycast/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger

	Geocoding *geocoding.Service
	Weather   *weather.Service
	Prefs     *prefs.Service
	Prefetch  *prefetch.Orchestrator
	Injector  *faultinject.Injector

	// Providers maps provider names to their resilient clients for
	// health reporting.
	Providers map[string]*resilience.Client
}

// NewRouter creates a chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequireJSON)
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Providers)
	locationHandler := handler.NewLocationHandler(cfg.Geocoding)
	weatherHandler := handler.NewWeatherHandler(cfg.Weather, cfg.Prefs, cfg.Logger)
	favoritesHandler := handler.NewFavoritesHandler(cfg.Prefs, cfg.Prefetch, cfg.Logger)
	historyHandler := handler.NewHistoryHandler(cfg.Prefs)
	settingsHandler := handler.NewSettingsHandler(cfg.Prefs)
	debugHandler := handler.NewDebugHandler(cfg.Injector, cfg.Prefs, cfg.Weather.Cache(), cfg.Logger)

	// Endpoints that fan out to the upstream providers get the tighter
	// limit; purely local state gets the standard one.
	upstreamRateLimit := middleware.RateLimitByIP(middleware.UpstreamRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
		})

		r.Route("/locations", func(r chi.Router) {
			r.Use(upstreamRateLimit)
			r.Get("/search", locationHandler.Search)
			r.Get("/reverse", locationHandler.Reverse)
		})

		r.Route("/weather", func(r chi.Router) {
			r.Use(upstreamRateLimit)
			r.Get("/", weatherHandler.GetForecast)
			r.Get("/historical", weatherHandler.GetHistorical)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", favoritesHandler.List)
			r.Post("/", favoritesHandler.Create)
			r.Delete("/{locationId}", favoritesHandler.Delete)
		})

		r.Route("/searches", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/recent", historyHandler.ListRecentSearches)
			r.Post("/recent", historyHandler.AddRecentSearch)
		})

		r.With(standardRateLimit).Get("/history", historyHandler.ListHistory)

		r.Route("/settings", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", settingsHandler.GetSettings)
			r.Put("/", settingsHandler.UpdateSettings)
		})

		r.Route("/last-viewed", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", settingsHandler.GetLastViewed)
			r.Put("/", settingsHandler.SetLastViewed)
		})

		r.With(standardRateLimit).Post("/reset", debugHandler.Reset)

		r.Route("/debug/fault", func(r chi.Router) {
			r.Get("/", debugHandler.GetFault)
			r.Put("/", debugHandler.SetFault)
			r.Delete("/", debugHandler.ClearFault)
		})
	})

	return r
}
