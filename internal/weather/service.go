package weather

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/location"
)

// ErrInvalidCoordinates is returned for out-of-range latitude/longitude.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the upstream weather data source.
	Provider Provider

	// Cache holds previously fetched payloads. Required.
	Cache *Cache

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service loads weather data with a read-through cache: a load consults
// the cache first unless told to skip it, and a cache hit issues no
// network request. Concurrent loads for the same id are not coordinated;
// the data is idempotent and the cache keeps whichever write lands last.
type Service struct {
	provider Provider
	cache    *Cache
	logger   zerolog.Logger
}

// NewService creates a weather service.
func NewService(cfg ServiceConfig) *Service {
	cache := cfg.Cache
	if cache == nil {
		cache = NewCache(CacheConfig{})
	}
	return &Service{
		provider: cfg.Provider,
		cache:    cache,
		logger:   cfg.Logger,
	}
}

// Cache exposes the underlying cache for warm checks and the full reset.
func (s *Service) Cache() *Cache {
	return s.cache
}

// LoadOptions controls a forecast load.
type LoadOptions struct {
	// ForceRefresh skips the cache read. The fetched result still
	// overwrites the cache on completion.
	ForceRefresh bool

	// Timezone is passed to the provider. Empty means "auto".
	Timezone string
}

// Load returns forecast data for a location, from cache when fresh.
func (s *Service) Load(ctx context.Context, loc location.Location, opts LoadOptions) (*Data, error) {
	if err := validateCoordinates(loc.Latitude, loc.Longitude); err != nil {
		return nil, err
	}

	if !opts.ForceRefresh {
		if entry, ok := s.cache.GetForecast(loc.ID); ok {
			s.logger.Debug().
				Str("location_id", loc.ID).
				Msg("forecast cache hit")
			return entry.Data, nil
		}
	}

	timezone := opts.Timezone
	if timezone == "" {
		timezone = "auto"
	}

	s.logger.Debug().
		Str("location_id", loc.ID).
		Str("provider", s.provider.Name()).
		Msg("fetching forecast from provider")

	data, err := s.provider.FetchForecast(ctx, loc.Latitude, loc.Longitude, timezone)
	if err != nil {
		s.logger.Error().Err(err).
			Str("location_id", loc.ID).
			Msg("forecast fetch failed")
		return nil, err
	}

	s.cache.PutForecast(loc.ID, data, loc)
	return data, nil
}

// LoadHistorical returns daily aggregates for the given number of days
// ending yesterday, from cache when fresh.
func (s *Service) LoadHistorical(ctx context.Context, loc location.Location, days int) ([]HistoricalDay, error) {
	if err := validateCoordinates(loc.Latitude, loc.Longitude); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 30
	}

	if entry, ok := s.cache.GetHistorical(loc.ID); ok {
		s.logger.Debug().
			Str("location_id", loc.ID).
			Msg("historical cache hit")
		return entry.Days, nil
	}

	s.logger.Debug().
		Str("location_id", loc.ID).
		Int("days", days).
		Str("provider", s.provider.Name()).
		Msg("fetching historical data from provider")

	historical, err := s.provider.FetchHistorical(ctx, loc.Latitude, loc.Longitude, days)
	if err != nil {
		s.logger.Error().Err(err).
			Str("location_id", loc.ID).
			Msg("historical fetch failed")
		return nil, err
	}

	s.cache.PutHistorical(loc.ID, historical, loc)
	return historical, nil
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
