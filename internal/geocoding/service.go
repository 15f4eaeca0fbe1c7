package geocoding

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/location"
)

const (
	// maxResults is the number of candidates requested from the provider.
	maxResults = 8

	// dedupThreshold treats two results as the same place when both
	// coordinate axes differ by less than this. Deliberately coarser than
	// the id rounding precision.
	dedupThreshold = 0.01
)

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	// Provider is the upstream geocoding source.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service normalizes provider results into canonical search results and
// locations.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a geocoding service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Search resolves a free-text query into deduplicated place candidates.
// Queries with fewer than two non-whitespace characters return an empty
// list without touching the network.
func (s *Service) Search(ctx context.Context, query string) ([]location.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if countNonSpace(trimmed) < 2 {
		return []location.SearchResult{}, nil
	}

	places, err := s.provider.Search(ctx, trimmed, maxResults)
	if err != nil {
		return nil, err
	}

	results := make([]location.SearchResult, 0, len(places))
	for _, p := range places {
		if !placeTypes[p.Type] {
			continue
		}
		if isDuplicate(results, p) {
			continue
		}
		results = append(results, toSearchResult(p))
	}

	s.logger.Debug().
		Str("query", trimmed).
		Int("provider_results", len(places)).
		Int("results", len(results)).
		Msg("search completed")

	return results, nil
}

// ReverseGeocode resolves coordinates to a Location. The id always comes
// from the requested coordinates, so repeated calls at the same point are
// idempotent regardless of what the provider returns. Any failure
// degrades to a synthesized "Current Location" rather than propagating;
// a successful lookup with no result returns nil.
func (s *Service) ReverseGeocode(ctx context.Context, lat, lon float64) (*location.Location, error) {
	place, err := s.provider.Reverse(ctx, lat, lon)
	if err != nil {
		s.logger.Warn().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("reverse geocode failed, falling back to coordinates")
		return fallbackLocation(lat, lon), nil
	}
	if place == nil {
		return nil, nil
	}

	loc := location.Location{
		ID:          location.ID(lat, lon),
		Name:        place.Name,
		Country:     place.Country,
		State:       place.State,
		DisplayName: location.ComposeDisplayName(place.Name, place.State, place.Country),
		Latitude:    place.Latitude,
		Longitude:   place.Longitude,
	}
	return &loc, nil
}

// fallbackLocation synthesizes a location from the requested coordinates.
func fallbackLocation(lat, lon float64) *location.Location {
	return &location.Location{
		ID:          location.ID(lat, lon),
		Name:        "Current Location",
		Country:     "",
		DisplayName: location.FormatCoordinates(lat, lon),
		Latitude:    lat,
		Longitude:   lon,
	}
}

// isDuplicate reports whether a place is within the dedup threshold of an
// already-kept result. The first occurrence wins.
func isDuplicate(kept []location.SearchResult, p Place) bool {
	for _, r := range kept {
		if math.Abs(r.Latitude-p.Latitude) < dedupThreshold &&
			math.Abs(r.Longitude-p.Longitude) < dedupThreshold {
			return true
		}
	}
	return false
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
