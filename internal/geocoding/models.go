// Package geocoding provides free-text location search and reverse
// lookup, normalized to the canonical location model.
package geocoding

import (
	"context"

	"github.com/skycast/skycast/internal/location"
)

// Provider defines the upstream geocoding source.
type Provider interface {
	// Search returns raw place candidates for a free-text query.
	Search(ctx context.Context, query string, limit int) ([]Place, error)

	// Reverse looks up the place at the given coordinates. A nil place
	// with a nil error means the provider had no result there.
	Reverse(ctx context.Context, lat, lon float64) (*Place, error)

	// Name returns the provider name for logging.
	Name() string
}

// Place is a raw, unfiltered provider result.
type Place struct {
	// PlaceID is the provider's own identifier for the place.
	PlaceID string

	// Type is the provider's place classification (city, road, ...).
	Type string

	Name      string
	State     string
	Country   string
	Latitude  float64
	Longitude float64
}

// placeTypes are the classifications kept by search; roads, POIs and the
// like are discarded.
var placeTypes = map[string]bool{
	"city":           true,
	"town":           true,
	"village":        true,
	"municipality":   true,
	"administrative": true,
	"country":        true,
}

// toSearchResult normalizes a surviving place into a search result with a
// composed display name.
func toSearchResult(p Place) location.SearchResult {
	return location.SearchResult{
		ID:          p.PlaceID,
		Name:        p.Name,
		Country:     p.Country,
		State:       p.State,
		DisplayName: location.ComposeDisplayName(p.Name, p.State, p.Country),
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
	}
}
