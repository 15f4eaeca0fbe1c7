// Package location provides the canonical location model shared by the
// geocoding and weather services.
package location

import (
	"fmt"
	"strings"
)

// Location represents a resolved geographic place.
type Location struct {
	// ID is derived from the coordinates via location.ID.
	ID string `json:"id"`

	Name    string `json:"name"`
	Country string `json:"country"`
	State   string `json:"state,omitempty"`

	// DisplayName is the human-readable composite of name, state and country.
	DisplayName string `json:"displayName"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Timezone string `json:"timezone,omitempty"`
}

// SearchResult is a search candidate returned by free-text geocoding.
// Its ID is the upstream provider's place id; promoting it to a Location
// recomputes the id from the coordinates.
type SearchResult struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	State       string  `json:"state,omitempty"`
	DisplayName string  `json:"displayName"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// ToLocation promotes a search result to a Location with a
// coordinate-derived id.
func (s SearchResult) ToLocation() Location {
	return Location{
		ID:          ID(s.Latitude, s.Longitude),
		Name:        s.Name,
		Country:     s.Country,
		State:       s.State,
		DisplayName: s.DisplayName,
		Latitude:    s.Latitude,
		Longitude:   s.Longitude,
	}
}

// ID derives the canonical location id from coordinates rounded to four
// decimal places (~11m). Two lookups within that distance collide to the
// same id, which is what makes favorite/cache dedup work.
func ID(lat, lon float64) string {
	return fmt.Sprintf("%.4f_%.4f", lat, lon)
}

// FormatCoordinates renders coordinates for display, rounded to two
// decimal places with degree marks, e.g. "51.51°, -0.13°".
func FormatCoordinates(lat, lon float64) string {
	return fmt.Sprintf("%.2f°, %.2f°", lat, lon)
}

// ComposeDisplayName builds "name, state, country", skipping empty parts
// and parts that would repeat an earlier component. A country-level result
// named after its country renders as just the name.
func ComposeDisplayName(name, state, country string) string {
	parts := []string{name}
	if state != "" && !strings.EqualFold(state, name) {
		parts = append(parts, state)
	}
	if country != "" && !strings.EqualFold(country, name) && !strings.EqualFold(country, state) {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}
