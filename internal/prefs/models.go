// Package prefs persists user preferences: favorites, recent searches,
// browsing history, settings and the last-viewed location.
package prefs

import (
	"errors"
	"time"

	"github.com/skycast/skycast/internal/location"
	"github.com/skycast/skycast/internal/weather"
)

// Caps on the persisted collections.
const (
	MaxFavorites      = 10
	MaxRecentSearches = 5
	MaxHistoryEntries = 20
)

// Prefs errors.
var (
	ErrFavoriteExists   = errors.New("location is already a favorite")
	ErrFavoritesFull    = errors.New("favorites limit reached")
	ErrFavoriteNotFound = errors.New("favorite not found")
)

// Units is the display unit system.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Theme is the UI theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Settings holds display preferences and the first-time-user flag.
type Settings struct {
	Units          Units `json:"units"`
	Theme          Theme `json:"theme"`
	FirstVisitDone bool  `json:"firstVisitDone"`
}

// DefaultSettings returns the settings for a first-time user.
func DefaultSettings() Settings {
	return Settings{
		Units: UnitsMetric,
		Theme: ThemeLight,
	}
}

// HistoryEntry is one browsing-history item, carrying the weather summary
// seen at the time of the visit.
type HistoryEntry struct {
	Location location.Location `json:"location"`
	Summary  weather.Summary   `json:"summary"`
	ViewedAt time.Time         `json:"viewedAt"`
}

// State is the single namespaced blob holding everything except the
// last-viewed location, which lives under its own key.
type State struct {
	// Favorites is insertion-ordered and capped at MaxFavorites;
	// duplicate ids are rejected.
	Favorites []location.Location `json:"favorites"`

	// RecentSearches is most-recent-first and capped at
	// MaxRecentSearches; re-insertion moves an entry to the front.
	RecentSearches []location.SearchResult `json:"recentSearches"`

	// History is most-recent-first and capped at MaxHistoryEntries.
	History []HistoryEntry `json:"history"`

	Settings Settings `json:"settings"`
}

func newState() *State {
	return &State{
		Favorites:      []location.Location{},
		RecentSearches: []location.SearchResult{},
		History:        []HistoryEntry{},
		Settings:       DefaultSettings(),
	}
}
