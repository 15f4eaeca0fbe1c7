package weather

import (
	"sync"
	"time"

	"github.com/skycast/skycast/internal/location"
)

// Default time-to-live values. Forecast data churns, 30-day-old history
// does not, so the two keyspaces age independently.
const (
	DefaultForecastTTL   = 15 * time.Minute
	DefaultHistoricalTTL = 24 * time.Hour
)

// CacheConfig holds configuration for the weather cache.
type CacheConfig struct {
	// ForecastTTL is the freshness window for forecast entries.
	// Default: 15 minutes.
	ForecastTTL time.Duration

	// HistoricalTTL is the freshness window for historical entries.
	// Default: 24 hours.
	HistoricalTTL time.Duration

	// Now overrides the clock, for TTL-boundary tests.
	Now func() time.Time
}

// Cache holds fetched weather payloads keyed by location id. Expiry is
// lazy: expired entries are ignored on read, not purged, and size is
// unbounded. Entries are overwritten on refetch and removed only by Clear.
type Cache struct {
	mu         sync.RWMutex
	forecasts  map[string]*ForecastEntry
	historical map[string]*HistoricalEntry

	forecastTTL   time.Duration
	historicalTTL time.Duration
	now           func() time.Time
}

// NewCache creates a weather cache.
func NewCache(cfg CacheConfig) *Cache {
	forecastTTL := cfg.ForecastTTL
	if forecastTTL == 0 {
		forecastTTL = DefaultForecastTTL
	}
	historicalTTL := cfg.HistoricalTTL
	if historicalTTL == 0 {
		historicalTTL = DefaultHistoricalTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Cache{
		forecasts:     make(map[string]*ForecastEntry),
		historical:    make(map[string]*HistoricalEntry),
		forecastTTL:   forecastTTL,
		historicalTTL: historicalTTL,
		now:           now,
	}
}

// GetForecast returns the forecast entry for a location id if it is still
// within its TTL. Stale entries behave as misses.
func (c *Cache) GetForecast(locationID string) (*ForecastEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.forecasts[locationID]
	if !ok || c.now().Sub(e.FetchedAt) >= c.forecastTTL {
		return nil, false
	}
	return e, true
}

// HasFreshForecast reports whether a live forecast entry exists for the id.
func (c *Cache) HasFreshForecast(locationID string) bool {
	_, ok := c.GetForecast(locationID)
	return ok
}

// PutForecast stores a forecast, unconditionally replacing any existing
// entry for the id with a fresh timestamp.
func (c *Cache) PutForecast(locationID string, data *Data, loc location.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forecasts[locationID] = &ForecastEntry{
		Data:      data,
		Location:  loc,
		FetchedAt: c.now(),
	}
}

// GetHistorical returns the historical entry for a location id if it is
// still within its TTL.
func (c *Cache) GetHistorical(locationID string) (*HistoricalEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.historical[locationID]
	if !ok || c.now().Sub(e.FetchedAt) >= c.historicalTTL {
		return nil, false
	}
	return e, true
}

// PutHistorical stores a historical payload, replacing any existing entry.
func (c *Cache) PutHistorical(locationID string, days []HistoricalDay, loc location.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.historical[locationID] = &HistoricalEntry{
		Days:      days,
		Location:  loc,
		FetchedAt: c.now(),
	}
}

// Clear empties both keyspaces. Used only on a full data reset.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forecasts = make(map[string]*ForecastEntry)
	c.historical = make(map[string]*HistoricalEntry)
}
