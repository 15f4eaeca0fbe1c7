package weather_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast/skycast/internal/location"
	"github.com/skycast/skycast/internal/weather"
)

// fakeClock is a manually advanced clock for TTL tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testLocation() location.Location {
	return location.Location{
		ID:          "51.5074_-0.1278",
		Name:        "London",
		Country:     "United Kingdom",
		DisplayName: "London, United Kingdom",
		Latitude:    51.5074,
		Longitude:   -0.1278,
	}
}

func testData() *weather.Data {
	return &weather.Data{
		Current:  weather.Current{Temperature: 18.5, WeatherCode: 3, IsDay: true},
		Hourly:   []weather.Hourly{{Time: "2026-08-31T12:00", Temperature: 18.5}},
		Daily:    []weather.Daily{{Date: "2026-08-31", TempMax: 21.0, TempMin: 12.0}},
		Timezone: "Europe/London",
	}
}

func TestCache_ForecastHitWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
	cache := weather.NewCache(weather.CacheConfig{Now: clock.Now})

	loc := testLocation()
	cache.PutForecast(loc.ID, testData(), loc)

	clock.Advance(14*time.Minute + 59*time.Second)

	entry, ok := cache.GetForecast(loc.ID)
	require.True(t, ok)
	assert.Equal(t, 18.5, entry.Data.Current.Temperature)
	assert.Equal(t, loc, entry.Location)
	assert.True(t, cache.HasFreshForecast(loc.ID))
}

func TestCache_ForecastMissAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
	cache := weather.NewCache(weather.CacheConfig{Now: clock.Now})

	loc := testLocation()
	cache.PutForecast(loc.ID, testData(), loc)

	clock.Advance(15*time.Minute + 1*time.Second)

	_, ok := cache.GetForecast(loc.ID)
	assert.False(t, ok)
	assert.False(t, cache.HasFreshForecast(loc.ID))
}

func TestCache_ForecastMissAtExactTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
	cache := weather.NewCache(weather.CacheConfig{Now: clock.Now})

	loc := testLocation()
	cache.PutForecast(loc.ID, testData(), loc)

	// An entry aged exactly to the TTL boundary is stale.
	clock.Advance(15 * time.Minute)

	_, ok := cache.GetForecast(loc.ID)
	assert.False(t, ok)
}

func TestCache_MissForUnknownID(t *testing.T) {
	cache := weather.NewCache(weather.CacheConfig{})

	_, ok := cache.GetForecast("0.0000_0.0000")
	assert.False(t, ok)
	_, ok = cache.GetHistorical("0.0000_0.0000")
	assert.False(t, ok)
}

func TestCache_PutForecastReplacesEntry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
	cache := weather.NewCache(weather.CacheConfig{Now: clock.Now})

	loc := testLocation()
	cache.PutForecast(loc.ID, testData(), loc)

	clock.Advance(10 * time.Minute)

	updated := testData()
	updated.Current.Temperature = 22.0
	cache.PutForecast(loc.ID, updated, loc)

	// The refetch resets the timestamp, so the entry outlives the
	// original TTL window.
	clock.Advance(10 * time.Minute)

	entry, ok := cache.GetForecast(loc.ID)
	require.True(t, ok)
	assert.Equal(t, 22.0, entry.Data.Current.Temperature)
}

func TestCache_HistoricalTTLIndependentOfForecast(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
	cache := weather.NewCache(weather.CacheConfig{Now: clock.Now})

	loc := testLocation()
	days := []weather.HistoricalDay{{Date: "2026-08-30", TempMax: 20.0}}
	cache.PutForecast(loc.ID, testData(), loc)
	cache.PutHistorical(loc.ID, days, loc)

	// One hour in: forecast is stale, historical is still live.
	clock.Advance(1 * time.Hour)

	_, ok := cache.GetForecast(loc.ID)
	assert.False(t, ok)

	entry, ok := cache.GetHistorical(loc.ID)
	require.True(t, ok)
	assert.Equal(t, days, entry.Days)

	// Past 24 hours the historical entry goes stale too.
	clock.Advance(24 * time.Hour)

	_, ok = cache.GetHistorical(loc.ID)
	assert.False(t, ok)
}

func TestCache_CustomTTLs(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
	cache := weather.NewCache(weather.CacheConfig{
		ForecastTTL: 1 * time.Minute,
		Now:         clock.Now,
	})

	loc := testLocation()
	cache.PutForecast(loc.ID, testData(), loc)

	clock.Advance(59 * time.Second)
	assert.True(t, cache.HasFreshForecast(loc.ID))

	clock.Advance(2 * time.Second)
	assert.False(t, cache.HasFreshForecast(loc.ID))
}

func TestCache_Clear(t *testing.T) {
	cache := weather.NewCache(weather.CacheConfig{})

	loc := testLocation()
	cache.PutForecast(loc.ID, testData(), loc)
	cache.PutHistorical(loc.ID, []weather.HistoricalDay{{Date: "2026-08-30"}}, loc)

	cache.Clear()

	_, ok := cache.GetForecast(loc.ID)
	assert.False(t, ok)
	_, ok = cache.GetHistorical(loc.ID)
	assert.False(t, ok)
}
