package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast/skycast/internal/api"
	"github.com/skycast/skycast/internal/apierr"
	"github.com/skycast/skycast/internal/faultinject"
	"github.com/skycast/skycast/internal/geocoding"
	"github.com/skycast/skycast/internal/prefetch"
	"github.com/skycast/skycast/internal/prefs"
	"github.com/skycast/skycast/internal/weather"
)

// stubGeoProvider serves canned geocoding answers.
type stubGeoProvider struct {
	places  []geocoding.Place
	reverse *geocoding.Place
	err     error
}

func (s *stubGeoProvider) Name() string { return "stub" }

func (s *stubGeoProvider) Search(context.Context, string, int) ([]geocoding.Place, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.places, nil
}

func (s *stubGeoProvider) Reverse(context.Context, float64, float64) (*geocoding.Place, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.reverse, nil
}

// stubWeatherProvider serves a fixed forecast, optionally failing with an
// injector-style error.
type stubWeatherProvider struct {
	injector *faultinject.Injector
	err      error
}

func (s *stubWeatherProvider) Name() string { return "stub" }

func (s *stubWeatherProvider) FetchForecast(context.Context, float64, float64, string) (*weather.Data, error) {
	if err := s.injector.Check(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return &weather.Data{
		Current:  weather.Current{Temperature: 18.5, WeatherCode: 3, IsDay: true},
		Hourly:   []weather.Hourly{{Time: "2026-08-31T12:00"}},
		Daily:    []weather.Daily{{Date: "2026-08-31"}},
		Timezone: "Europe/London",
	}, nil
}

func (s *stubWeatherProvider) FetchHistorical(context.Context, float64, float64, int) ([]weather.HistoricalDay, error) {
	if err := s.injector.Check(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return []weather.HistoricalDay{{Date: "2026-08-30", TempMax: 20.0}}, nil
}

type testEnv struct {
	router   http.Handler
	geo      *stubGeoProvider
	wx       *stubWeatherProvider
	prefs    *prefs.Service
	injector *faultinject.Injector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	injector := faultinject.New()
	geoProvider := &stubGeoProvider{}
	wxProvider := &stubWeatherProvider{injector: injector}

	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: wxProvider,
		Logger:   zerolog.Nop(),
	})
	prefsService := prefs.NewService(prefs.ServiceConfig{
		Repository: prefs.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})

	router := api.NewRouter(api.RouterConfig{
		Version:   "test",
		BuildTime: "now",
		Logger:    zerolog.Nop(),
		Geocoding: geocoding.NewService(geocoding.ServiceConfig{
			Provider: geoProvider,
			Logger:   zerolog.Nop(),
		}),
		Weather: weatherService,
		Prefs:   prefsService,
		Prefetch: prefetch.New(prefetch.Config{
			Weather: weatherService,
			Logger:  zerolog.Nop(),
		}),
		Injector: injector,
	})

	return &testEnv{
		router:   router,
		geo:      geoProvider,
		wx:       wxProvider,
		prefs:    prefsService,
		injector: injector,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/ops/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestRouter_SearchLocations(t *testing.T) {
	env := newTestEnv(t)
	env.geo.places = []geocoding.Place{
		{PlaceID: "1", Type: "city", Name: "London", Country: "United Kingdom", Latitude: 51.5074, Longitude: -0.1278},
	}

	rec := env.do(t, http.MethodGet, "/v1/locations/search?q=london", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Results []map[string]any `json:"results"`
	}](t, rec)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "London", body.Results[0]["name"])
}

func TestRouter_SearchLocations_UpstreamError(t *testing.T) {
	env := newTestEnv(t)
	env.geo.err = apierr.New(apierr.KindRateLimited)

	rec := env.do(t, http.MethodGet, "/v1/locations/search?q=london", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "RATE_LIMITED", body["errorKind"])
	assert.Equal(t, true, body["retryable"])
}

func TestRouter_ReverseGeocode_FallbackOnProviderError(t *testing.T) {
	env := newTestEnv(t)
	env.geo.err = apierr.New(apierr.KindNetworkError)

	rec := env.do(t, http.MethodGet, "/v1/locations/reverse?lat=51.5074&lon=-0.1278", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Current Location", body["name"])
	assert.Contains(t, body["displayName"], "51.51")
	assert.Contains(t, body["displayName"], "-0.13")
}

func TestRouter_GetWeather(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/weather?lat=51.5074&lon=-0.1278&name=London&country=United+Kingdom", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Location map[string]any `json:"location"`
		Weather  map[string]any `json:"weather"`
	}](t, rec)
	assert.Equal(t, "51.5074_-0.1278", body.Location["id"])
	assert.Equal(t, "London, United Kingdom", body.Location["displayName"])
	require.NotNil(t, body.Weather)

	// A successful load lands in history and last-viewed.
	history, err := env.prefs.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "51.5074_-0.1278", history[0].Location.ID)

	lastViewed, err := env.prefs.LastViewed(context.Background())
	require.NoError(t, err)
	require.NotNil(t, lastViewed)
	assert.Equal(t, "51.5074_-0.1278", lastViewed.ID)
}

func TestRouter_GetWeather_InvalidCoordinates(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/weather?lat=91&lon=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/weather?lat=abc&lon=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_GetHistoricalWeather(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/weather/historical?lat=51.5074&lon=-0.1278&days=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		LocationID string           `json:"locationId"`
		Days       []map[string]any `json:"days"`
	}](t, rec)
	assert.Equal(t, "51.5074_-0.1278", body.LocationID)
	require.Len(t, body.Days, 1)
}

func TestRouter_GetHistoricalWeather_DaysOutOfRange(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/weather/historical?lat=51.5074&lon=-0.1278&days=93", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_FavoritesLifecycle(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]any{
		"name":      "London",
		"country":   "United Kingdom",
		"latitude":  51.5074,
		"longitude": -0.1278,
	}
	rec := env.do(t, http.MethodPost, "/v1/favorites", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[map[string]any](t, rec)
	assert.Equal(t, "51.5074_-0.1278", created["id"])

	// Duplicate rejected.
	rec = env.do(t, http.MethodPost, "/v1/favorites", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/favorites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[struct {
		Favorites []map[string]any `json:"favorites"`
	}](t, rec)
	require.Len(t, listed.Favorites, 1)

	rec = env.do(t, http.MethodDelete, "/v1/favorites/51.5074_-0.1278", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/v1/favorites/51.5074_-0.1278", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Favorites_ValidationError(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/favorites", map[string]any{
		"latitude":  200.0,
		"longitude": 0.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RecentSearches(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/searches/recent", map[string]any{
		"id":        "place-1",
		"name":      "London",
		"country":   "United Kingdom",
		"latitude":  51.5074,
		"longitude": -0.1278,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/searches/recent", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Searches []map[string]any `json:"searches"`
	}](t, rec)
	require.Len(t, body.Searches, 1)
	assert.Equal(t, "place-1", body.Searches[0]["id"])
}

func TestRouter_Settings(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	defaults := decode[map[string]any](t, rec)
	assert.Equal(t, "metric", defaults["units"])
	assert.Equal(t, "light", defaults["theme"])

	rec = env.do(t, http.MethodPut, "/v1/settings", map[string]any{
		"units":          "imperial",
		"theme":          "dark",
		"firstVisitDone": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/settings", nil)
	updated := decode[map[string]any](t, rec)
	assert.Equal(t, "imperial", updated["units"])
	assert.Equal(t, "dark", updated["theme"])
}

func TestRouter_Settings_InvalidUnits(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/v1/settings", map[string]any{
		"units": "kelvin",
		"theme": "light",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_LastViewed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/last-viewed", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/v1/last-viewed", map[string]any{
		"name":      "London",
		"country":   "United Kingdom",
		"latitude":  51.5074,
		"longitude": -0.1278,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/last-viewed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "51.5074_-0.1278", body["id"])
}

func TestRouter_DebugFault(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/debug/fault", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["active"])

	rec = env.do(t, http.MethodPut, "/v1/debug/fault", map[string]any{"kind": "SERVER_ERROR"})
	require.Equal(t, http.StatusOK, rec.Code)

	// The forced error surfaces on weather loads, repeatedly, until
	// cleared.
	for i := 0; i < 2; i++ {
		rec = env.do(t, http.MethodGet, "/v1/weather?lat=51.5074&lon=-0.1278", nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		body := decode[map[string]any](t, rec)
		assert.Equal(t, "SERVER_ERROR", body["errorKind"])
	}

	rec = env.do(t, http.MethodDelete, "/v1/debug/fault", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/weather?lat=51.5074&lon=-0.1278", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_DebugFault_UnknownKind(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/v1/debug/fault", map[string]any{"kind": "BOGUS"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Reset(t *testing.T) {
	env := newTestEnv(t)

	// Seed state through the API.
	rec := env.do(t, http.MethodPost, "/v1/favorites", map[string]any{
		"name":      "London",
		"latitude":  51.5074,
		"longitude": -0.1278,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/weather?lat=51.5074&lon=-0.1278", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/reset", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	favorites, err := env.prefs.Favorites(context.Background())
	require.NoError(t, err)
	assert.Empty(t, favorites)

	history, err := env.prefs.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRouter_RequireJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/favorites", bytes.NewReader([]byte("name=x")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_ContentTypeJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/ops/health", nil)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestRouter_RequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/ops/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
