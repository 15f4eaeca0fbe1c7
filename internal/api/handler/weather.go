package handler

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/api/response"
	"github.com/skycast/skycast/internal/location"
	"github.com/skycast/skycast/internal/prefs"
	"github.com/skycast/skycast/internal/weather"
)

// WeatherHandler handles forecast and historical endpoints.
type WeatherHandler struct {
	weather *weather.Service
	prefs   *prefs.Service
	logger  zerolog.Logger
}

// NewWeatherHandler creates a WeatherHandler.
func NewWeatherHandler(ws *weather.Service, ps *prefs.Service, logger zerolog.Logger) *WeatherHandler {
	return &WeatherHandler{weather: ws, prefs: ps, logger: logger}
}

// forecastResponse pairs the resolved location with its weather payload.
type forecastResponse struct {
	Location location.Location `json:"location"`
	Weather  *weather.Data     `json:"weather"`
}

// GetForecast handles GET /v1/weather — a read-through forecast load.
// refresh=true skips the cache; the result still overwrites it. A
// successful load is recorded in browsing history and as last-viewed.
func (h *WeatherHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	lat, lon, ferrs := parseCoordinates(r)
	if ferrs != nil {
		response.BadRequest(w, r, "invalid coordinates", ferrs)
		return
	}

	q := r.URL.Query()
	loc := location.Location{
		ID:        location.ID(lat, lon),
		Name:      q.Get("name"),
		Country:   q.Get("country"),
		State:     q.Get("state"),
		Latitude:  lat,
		Longitude: lon,
	}
	if loc.Name != "" {
		loc.DisplayName = location.ComposeDisplayName(loc.Name, loc.State, loc.Country)
	} else {
		loc.DisplayName = location.FormatCoordinates(lat, lon)
	}

	opts := weather.LoadOptions{
		ForceRefresh: q.Get("refresh") == "true",
		Timezone:     q.Get("timezone"),
	}

	data, err := h.weather.Load(r.Context(), loc, opts)
	if err != nil {
		response.APIError(w, r, err)
		return
	}

	// History and last-viewed are conveniences; their failure must not
	// fail the load.
	if err := h.prefs.RecordVisit(r.Context(), loc, data.Summarize()); err != nil {
		h.logger.Warn().Err(err).Str("location_id", loc.ID).Msg("recording visit failed")
	}
	if err := h.prefs.SetLastViewed(r.Context(), loc); err != nil {
		h.logger.Warn().Err(err).Str("location_id", loc.ID).Msg("saving last-viewed failed")
	}

	response.JSON(w, r, http.StatusOK, forecastResponse{Location: loc, Weather: data})
}

// historicalResponse wraps the archived daily series.
type historicalResponse struct {
	LocationID string                  `json:"locationId"`
	Days       []weather.HistoricalDay `json:"days"`
}

// GetHistorical handles GET /v1/weather/historical — archived daily
// aggregates ending yesterday.
func (h *WeatherHandler) GetHistorical(w http.ResponseWriter, r *http.Request) {
	lat, lon, ferrs := parseCoordinates(r)
	if ferrs != nil {
		response.BadRequest(w, r, "invalid coordinates", ferrs)
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 92 {
			response.BadRequest(w, r, "days must be an integer in [1, 92]", nil)
			return
		}
		days = parsed
	}

	loc := location.Location{
		ID:        location.ID(lat, lon),
		Latitude:  lat,
		Longitude: lon,
	}

	series, err := h.weather.LoadHistorical(r.Context(), loc, days)
	if err != nil {
		response.APIError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, historicalResponse{LocationID: loc.ID, Days: series})
}
