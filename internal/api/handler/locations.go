package handler

import (
	"net/http"
	"strconv"

	"github.com/skycast/skycast/internal/api/models"
	"github.com/skycast/skycast/internal/api/response"
	"github.com/skycast/skycast/internal/geocoding"
	"github.com/skycast/skycast/internal/location"
)

// LocationHandler handles geocoding endpoints.
type LocationHandler struct {
	geo *geocoding.Service
}

// NewLocationHandler creates a LocationHandler.
func NewLocationHandler(geo *geocoding.Service) *LocationHandler {
	return &LocationHandler{geo: geo}
}

// searchResponse wraps search results.
type searchResponse struct {
	Results []location.SearchResult `json:"results"`
}

// Search handles GET /v1/locations/search?q= — free-text place search.
func (h *LocationHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.geo.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		response.APIError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, searchResponse{Results: results})
}

// Reverse handles GET /v1/locations/reverse?lat=&lon= — coordinate lookup.
func (h *LocationHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	lat, lon, ferrs := parseCoordinates(r)
	if ferrs != nil {
		response.BadRequest(w, r, "invalid coordinates", ferrs)
		return
	}

	loc, err := h.geo.ReverseGeocode(r.Context(), lat, lon)
	if err != nil {
		response.APIError(w, r, err)
		return
	}
	if loc == nil {
		response.NotFound(w, r, "no place at these coordinates")
		return
	}
	response.JSON(w, r, http.StatusOK, loc)
}

// parseCoordinates reads and range-checks lat/lon query parameters.
func parseCoordinates(r *http.Request) (lat, lon float64, ferrs []models.FieldError) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)

	if latErr != nil || lat < -90 || lat > 90 {
		ferrs = append(ferrs, models.FieldError{Field: "lat", Message: "must be a number in [-90, 90]"})
	}
	if lonErr != nil || lon < -180 || lon > 180 {
		ferrs = append(ferrs, models.FieldError{Field: "lon", Message: "must be a number in [-180, 180]"})
	}
	return lat, lon, ferrs
}
