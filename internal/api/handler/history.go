package handler

import (
	"encoding/json"
	"net/http"

	"github.com/skycast/skycast/internal/api/response"
	"github.com/skycast/skycast/internal/location"
	"github.com/skycast/skycast/internal/prefs"
)

// HistoryHandler handles browsing-history and recent-search endpoints.
type HistoryHandler struct {
	prefs *prefs.Service
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(ps *prefs.Service) *HistoryHandler {
	return &HistoryHandler{prefs: ps}
}

type historyListResponse struct {
	History []prefs.HistoryEntry `json:"history"`
}

// ListHistory handles GET /v1/history.
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.prefs.History(r.Context())
	if err != nil {
		response.InternalError(w, r, "loading history failed")
		return
	}
	response.JSON(w, r, http.StatusOK, historyListResponse{History: entries})
}

type recentSearchesResponse struct {
	Searches []location.SearchResult `json:"searches"`
}

// ListRecentSearches handles GET /v1/searches/recent.
func (h *HistoryHandler) ListRecentSearches(w http.ResponseWriter, r *http.Request) {
	searches, err := h.prefs.RecentSearches(r.Context())
	if err != nil {
		response.InternalError(w, r, "loading recent searches failed")
		return
	}
	response.JSON(w, r, http.StatusOK, recentSearchesResponse{Searches: searches})
}

// recentSearchRequest records a search the user selected a result from.
type recentSearchRequest struct {
	ID        string  `json:"id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Country   string  `json:"country"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// AddRecentSearch handles POST /v1/searches/recent.
func (h *HistoryHandler) AddRecentSearch(w http.ResponseWriter, r *http.Request) {
	var input recentSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, r, "invalid search entry", fieldErrors(err))
		return
	}

	res := location.SearchResult{
		ID:          input.ID,
		Name:        input.Name,
		Country:     input.Country,
		State:       input.State,
		DisplayName: location.ComposeDisplayName(input.Name, input.State, input.Country),
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
	}

	if err := h.prefs.AddRecentSearch(r.Context(), res); err != nil {
		response.InternalError(w, r, "saving recent search failed")
		return
	}
	response.JSON(w, r, http.StatusCreated, res)
}
