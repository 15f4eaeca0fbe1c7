package handler

import (
	"encoding/json"
	"net/http"

	"github.com/skycast/skycast/internal/api/response"
	"github.com/skycast/skycast/internal/location"
	"github.com/skycast/skycast/internal/prefs"
)

// SettingsHandler handles settings and last-viewed endpoints.
type SettingsHandler struct {
	prefs *prefs.Service
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(ps *prefs.Service) *SettingsHandler {
	return &SettingsHandler{prefs: ps}
}

// GetSettings handles GET /v1/settings.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.prefs.Settings(r.Context())
	if err != nil {
		response.InternalError(w, r, "loading settings failed")
		return
	}
	response.JSON(w, r, http.StatusOK, settings)
}

// settingsRequest is the update-settings payload.
type settingsRequest struct {
	Units          string `json:"units" validate:"oneof=metric imperial"`
	Theme          string `json:"theme" validate:"oneof=light dark"`
	FirstVisitDone bool   `json:"firstVisitDone"`
}

// UpdateSettings handles PUT /v1/settings.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var input settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, r, "invalid settings", fieldErrors(err))
		return
	}

	settings := prefs.Settings{
		Units:          prefs.Units(input.Units),
		Theme:          prefs.Theme(input.Theme),
		FirstVisitDone: input.FirstVisitDone,
	}
	if err := h.prefs.UpdateSettings(r.Context(), settings); err != nil {
		response.InternalError(w, r, "saving settings failed")
		return
	}
	response.JSON(w, r, http.StatusOK, settings)
}

// GetLastViewed handles GET /v1/last-viewed.
func (h *SettingsHandler) GetLastViewed(w http.ResponseWriter, r *http.Request) {
	loc, err := h.prefs.LastViewed(r.Context())
	if err != nil {
		response.InternalError(w, r, "loading last-viewed location failed")
		return
	}
	if loc == nil {
		response.NotFound(w, r, "no last-viewed location")
		return
	}
	response.JSON(w, r, http.StatusOK, loc)
}

// lastViewedRequest is the set-last-viewed payload.
type lastViewedRequest struct {
	Name      string  `json:"name" validate:"required"`
	Country   string  `json:"country"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Timezone  string  `json:"timezone"`
}

// SetLastViewed handles PUT /v1/last-viewed.
func (h *SettingsHandler) SetLastViewed(w http.ResponseWriter, r *http.Request) {
	var input lastViewedRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, r, "invalid location", fieldErrors(err))
		return
	}

	loc := location.Location{
		ID:          location.ID(input.Latitude, input.Longitude),
		Name:        input.Name,
		Country:     input.Country,
		State:       input.State,
		DisplayName: location.ComposeDisplayName(input.Name, input.State, input.Country),
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Timezone:    input.Timezone,
	}
	if err := h.prefs.SetLastViewed(r.Context(), loc); err != nil {
		response.InternalError(w, r, "saving last-viewed location failed")
		return
	}
	response.JSON(w, r, http.StatusOK, loc)
}
