package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/api/response"
	"github.com/skycast/skycast/internal/apierr"
	"github.com/skycast/skycast/internal/faultinject"
	"github.com/skycast/skycast/internal/prefs"
	"github.com/skycast/skycast/internal/weather"
)

// DebugHandler handles the fault injector and the full data reset.
type DebugHandler struct {
	injector *faultinject.Injector
	prefs    *prefs.Service
	cache    *weather.Cache
	logger   zerolog.Logger
}

// NewDebugHandler creates a DebugHandler.
func NewDebugHandler(injector *faultinject.Injector, ps *prefs.Service, cache *weather.Cache, logger zerolog.Logger) *DebugHandler {
	return &DebugHandler{injector: injector, prefs: ps, cache: cache, logger: logger}
}

// faultResponse reports the injector slot.
type faultResponse struct {
	Kind   string `json:"kind,omitempty"`
	Active bool   `json:"active"`
}

// GetFault handles GET /v1/debug/fault.
func (h *DebugHandler) GetFault(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.injector.Current()
	response.JSON(w, r, http.StatusOK, faultResponse{Kind: string(kind), Active: ok})
}

// faultRequest selects the error kind to force.
type faultRequest struct {
	Kind string `json:"kind"`
}

// SetFault handles PUT /v1/debug/fault. The forced error persists across
// calls until explicitly cleared.
func (h *DebugHandler) SetFault(w http.ResponseWriter, r *http.Request) {
	var input faultRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	kind, ok := apierr.ParseKind(input.Kind)
	if !ok {
		response.BadRequest(w, r, "unknown error kind", nil)
		return
	}

	h.injector.Set(kind)
	h.logger.Info().Str("kind", input.Kind).Msg("simulated error enabled")
	response.JSON(w, r, http.StatusOK, faultResponse{Kind: input.Kind, Active: true})
}

// ClearFault handles DELETE /v1/debug/fault.
func (h *DebugHandler) ClearFault(w http.ResponseWriter, r *http.Request) {
	h.injector.Clear()
	h.logger.Info().Msg("simulated error cleared")
	response.JSON(w, r, http.StatusOK, faultResponse{Active: false})
}

// Reset handles POST /v1/reset — the full application data reset: all
// persisted preferences and both cache keyspaces.
func (h *DebugHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.prefs.Reset(r.Context()); err != nil {
		response.InternalError(w, r, "resetting preferences failed")
		return
	}
	h.cache.Clear()
	h.logger.Info().Msg("application data reset")
	response.JSON(w, r, http.StatusNoContent, nil)
}
