package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/api/response"
	"github.com/skycast/skycast/internal/location"
	"github.com/skycast/skycast/internal/prefetch"
	"github.com/skycast/skycast/internal/prefs"
)

// FavoritesHandler handles favorites endpoints.
type FavoritesHandler struct {
	prefs    *prefs.Service
	prefetch *prefetch.Orchestrator
	logger   zerolog.Logger
}

// NewFavoritesHandler creates a FavoritesHandler.
func NewFavoritesHandler(ps *prefs.Service, po *prefetch.Orchestrator, logger zerolog.Logger) *FavoritesHandler {
	return &FavoritesHandler{prefs: ps, prefetch: po, logger: logger}
}

// favoritesResponse wraps the favorites list.
type favoritesResponse struct {
	Favorites []location.Location `json:"favorites"`
}

// favoriteRequest is the add-favorite payload.
type favoriteRequest struct {
	Name      string  `json:"name" validate:"required"`
	Country   string  `json:"country"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Timezone  string  `json:"timezone"`
}

// List handles GET /v1/favorites.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.prefs.Favorites(r.Context())
	if err != nil {
		response.InternalError(w, r, "loading favorites failed")
		return
	}
	response.JSON(w, r, http.StatusOK, favoritesResponse{Favorites: favorites})
}

// Create handles POST /v1/favorites. The addition returns immediately;
// the prefetch for the new favorite runs optimistically in the
// background and is never waited on.
func (h *FavoritesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, r, "invalid favorite", fieldErrors(err))
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

	if err := h.prefs.AddFavorite(r.Context(), loc); err != nil {
		switch {
		case errors.Is(err, prefs.ErrFavoriteExists):
			response.Conflict(w, r, "location is already a favorite")
		case errors.Is(err, prefs.ErrFavoritesFull):
			response.Conflict(w, r, "favorites limit reached")
		default:
			response.InternalError(w, r, "saving favorite failed")
		}
		return
	}

	// Detached from the request context: the warm must outlive it.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		h.prefetch.WarmOne(ctx, loc)
	}()

	response.JSON(w, r, http.StatusCreated, loc)
}

// Delete handles DELETE /v1/favorites/{locationId}.
func (h *FavoritesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	if locationID == "" {
		response.BadRequest(w, r, "locationId is required", nil)
		return
	}

	if err := h.prefs.RemoveFavorite(r.Context(), locationID); err != nil {
		if errors.Is(err, prefs.ErrFavoriteNotFound) {
			response.NotFound(w, r, "favorite not found")
			return
		}
		response.InternalError(w, r, "removing favorite failed")
		return
	}
	response.JSON(w, r, http.StatusNoContent, nil)
}
