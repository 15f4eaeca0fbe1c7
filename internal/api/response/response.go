// Package response provides utilities for HTTP response handling.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/skycast/skycast/internal/api/middleware"
	"github.com/skycast/skycast/internal/api/models"
	"github.com/skycast/skycast/internal/apierr"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes a Problem+JSON error response.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errors []models.FieldError) {
	Error(w, r, models.NewBadRequest(middleware.GetRequestID(r.Context()), detail, errors))
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewNotFound(middleware.GetRequestID(r.Context()), detail))
}

// Conflict writes a 409 Conflict error response.
func Conflict(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewConflict(middleware.GetRequestID(r.Context()), detail))
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewInternalError(middleware.GetRequestID(r.Context()), detail))
}

// APIError maps a classified upstream failure to a problem response that
// carries the error kind and the retryable flag, so clients can offer the
// right affordance (retry vs. search manually) from the flag alone.
func APIError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := middleware.GetRequestID(r.Context())

	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		Error(w, r, models.NewInternalError(traceID, err.Error()))
		return
	}

	p := models.NewProblem(models.ProblemTypeUpstream, "Upstream error", statusFor(apiErr.Kind), traceID)
	p.Detail = apiErr.Message
	p.ErrorKind = string(apiErr.Kind)
	p.Retryable = apiErr.Retryable
	Error(w, r, p)
}

// statusFor picks the response status for an upstream error kind.
func statusFor(kind apierr.Kind) int {
	switch kind {
	case apierr.KindLocationNotFound:
		return http.StatusNotFound
	case apierr.KindRateLimited:
		return http.StatusTooManyRequests
	case apierr.KindGeolocationDenied:
		return http.StatusForbidden
	case apierr.KindNetworkError, apierr.KindServerError, apierr.KindInvalidData:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
