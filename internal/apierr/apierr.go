// Package apierr defines the closed error taxonomy for upstream API
// failures. Every failure that crosses an adapter boundary is an *Error so
// callers can branch on Kind and the Retryable flag alone.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind identifies the failure class.
type Kind string

const (
	KindNetworkError      Kind = "NETWORK_ERROR"
	KindLocationNotFound  Kind = "LOCATION_NOT_FOUND"
	KindGeolocationDenied Kind = "GEOLOCATION_DENIED"
	KindRateLimited       Kind = "RATE_LIMITED"
	KindServerError       Kind = "SERVER_ERROR"
	KindInvalidData       Kind = "INVALID_DATA"
	KindUnknownError      Kind = "UNKNOWN_ERROR"
)

// Kinds lists every valid kind, for request validation.
func Kinds() []Kind {
	return []Kind{
		KindNetworkError,
		KindLocationNotFound,
		KindGeolocationDenied,
		KindRateLimited,
		KindServerError,
		KindInvalidData,
		KindUnknownError,
	}
}

// ParseKind returns the Kind for s, or false if s is not a valid kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// defaultMessages holds the user-facing default message per kind.
var defaultMessages = map[Kind]string{
	KindNetworkError:      "network error, please check your connection",
	KindLocationNotFound:  "location not found",
	KindGeolocationDenied: "location access denied",
	KindRateLimited:       "too many requests, please slow down",
	KindServerError:       "weather service is temporarily unavailable",
	KindInvalidData:       "received invalid data from the weather service",
	KindUnknownError:      "an unexpected error occurred",
}

// Error is a classified upstream failure.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Retryable  bool
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsRetryable reports whether err is an *Error flagged retryable.
func IsRetryable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Retryable
}

// KindOf returns the kind of err, or KindUnknownError if err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknownError
}

// retryable is the fixed retryable set. It is a function of Kind, never
// per-call configuration.
func retryable(kind Kind) bool {
	switch kind {
	case KindNetworkError, KindRateLimited, KindServerError:
		return true
	default:
		return false
	}
}

// New constructs an Error of the given kind with its default message.
func New(kind Kind) *Error {
	return &Error{
		Kind:      kind,
		Message:   defaultMessages[kind],
		Retryable: retryable(kind),
	}
}

// Newf constructs an Error of the given kind with a custom message.
func Newf(kind Kind, format string, args ...any) *Error {
	e := New(kind)
	e.Message = fmt.Sprintf(format, args...)
	return e
}

// FromStatus classifies a non-2xx HTTP status code.
func FromStatus(status int) *Error {
	var kind Kind
	switch status {
	case http.StatusBadRequest:
		kind = KindInvalidData
	case http.StatusNotFound:
		kind = KindLocationNotFound
	case http.StatusTooManyRequests:
		kind = KindRateLimited
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		kind = KindServerError
	default:
		kind = KindUnknownError
	}

	e := New(kind)
	e.StatusCode = status
	return e
}

// FromTransport classifies a transport-level failure: timeouts and aborts
// become NETWORK_ERROR with a message that names the timeout, and any other
// connection failure (DNS, refused, offline) is NETWORK_ERROR as well.
func FromTransport(err error) *Error {
	if isTimeout(err) {
		return Newf(KindNetworkError, "request timed out")
	}
	return Newf(KindNetworkError, "network error: %v", err)
}

// FromParse classifies a malformed or absent JSON body on an otherwise
// successful response. This is deliberately not INVALID_DATA, which is
// reserved for semantically incomplete payloads detected after parsing.
func FromParse(err error) *Error {
	return Newf(KindUnknownError, "parsing response: %v", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
