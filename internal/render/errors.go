package render

import (
	"errors"
	"net/http"
)

// Domain errors for rendering operations.
var (
	// ErrEngine indicates a transient layout, font, or asset resolution
	// failure. Retried with backoff before surfacing.
	ErrEngine = errors.New("render engine failure")
	// ErrInvalidBoundDocument indicates structurally invalid input. Not
	// retryable; points at an upstream binding or data bug.
	ErrInvalidBoundDocument = errors.New("invalid bound document")
	// ErrTimeout indicates a single render exceeded its hard deadline.
	ErrTimeout = errors.New("render timed out")
)

// MapHTTPStatus maps render errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidBoundDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
