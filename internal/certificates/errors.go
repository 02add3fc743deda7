package certificates

import (
	"errors"
	"net/http"
)

// Domain errors for certificate operations.
var (
	ErrNotFound      = errors.New("certificate not found")
	ErrDuplicate     = errors.New("certificate already exists")
	ErrNotRendered   = errors.New("certificate has no rendered artifact")
	ErrStateConflict = errors.New("certificate state transition conflict")
	ErrInvalidID     = errors.New("invalid certificate identifier")
)

// MapHTTPStatus maps certificate domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotRendered):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrStateConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
