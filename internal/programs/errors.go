package programs

import (
	"errors"
	"net/http"
)

// Domain errors for program operations.
var (
	ErrNotFound    = errors.New("program not found")
	ErrDuplicate   = errors.New("program already exists")
	ErrNoLogo      = errors.New("program has no logo")
	ErrInvalidLogo = errors.New("invalid logo upload")
)

// MapHTTPStatus maps program domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoLogo):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidLogo):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
