package organisations

import (
	"errors"
	"net/http"
)

// Domain errors for organisation operations.
var (
	ErrNotFound    = errors.New("organisation not found")
	ErrDuplicate   = errors.New("organisation already exists")
	ErrNoLogo      = errors.New("organisation has no logo")
	ErrInvalidLogo = errors.New("invalid logo upload")
)

// MapHTTPStatus maps organisation domain errors to HTTP status codes.
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
