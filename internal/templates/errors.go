package templates

import (
	"errors"
	"net/http"
)

// Domain errors for template operations.
var (
	ErrNotFound       = errors.New("template not found")
	ErrVariantMissing = errors.New("no template variant for locale")
	ErrDuplicate      = errors.New("template variant already exists")
	ErrMissingField   = errors.New("payload missing template field")
	ErrMissingAsset   = errors.New("layout references unknown asset")
	ErrInvalidLayout  = errors.New("invalid template layout")
	ErrUnknownNode    = errors.New("unknown bound document node")
)

// MapHTTPStatus maps template domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrVariantMissing):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrMissingField),
		errors.Is(err, ErrMissingAsset),
		errors.Is(err, ErrInvalidLayout):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
