package batches

import (
	"errors"
	"net/http"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/locales"
)

// Domain errors for batch operations.
var (
	ErrNotFound    = errors.New("batch not found")
	ErrDuplicate   = errors.New("batch already exists")
	ErrEmpty       = errors.New("batch requires at least one certificate")
	ErrInvalidID   = errors.New("invalid batch identifier")
	ErrNoRecipient = errors.New("certificate requires recipient name and email")
)

// MapHTTPStatus maps batch domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrEmpty), errors.Is(err, ErrInvalidID), errors.Is(err, ErrNoRecipient):
		return http.StatusBadRequest
	case errors.Is(err, locales.ErrVariantMissing):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
