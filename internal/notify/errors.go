package notify

import (
	"errors"
	"net/http"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/certificates"
)

// Domain errors for notification dispatch.
var (
	ErrNotRendered = errors.New("certificate is not rendered")
	ErrInFlight    = errors.New("notification dispatch already in progress")
	ErrTransport   = errors.New("notification transport failure")
)

// MapHTTPStatus maps notification domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, certificates.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotRendered):
		return http.StatusPreconditionFailed
	case errors.Is(err, ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, certificates.ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
