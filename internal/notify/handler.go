package notify

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/certificates"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/handlers"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/routes"
)

// Handler provides HTTP endpoints for notification dispatch.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "notify"),
	}
}

// Routes returns the route group definition for notification endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/notifications",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{uuid}", Handler: h.Dispatch},
			{Method: "GET", Pattern: "/{uuid}", Handler: h.Status},
		},
	}
}

// Dispatch triggers notification delivery for a certificate.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUUID(w, r)
	if !ok {
		return
	}

	cert, err := h.sys.Dispatch(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, notificationView(cert))
}

// Status returns the certificate's notification delivery state.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUUID(w, r)
	if !ok {
		return
	}

	cert, err := h.sys.Status(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, notificationView(cert))
}

func (h *Handler) parseUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("uuid"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, certificates.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func notificationView(cert *certificates.Certificate) map[string]any {
	return map[string]any{
		"uuid":                  cert.UUID,
		"notification_state":    cert.NotificationState,
		"notification_attempts": cert.NotificationAttempts,
		"notified_at":           cert.NotifiedAt,
		"last_attempt_at":       cert.LastAttemptAt,
	}
}
