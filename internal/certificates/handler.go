package certificates

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/templates"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/handlers"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/routes"
)

// Handler provides HTTP endpoints for certificate operations. Internal
// routes address certificates by numeric id; public routes only ever see
// the certificate UUID.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "certificates"),
	}
}

// Routes returns the route group definition for certificate endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/certificates",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/preview", Handler: h.Preview},
			{Method: "GET", Pattern: "/public/{uuid}/preview", Handler: h.PublicPreview},
		},
	}
}

// Find returns a single certificate by its internal id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	cert, ok := h.findByID(w, r)
	if !ok {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, cert)
}

// Preview streams the PNG preview for a certificate by internal id.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	cert, ok := h.findByID(w, r)
	if !ok {
		return
	}

	h.servePreview(w, r, cert)
}

// PublicPreview streams the PNG preview for a certificate by public UUID.
// Hidden certificates are indistinguishable from missing ones.
func (h *Handler) PublicPreview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("uuid"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	cert, err := h.sys.FindByUUID(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if cert.Visibility != VisibilityPublic {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return
	}

	h.servePreview(w, r, cert)
}

func (h *Handler) findByID(w http.ResponseWriter, r *http.Request) (*Certificate, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return nil, false
	}

	cert, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}

	return cert, true
}

func (h *Handler) servePreview(w http.ResponseWriter, r *http.Request, cert *Certificate) {
	data, err := h.sys.Preview(r.Context(), cert)
	if err != nil {
		handlers.RespondError(w, h.logger, previewStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func previewStatus(err error) int {
	if status := MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return templates.MapHTTPStatus(err)
}
