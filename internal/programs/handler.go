package programs

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/handlers"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/routes"
)

// Handler provides HTTP endpoints for program operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "programs"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for program endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/programs",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{uuid}", Handler: h.Find},
			{Method: "GET", Pattern: "/{uuid}/logo", Handler: h.Logo},
			{Method: "POST", Pattern: "/{uuid}/logo", Handler: h.UploadLogo},
		},
	}
}

// Find returns a single program by its public UUID.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUUID(w, r)
	if !ok {
		return
	}

	p, err := h.sys.FindByUUID(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// Logo streams the program logo verbatim with its stored content type.
func (h *Handler) Logo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUUID(w, r)
	if !ok {
		return
	}

	result, err := h.sys.Logo(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", result.ContentType)
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	io.Copy(w, result.Body)
}

// UploadLogo replaces the program logo from a multipart form upload.
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUUID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrInvalidLogo)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidLogo)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidLogo)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	p, err := h.sys.UploadLogo(r.Context(), id, data, contentType)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) parseUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("uuid"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}
