package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/boardgen-api/internal/api/shared"
)

// maxUploadBytes bounds the accepted document size (20 MiB).
const maxUploadBytes = 20 << 20

// McqTaskService is the slice of the MCQ service the handler depends on.
type McqTaskService interface {
	TaskPoller
	StartFromDocument(ctx context.Context, document []byte) (uuid.UUID, error)
}

// McqHandler serves the document-to-MCQ endpoints.
type McqHandler struct {
	service McqTaskService
	logger  *slog.Logger
}

// NewMcqHandler creates a new McqHandler.
func NewMcqHandler(service McqTaskService, logger *slog.Logger) *McqHandler {
	return &McqHandler{
		service: service,
		logger:  logger.With(slog.String("component", "mcq_handler")),
	}
}

// Upload handles POST /api/mcq/upload. The request is multipart form
// data with the PDF under the "file" field.
func (h *McqHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Only PDF files are supported")
		return
	}

	document, err := io.ReadAll(file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to read uploaded file", err)
		return
	}

	id, err := h.service.StartFromDocument(r.Context(), document)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to start task", err)
		return
	}

	h.logger.Info("document accepted",
		"task_id", id,
		"filename", header.Filename,
		"size_bytes", header.Size)
	respondTaskStarted(w, r, id)
}

// GetTask handles GET /api/mcq/tasks/{id}.
func (h *McqHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	respondTaskStatus(w, r, h.service)
}

// CancelTask handles POST /api/mcq/tasks/{id}/cancel.
func (h *McqHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	respondTaskCancel(w, r, h.service)
}
