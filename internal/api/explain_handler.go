package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/boardgen-api/internal/api/shared"
	"github.com/phrazzld/boardgen-api/internal/task"
)

// TaskPoller is the poll/cancel surface every task family exposes.
type TaskPoller interface {
	Status(id uuid.UUID) (task.Record, bool)
	Cancel(ctx context.Context, id uuid.UUID) (task.Record, bool)
}

// ExplainTaskService is the slice of the explanation service the handler
// depends on.
type ExplainTaskService interface {
	TaskPoller
	StartTopicTask(ctx context.Context, categoryID int64, subject, topic string) (uuid.UUID, error)
	StartAllMissingTask(ctx context.Context) (uuid.UUID, error)
	StartSubjectTask(ctx context.Context, categoryID int64, subject string) (uuid.UUID, error)
}

// ExplainHandler serves the explanation task family endpoints.
type ExplainHandler struct {
	service ExplainTaskService
	logger  *slog.Logger
}

// NewExplainHandler creates a new ExplainHandler.
func NewExplainHandler(service ExplainTaskService, logger *slog.Logger) *ExplainHandler {
	return &ExplainHandler{
		service: service,
		logger:  logger.With(slog.String("component", "explain_handler")),
	}
}

// StartTopic handles POST /api/explain/topic.
func (h *ExplainHandler) StartTopic(w http.ResponseWriter, r *http.Request) {
	var req TopicExplainRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	id, err := h.service.StartTopicTask(r.Context(), req.CategoryID, req.Subject, req.Topic)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to start task", err)
		return
	}

	respondTaskStarted(w, r, id)
}

// StartAll handles POST /api/explain/all.
func (h *ExplainHandler) StartAll(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.StartAllMissingTask(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to start task", err)
		return
	}

	respondTaskStarted(w, r, id)
}

// StartSubject handles POST /api/explain/subject.
func (h *ExplainHandler) StartSubject(w http.ResponseWriter, r *http.Request) {
	var req SubjectExplainRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	id, err := h.service.StartSubjectTask(r.Context(), req.CategoryID, req.Subject)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to start task", err)
		return
	}

	respondTaskStarted(w, r, id)
}

// GetTask handles GET /api/explain/tasks/{id}.
func (h *ExplainHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	respondTaskStatus(w, r, h.service)
}

// CancelTask handles POST /api/explain/tasks/{id}/cancel.
func (h *ExplainHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	respondTaskCancel(w, r, h.service)
}

func respondTaskStarted(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskStartedResponse{
		Status: string(task.StatusStarted),
		TaskID: id.String(),
	})
}

// respondTaskStatus serves the poll operation shared by both task
// families. Unknown identifiers get a 404 carrying a not_found record so
// pollers can distinguish "never existed" from an empty record.
func respondTaskStatus(w http.ResponseWriter, r *http.Request, poller TaskPoller) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	rec, ok := poller.Status(id)
	if !ok {
		shared.RespondWithJSON(w, r, http.StatusNotFound, rec)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, rec)
}

// respondTaskCancel serves the idempotent cancel operation shared by
// both task families.
func respondTaskCancel(w http.ResponseWriter, r *http.Request, poller TaskPoller) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	rec, ok := poller.Cancel(r.Context(), id)
	if !ok {
		shared.RespondWithJSON(w, r, http.StatusNotFound, rec)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, rec)
}
