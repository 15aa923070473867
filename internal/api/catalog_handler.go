package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/boardgen-api/internal/api/shared"
	"github.com/phrazzld/boardgen-api/internal/domain"
)

// CatalogService is the slice of the catalog service the handler
// depends on.
type CatalogService interface {
	Subjects(ctx context.Context, categoryID int64) ([]domain.Subject, error)
	Topics(ctx context.Context, subjectID int64) ([]domain.Topic, error)
	MissingCountForTopic(ctx context.Context, categoryID int64, subject, topic string) (int, error)
	MissingCountForSubject(ctx context.Context, categoryID int64, subject string) (int, error)
	MissingCountAll(ctx context.Context) (int, error)
}

// CatalogHandler serves the synchronous read endpoints: subject/topic
// listings and missing-description counts.
type CatalogHandler struct {
	service CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With(slog.String("component", "catalog_handler")),
	}
}

// ListSubjects handles GET /api/subjects?category_id=N.
func (h *CatalogHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := queryInt64(w, r, "category_id")
	if !ok {
		return
	}

	subjects, err := h.service.Subjects(r.Context(), categoryID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, subjects)
}

// ListTopics handles GET /api/topics?subject_id=N.
func (h *CatalogHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := queryInt64(w, r, "subject_id")
	if !ok {
		return
	}

	topics, err := h.service.Topics(r.Context(), subjectID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, topics)
}

// CountTopic handles GET /api/explain/counts/topic?category_id=N&subject=S&topic=T.
func (h *CatalogHandler) CountTopic(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := queryInt64(w, r, "category_id")
	if !ok {
		return
	}
	subject := r.URL.Query().Get("subject")
	topic := r.URL.Query().Get("topic")
	if subject == "" || topic == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "subject and topic parameters are required")
		return
	}

	count, err := h.service.MissingCountForTopic(r.Context(), categoryID, subject, topic)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: count})
}

// CountSubject handles GET /api/explain/counts/subject?category_id=N&subject=S.
func (h *CatalogHandler) CountSubject(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := queryInt64(w, r, "category_id")
	if !ok {
		return
	}
	subject := r.URL.Query().Get("subject")
	if subject == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "subject parameter is required")
		return
	}

	count, err := h.service.MissingCountForSubject(r.Context(), categoryID, subject)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: count})
}

// CountAll handles GET /api/explain/counts/all.
func (h *CatalogHandler) CountAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.MissingCountAll(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CountResponse{Count: count})
}

// queryInt64 parses a required positive integer query parameter,
// responding with a 400 when absent or malformed.
func queryInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, name+" parameter is required")
		return 0, false
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return value, true
}
