package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/boardgen-api/internal/task"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockExplainService implements ExplainTaskService.
type mockExplainService struct {
	startTopicFn   func(ctx context.Context, categoryID int64, subject, topic string) (uuid.UUID, error)
	startAllFn     func(ctx context.Context) (uuid.UUID, error)
	startSubjectFn func(ctx context.Context, categoryID int64, subject string) (uuid.UUID, error)
	statusFn       func(id uuid.UUID) (task.Record, bool)
	cancelFn       func(ctx context.Context, id uuid.UUID) (task.Record, bool)
}

func (m *mockExplainService) StartTopicTask(ctx context.Context, categoryID int64, subject, topic string) (uuid.UUID, error) {
	return m.startTopicFn(ctx, categoryID, subject, topic)
}

func (m *mockExplainService) StartAllMissingTask(ctx context.Context) (uuid.UUID, error) {
	return m.startAllFn(ctx)
}

func (m *mockExplainService) StartSubjectTask(ctx context.Context, categoryID int64, subject string) (uuid.UUID, error) {
	return m.startSubjectFn(ctx, categoryID, subject)
}

func (m *mockExplainService) Status(id uuid.UUID) (task.Record, bool) {
	return m.statusFn(id)
}

func (m *mockExplainService) Cancel(ctx context.Context, id uuid.UUID) (task.Record, bool) {
	return m.cancelFn(ctx, id)
}

func explainRouter(svc ExplainTaskService) http.Handler {
	h := NewExplainHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Post("/api/explain/topic", h.StartTopic)
	r.Post("/api/explain/all", h.StartAll)
	r.Post("/api/explain/subject", h.StartSubject)
	r.Get("/api/explain/tasks/{id}", h.GetTask)
	r.Post("/api/explain/tasks/{id}/cancel", h.CancelTask)
	return r
}

func TestStartTopicAccepted(t *testing.T) {
	taskID := uuid.New()
	svc := &mockExplainService{
		startTopicFn: func(ctx context.Context, categoryID int64, subject, topic string) (uuid.UUID, error) {
			assert.Equal(t, int64(2), categoryID)
			assert.Equal(t, "Medicine", subject)
			assert.Equal(t, "Cardiology", topic)
			return taskID, nil
		},
	}

	body := bytes.NewBufferString(`{"category_id": 2, "subject": "Medicine", "topic": "Cardiology"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/explain/topic", body)
	rec := httptest.NewRecorder()
	explainRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp TaskStartedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "started", resp.Status)
	assert.Equal(t, taskID.String(), resp.TaskID)
}

func TestStartTopicValidation(t *testing.T) {
	svc := &mockExplainService{
		startTopicFn: func(ctx context.Context, categoryID int64, subject, topic string) (uuid.UUID, error) {
			t.Error("service must not be called for invalid requests")
			return uuid.Nil, nil
		},
	}

	cases := map[string]string{
		"missing topic":    `{"category_id": 2, "subject": "Medicine"}`,
		"missing subject":  `{"category_id": 2, "topic": "Cardiology"}`,
		"zero category id": `{"category_id": 0, "subject": "Medicine", "topic": "Cardiology"}`,
		"malformed json":   `{`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/explain/topic", bytes.NewBufferString(body))
			rec := httptest.NewRecorder()
			explainRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestStartAllAccepted(t *testing.T) {
	taskID := uuid.New()
	svc := &mockExplainService{
		startAllFn: func(ctx context.Context) (uuid.UUID, error) {
			return taskID, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/explain/all", nil)
	rec := httptest.NewRecorder()
	explainRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestGetTaskReturnsSnapshot(t *testing.T) {
	taskID := uuid.New()
	svc := &mockExplainService{
		statusFn: func(id uuid.UUID) (task.Record, bool) {
			require.Equal(t, taskID, id)
			return task.Record{
				ID:       taskID,
				Status:   task.StatusProcessing,
				Progress: 2,
				Results: []task.ItemResult{
					{Index: 1, QuestionID: 10, Explanation: "a"},
					{Index: 2, QuestionID: 20, Error: "failed"},
				},
			}, true
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/explain/tasks/"+taskID.String(), nil)
	rec := httptest.NewRecorder()
	explainRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got task.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, task.StatusProcessing, got.Status)
	assert.Equal(t, 2, got.Progress)
	assert.Len(t, got.Results, 2)
}

func TestGetTaskNotFound(t *testing.T) {
	svc := &mockExplainService{
		statusFn: func(id uuid.UUID) (task.Record, bool) {
			return task.Record{ID: id, Status: task.StatusNotFound}, false
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/explain/tasks/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	explainRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var got task.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, task.StatusNotFound, got.Status)
}

func TestGetTaskInvalidID(t *testing.T) {
	svc := &mockExplainService{
		statusFn: func(id uuid.UUID) (task.Record, bool) {
			t.Error("service must not be called for an invalid ID")
			return task.Record{}, false
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/explain/tasks/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	explainRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelTask(t *testing.T) {
	taskID := uuid.New()
	svc := &mockExplainService{
		cancelFn: func(ctx context.Context, id uuid.UUID) (task.Record, bool) {
			return task.Record{
				ID:     id,
				Status: task.StatusCancelled,
				Error:  "Task cancelled by user.",
			}, true
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/explain/tasks/"+taskID.String()+"/cancel", nil)
	rec := httptest.NewRecorder()
	explainRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got task.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, task.StatusCancelled, got.Status)
	assert.Equal(t, "Task cancelled by user.", got.Error)
}
