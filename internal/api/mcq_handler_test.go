package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/boardgen-api/internal/task"
)

type mockMcqService struct {
	startFn  func(ctx context.Context, document []byte) (uuid.UUID, error)
	statusFn func(id uuid.UUID) (task.Record, bool)
	cancelFn func(ctx context.Context, id uuid.UUID) (task.Record, bool)
}

func (m *mockMcqService) StartFromDocument(ctx context.Context, document []byte) (uuid.UUID, error) {
	return m.startFn(ctx, document)
}

func (m *mockMcqService) Status(id uuid.UUID) (task.Record, bool) {
	return m.statusFn(id)
}

func (m *mockMcqService) Cancel(ctx context.Context, id uuid.UUID) (task.Record, bool) {
	return m.cancelFn(ctx, id)
}

func mcqRouter(svc McqTaskService) http.Handler {
	h := NewMcqHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Post("/api/mcq/upload", h.Upload)
	r.Get("/api/mcq/tasks/{id}", h.GetTask)
	r.Post("/api/mcq/tasks/{id}/cancel", h.CancelTask)
	return r
}

func multipartPDF(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadAccepted(t *testing.T) {
	taskID := uuid.New()
	svc := &mockMcqService{
		startFn: func(ctx context.Context, document []byte) (uuid.UUID, error) {
			assert.Equal(t, []byte("%PDF-1.4 content"), document)
			return taskID, nil
		},
	}

	body, contentType := multipartPDF(t, "file", "notes.pdf", []byte("%PDF-1.4 content"))
	req := httptest.NewRequest(http.MethodPost, "/api/mcq/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mcqRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp TaskStartedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, taskID.String(), resp.TaskID)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	svc := &mockMcqService{
		startFn: func(ctx context.Context, document []byte) (uuid.UUID, error) {
			t.Error("service must not be called for non-PDF uploads")
			return uuid.Nil, nil
		},
	}

	body, contentType := multipartPDF(t, "file", "notes.docx", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/api/mcq/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mcqRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadMissingFileField(t *testing.T) {
	svc := &mockMcqService{
		startFn: func(ctx context.Context, document []byte) (uuid.UUID, error) {
			t.Error("service must not be called without a file")
			return uuid.Nil, nil
		},
	}

	body, contentType := multipartPDF(t, "document", "notes.pdf", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/api/mcq/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mcqRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMcqGetTaskWithArtifact(t *testing.T) {
	taskID := uuid.New()
	svc := &mockMcqService{
		statusFn: func(id uuid.UUID) (task.Record, bool) {
			return task.Record{
				ID:          taskID,
				Status:      task.StatusCompleted,
				Progress:    4,
				ArtifactURL: "https://storage.example.com/artifacts/wb.xlsx",
			}, true
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/mcq/tasks/"+taskID.String(), nil)
	rec := httptest.NewRecorder()
	mcqRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got task.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "https://storage.example.com/artifacts/wb.xlsx", got.ArtifactURL)
}
