package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type captureHandler struct {
	events []*TaskLifecycleEvent
	err    error
}

func (h *captureHandler) HandleEvent(_ context.Context, ev *TaskLifecycleEvent) error {
	h.events = append(h.events, ev)
	return h.err
}

func TestEmitEventDispatchesToAllHandlers(t *testing.T) {
	emitter := NewInMemoryEventEmitter(testLogger())
	h1 := &captureHandler{}
	h2 := &captureHandler{}
	emitter.RegisterHandler(h1)
	emitter.RegisterHandler(h2)

	ev := NewTaskLifecycleEvent(TypeTaskCompleted, "explain.topic", uuid.New(), 3, "")
	require.NoError(t, emitter.EmitEvent(context.Background(), ev))

	require.Len(t, h1.events, 1)
	require.Len(t, h2.events, 1)
	assert.Equal(t, ev.ID, h1.events[0].ID)
}

func TestEmitEventContinuesPastFailingHandler(t *testing.T) {
	emitter := NewInMemoryEventEmitter(testLogger())
	failing := &captureHandler{err: errors.New("handler broken")}
	healthy := &captureHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	ev := NewTaskLifecycleEvent(TypeTaskFailed, "mcq.upload", uuid.New(), 0, "boom")
	err := emitter.EmitEvent(context.Background(), ev)

	assert.EqualError(t, err, "handler broken")
	assert.Len(t, healthy.events, 1)
}

func TestEmitEventNoHandlers(t *testing.T) {
	emitter := NewInMemoryEventEmitter(testLogger())

	ev := NewTaskLifecycleEvent(TypeTaskCancelled, "explain.all", uuid.New(), 2, "Task cancelled by user.")
	assert.NoError(t, emitter.EmitEvent(context.Background(), ev))
}

func TestNewTaskLifecycleEventPopulatesFields(t *testing.T) {
	taskID := uuid.New()
	ev := NewTaskLifecycleEvent(TypeTaskCompleted, "explain.subject", taskID, 7, "")

	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, TypeTaskCompleted, ev.Type)
	assert.Equal(t, taskID, ev.TaskID)
	assert.Equal(t, "explain.subject", ev.Family)
	assert.Equal(t, 7, ev.Progress)
	assert.False(t, ev.CreatedAt.IsZero())
}

func TestLoggingHandlerNeverFails(t *testing.T) {
	h := NewLoggingHandler(testLogger())
	ev := NewTaskLifecycleEvent(TypeTaskFailed, "explain.topic", uuid.New(), 1, "gateway down")
	assert.NoError(t, h.HandleEvent(context.Background(), ev))
}
