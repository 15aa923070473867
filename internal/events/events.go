package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the explanation and MCQ services.
const (
	TypeTaskCompleted = "task.completed"
	TypeTaskCancelled = "task.cancelled"
	TypeTaskFailed    = "task.failed"
)

// TaskLifecycleEvent describes a task reaching a terminal state. It
// carries enough detail for handlers to act without a dependency on the
// task package itself.
type TaskLifecycleEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants above
	Type string `json:"type"`

	// TaskID identifies the task the event is about
	TaskID uuid.UUID `json:"task_id"`

	// Family names the task family, e.g. "explain.topic" or "mcq.upload"
	Family string `json:"family"`

	// Progress is the number of items the task had processed when it
	// reached its terminal state
	Progress int `json:"progress"`

	// Detail holds the terminal error text for failed tasks, empty otherwise
	Detail string `json:"detail,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskLifecycleEvent creates an event of the given type for a task.
func NewTaskLifecycleEvent(eventType, family string, taskID uuid.UUID, progress int, detail string) *TaskLifecycleEvent {
	return &TaskLifecycleEvent{
		ID:        uuid.New(),
		Type:      eventType,
		TaskID:    taskID,
		Family:    family,
		Progress:  progress,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskLifecycleEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskLifecycleEvent) error
}
