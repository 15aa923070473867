package task

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a task.
type Status string

// Possible task status values. A task is created queued or started, moves
// to processing while its body runs, and ends in exactly one of the
// terminal states. StatusNotFound is never stored; it is the sentinel
// pollers receive for an unknown task identifier.
const (
	StatusQueued     Status = "queued"
	StatusStarted    Status = "started"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
	StatusNotFound   Status = "not_found"
)

// Terminal reports whether the status is absorbing: once a task reaches a
// terminal status, no further mutation is permitted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// ItemResult is the outcome of processing one work item. Index is the
// 1-based position within the task's run, assigned by the registry at
// append time so the sequence is contiguous in processing order. A failed
// item carries Error instead of Explanation; it does not abort the batch.
type ItemResult struct {
	Index         int      `json:"index"`
	QuestionID    int64    `json:"question_id,omitempty"`
	Question      string   `json:"question,omitempty"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Record is the state of one submitted task. Records are created before
// the body starts, mutated only by the owning controller while it runs,
// and reach a terminal status exactly once. Records live for the process
// lifetime; there is no persistence across restarts.
type Record struct {
	ID       uuid.UUID    `json:"task_id"`
	Status   Status       `json:"status"`
	Progress int          `json:"progress"`
	Results  []ItemResult `json:"results"`

	// Error holds the failure reason on a failed or cancelled task. For
	// backward compatibility with existing clients it also carries the
	// informational soft-empty text on a completed task; Message is the
	// designated channel for that case.
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`

	// ArtifactURL is the download URL of the exported artifact, set by the
	// document pipeline on completion.
	ArtifactURL string `json:"artifact_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
