package task

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common errors returned by the Registry
var (
	// ErrTaskExists is returned when creating a task whose identifier is
	// already registered. Identifiers are generated at submission time, so
	// this indicates a programming error, not a recoverable condition.
	ErrTaskExists = errors.New("task already exists")
)

// Registry is the single source of truth for task progress, results, and
// errors. All mutation and reads serialize through one mutex, held only
// for the duration of the in-memory operation and never across a gateway
// call, so pollers are never blocked behind slow I/O.
//
// Each task family group owns its own Registry instance, so the families
// do not contend on each other's lock.
type Registry struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record
	logger  *slog.Logger
}

// NewRegistry creates an empty task registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		records: make(map[uuid.UUID]*Record),
		logger:  logger.With(slog.String("component", "task_registry")),
	}
}

// Create inserts a new record with the given initial status.
// Returns ErrTaskExists if the identifier is already registered.
func (r *Registry) Create(id uuid.UUID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; ok {
		return ErrTaskExists
	}

	now := time.Now().UTC()
	r.records[id] = &Record{
		ID:        id,
		Status:    status,
		Results:   make([]ItemResult, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.logger.Debug("task registered", "task_id", id, "status", status)
	return nil
}

// Get returns a read-only snapshot of the record and whether it exists.
// The snapshot's results slice is copied, so callers can never observe a
// record torn between progress and results, and mutating the snapshot
// does not affect the stored record.
func (r *Registry) Get(id uuid.UUID) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return Record{}, false
	}

	return r.snapshotLocked(rec), true
}

// AppendResult appends the item and advances progress in the same
// critical section, assigning the item's 1-based index from the current
// result count. Pollers therefore always observe progress == len(results)
// and a gapless index sequence. Appends to unknown or terminal tasks are
// dropped.
func (r *Registry) AppendResult(id uuid.UUID, item ItemResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		r.logger.Warn("append to unknown task dropped", "task_id", id)
		return
	}
	if rec.Status.Terminal() {
		r.logger.Warn("append to terminal task dropped",
			"task_id", id, "status", rec.Status)
		return
	}

	item.Index = len(rec.Results) + 1
	rec.Results = append(rec.Results, item)
	rec.Progress = len(rec.Results)
	rec.UpdatedAt = time.Now().UTC()
}

// SetStatus updates a non-terminal record's status. Transitions out of a
// terminal status are ignored.
func (r *Registry) SetStatus(id uuid.UUID, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.Status.Terminal() {
		return
	}

	rec.Status = status
	rec.UpdatedAt = time.Now().UTC()
}

// SetMessage records informational text on a non-terminal record.
func (r *Registry) SetMessage(id uuid.UUID, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.Status.Terminal() {
		return
	}

	rec.Message = msg
	rec.UpdatedAt = time.Now().UTC()
}

// SetArtifact records the exported artifact URL on a non-terminal record.
func (r *Registry) SetArtifact(id uuid.UUID, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.Status.Terminal() {
		return
	}

	rec.ArtifactURL = url
	rec.UpdatedAt = time.Now().UTC()
}

// SetTerminal transitions the record to a terminal status with an
// optional error message. The first terminal transition wins; later calls
// are ignored, which makes cancellation racing against natural completion
// safe. Returns the record snapshot after the call and whether the record
// exists.
func (r *Registry) SetTerminal(id uuid.UUID, status Status, errMsg string) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		r.logger.Warn("terminal transition for unknown task dropped", "task_id", id)
		return Record{}, false
	}

	if rec.Status.Terminal() {
		return r.snapshotLocked(rec), true
	}

	rec.Status = status
	rec.Error = errMsg
	rec.UpdatedAt = time.Now().UTC()

	r.logger.Debug("task reached terminal status",
		"task_id", id,
		"status", status,
		"progress", rec.Progress)
	return r.snapshotLocked(rec), true
}

// snapshotLocked copies a record. Callers must hold the mutex.
func (r *Registry) snapshotLocked(rec *Record) Record {
	snapshot := *rec
	snapshot.Results = make([]ItemResult, len(rec.Results))
	copy(snapshot.Results, rec.Results)
	return snapshot
}
