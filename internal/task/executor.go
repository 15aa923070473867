package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Common errors returned by the Executor
var (
	ErrQueueFull      = errors.New("task queue is full")
	ErrExecutorClosed = errors.New("executor is not accepting submissions")
)

// BodyFunc is a task body. It receives the executor's context and the
// submission's handle, and is expected to observe the handle's cancel
// flag at its own checkpoints.
type BodyFunc func(ctx context.Context, h *Handle)

// Handle is the cancellable handle returned for each submission. The
// cancel flag is cooperative: setting it never preempts a running body,
// but a body that has not started yet is prevented from starting.
type Handle struct {
	id        uuid.UUID
	cancelled atomic.Bool
}

// ID returns the task identifier the handle was submitted under.
func (h *Handle) ID() uuid.UUID { return h.id }

// Cancel sets the cooperative cancel flag.
func (h *Handle) Cancel() { h.cancelled.Store(true) }

// Cancelled reports whether cancellation has been requested.
func (h *Handle) Cancelled() bool { return h.cancelled.Load() }

// submission pairs a body with its handle and panic callback.
type submission struct {
	handle  *Handle
	body    BodyFunc
	onPanic func(recovered any)
}

// ExecutorConfig holds configuration options for the executor.
type ExecutorConfig struct {
	// WorkerCount determines how many concurrent worker goroutines run
	// task bodies. If zero or negative, defaults to 1.
	WorkerCount int

	// QueueSize determines the buffer size of the submission queue.
	// If zero or negative, defaults to WorkerCount.
	QueueSize int
}

// DefaultExecutorConfig returns an ExecutorConfig with reasonable defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		WorkerCount: 10,
		QueueSize:   100,
	}
}

// Executor is a fixed-size worker pool that runs task bodies
// concurrently. Submission is non-blocking: if all workers are busy the
// submission queues, and if the queue is full the submitter gets an error
// rather than blocking. A fault inside one body never crashes the pool or
// other workers.
type Executor struct {
	subs        chan *submission
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	closed      atomic.Bool
	logger      *slog.Logger
}

// NewExecutor creates a new executor with the specified configuration.
// Call Start to launch the workers.
func NewExecutor(cfg ExecutorConfig, logger *slog.Logger) *Executor {
	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", cfg.WorkerCount,
			"default_count", 1)
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = workerCount
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Executor{
		subs:        make(chan *submission, queueSize),
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger.With(slog.String("component", "task_executor")),
	}
}

// Start launches the worker goroutines.
func (e *Executor) Start() {
	for i := 0; i < e.workerCount; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}
}

// Submit schedules body for execution on any available worker and returns
// its handle. onPanic, if non-nil, is invoked with the recovered value
// when the body panics; bodies are expected to convert ordinary failures
// to their task's terminal status themselves.
func (e *Executor) Submit(id uuid.UUID, body BodyFunc, onPanic func(recovered any)) (*Handle, error) {
	if e.closed.Load() {
		return nil, ErrExecutorClosed
	}

	sub := &submission{
		handle:  &Handle{id: id},
		body:    body,
		onPanic: onPanic,
	}

	select {
	case e.subs <- sub:
		e.logger.Debug("task submitted",
			"task_id", id,
			"queue_len", len(e.subs),
			"queue_cap", cap(e.subs))
		return sub.handle, nil
	default:
		return nil, fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(e.subs))
	}
}

// Stop shuts the executor down: no new submissions are accepted, queued
// bodies that have not started are abandoned, and Stop blocks until
// running bodies return.
func (e *Executor) Stop() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.cancel()
	e.wg.Wait()
	e.logger.Info("executor stopped")
}

// worker drains the submission queue and runs bodies.
func (e *Executor) worker(id int) {
	defer e.wg.Done()

	e.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Debug("stopping worker", "worker_id", id)
			return

		case sub := <-e.subs:
			e.run(sub, id)
		}
	}
}

// run executes a single submission, skipping bodies cancelled before
// start and containing panics.
func (e *Executor) run(sub *submission, workerID int) {
	if sub.handle.Cancelled() {
		e.logger.Debug("skipping cancelled submission",
			"task_id", sub.handle.ID(),
			"worker_id", workerID)
		return
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			e.logger.Error("task body panicked",
				"task_id", sub.handle.ID(),
				"worker_id", workerID,
				"panic", recovered)
			if sub.onPanic != nil {
				sub.onPanic(recovered)
			}
		}
	}()

	sub.body(e.ctx, sub.handle)
}
