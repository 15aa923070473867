package task

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorRunsSubmittedBodies(t *testing.T) {
	e := NewExecutor(ExecutorConfig{WorkerCount: 2, QueueSize: 10}, testLogger())
	e.Start()
	defer e.Stop()

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		_, err := e.Submit(uuid.New(), func(ctx context.Context, h *Handle) {
			defer wg.Done()
			ran.Add(1)
		}, nil)
		require.NoError(t, err)
	}

	wg.Wait()
	assert.Equal(t, int32(5), ran.Load())
}

func TestExecutorCancelBeforeStartSkipsBody(t *testing.T) {
	// One worker occupied by a blocking body, so the second submission
	// sits in the queue until released.
	e := NewExecutor(ExecutorConfig{WorkerCount: 1, QueueSize: 10}, testLogger())
	e.Start()
	defer e.Stop()

	release := make(chan struct{})
	blocked := make(chan struct{})
	_, err := e.Submit(uuid.New(), func(ctx context.Context, h *Handle) {
		close(blocked)
		<-release
	}, nil)
	require.NoError(t, err)
	<-blocked

	var ran atomic.Bool
	done := make(chan struct{})
	handle, err := e.Submit(uuid.New(), func(ctx context.Context, h *Handle) {
		ran.Store(true)
	}, nil)
	require.NoError(t, err)

	handle.Cancel()
	close(release)

	// Drain with a third body so we know the queue has been consumed.
	_, err = e.Submit(uuid.New(), func(ctx context.Context, h *Handle) {
		close(done)
	}, nil)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue was not drained")
	}
	assert.False(t, ran.Load(), "cancelled body must not run")
}

func TestExecutorPanicDoesNotCrashPool(t *testing.T) {
	e := NewExecutor(ExecutorConfig{WorkerCount: 1, QueueSize: 10}, testLogger())
	e.Start()
	defer e.Stop()

	panicked := make(chan any, 1)
	_, err := e.Submit(uuid.New(), func(ctx context.Context, h *Handle) {
		panic("boom")
	}, func(recovered any) {
		panicked <- recovered
	})
	require.NoError(t, err)

	select {
	case recovered := <-panicked:
		assert.Equal(t, "boom", recovered)
	case <-time.After(2 * time.Second):
		t.Fatal("onPanic was not invoked")
	}

	// The same worker must still process the next submission.
	done := make(chan struct{})
	_, err = e.Submit(uuid.New(), func(ctx context.Context, h *Handle) {
		close(done)
	}, nil)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}
}

func TestExecutorQueueFull(t *testing.T) {
	e := NewExecutor(ExecutorConfig{WorkerCount: 1, QueueSize: 1}, testLogger())
	e.Start()
	defer e.Stop()

	release := make(chan struct{})
	defer close(release)
	blocked := make(chan struct{})
	_, err := e.Submit(uuid.New(), func(ctx context.Context, h *Handle) {
		close(blocked)
		<-release
	}, nil)
	require.NoError(t, err)
	<-blocked

	// Fill the single queue slot, then overflow it.
	_, err = e.Submit(uuid.New(), func(ctx context.Context, h *Handle) {}, nil)
	require.NoError(t, err)

	_, err = e.Submit(uuid.New(), func(ctx context.Context, h *Handle) {}, nil)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestExecutorSubmitAfterStop(t *testing.T) {
	e := NewExecutor(ExecutorConfig{WorkerCount: 1, QueueSize: 1}, testLogger())
	e.Start()
	e.Stop()

	_, err := e.Submit(uuid.New(), func(ctx context.Context, h *Handle) {}, nil)
	assert.ErrorIs(t, err, ErrExecutorClosed)
}

func TestHandleCancelFlag(t *testing.T) {
	h := &Handle{id: uuid.New()}
	assert.False(t, h.Cancelled())

	h.Cancel()
	assert.True(t, h.Cancelled())

	// Idempotent.
	h.Cancel()
	assert.True(t, h.Cancelled())
}
