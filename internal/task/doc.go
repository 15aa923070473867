// Package task provides the in-memory task orchestration primitives:
// a Registry that owns task records and guarantees snapshot-consistent
// reads, and an Executor that runs task bodies on a fixed worker pool
// with cooperative cancellation.
package task
