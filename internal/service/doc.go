// Package service contains the task controllers: the explanation task
// families backed by the question store, the document-to-MCQ pipeline,
// and the synchronous catalog reads. Services register task records,
// submit bodies to the executor, and own cooperative cancellation for
// their family group.
package service
