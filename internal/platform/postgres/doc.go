// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in the internal/store package. It maps database
// errors to the store's sentinel errors so callers never depend on
// driver-specific error types.
package postgres
