// Package store defines the persistence interfaces and sentinel errors
// used by the application core. Concrete implementations live under
// internal/platform (e.g. the PostgreSQL question store); the task
// controllers and HTTP handlers depend only on the interfaces here.
package store
