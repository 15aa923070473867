// Package events defines task lifecycle events and a lightweight
// in-memory emitter used to decouple the services from whatever wants
// to observe terminal task transitions.
package events
