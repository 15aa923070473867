// Package domain contains the core domain types shared across the
// application: stored exam questions and their answer options, and the
// question sets produced by the document generation pipeline. Domain types
// have no dependencies on storage, transport, or external services.
package domain
