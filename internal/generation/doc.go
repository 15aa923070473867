// Package generation defines the interfaces and sentinel errors for the
// content generation gateway. The application core depends only on these
// interfaces; the Gemini-backed implementation lives in
// internal/platform/gemini.
package generation
