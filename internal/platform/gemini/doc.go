// Package gemini provides Gemini-backed implementations of the content
// generation interfaces defined in internal/generation: long-form
// explanation generation, structured multiple-choice question generation,
// and the clinical relevance gate. All structured responses are validated
// at this boundary before they reach the application core.
package gemini
