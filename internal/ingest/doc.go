// Package ingest handles document ingestion for the question generation
// pipeline: PDF text extraction, sliding-window chunking, and title
// extraction heuristics.
package ingest
