package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a MIME type outside the supported
	// extraction set. Fatal for the document; never retried.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrEmptyExtraction indicates chunking produced zero chunks.
	// A content problem, not an infrastructure one; never retried.
	ErrEmptyExtraction = errors.New("empty extraction")

	// ErrAlreadyProcessing indicates an ingestion pipeline is already
	// running for the document.
	ErrAlreadyProcessing = errors.New("ingestion already in progress")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Vector search degrades to keyword-only without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrOCRUnavailable indicates the OCR service is not configured.
	// Scanned documents cannot be ingested without it.
	ErrOCRUnavailable = errors.New("OCR service unavailable")

	// ErrRateLimited indicates an API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
