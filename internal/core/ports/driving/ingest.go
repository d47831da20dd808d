package driving

import (
	"context"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// IngestionOrchestrator drives documents through the ingestion pipeline.
type IngestionOrchestrator interface {
	// Register stores the raw bytes and creates the document record in
	// UPLOADING. It does not start processing.
	Register(ctx context.Context, req RegisterRequest) (*domain.Document, error)

	// Enqueue flips the document to PROCESSING and starts its pipeline.
	// Processing is asynchronous; poll Status for progress. Returns
	// ErrAlreadyProcessing when a pipeline is already in flight for
	// the document.
	Enqueue(ctx context.Context, documentID string) error

	// Reprocess resets a document's pipeline and enqueues it again.
	// Existing chunks are replaced during the Persisting step.
	Reprocess(ctx context.Context, documentID string) error

	// Status reports a document's pipeline progress.
	Status(ctx context.Context, documentID string) (*IngestionStatus, error)

	// ResumePending re-enqueues documents whose pipelines were
	// interrupted (non-terminal job state, nothing in flight). Returns
	// how many were requeued.
	ResumePending(ctx context.Context) (int, error)

	// InFlight returns the number of pipelines currently running.
	InFlight() int

	// Shutdown waits for in-flight pipelines to finish or the context
	// to expire.
	Shutdown(ctx context.Context) error
}

// RegisterRequest describes a document entering the system.
type RegisterRequest struct {
	// ProjectID is the owning project.
	ProjectID string

	// Title is the human-readable title.
	Title string

	// Type is the declared document category.
	Type domain.DocumentType

	// MIMEType is the declared content type.
	MIMEType string

	// Data is the raw file content.
	Data []byte
}

// IngestionStatus reports pipeline progress for one document.
type IngestionStatus struct {
	// DocumentID identifies the document.
	DocumentID string

	// Status is the externally visible lifecycle state.
	Status domain.DocumentStatus

	// State is the internal pipeline step.
	State domain.IngestionState

	// Attempts counts pipeline retries so far.
	Attempts int

	// LastError holds the most recent step failure, if any.
	LastError string
}
