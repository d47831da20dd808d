package driven

import (
	"context"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// IngestionJobStore persists per-document pipeline state so ingestion
// resumes from the failed step rather than restarting.
type IngestionJobStore interface {
	// SaveJob creates or updates the job for a document.
	SaveJob(ctx context.Context, job *domain.IngestionJob) error

	// GetJob retrieves the job for a document.
	// Returns ErrNotFound if the document has never been enqueued.
	GetJob(ctx context.Context, documentID string) (*domain.IngestionJob, error)

	// ListJobs returns jobs in the given states, oldest first.
	// No states means all jobs.
	ListJobs(ctx context.Context, states ...domain.IngestionState) ([]domain.IngestionJob, error)

	// DeleteJob removes the job for a document. Deleting a missing job
	// is not an error.
	DeleteJob(ctx context.Context, documentID string) error
}
