package driving

import (
	"context"
	"time"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// ListOptions narrows document listings for presentation surfaces.
type ListOptions struct {
	// ProjectID restricts to one project. Empty means all projects.
	ProjectID string

	// Status restricts to one lifecycle state. Empty means all.
	Status domain.DocumentStatus

	// Type restricts to one category. Empty means all.
	Type domain.DocumentType
}

// DocumentService manages documents outside the ingestion pipeline.
type DocumentService interface {
	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns documents matching the options, newest first.
	List(ctx context.Context, opts ListOptions) ([]domain.Document, error)

	// GetContent returns the document's text reconstructed from its
	// chunks in index order, overlap trimmed where detectable.
	GetContent(ctx context.Context, documentID string) (string, error)

	// GetChunks returns the document's chunks ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetDetails returns display metadata for a document.
	GetDetails(ctx context.Context, documentID string) (*DocumentDetails, error)

	// Delete removes the document, its chunks (cascade) and its blob.
	Delete(ctx context.Context, documentID string) error

	// Stats summarises the index.
	Stats(ctx context.Context) (*domain.IndexStats, error)
}

// DocumentDetails provides a standardised view of document metadata.
type DocumentDetails struct {
	// ID is the unique document identifier.
	ID string

	// ProjectID is the owning project.
	ProjectID string

	// Title is the document title.
	Title string

	// Type is the declared category.
	Type domain.DocumentType

	// Status is the lifecycle state.
	Status domain.DocumentStatus

	// MIMEType is the declared content type.
	MIMEType string

	// SizeBytes is the raw byte size.
	SizeBytes int64

	// PageCount is the page count, when finalised.
	PageCount int

	// ChunkCount is the number of chunks.
	ChunkCount int

	// Sections lists the distinct section references found in chunks,
	// in document order.
	Sections []string

	// ErrorDetail holds the failure summary when Status is ERROR.
	ErrorDetail string

	// CreatedAt is when the document record was created.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}
