package driven

import (
	"context"
	"time"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	// ProjectID restricts to one project. Empty means all projects.
	ProjectID string

	// Statuses restricts to the given lifecycle states. Empty means all.
	Statuses []domain.DocumentStatus

	// Types restricts to the given categories. Empty means all.
	Types []domain.DocumentType

	// UpdatedBefore restricts to documents last touched before the
	// cutoff. Zero means no cutoff. Used by the stuck-document sweep.
	UpdatedBefore time.Time
}

// DocumentStore persists documents and chunks.
// Backed by SQLite.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns documents matching the filter, newest first.
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]domain.Document, error)

	// DeleteDocument removes a document and cascades to its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// SetStatus updates a document's lifecycle state. The error detail
	// is stored for ERROR and cleared otherwise.
	SetStatus(ctx context.Context, id string, status domain.DocumentStatus, errorDetail string) error

	// FinalizeDocument atomically sets the page count and flips the
	// document to READY. This is the publish barrier: chunks become
	// visible to retrieval only through this update.
	FinalizeDocument(ctx context.Context, id string, pageCount int) error

	// ReplaceChunks deletes the document's existing chunks and inserts
	// the given set in one transaction. Idempotent: re-running after a
	// crash never duplicates chunks.
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetChunks retrieves all chunks for a document, ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// Stats summarises the index for status surfaces.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// PruneOrphanChunks deletes chunks whose document row is gone and
	// returns how many were removed.
	PruneOrphanChunks(ctx context.Context) (int, error)
}
