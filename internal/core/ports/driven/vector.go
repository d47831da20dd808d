package driven

import (
	"context"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// SearchFilter restricts a sub-search to a slice of the corpus. Both
// sub-searches additionally see only chunks of READY documents; that
// restriction is not expressible here because it is never optional.
type SearchFilter struct {
	// ProjectID restricts to one project. Empty means all projects.
	ProjectID string

	// Types restricts to the given document categories. Empty means all.
	Types []domain.DocumentType
}

// VectorIndex provides similarity search over chunk embeddings.
// Embeddings are written alongside chunks through
// DocumentStore.ReplaceChunks; this port is the query side.
type VectorIndex interface {
	// Search finds up to k chunks nearest to the query vector by cosine
	// similarity, discarding candidates below minSimilarity. Results are
	// ordered by similarity descending.
	Search(ctx context.Context, query []float32, filter SearchFilter, k int, minSimilarity float64) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
