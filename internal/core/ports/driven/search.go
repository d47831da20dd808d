package driven

import "context"

// SearchEngine provides the keyword sub-search: case-insensitive
// substring match of the literal query against chunk content.
type SearchEngine interface {
	// Search returns up to limit chunks whose content contains the query,
	// restricted by the filter. Substring matching has no distance
	// metric, so hits carry no score; the retriever assigns the
	// configured placeholder similarity.
	Search(ctx context.Context, query string, filter SearchFilter, limit int) ([]SearchHit, error)

	// Close releases resources.
	Close() error
}

// SearchHit represents a keyword sub-search result.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string
}
