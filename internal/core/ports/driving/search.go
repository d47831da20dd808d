package driving

import (
	"context"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// SearchService provides hybrid retrieval to external actors.
type SearchService interface {
	// Search retrieves, scores and groups the most relevant chunks for
	// a free-text query. An empty result is a valid outcome, not an
	// error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ResultGroup, error)
}
