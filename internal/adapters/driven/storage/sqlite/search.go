package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
)

// ==================== Keyword Search Engine ====================

// searchEngine implements driven.SearchEngine with a case-insensitive
// substring match pushed down to SQLite. instr avoids the wildcard
// escaping a LIKE pattern would need.
type searchEngine struct {
	store *Store
}

var _ driven.SearchEngine = (*searchEngine)(nil)

// Search returns chunks of READY documents whose content contains the
// query, case-insensitively, up to limit. Results are ordered by
// document then position so repeated searches return the same rows.
func (s *searchEngine) Search(ctx context.Context, query string, filter driven.SearchFilter, limit int) ([]driven.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit <= 0 {
		return nil, nil
	}

	sqlQuery := `
		SELECT c.id
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.status = ? AND instr(lower(c.content), lower(?)) > 0`

	args := []any{string(domain.StatusReady), query}
	if filter.ProjectID != "" {
		sqlQuery += " AND d.project_id = ?"
		args = append(args, filter.ProjectID)
	}
	if len(filter.Types) > 0 {
		sqlQuery += " AND d.type IN (" + placeholders(len(filter.Types)) + ")"
		for _, docType := range filter.Types {
			args = append(args, string(docType))
		}
	}
	sqlQuery += " ORDER BY c.document_id, c.position LIMIT ?"
	args = append(args, limit)

	rows, err := s.store.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying content: %w", err)
	}
	defer rows.Close()

	var hits []driven.SearchHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunkID string
		if err := rows.Scan(&chunkID); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		hits = append(hits, driven.SearchHit{ChunkID: chunkID})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search hits: %w", err)
	}

	return hits, nil
}

// Close releases resources. No-op for the shared connection.
func (s *searchEngine) Close() error {
	return nil
}
