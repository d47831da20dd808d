package sqlite

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
)

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex with a brute-force cosine
// scan over embedded chunks. Embeddings are loaded as little-endian
// float32 blobs and compared in Go; at the corpus sizes a single
// workstation indexes, a full scan beats maintaining an ANN structure.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Search returns the top k chunks by cosine similarity to the query
// vector. Only chunks of READY documents are candidates, so documents
// mid-ingestion never leak into results. Hits below minSimilarity are
// dropped. Ties are broken by chunk ID so results are deterministic.
func (v *vectorIndex) Search(ctx context.Context, query []float32, filter driven.SearchFilter, k int, minSimilarity float64) ([]driven.VectorHit, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, nil
	}

	sqlQuery := `
		SELECT c.id, c.embedding
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.status = ? AND c.embedding IS NOT NULL`

	args := []any{string(domain.StatusReady)}
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

	rows, err := v.store.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunkID string
		var blob []byte
		if err := rows.Scan(&chunkID, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}

		embedding := bytesToFloat32Slice(blob)
		if len(embedding) != len(query) {
			continue // Dimension mismatch, likely from an older model
		}

		similarity := cosineSimilarity(query, embedding)
		if similarity < minSimilarity {
			continue
		}

		hits = append(hits, driven.VectorHit{ChunkID: chunkID, Similarity: similarity})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close releases resources. The underlying connection is shared with
// the document store, so there is nothing to do here.
func (v *vectorIndex) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors
// of equal length. Returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

