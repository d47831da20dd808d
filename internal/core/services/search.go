package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driving"
	"github.com/planroomhq/planroom-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService answers free-text queries with ranked, grouped chunks.
// It fans a query out to the vector and keyword sub-searches, merges
// the candidate sets, scores them, and applies the diversity filter.
type SearchService struct {
	docStore         driven.DocumentStore
	searchEngine     driven.SearchEngine
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
	settings         domain.SearchSettings
}

// NewSearchService creates a new search service. The vectorIndex and
// embeddingService parameters are optional; when either is nil the
// service runs keyword-only.
func NewSearchService(
	docStore driven.DocumentStore,
	searchEngine driven.SearchEngine,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	settings domain.SearchSettings,
) *SearchService {
	defaults := domain.DefaultAppSettings().Search
	if settings.KeywordSimilarity <= 0 {
		settings.KeywordSimilarity = defaults.KeywordSimilarity
	}
	if settings.DefaultThreshold <= 0 {
		settings.DefaultThreshold = defaults.DefaultThreshold
	}
	if settings.DefaultLimit <= 0 {
		settings.DefaultLimit = defaults.DefaultLimit
	}

	return &SearchService{
		docStore:         docStore,
		searchEngine:     searchEngine,
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		settings:         settings,
	}
}

// Search retrieves, scores and groups the most relevant chunks for a
// query. An empty result is a valid outcome, not an error.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.ResultGroup, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.ResultGroup{}, nil
	}

	if opts.ProjectID == "" && !opts.AllProjects {
		return nil, fmt.Errorf("%w: search needs a project id or the all-projects scope", domain.ErrInvalidInput)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.settings.DefaultLimit
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = s.settings.DefaultThreshold
	}

	filter := driven.SearchFilter{ProjectID: opts.ProjectID, Types: opts.Types}
	if opts.AllProjects {
		filter.ProjectID = ""
	}

	vectorEnabled := s.vectorIndex != nil && s.embeddingService != nil
	logger.Debug("Sub-searches: keyword=%t, vector=%t, limit=%d, threshold=%.2f",
		s.searchEngine != nil, vectorEnabled, limit, threshold)
	if !vectorEnabled {
		logger.Debug("Embedding service unavailable, running keyword-only")
	}

	// Fan out both sub-searches and join before merging. Both signals
	// are required: a failed sub-search fails the whole retrieval, no
	// partial merge.
	var (
		keywordHits []driven.SearchHit
		vectorHits  []driven.VectorHit
		keywordErr  error
		vectorErr   error
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		keywordHits, keywordErr = s.keywordSearch(ctx, query, filter, limit)
	}()
	if vectorEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vectorHits, vectorErr = s.vectorSearch(ctx, query, filter, limit, threshold)
		}()
	}
	wg.Wait()

	if keywordErr != nil {
		logger.Warn("Keyword sub-search failed: %v", keywordErr)
		return nil, fmt.Errorf("keyword search: %w", keywordErr)
	}
	if vectorErr != nil {
		logger.Warn("Vector sub-search failed: %v", vectorErr)
		return nil, fmt.Errorf("vector search: %w", vectorErr)
	}
	logger.Debug("Sub-search hits: %d keyword, %d vector", len(keywordHits), len(vectorHits))

	cands, err := s.mergeAndHydrate(ctx, vectorHits, keywordHits)
	if err != nil {
		return nil, fmt.Errorf("hydrate candidates: %w", err)
	}

	scoreCandidates(cands, query, opts, time.Now())
	rankCandidates(cands)
	selected := diversityFilter(cands)
	groups := groupResults(selected)

	logger.Info("Final results: %d chunks in %d documents", len(selected), len(groups))
	return groups, nil
}

// keywordSearch runs the substring sub-search.
func (s *SearchService) keywordSearch(
	ctx context.Context, query string, filter driven.SearchFilter, limit int,
) ([]driven.SearchHit, error) {
	if s.searchEngine == nil {
		return nil, errors.New("search engine unavailable")
	}
	return s.searchEngine.Search(ctx, query, filter, limit)
}

// vectorSearch embeds the query and runs the similarity sub-search.
func (s *SearchService) vectorSearch(
	ctx context.Context, query string, filter driven.SearchFilter, limit int, threshold float64,
) ([]driven.VectorHit, error) {
	embedding, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.vectorIndex.Search(ctx, embedding, filter, limit, threshold)
}

// mergeAndHydrate unions the two hit sets by chunk identity and loads
// each surviving chunk with its document. A chunk found by both
// sub-searches keeps the vector similarity; keyword-only chunks carry
// the configured placeholder. Chunks deleted since the sub-search ran,
// and chunks whose document is not READY, are dropped.
func (s *SearchService) mergeAndHydrate(
	ctx context.Context, vectorHits []driven.VectorHit, keywordHits []driven.SearchHit,
) ([]candidate, error) {
	similarities := make(map[string]float64, len(vectorHits)+len(keywordHits))
	order := make([]string, 0, len(vectorHits)+len(keywordHits))

	for _, hit := range vectorHits {
		if _, ok := similarities[hit.ChunkID]; !ok {
			order = append(order, hit.ChunkID)
		}
		similarities[hit.ChunkID] = hit.Similarity
	}
	for _, hit := range keywordHits {
		if _, ok := similarities[hit.ChunkID]; ok {
			continue
		}
		similarities[hit.ChunkID] = s.settings.KeywordSimilarity
		order = append(order, hit.ChunkID)
	}

	docs := make(map[string]*domain.Document)
	cands := make([]candidate, 0, len(order))
	for _, chunkID := range order {
		chunk, err := s.docStore.GetChunk(ctx, chunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get chunk %s: %w", chunkID, err)
		}

		doc, ok := docs[chunk.DocumentID]
		if !ok {
			doc, err = s.docStore.GetDocument(ctx, chunk.DocumentID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("get document %s: %w", chunk.DocumentID, err)
			}
			docs[chunk.DocumentID] = doc
		}
		if doc.Status != domain.StatusReady {
			continue
		}

		cands = append(cands, candidate{
			chunk:      *chunk,
			doc:        doc,
			similarity: similarities[chunkID],
		})
	}
	return cands, nil
}
