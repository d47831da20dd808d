// Package memory provides in-memory implementations of the storage
// ports. They mirror the SQLite adapter's semantics and back the
// service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns documents matching the filter, newest first.
func (s *DocumentStore) ListDocuments(_ context.Context, filter driven.DocumentFilter) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if !matchesFilter(doc, filter) {
			continue
		}
		result = append(result, doc)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func matchesFilter(doc domain.Document, filter driven.DocumentFilter) bool {
	if filter.ProjectID != "" && doc.ProjectID != filter.ProjectID {
		return false
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, doc.Status) {
		return false
	}
	if len(filter.Types) > 0 && !containsType(filter.Types, doc.Type) {
		return false
	}
	if !filter.UpdatedBefore.IsZero() && !doc.UpdatedAt.Before(filter.UpdatedBefore) {
		return false
	}
	return true
}

func containsStatus(statuses []domain.DocumentStatus, status domain.DocumentStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsType(types []domain.DocumentType, docType domain.DocumentType) bool {
	for _, t := range types {
		if t == docType {
			return true
		}
	}
	return false
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// SetStatus updates a document's lifecycle state.
func (s *DocumentStore) SetStatus(_ context.Context, id string, status domain.DocumentStatus, errorDetail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Status = status
	doc.ErrorDetail = errorDetail
	doc.UpdatedAt = time.Now().UTC()
	s.documents[id] = doc
	return nil
}

// FinalizeDocument sets the page count and flips the document to READY.
func (s *DocumentStore) FinalizeDocument(_ context.Context, id string, pageCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.PageCount = pageCount
	doc.Status = domain.StatusReady
	doc.ErrorDetail = ""
	doc.UpdatedAt = time.Now().UTC()
	s.documents[id] = doc
	return nil
}

// ReplaceChunks swaps the document's chunk set for the given one.
func (s *DocumentStore) ReplaceChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	if documentID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	stored := make([]domain.Chunk, len(chunks))
	for i, chunk := range chunks {
		if chunk.CreatedAt.IsZero() {
			chunk.CreatedAt = now
		}
		stored[i] = chunk
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[documentID] = stored
	return nil
}

// GetChunks retrieves all chunks for a document, ordered by index.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}

	result := make([]domain.Chunk, len(chunks))
	copy(result, chunks)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Index < result[j].Index
	})
	return result, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chunks := range s.chunks {
		for _, chunk := range chunks {
			if chunk.ID == id {
				return &chunk, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// Stats summarises the index.
func (s *DocumentStore) Stats(_ context.Context) (*domain.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.IndexStats{
		DocumentsByStatus: make(map[domain.DocumentStatus]int),
	}
	projects := make(map[string]struct{})

	for _, doc := range s.documents {
		stats.Documents++
		stats.DocumentsByStatus[doc.Status]++
		projects[doc.ProjectID] = struct{}{}
	}
	for _, chunks := range s.chunks {
		stats.Chunks += len(chunks)
	}
	stats.Projects = len(projects)

	return stats, nil
}

// PruneOrphanChunks drops chunk sets whose document is gone.
func (s *DocumentStore) PruneOrphanChunks(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for docID, chunks := range s.chunks {
		if _, ok := s.documents[docID]; !ok {
			pruned += len(chunks)
			delete(s.chunks, docID)
		}
	}
	return pruned, nil
}
