package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// contentOverlapMin is the shortest shared prefix/suffix GetContent
// treats as chunk overlap rather than coincidence.
const contentOverlapMin = 16

// DocumentService manages documents outside the ingestion pipeline.
type DocumentService struct {
	docStore  driven.DocumentStore
	jobStore  driven.IngestionJobStore
	blobStore driven.BlobStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docStore driven.DocumentStore,
	jobStore driven.IngestionJobStore,
	blobStore driven.BlobStore,
) *DocumentService {
	return &DocumentService{
		docStore:  docStore,
		jobStore:  jobStore,
		blobStore: blobStore,
	}
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// List returns documents matching the options, newest first.
func (s *DocumentService) List(ctx context.Context, opts driving.ListOptions) ([]domain.Document, error) {
	filter := driven.DocumentFilter{ProjectID: opts.ProjectID}
	if opts.Status != "" {
		filter.Statuses = []domain.DocumentStatus{opts.Status}
	}
	if opts.Type != "" {
		filter.Types = []domain.DocumentType{opts.Type}
	}
	return s.docStore.ListDocuments(ctx, filter)
}

// GetChunks returns the document's chunks ordered by index.
func (s *DocumentService) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}

	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return nil, err
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Index < chunks[j].Index
	})
	return chunks, nil
}

// GetContent reconstructs the document's text from its chunks in index
// order. Adjacent chunks share an overlap window; the shared text is
// trimmed where the next chunk's prefix repeats the previous chunk's tail.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	chunks, err := s.GetChunks(ctx, documentID)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	var prev string
	for i, chunk := range chunks {
		if i == 0 {
			builder.WriteString(chunk.Content)
			prev = chunk.Content
			continue
		}
		rest := trimOverlap(prev, chunk.Content)
		if rest == chunk.Content {
			builder.WriteString("\n\n")
		}
		builder.WriteString(rest)
		prev = chunk.Content
	}
	return builder.String(), nil
}

// trimOverlap removes from next the longest prefix that repeats a
// suffix of prev. Prefixes shorter than contentOverlapMin are left
// alone: they are more likely shared phrasing than chunk overlap.
func trimOverlap(prev, next string) string {
	limit := len(next)
	if len(prev) < limit {
		limit = len(prev)
	}
	for n := limit; n >= contentOverlapMin; n-- {
		if strings.HasSuffix(prev, next[:n]) {
			return next[n:]
		}
	}
	return next
}

// GetDetails returns display metadata for a document, including the
// distinct section references found across its chunks.
func (s *DocumentService) GetDetails(ctx context.Context, documentID string) (*driving.DocumentDetails, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return nil, err
	}

	var sections []string
	seen := make(map[string]bool)
	for _, chunk := range chunks {
		if chunk.SectionRef == "" || seen[chunk.SectionRef] {
			continue
		}
		seen[chunk.SectionRef] = true
		sections = append(sections, chunk.SectionRef)
	}

	return &driving.DocumentDetails{
		ID:          doc.ID,
		ProjectID:   doc.ProjectID,
		Title:       doc.Title,
		Type:        doc.Type,
		Status:      doc.Status,
		MIMEType:    doc.MIMEType,
		SizeBytes:   doc.SizeBytes,
		PageCount:   doc.PageCount,
		ChunkCount:  len(chunks),
		Sections:    sections,
		ErrorDetail: doc.ErrorDetail,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

// Delete removes the document, its chunks, its ingestion job and its
// stored blob.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	if s.blobStore != nil && doc.StorageKey != "" {
		if err := s.blobStore.Delete(ctx, doc.StorageKey); err != nil {
			return fmt.Errorf("delete blob: %w", err)
		}
	}
	if s.jobStore != nil {
		if err := s.jobStore.DeleteJob(ctx, documentID); err != nil {
			return fmt.Errorf("delete ingestion job: %w", err)
		}
	}

	// Chunk deletion cascades inside the store.
	return s.docStore.DeleteDocument(ctx, documentID)
}

// Stats summarises the index.
func (s *DocumentService) Stats(ctx context.Context) (*domain.IndexStats, error) {
	return s.docStore.Stats(ctx)
}
