package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driving"
)

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query        string `json:"query" jsonschema:"the search query to find relevant document passages"`
	ProjectID    string `json:"project_id,omitempty" jsonschema:"restrict the search to one project"`
	AllProjects  bool   `json:"all_projects,omitempty" jsonschema:"search every project (default when no project_id is given)"`
	DocumentType string `json:"document_type,omitempty" jsonschema:"restrict results to one document type, e.g. SPEC or RFI"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of candidates per sub-search (default 10)"`
}

// SearchOutput is the output schema for the search_documents tool.
type SearchOutput struct {
	Results []ResultGroupOutput `json:"results"`
	Count   int                 `json:"count"`
}

// ResultGroupOutput is one document and its ranked matching chunks.
type ResultGroupOutput struct {
	DocumentID string             `json:"document_id"`
	Title      string             `json:"title"`
	ProjectID  string             `json:"project_id"`
	Type       string             `json:"type"`
	BestScore  float64            `json:"best_score"`
	Chunks     []ChunkMatchOutput `json:"chunks"`
}

// ChunkMatchOutput is a single scored chunk within a result group.
type ChunkMatchOutput struct {
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	PageNumber int     `json:"page_number,omitempty"`
	SectionRef string  `json:"section_ref,omitempty"`
	Marginal   bool    `json:"marginal,omitempty"`
}

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to fetch"`
	MaxChunks  int    `json:"max_chunks,omitempty" jsonschema:"return at most this many chunks from the start of the document"`
}

// GetDocumentOutput is the output schema for the get_document tool.
type GetDocumentOutput struct {
	DocumentID string   `json:"document_id"`
	Title      string   `json:"title"`
	ProjectID  string   `json:"project_id"`
	Type       string   `json:"type"`
	Status     string   `json:"status"`
	PageCount  int      `json:"page_count,omitempty"`
	ChunkCount int      `json:"chunk_count"`
	Chunks     []string `json:"chunks"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"restrict the listing to one project"`
	Status    string `json:"status,omitempty" jsonschema:"restrict to one lifecycle status: UPLOADING, PROCESSING, READY or ERROR"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentSummaryOutput `json:"documents"`
	Count     int                     `json:"count"`
}

// DocumentSummaryOutput is one document in a listing.
type DocumentSummaryOutput struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	ProjectID  string `json:"project_id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	PageCount  int    `json:"page_count,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search indexed construction documents and return the most relevant passages, grouped by document",
	}, s.handleSearchDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Fetch one document's metadata and its chunk texts in reading order",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List indexed documents, optionally filtered by project or status",
	}, s.handleListDocuments)
}

// handleSearchDocuments handles the search_documents tool invocation.
func (s *Server) handleSearchDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	opts := domain.SearchOptions{
		ProjectID:   input.ProjectID,
		AllProjects: input.AllProjects,
		Limit:       limit,
	}
	// MCP clients rarely know project IDs up front, so an unscoped call
	// searches everything.
	if opts.ProjectID == "" {
		opts.AllProjects = true
	}

	if input.DocumentType != "" {
		docType := domain.DocumentType(strings.ToUpper(input.DocumentType))
		if !docType.IsValid() {
			return nil, SearchOutput{}, fmt.Errorf("unknown document type %q", input.DocumentType)
		}
		opts.Types = []domain.DocumentType{docType}
	}

	groups, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]ResultGroupOutput, len(groups)),
		Count:   len(groups),
	}

	for i := range groups {
		group := ResultGroupOutput{
			DocumentID: groups[i].Document.ID,
			Title:      groups[i].Document.Title,
			ProjectID:  groups[i].Document.ProjectID,
			Type:       string(groups[i].Document.Type),
			BestScore:  groups[i].BestScore,
			Chunks:     make([]ChunkMatchOutput, len(groups[i].Chunks)),
		}
		for j, scored := range groups[i].Chunks {
			match := ChunkMatchOutput{
				Content:    scored.Chunk.Content,
				Score:      scored.FinalScore,
				SectionRef: scored.Chunk.SectionRef,
				Marginal:   scored.IsMarginal,
			}
			if scored.Chunk.PageNumber != nil {
				match.PageNumber = *scored.Chunk.PageNumber
			}
			group.Chunks[j] = match
		}
		output.Results[i] = group
	}

	return nil, output, nil
}

// handleGetDocument handles the get_document tool invocation.
func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, GetDocumentOutput, error) {
	if s.ports.Document == nil {
		return nil, GetDocumentOutput{}, ErrMissingDocumentService
	}

	doc, err := s.ports.Document.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, GetDocumentOutput{}, fmt.Errorf("getting document: %w", err)
	}

	chunks, err := s.ports.Document.GetChunks(ctx, input.DocumentID)
	if err != nil {
		return nil, GetDocumentOutput{}, fmt.Errorf("getting chunks: %w", err)
	}

	output := GetDocumentOutput{
		DocumentID: doc.ID,
		Title:      doc.Title,
		ProjectID:  doc.ProjectID,
		Type:       string(doc.Type),
		Status:     string(doc.Status),
		PageCount:  doc.PageCount,
		ChunkCount: len(chunks),
	}

	if input.MaxChunks > 0 && len(chunks) > input.MaxChunks {
		chunks = chunks[:input.MaxChunks]
	}
	output.Chunks = make([]string, len(chunks))
	for i := range chunks {
		output.Chunks[i] = chunks[i].Content
	}

	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{}, ErrMissingDocumentService
	}

	opts := driving.ListOptions{ProjectID: input.ProjectID}
	if input.Status != "" {
		status := domain.DocumentStatus(strings.ToUpper(input.Status))
		if !status.IsValid() {
			return nil, ListDocumentsOutput{}, fmt.Errorf("unknown document status %q", input.Status)
		}
		opts.Status = status
	}

	docs, err := s.ports.Document.List(ctx, opts)
	if err != nil {
		return nil, ListDocumentsOutput{}, fmt.Errorf("listing documents: %w", err)
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentSummaryOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentSummaryOutput{
			DocumentID: docs[i].ID,
			Title:      docs[i].Title,
			ProjectID:  docs[i].ProjectID,
			Type:       string(docs[i].Type),
			Status:     string(docs[i].Status),
			PageCount:  docs[i].PageCount,
		}
	}

	return nil, output, nil
}
