package domain

// DefaultSearchLimit caps each retrieval sub-search when the caller
// does not say otherwise.
const DefaultSearchLimit = 20

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// ProjectID restricts the search to one project. Empty with
	// AllProjects false is invalid.
	ProjectID string

	// AllProjects searches every project the caller can see.
	AllProjects bool

	// ActiveProjectID is the caller's current project. In an
	// all-projects search, candidates from this project get a small
	// scope boost.
	ActiveProjectID string

	// Types restricts results to the given document categories.
	// Empty means no type filter.
	Types []DocumentType

	// Limit caps each sub-search's candidate count. Zero means
	// DefaultSearchLimit.
	Limit int

	// Threshold is the minimum vector similarity for a candidate to
	// survive the vector sub-search.
	Threshold float64
}

// ScoredChunk is one ranked retrieval hit.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Similarity is the raw signal the chunk was found with: cosine
	// similarity for vector hits, the configured placeholder for
	// keyword-only hits.
	Similarity float64

	// BaseScore is Similarity after keyword boosting.
	BaseScore float64

	// FinalScore is BaseScore with type, recency and scope weights
	// applied. Results are ranked by it.
	FinalScore float64

	// IsMarginal flags a weak match so presentation layers can hedge.
	IsMarginal bool
}

// ResultGroup is the externally consumed result shape: one document and
// its ranked chunks.
type ResultGroup struct {
	// Document is the owning document.
	Document Document

	// Chunks are the document's selected chunks, best first.
	Chunks []ScoredChunk

	// BestScore is the highest FinalScore among Chunks. Groups are
	// ordered by it.
	BestScore float64
}

// IndexStats summarises the index for status surfaces.
type IndexStats struct {
	// Documents is the total document count.
	Documents int

	// DocumentsByStatus counts documents per lifecycle state.
	DocumentsByStatus map[DocumentStatus]int

	// Chunks is the total chunk count.
	Chunks int

	// Projects is the number of distinct projects with documents.
	Projects int
}
