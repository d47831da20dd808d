package domain

import "time"

// Caps on chunk metadata. The chunker enforces both.
const (
	// MaxChunkHeadings is the most heading lines a chunk carries.
	MaxChunkHeadings = 3

	// MaxChunkKeywords is the most keywords a chunk carries.
	MaxChunkKeywords = 10
)

// ChunkMetadata is the fixed-shape metadata attached to every chunk.
// A fixed struct rather than an open map so consumers never parse
// arbitrary shapes.
type ChunkMetadata struct {
	// Headings are heading-like lines found near the top of the chunk,
	// in document order, at most MaxChunkHeadings.
	Headings []string

	// Keywords are deduplicated terms extracted from the chunk text
	// (spec-number groupings, all-caps terms), at most MaxChunkKeywords.
	Keywords []string
}

// Chunk is a bounded, overlapping slice of a document's extracted text,
// the atomic unit of retrieval. Chunks are immutable once written:
// re-ingestion replaces a document's full chunk set, never individual rows.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Content is the chunk text.
	Content string

	// Index is the zero-based position within the document's chunk
	// sequence. Indices from one chunking pass are contiguous 0..N-1.
	Index int

	// PageNumber is the 1-based source page, when known.
	PageNumber *int

	// SectionRef is the spec section reference (e.g. "Section 03 30 00"),
	// empty when none was found.
	SectionRef string

	// Metadata holds headings and keywords extracted from the text.
	Metadata ChunkMetadata

	// Embedding is the fixed-dimension vector for similarity search.
	Embedding []float32

	// CreatedAt is when the chunk was written. Recency scoring reads it.
	CreatedAt time.Time
}
