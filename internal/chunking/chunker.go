// Package chunking splits extracted document text into bounded,
// overlapping chunks sized for embedding and retrieval.
package chunking

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// DefaultTargetTokens is the default chunk size in approximate tokens.
const DefaultTargetTokens = 400

// DefaultOverlapTokens is the default overlap between consecutive chunks.
const DefaultOverlapTokens = 50

// CharsPerToken is the fixed character-per-token approximation. All
// chunking arithmetic runs in character space after this conversion.
const CharsPerToken = 4

// oversizeFactor is how far past the target a buffer may grow before it
// is recursively split.
const oversizeFactor = 1.5

// splitWindow is how far around the target offset the splitter searches
// for a natural boundary.
const splitWindow = 200

// Chunker splits plain text into chunk records. The same input and
// options always produce the same output: chunk IDs are derived from the
// document and index, and no timestamps are read.
type Chunker struct {
	targetTokens  int
	overlapTokens int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithTargetTokens sets the chunk size in approximate tokens.
func WithTargetTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens > 0 {
			c.targetTokens = tokens
		}
	}
}

// WithOverlapTokens sets the overlap between chunks in approximate tokens.
func WithOverlapTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens >= 0 {
			c.overlapTokens = tokens
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		targetTokens:  DefaultTargetTokens,
		overlapTokens: DefaultOverlapTokens,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't swallow the whole chunk
	if c.overlapTokens >= c.targetTokens {
		c.overlapTokens = c.targetTokens / 4
	}

	return c
}

func (c *Chunker) targetChars() int  { return c.targetTokens * CharsPerToken }
func (c *Chunker) overlapChars() int { return c.overlapTokens * CharsPerToken }
func (c *Chunker) maxChars() int     { return int(float64(c.targetChars()) * oversizeFactor) }

// segment is a unit of accumulation: one page or one paragraph.
type segment struct {
	text string
	page int // 1-based, 0 when the text has no page markers
}

// Chunk splits text into an ordered chunk sequence for the document.
// Indices are contiguous from 0; empty or whitespace-only input yields
// no chunks. CreatedAt is left zero for the caller to stamp at persist
// time.
func (c *Chunker) Chunk(documentID, text string) []domain.Chunk {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	segments := segmentText(text)

	var chunks []domain.Chunk
	var buf string
	bufPage := 0

	emit := func(content string, page int) {
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		chunks = append(chunks, c.newChunk(documentID, len(chunks), content, page))
	}

	for _, seg := range segments {
		candidate := join(buf, seg.text)
		if buf != "" && len(candidate) > c.targetChars() {
			emit(buf, bufPage)
			tail := overlapTail(buf, c.overlapChars())
			candidate = join(tail, seg.text)
			bufPage = seg.page
		}
		if buf == "" {
			bufPage = seg.page
		}
		buf = candidate

		// One oversized segment: split at natural boundaries near the
		// target offset, keep the last piece as the running buffer.
		if len(buf) > c.maxChars() {
			pieces := c.splitOversized(buf)
			for _, piece := range pieces[:len(pieces)-1] {
				emit(piece, bufPage)
			}
			buf = pieces[len(pieces)-1]
		}
	}

	emit(buf, bufPage)

	return chunks
}

func (c *Chunker) newChunk(documentID string, index int, content string, page int) domain.Chunk {
	chunk := domain.Chunk{
		ID:         chunkID(documentID, index),
		DocumentID: documentID,
		Content:    content,
		Index:      index,
		SectionRef: extractSectionRef(content),
		Metadata: domain.ChunkMetadata{
			Headings: extractHeadings(content),
			Keywords: extractKeywords(content),
		},
	}
	if page > 0 {
		p := page
		chunk.PageNumber = &p
	}
	return chunk
}

// chunkID derives a stable ID from the document and chunk index so that
// re-chunking identical text reproduces identical chunks.
func chunkID(documentID string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s:%d", documentID, index))).String()
}

// segmentText splits on page-break markers when the text has them,
// otherwise on blank-line paragraph breaks.
func segmentText(text string) []segment {
	if strings.Contains(text, "\f") {
		pages := strings.Split(text, "\f")
		segments := make([]segment, 0, len(pages))
		for i, page := range pages {
			if strings.TrimSpace(page) == "" {
				continue
			}
			segments = append(segments, segment{text: strings.TrimSpace(page), page: i + 1})
		}
		return segments
	}

	paragraphs := strings.Split(text, "\n\n")
	segments := make([]segment, 0, len(paragraphs))
	for _, para := range paragraphs {
		if strings.TrimSpace(para) == "" {
			continue
		}
		segments = append(segments, segment{text: strings.TrimSpace(para)})
	}
	return segments
}

// join concatenates two pieces with a paragraph separator.
func join(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "\n\n" + b
}

// overlapTail returns the last n characters of text, trimmed forward to
// the next word boundary so chunks never start mid-word.
func overlapTail(text string, n int) string {
	if n <= 0 || text == "" {
		return ""
	}
	if n >= len(text) {
		return text
	}

	tail := text[len(text)-n:]
	if idx := strings.IndexAny(tail, " \n"); idx >= 0 && idx < len(tail)-1 {
		return tail[idx+1:]
	}
	return tail
}

// splitOversized cuts text into pieces of roughly target size, searching
// a window around each target offset for a paragraph break, then a
// sentence break, then any newline, before force-splitting. The overlap
// rule carries across every cut.
func (c *Chunker) splitOversized(text string) []string {
	var pieces []string
	rest := text

	for len(rest) > c.maxChars() {
		cut := c.findSplit(rest)
		piece := strings.TrimSpace(rest[:cut])
		pieces = append(pieces, piece)
		rest = join(overlapTail(piece, c.overlapChars()), strings.TrimSpace(rest[cut:]))
	}

	return append(pieces, rest)
}

// findSplit picks the cut offset for an oversized text: the latest
// natural boundary inside the search window, else the target offset.
func (c *Chunker) findSplit(text string) int {
	target := c.targetChars()
	lo := target - splitWindow
	if lo < 0 {
		lo = 0
	}
	hi := target + splitWindow
	if hi > len(text) {
		hi = len(text)
	}
	window := text[lo:hi]

	for _, boundary := range []string{"\n\n", ". ", "\n"} {
		if idx := strings.LastIndex(window, boundary); idx >= 0 {
			return lo + idx + len(boundary)
		}
	}

	return target
}
