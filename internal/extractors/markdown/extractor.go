package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Markdown documents.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific extractor, higher than plaintext
}

// Extract simplifies markdown formatting down to plain text. Heading
// lines keep their markers so downstream chunk metadata can still
// recognise them. Markdown has no page concept, so PageCount stays zero.
func (e *Extractor) Extract(_ context.Context, data []byte, _ string) (*domain.Extraction, error) {
	return &domain.Extraction{
		Text: stripMarkdown(string(data)),
	}, nil
}

// Pre-compiled regular expressions for markdown simplification.
var (
	codeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode   = regexp.MustCompile("`[^`]+`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	blockquote   = regexp.MustCompile(`(?m)^>\s*`)
	hr           = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	boldItalic   = regexp.MustCompile(`(\*\*|__|\*)`)
	tableRules   = regexp.MustCompile(`(?m)^\|?[\s:|-]+\|[\s:|-]*$`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common markdown formatting for plain text
// content. Headings are left alone on purpose.
func stripMarkdown(content string) string {
	content = codeBlock.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "")

	// Drop images, reduce links to their text
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")

	// Remove emphasis, blockquote and list decoration
	content = boldItalic.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = tableRules.ReplaceAllString(content, "")

	content = multiNewline.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
