package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestSupportedMIMETypes(t *testing.T) {
	extractor := New()
	mimeTypes := extractor.SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
}

func TestPriority(t *testing.T) {
	extractor := New()
	assert.Equal(t, 50, extractor.Priority())
}

func TestExtract_Success(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	md := "# Meeting Minutes\n\nDiscussed **concrete pour** schedule for [Building A](https://example.com/a).\n"
	result, err := extractor.Extract(ctx, []byte(md), "text/markdown")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Contains(t, result.Text, "Discussed concrete pour schedule")
	assert.Contains(t, result.Text, "Building A")
	assert.NotContains(t, result.Text, "**")
	assert.NotContains(t, result.Text, "example.com")
	assert.Equal(t, 0, result.PageCount)
}

func TestExtract_HeadingsPreserved(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	md := "## Submittals\n\nShop drawings are due in ten days."
	result, err := extractor.Extract(ctx, []byte(md), "text/markdown")
	require.NoError(t, err)

	assert.Contains(t, result.Text, "## Submittals")
}

func TestExtract_CodeBlocksRemoved(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	md := "Before\n\n```\nsome code\n```\n\nAfter"
	result, err := extractor.Extract(ctx, []byte(md), "text/markdown")
	require.NoError(t, err)

	assert.Contains(t, result.Text, "Before")
	assert.Contains(t, result.Text, "After")
	assert.NotContains(t, result.Text, "some code")
}

func TestExtract_ListsAndQuotes(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	md := "- first item\n- second item\n\n> quoted remark\n"
	result, err := extractor.Extract(ctx, []byte(md), "text/markdown")
	require.NoError(t, err)

	assert.Contains(t, result.Text, "first item")
	assert.Contains(t, result.Text, "quoted remark")
	assert.NotContains(t, result.Text, "- first")
	assert.NotContains(t, result.Text, ">")
}

func TestExtract_NumberedSectionsKept(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	md := "1.2 Related Documents\n\nDrawings and general provisions apply."
	result, err := extractor.Extract(ctx, []byte(md), "text/markdown")
	require.NoError(t, err)

	assert.Contains(t, result.Text, "1.2 Related Documents")
}

func TestExtract_Empty(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	result, err := extractor.Extract(ctx, []byte(""), "text/markdown")
	require.NoError(t, err)
	assert.Empty(t, result.Text)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}
