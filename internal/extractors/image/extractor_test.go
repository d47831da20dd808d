package image

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
	assert.Contains(t, mimeTypes, "image/png")
	assert.Contains(t, mimeTypes, "image/jpeg")
	assert.Contains(t, mimeTypes, "image/tiff")
}

func TestPriority(t *testing.T) {
	extractor := New()
	assert.Equal(t, 50, extractor.Priority())
}

func TestExtract_AlwaysScanned(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	result, err := extractor.Extract(ctx, []byte{0x89, 0x50, 0x4E, 0x47}, "image/png")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.IsScanned)
	assert.Empty(t, result.Text)
	assert.Equal(t, 1, result.PageCount)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}
