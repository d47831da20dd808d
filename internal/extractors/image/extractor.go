package image

import (
	"context"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles image uploads such as photographed drawings and
// site photos. Images carry no text layer, so every extraction is
// scanned and the ingestion pipeline hands the bytes to OCR.
type Extractor struct{}

// New creates a new image extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"image/png",
		"image/jpeg",
		"image/tiff",
		"image/webp",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific extractor
}

// Extract always reports a scanned single page with no text.
func (e *Extractor) Extract(_ context.Context, _ []byte, _ string) (*domain.Extraction, error) {
	return &domain.Extraction{
		PageCount: 1,
		IsScanned: true,
	}, nil
}
