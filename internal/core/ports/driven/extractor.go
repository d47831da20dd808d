package driven

import (
	"context"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// Extractor turns raw bytes of one format family into plain text.
// Each extractor handles specific MIME types (e.g., PDF, DOCX).
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Extract pulls plain text out of the raw bytes. Inherently
	// image-based formats return empty text with IsScanned set.
	Extract(ctx context.Context, data []byte, mimeType string) (*domain.Extraction, error)
}

// ExtractorRegistry dispatches extraction over a closed set of formats.
// It maintains a priority-ordered list of extractors keyed by MIME type.
type ExtractorRegistry interface {
	// Extract runs the best matching extractor for the MIME type.
	// A MIME type no extractor claims fails with ErrUnsupportedFormat;
	// there is no default arm. Results whose text falls below
	// domain.ScannedTextThreshold come back flagged IsScanned so the
	// pipeline can fall back to OCR.
	Extract(ctx context.Context, data []byte, mimeType string) (*domain.Extraction, error)

	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// SupportedMIMETypes returns all MIME types that can be extracted.
	SupportedMIMETypes() []string
}
