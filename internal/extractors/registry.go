package extractors

import (
	"context"
	"fmt"
	"mime"
	"sort"
	"strings"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps MIME types to extractors, highest priority first.
// Register all extractors during application initialisation; Register is
// not safe to call concurrently with Extract.
type Registry struct {
	extractors map[string][]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string][]driven.Extractor),
	}
}

// Register adds an extractor for each MIME type it supports.
// When several extractors claim the same type, the one with the highest
// Priority wins; ties keep registration order.
func (r *Registry) Register(extractor driven.Extractor) {
	for _, mimeType := range extractor.SupportedMIMETypes() {
		key := normalizeMIME(mimeType)
		list := append(r.extractors[key], extractor)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.extractors[key] = list
	}
}

// Extract runs the best matching extractor for the MIME type and applies
// the scanned-document heuristic: extracted text shorter than
// domain.ScannedTextThreshold marks the result as scanned so the
// ingestion pipeline can fall back to OCR.
func (r *Registry) Extract(ctx context.Context, data []byte, mimeType string) (*domain.Extraction, error) {
	key := normalizeMIME(mimeType)
	candidates := r.extractors[key]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, mimeType)
	}

	extraction, err := candidates[0].Extract(ctx, data, key)
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(extraction.Text)) < domain.ScannedTextThreshold {
		extraction.IsScanned = true
	}
	return extraction, nil
}

// SupportedMIMETypes returns all MIME types with a registered extractor,
// sorted for stable output.
func (r *Registry) SupportedMIMETypes() []string {
	types := make([]string, 0, len(r.extractors))
	for mimeType := range r.extractors {
		types = append(types, mimeType)
	}
	sort.Strings(types)
	return types
}

// normalizeMIME lowercases the media type and strips parameters such as
// "; charset=utf-8" so lookup keys are canonical.
func normalizeMIME(mimeType string) string {
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		return parsed
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
