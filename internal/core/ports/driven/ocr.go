package driven

import "context"

// OCRService recognises text in scanned documents.
// This is an optional service - when nil, scanned documents fail
// ingestion with a reprocessable error.
type OCRService interface {
	// Recognize returns the recognised text of each page, in page order.
	// pageCount is a hint from extraction; implementations may return
	// fewer or more pages than hinted.
	Recognize(ctx context.Context, data []byte, pageCount int) ([]string, error)

	// Close releases resources.
	Close() error
}
