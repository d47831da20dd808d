package domain

// ScannedTextThreshold is the extracted-text length below which a document
// is presumed to be a scan with no usable text layer.
const ScannedTextThreshold = 100

// Extraction is the output of format-specific text extraction.
type Extraction struct {
	// Text is the extracted plain text. Page boundaries, when the format
	// knows them, are marked with form feeds (\f).
	Text string

	// PageCount is the number of pages, 0 when the format has no
	// page concept.
	PageCount int

	// IsScanned indicates the bytes look like a scan (image format, or
	// a text layer shorter than ScannedTextThreshold). The ingestion
	// pipeline falls back to OCR for scanned documents.
	IsScanned bool
}
