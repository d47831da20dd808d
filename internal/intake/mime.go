package intake

import (
	"path/filepath"
	"strings"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// mimeByExt maps intake file extensions to MIME types. The stdlib mime
// table is deliberately not consulted: its contents vary by host OS and
// the extractor registry only accepts a closed set anyway.
var mimeByExt = map[string]string{
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".csv":      "text/csv",
	".tsv":      "text/tab-separated-values",
	".json":     "application/json",
	".xml":      "application/xml",
	".html":     "text/html",
	".htm":      "text/html",
	".png":      "image/png",
	".jpg":      "image/jpeg",
	".jpeg":     "image/jpeg",
	".tif":      "image/tiff",
	".tiff":     "image/tiff",
	".webp":     "image/webp",
}

// DetectMIME returns the MIME type for a path based on its extension.
// Unknown extensions fall back to application/octet-stream, which the
// extractor registry rejects as unsupported.
func DetectMIME(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := mimeByExt[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}

// DefaultType returns the document type assumed for a dropped file.
// Image formats are treated as drawings (scanned plan sheets arrive as
// images); everything else gets the neutral portfolio type.
// `planroom ingest --type` overrides this per file.
func DefaultType(path string) domain.DocumentType {
	switch strings.Split(DetectMIME(path), "/")[0] {
	case "image":
		return domain.TypeDrawing
	default:
		return domain.TypePortfolio
	}
}
