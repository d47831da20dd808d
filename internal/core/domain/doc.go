// Package domain defines the core business entities for PlanRoom.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A project document moving through the ingestion lifecycle
//   - Chunk: A retrievable slice of a document's extracted text
//   - Extraction: The output of format-specific text extraction
//   - IngestionJob: The persisted state of a document's ingestion pipeline
//   - ResultGroup: A per-document group of scored chunks returned by search
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
