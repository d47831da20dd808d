// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Document and chunk persistence
//   - SearchEngine: Keyword sub-search over chunk content
//   - ExtractorRegistry: Format dispatch for text extraction
//   - BlobStore: Raw document bytes
//   - IngestionJobStore: Persisted pipeline state
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, retrieval
//     runs keyword-only and VectorIndex is also disabled.
//   - VectorIndex: Vector similarity search. Only used when
//     EmbeddingService is configured.
//   - OCRService: Scanned-document fallback. Without it, scanned
//     documents fail ingestion with a reprocessable error.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or chunking package
package driven
