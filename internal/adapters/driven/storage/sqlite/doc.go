// Package sqlite provides a unified SQLite-based implementation of the
// persistence ports: documents, chunks, ingestion jobs and scheduler state.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It implements multiple
// store interfaces through a single database connection:
//
//   - DocumentStore: document and chunk persistence
//   - VectorIndex: cosine similarity search over stored embeddings
//   - SearchEngine: keyword substring search over chunk content
//   - IngestionJobStore: durable pipeline state per document
//   - SchedulerStore: maintenance task state and run history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files.
//
// # Data Location
//
// By default, the database is stored at ~/.planroom/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
