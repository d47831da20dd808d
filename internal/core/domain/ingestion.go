package domain

import "time"

// IngestionState is a step in the per-document ingestion pipeline.
// Unlike DocumentStatus it is internal: only the pipeline and its job
// store read it.
type IngestionState string

// Pipeline states, in execution order. OCR is entered only when
// extraction flags the document as scanned.
const (
	StateDownloading IngestionState = "downloading"
	StateExtracting  IngestionState = "extracting"
	StateOCR         IngestionState = "ocr"
	StateChunking    IngestionState = "chunking"
	StateEmbedding   IngestionState = "embedding"
	StatePersisting  IngestionState = "persisting"
	StateFinalizing  IngestionState = "finalizing"
	StateReady       IngestionState = "ready"
	StateErrored     IngestionState = "errored"
)

// IsValid returns true if the state is recognised.
func (s IngestionState) IsValid() bool {
	switch s {
	case StateDownloading, StateExtracting, StateOCR, StateChunking,
		StateEmbedding, StatePersisting, StateFinalizing,
		StateReady, StateErrored:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for the two end states.
func (s IngestionState) IsTerminal() bool {
	return s == StateReady || s == StateErrored
}

// String returns the string representation.
func (s IngestionState) String() string {
	return string(s)
}

// IngestionJob is the persisted finite-state machine for one document's
// ingestion. A restart resumes from the recorded state instead of
// re-running the whole pipeline.
type IngestionJob struct {
	// DocumentID identifies the document being ingested. One job per
	// document; re-ingestion resets the existing job.
	DocumentID string

	// State is the current pipeline step.
	State IngestionState

	// Attempts counts pipeline retries so far. The budget covers the
	// whole pipeline, not each step.
	Attempts int

	// LastError holds the most recent step failure, empty after a
	// clean transition.
	LastError string

	// CreatedAt is when the job was first enqueued.
	CreatedAt time.Time

	// UpdatedAt is when the job last changed state.
	UpdatedAt time.Time
}
