package driven

import "context"

// BlobStore holds the raw bytes of uploaded documents, keyed by the
// document's storage key. The ingestion pipeline's Downloading step
// reads through this port.
type BlobStore interface {
	// Put stores raw bytes under the key, replacing any existing blob.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the bytes for a key.
	// Returns ErrNotFound if no blob exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the blob for a key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error
}
