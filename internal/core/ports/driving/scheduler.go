package driving

import "context"

// Scheduler manages background maintenance tasks like requeueing stuck
// documents and pruning orphaned chunks.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or an error occurs.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error
}
