package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
)

// Ensure JobStore implements the interface.
var _ driven.IngestionJobStore = (*JobStore)(nil)

// JobStore is an in-memory implementation of driven.IngestionJobStore.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.IngestionJob
}

// NewJobStore creates a new in-memory ingestion job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]domain.IngestionJob),
	}
}

// SaveJob stores or updates an ingestion job.
func (s *JobStore) SaveJob(_ context.Context, job *domain.IngestionJob) error {
	if job == nil || job.DocumentID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.DocumentID] = *job
	return nil
}

// GetJob retrieves the job for a document.
func (s *JobStore) GetJob(_ context.Context, documentID string) (*domain.IngestionJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

// ListJobs returns jobs in the given states, oldest first.
func (s *JobStore) ListJobs(_ context.Context, states ...domain.IngestionState) ([]domain.IngestionJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.IngestionJob
	for id := range s.jobs {
		job := s.jobs[id]
		if len(states) > 0 && !containsState(states, job.State) {
			continue
		}
		result = append(result, job)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].DocumentID < result[j].DocumentID
	})

	return result, nil
}

func containsState(states []domain.IngestionState, state domain.IngestionState) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

// DeleteJob removes a document's job. Missing jobs are ignored.
func (s *JobStore) DeleteJob(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, documentID)
	return nil
}
