package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
)

// ==================== Ingestion Job Store ====================

// ingestionJobStore implements driven.IngestionJobStore. One row per
// document keyed on document_id; re-enqueueing a document overwrites
// the existing job.
type ingestionJobStore struct {
	store *Store
}

var _ driven.IngestionJobStore = (*ingestionJobStore)(nil)

// SaveJob stores or updates an ingestion job.
func (s *ingestionJobStore) SaveJob(ctx context.Context, job *domain.IngestionJob) error {
	if job == nil || job.DocumentID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingestion_jobs (document_id, state, attempts, last_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			state = excluded.state,
			attempts = excluded.attempts,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at
	`, job.DocumentID, string(job.State), job.Attempts, job.LastError,
		job.CreatedAt, job.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving ingestion job: %w", err)
	}
	return nil
}

// GetJob retrieves the job for a document.
func (s *ingestionJobStore) GetJob(ctx context.Context, documentID string) (*domain.IngestionJob, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT document_id, state, attempts, last_error, created_at, updated_at
		FROM ingestion_jobs WHERE document_id = ?
	`, documentID)

	var job domain.IngestionJob
	var state string
	if err := row.Scan(&job.DocumentID, &state, &job.Attempts, &job.LastError,
		&job.CreatedAt, &job.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning ingestion job: %w", err)
	}
	job.State = domain.IngestionState(state)

	return &job, nil
}

// ListJobs returns jobs in the given states, oldest first. With no
// states it returns every job.
func (s *ingestionJobStore) ListJobs(ctx context.Context, states ...domain.IngestionState) ([]domain.IngestionJob, error) {
	query := `
		SELECT document_id, state, attempts, last_error, created_at, updated_at
		FROM ingestion_jobs`

	var args []any
	if len(states) > 0 {
		query += " WHERE state IN (" + placeholders(len(states)) + ")"
		for _, state := range states {
			args = append(args, string(state))
		}
	}
	query += " ORDER BY created_at ASC, document_id"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ingestion jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.IngestionJob //nolint:prealloc // size unknown from query
	for rows.Next() {
		var job domain.IngestionJob
		var state string
		if err := rows.Scan(&job.DocumentID, &state, &job.Attempts, &job.LastError,
			&job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning ingestion job: %w", err)
		}
		job.State = domain.IngestionState(state)
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingestion jobs: %w", err)
	}

	return jobs, nil
}

// DeleteJob removes a document's job. Deleting a missing job is not an
// error.
func (s *ingestionJobStore) DeleteJob(ctx context.Context, documentID string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM ingestion_jobs WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("deleting ingestion job: %w", err)
	}
	return nil
}
