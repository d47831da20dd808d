package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driving"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// stuckDocumentAge is how long a document may sit in PROCESSING before
// the requeue task treats it as abandoned by a dead process.
const stuckDocumentAge = 10 * time.Minute

// Scheduler manages background maintenance task execution.
// It is a pure core service with no external control API.
type Scheduler struct {
	config   domain.SchedulerConfig
	store    driven.SchedulerStore
	orch     driving.IngestionOrchestrator
	docStore driven.DocumentStore

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	orch driving.IngestionOrchestrator,
	docStore driven.DocumentStore,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		orch:     orch,
		docStore: docStore,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Initialise tasks in store
	if err := s.initialiseTasks(ctx); err != nil {
		log.Printf("scheduler: failed to initialise tasks: %v", err)
	}

	// Run the main scheduler loop
	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()

	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	if taskCfg := s.config.GetTaskConfig(domain.TaskIDRequeueStuck); taskCfg.Enabled {
		if err := s.ensureTask(ctx, domain.TaskIDRequeueStuck, "Requeue Stuck Documents", taskCfg); err != nil {
			return err
		}
	}

	if taskCfg := s.config.GetTaskConfig(domain.TaskIDPruneOrphans); taskCfg.Enabled {
		if err := s.ensureTask(ctx, domain.TaskIDPruneOrphans, "Prune Orphan Chunks", taskCfg); err != nil {
			return err
		}
	}

	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		// Create new task
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	} else {
		// Update interval if changed
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			// Recalculate next run from now
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	// Use a 1-minute ticker to check for due tasks
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		log.Printf("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || task.NextRun.Before(now) || task.NextRun.Equal(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single task.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDRequeueStuck:
			result.ItemsProcessed, err = s.runRequeueStuck(ctx)
		case domain.TaskIDPruneOrphans:
			result.ItemsProcessed, err = s.runPruneOrphans(ctx)
		default:
			log.Printf("scheduler: unknown task ID: %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		// Update task state
		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			log.Printf("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}

		// Record result for history
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			log.Printf("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}

		// Prune old history (keep last 100 results per task)
		if pruneErr := s.store.PruneHistory(ctx, 100); pruneErr != nil {
			log.Printf("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

// runRequeueStuck re-enqueues documents stranded in PROCESSING. A
// document counts as stranded when nothing has touched it for
// stuckDocumentAge, which happens when the owning process died
// mid-pipeline.
func (s *Scheduler) runRequeueStuck(ctx context.Context) (int, error) {
	if s.orch == nil {
		return 0, nil
	}

	docs, err := s.docStore.ListDocuments(ctx, driven.DocumentFilter{
		Statuses:      []domain.DocumentStatus{domain.StatusProcessing},
		UpdatedBefore: time.Now().Add(-stuckDocumentAge),
	})
	if err != nil {
		return 0, err
	}

	requeued := 0
	for _, doc := range docs {
		if err := s.orch.Enqueue(ctx, doc.ID); err != nil {
			// In flight in this process means not stuck at all.
			if errors.Is(err, domain.ErrAlreadyProcessing) {
				continue
			}
			log.Printf("scheduler: failed to requeue document %s: %v", doc.ID, err)
			continue
		}
		requeued++
	}

	return requeued, nil
}

// runPruneOrphans deletes chunks whose document no longer exists.
func (s *Scheduler) runPruneOrphans(ctx context.Context) (int, error) {
	return s.docStore.PruneOrphanChunks(ctx)
}
