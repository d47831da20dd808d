// Package intake watches a drop directory and feeds new files into the
// ingestion pipeline. Dropping a file into the intake directory is the
// automation analog of running `planroom ingest` on it.
package intake

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/planroomhq/planroom-cli/internal/core/ports/driving"
	"github.com/planroomhq/planroom-cli/internal/logger"
)

// defaultDebounce is how long a file must sit unchanged before it is
// considered fully written. Copies into the intake directory arrive as
// a create followed by a burst of writes.
const defaultDebounce = 2 * time.Second

// Config configures the intake watcher.
type Config struct {
	// Dir is the directory to watch. Subdirectories are not watched.
	Dir string

	// ProjectID is the project new documents are filed under.
	ProjectID string

	// Ignore lists glob patterns matched against the base name.
	// Matching files are skipped. Hidden files are always skipped.
	Ignore []string

	// Debounce overrides the stability window. Zero means the default.
	Debounce time.Duration
}

// Watcher registers and enqueues files dropped into the intake
// directory.
type Watcher struct {
	config Config
	orch   driving.IngestionOrchestrator

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// New creates a watcher. The orchestrator receives one Register +
// Enqueue per stable file.
func New(config Config, orch driving.IngestionOrchestrator) (*Watcher, error) {
	if config.Dir == "" {
		return nil, errors.New("intake: directory is required")
	}
	if config.ProjectID == "" {
		return nil, errors.New("intake: project id is required")
	}
	if orch == nil {
		return nil, errors.New("intake: ingestion orchestrator is required")
	}
	if config.Debounce <= 0 {
		config.Debounce = defaultDebounce
	}

	return &Watcher{
		config:  config,
		orch:    orch,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run watches the intake directory until the context is cancelled.
// Files already present at startup are swept up as well.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	if err := watcher.Add(w.config.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.config.Dir, err)
	}

	logger.Info("Watching %s (project %s)", w.config.Dir, w.config.ProjectID)

	w.sweepExisting(ctx)

	for {
		select {
		case <-ctx.Done():
			w.drainTimers()
			w.wg.Wait()
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Intake watcher error: %v", err)
		}
	}
}

// handleEvent schedules ingestion for create/write events on eligible
// files. Returns true when the event armed or reset a debounce timer.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	if !w.eligible(event.Name) {
		return false
	}

	w.schedule(ctx, event.Name)
	return true
}

// eligible reports whether the path names a regular, non-hidden,
// non-ignored file. Directories and anything inside them are skipped.
func (w *Watcher) eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	for _, pattern := range w.config.Ignore {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return false
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		// Gone already (temp file from an editor); nothing to ingest.
		return false
	}
	return info.Mode().IsRegular()
}

// schedule arms a debounce timer for the path, or pushes an existing
// one back. The file is ingested once it has been quiet for the full
// debounce window.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.config.Debounce)
		return
	}

	w.wg.Add(1)
	w.pending[path] = time.AfterFunc(w.config.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.ingest(ctx, path)
	})
}

// sweepExisting schedules files already sitting in the intake
// directory, so a watcher started after a batch drop still picks the
// batch up.
func (w *Watcher) sweepExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.config.Dir)
	if err != nil {
		logger.Warn("Intake sweep: %v", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.config.Dir, entry.Name())
		if w.eligible(path) {
			w.schedule(ctx, path)
		}
	}
}

// drainTimers cancels armed timers on shutdown. Timers that already
// fired are waited for via the WaitGroup.
func (w *Watcher) drainTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, timer := range w.pending {
		if timer.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
}

// ingest reads the stable file and hands it to the orchestrator.
func (w *Watcher) ingest(ctx context.Context, path string) {
	defer w.wg.Done()

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Intake read %s: %v", path, err)
		return
	}
	if len(data) == 0 {
		return
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc, err := w.orch.Register(ctx, driving.RegisterRequest{
		ProjectID: w.config.ProjectID,
		Title:     title,
		Type:      DefaultType(path),
		MIMEType:  DetectMIME(path),
		Data:      data,
	})
	if err != nil {
		logger.Warn("Intake register %s: %v", path, err)
		return
	}

	if err := w.orch.Enqueue(ctx, doc.ID); err != nil {
		logger.Warn("Intake enqueue %s: %v", path, err)
		return
	}

	logger.Info("Intake: %s -> %s", filepath.Base(path), doc.ID)
}
