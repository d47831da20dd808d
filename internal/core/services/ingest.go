package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/planroomhq/planroom-cli/internal/chunking"
	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driving"
	"github.com/planroomhq/planroom-cli/internal/logger"
)

// Ensure IngestionOrchestrator implements the interface.
var _ driving.IngestionOrchestrator = (*IngestionOrchestrator)(nil)

// ingestRetryDelay spaces out retries of a failed pipeline step.
const ingestRetryDelay = 2 * time.Second

// IngestionOrchestrator drives documents through the ingestion
// pipeline: Downloading, Extracting (with an OCR detour for scans),
// Chunking, Embedding, Persisting, Finalizing. The per-document state
// is persisted as an IngestionJob so an interrupted pipeline resumes
// from its recorded step instead of restarting.
type IngestionOrchestrator struct {
	docStore   driven.DocumentStore
	jobStore   driven.IngestionJobStore
	blobStore  driven.BlobStore
	extractors driven.ExtractorRegistry
	embedder   driven.EmbeddingService
	ocr        driven.OCRService
	chunker    *chunking.Chunker

	maxAttempts int
	retryDelay  time.Duration

	// sem bounds in-flight pipelines globally to cap load on the
	// embedding and OCR collaborators.
	sem *semaphore.Weighted

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
}

// NewIngestionOrchestrator creates a new ingestion orchestrator.
// The embedder and ocr parameters are optional: without an embedder
// chunks persist without vectors (keyword-only retrieval), without OCR
// scanned documents fail ingestion.
func NewIngestionOrchestrator(
	docStore driven.DocumentStore,
	jobStore driven.IngestionJobStore,
	blobStore driven.BlobStore,
	extractors driven.ExtractorRegistry,
	embedder driven.EmbeddingService,
	ocr driven.OCRService,
	settings domain.IngestionSettings,
) *IngestionOrchestrator {
	defaults := domain.DefaultAppSettings().Ingestion
	if settings.MaxConcurrent <= 0 {
		settings.MaxConcurrent = defaults.MaxConcurrent
	}
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = defaults.MaxAttempts
	}

	return &IngestionOrchestrator{
		docStore:    docStore,
		jobStore:    jobStore,
		blobStore:   blobStore,
		extractors:  extractors,
		embedder:    embedder,
		ocr:         ocr,
		chunker:     chunking.New(),
		maxAttempts: settings.MaxAttempts,
		retryDelay:  ingestRetryDelay,
		sem:         semaphore.NewWeighted(int64(settings.MaxConcurrent)),
		inFlight:    make(map[string]struct{}),
	}
}

// Register stores the raw bytes and creates the document record in
// UPLOADING. It does not start processing.
func (o *IngestionOrchestrator) Register(
	ctx context.Context, req driving.RegisterRequest,
) (*domain.Document, error) {
	if req.ProjectID == "" {
		return nil, fmt.Errorf("%w: project id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("%w: document data is empty", domain.ErrInvalidInput)
	}
	if req.Type != "" && !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, req.Type)
	}

	now := time.Now()
	doc := &domain.Document{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		Title:     strings.TrimSpace(req.Title),
		Type:      req.Type,
		Status:    domain.StatusUploading,
		MIMEType:  req.MIMEType,
		SizeBytes: int64(len(req.Data)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.StorageKey = doc.ID

	if err := o.blobStore.Put(ctx, doc.StorageKey, req.Data); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}
	if err := o.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	logger.Info("Registered document %s: %q (%s, %d bytes)", doc.ID, doc.Title, doc.MIMEType, doc.SizeBytes)
	return doc, nil
}

// Enqueue flips the document to PROCESSING and starts its pipeline
// asynchronously. A job left in a terminal state restarts from the top.
func (o *IngestionOrchestrator) Enqueue(ctx context.Context, documentID string) error {
	return o.launch(ctx, documentID, false)
}

// Reprocess resets the document's pipeline and enqueues it again.
// Existing chunks are replaced during the Persisting step.
func (o *IngestionOrchestrator) Reprocess(ctx context.Context, documentID string) error {
	return o.launch(ctx, documentID, true)
}

// launch starts a pipeline for the document, resetting the job first
// when asked. Only one pipeline may be in flight per document.
func (o *IngestionOrchestrator) launch(ctx context.Context, documentID string, reset bool) error {
	if _, err := o.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}

	if !o.markInFlight(documentID) {
		return domain.ErrAlreadyProcessing
	}

	job, err := o.loadOrCreateJob(ctx, documentID)
	if err != nil {
		o.clearInFlight(documentID)
		return err
	}
	if reset || job.State.IsTerminal() {
		job.State = domain.StateDownloading
		job.Attempts = 0
		job.LastError = ""
	}
	job.UpdatedAt = time.Now()
	if err := o.jobStore.SaveJob(ctx, job); err != nil {
		o.clearInFlight(documentID)
		return fmt.Errorf("save job: %w", err)
	}

	if err := o.docStore.SetStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		o.clearInFlight(documentID)
		return fmt.Errorf("set status: %w", err)
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.clearInFlight(documentID)

		// Pipelines outlive the enqueueing request.
		ctx := context.Background()
		if err := o.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer o.sem.Release(1)

		o.runPipeline(ctx, job)
	}()
	return nil
}

// Status reports a document's pipeline progress.
func (o *IngestionOrchestrator) Status(
	ctx context.Context, documentID string,
) (*driving.IngestionStatus, error) {
	doc, err := o.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	status := &driving.IngestionStatus{
		DocumentID: documentID,
		Status:     doc.Status,
	}

	job, err := o.jobStore.GetJob(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		// Never enqueued.
		return status, nil
	}
	if err != nil {
		return nil, err
	}

	status.State = job.State
	status.Attempts = job.Attempts
	status.LastError = job.LastError
	return status, nil
}

// ResumePending re-enqueues documents whose pipelines were interrupted:
// a persisted job in a non-terminal state with nothing in flight.
// Returns how many were requeued.
func (o *IngestionOrchestrator) ResumePending(ctx context.Context) (int, error) {
	jobs, err := o.jobStore.ListJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list jobs: %w", err)
	}

	resumed := 0
	for i := range jobs {
		job := &jobs[i]
		if job.State.IsTerminal() {
			continue
		}
		if err := o.Enqueue(ctx, job.DocumentID); err != nil {
			if errors.Is(err, domain.ErrAlreadyProcessing) {
				continue
			}
			logger.Warn("Resume %s: %v", job.DocumentID, err)
			continue
		}
		logger.Info("Resuming interrupted pipeline for %s from %s", job.DocumentID, job.State)
		resumed++
	}
	return resumed, nil
}

// InFlight returns the number of pipelines currently running.
func (o *IngestionOrchestrator) InFlight() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.inFlight)
}

// Shutdown waits for in-flight pipelines to finish or the context to
// expire. Pipelines are not cancelled; an expired context abandons the
// wait, and interrupted jobs resume on next start.
func (o *IngestionOrchestrator) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// --- Pipeline execution ---

// pipelineState carries the in-memory intermediates of one run. After a
// process restart these are empty and each step lazily rebuilds what it
// needs; the derivation is deterministic, so rebuilt chunks are
// identical to the originals.
type pipelineState struct {
	data      []byte
	text      string
	pageCount int
	chunks    []domain.Chunk

	// extracted and embedded record which derivations ran this run, so
	// later steps can tell a legitimate zero value from a missing one.
	extracted bool
	embedded  bool
}

// runPipeline executes the state machine for one document until a
// terminal state. Transient step failures retry the same step against
// the whole-pipeline attempt budget; fatal failures and an exhausted
// budget transition the document to ERROR.
func (o *IngestionOrchestrator) runPipeline(ctx context.Context, job *domain.IngestionJob) {
	logger.Section("Ingestion Pipeline")
	logger.Info("Document %s: starting at %s (attempt %d/%d)",
		job.DocumentID, job.State, job.Attempts+1, o.maxAttempts)

	doc, err := o.docStore.GetDocument(ctx, job.DocumentID)
	if err != nil {
		logger.Warn("Document %s: lookup failed, abandoning pipeline: %v", job.DocumentID, err)
		o.fail(ctx, job, err)
		return
	}

	st := &pipelineState{}
	for !job.State.IsTerminal() {
		next, err := o.step(ctx, doc, job, st)
		if err == nil {
			o.transition(ctx, job, next)
			continue
		}

		if isFatalIngestErr(err) {
			logger.Warn("Document %s: fatal failure in %s: %v", job.DocumentID, job.State, err)
			o.fail(ctx, job, err)
			return
		}

		job.Attempts++
		if job.Attempts >= o.maxAttempts {
			logger.Warn("Document %s: attempt budget exhausted in %s: %v", job.DocumentID, job.State, err)
			o.fail(ctx, job, err)
			return
		}

		logger.Warn("Document %s: %s failed (attempt %d/%d), retrying: %v",
			job.DocumentID, job.State, job.Attempts, o.maxAttempts, err)
		o.recordRetry(ctx, job, err)
		if o.retryDelay > 0 {
			time.Sleep(o.retryDelay)
		}
	}

	logger.Info("Document %s: ingestion complete", job.DocumentID)
}

// step runs the handler for the job's current state and returns the
// state to transition to on success.
func (o *IngestionOrchestrator) step(
	ctx context.Context, doc *domain.Document, job *domain.IngestionJob, st *pipelineState,
) (domain.IngestionState, error) {
	switch job.State {
	case domain.StateDownloading:
		if err := o.ensureData(ctx, doc, st); err != nil {
			return "", err
		}
		return domain.StateExtracting, nil

	case domain.StateExtracting:
		if err := o.ensureData(ctx, doc, st); err != nil {
			return "", err
		}
		extraction, err := o.extractors.Extract(ctx, st.data, doc.MIMEType)
		if err != nil {
			return "", fmt.Errorf("extract: %w", err)
		}
		st.text = extraction.Text
		st.pageCount = extraction.PageCount
		if extraction.IsScanned {
			return domain.StateOCR, nil
		}
		st.extracted = true
		return domain.StateChunking, nil

	case domain.StateOCR:
		if err := o.ensureData(ctx, doc, st); err != nil {
			return "", err
		}
		if err := o.runOCR(ctx, doc, st); err != nil {
			return "", err
		}
		return domain.StateChunking, nil

	case domain.StateChunking:
		if err := o.ensureText(ctx, doc, st); err != nil {
			return "", err
		}
		chunks := o.chunker.Chunk(doc.ID, st.text)
		if len(chunks) == 0 {
			// A content problem, not an infrastructure one: retrying
			// would reproduce the same empty output.
			return "", fmt.Errorf("%w: no chunks from %d extracted characters",
				domain.ErrEmptyExtraction, len(st.text))
		}
		st.chunks = chunks
		logger.Debug("Document %s: %d chunks", doc.ID, len(chunks))
		return domain.StateEmbedding, nil

	case domain.StateEmbedding:
		if err := o.ensureChunks(ctx, doc, st); err != nil {
			return "", err
		}
		if o.embedder == nil {
			logger.Debug("Document %s: no embedding service, chunks stay keyword-only", doc.ID)
			return domain.StatePersisting, nil
		}
		if err := o.embedChunks(ctx, st); err != nil {
			return "", err
		}
		return domain.StatePersisting, nil

	case domain.StatePersisting:
		if err := o.ensureChunks(ctx, doc, st); err != nil {
			return "", err
		}
		if o.embedder != nil && !st.embedded {
			if err := o.embedChunks(ctx, st); err != nil {
				return "", err
			}
		}
		// Delete-then-insert keyed by document id: re-running after a
		// crash never duplicates chunks.
		if err := o.docStore.ReplaceChunks(ctx, doc.ID, st.chunks); err != nil {
			return "", fmt.Errorf("persist chunks: %w", err)
		}
		return domain.StateFinalizing, nil

	case domain.StateFinalizing:
		pageCount, err := o.resolvePageCount(ctx, doc, st)
		if err != nil {
			return "", err
		}
		// The publish barrier: page count and READY flip atomically,
		// and only now do the chunks become visible to retrieval.
		if err := o.docStore.FinalizeDocument(ctx, doc.ID, pageCount); err != nil {
			return "", fmt.Errorf("finalize: %w", err)
		}
		return domain.StateReady, nil

	default:
		return "", fmt.Errorf("%w: unknown pipeline state %q", domain.ErrInvalidInput, job.State)
	}
}

// ensureData loads the raw bytes from blob storage if this run has not
// already.
func (o *IngestionOrchestrator) ensureData(ctx context.Context, doc *domain.Document, st *pipelineState) error {
	if st.data != nil {
		return nil
	}
	data, err := o.blobStore.Get(ctx, doc.StorageKey)
	if err != nil {
		return fmt.Errorf("download blob: %w", err)
	}
	st.data = data
	return nil
}

// ensureText extracts (and OCRs, for scans) if this run has not
// already. Used when a resumed pipeline enters downstream of
// Extracting with empty in-memory state.
func (o *IngestionOrchestrator) ensureText(ctx context.Context, doc *domain.Document, st *pipelineState) error {
	if st.extracted {
		return nil
	}
	if err := o.ensureData(ctx, doc, st); err != nil {
		return err
	}
	extraction, err := o.extractors.Extract(ctx, st.data, doc.MIMEType)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	st.text = extraction.Text
	st.pageCount = extraction.PageCount
	if extraction.IsScanned {
		return o.runOCR(ctx, doc, st)
	}
	st.extracted = true
	return nil
}

// ensureChunks re-chunks if this run has not already. Chunk IDs derive
// from the document id and index, so a rebuild reproduces the same set.
func (o *IngestionOrchestrator) ensureChunks(ctx context.Context, doc *domain.Document, st *pipelineState) error {
	if st.chunks != nil {
		return nil
	}
	if err := o.ensureText(ctx, doc, st); err != nil {
		return err
	}
	chunks := o.chunker.Chunk(doc.ID, st.text)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks from %d extracted characters",
			domain.ErrEmptyExtraction, len(st.text))
	}
	st.chunks = chunks
	return nil
}

// runOCR recognises the scanned document and joins the page texts with
// form feeds so the chunker sees page boundaries.
func (o *IngestionOrchestrator) runOCR(ctx context.Context, doc *domain.Document, st *pipelineState) error {
	if o.ocr == nil {
		return fmt.Errorf("%w: document %s looks scanned and no OCR service is configured",
			domain.ErrOCRUnavailable, doc.ID)
	}

	logger.Info("Document %s: scanned, falling back to OCR (%d page hint)", doc.ID, st.pageCount)
	pages, err := o.ocr.Recognize(ctx, st.data, st.pageCount)
	if err != nil {
		return fmt.Errorf("ocr: %w", err)
	}

	st.text = strings.Join(pages, "\f")
	if len(pages) > 0 {
		st.pageCount = len(pages)
	}
	st.extracted = true
	return nil
}

// embedChunks generates embeddings for all chunk texts in one
// order-preserving batch and attaches them.
func (o *IngestionOrchestrator) embedChunks(ctx context.Context, st *pipelineState) error {
	texts := make([]string, len(st.chunks))
	for i := range st.chunks {
		texts[i] = st.chunks[i].Content
	}

	embeddings, err := o.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(st.chunks) {
		return fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(embeddings), len(st.chunks))
	}

	for i := range st.chunks {
		st.chunks[i].Embedding = embeddings[i]
	}
	st.embedded = true
	return nil
}

// resolvePageCount returns the page count for finalization. A pipeline
// resumed directly into Finalizing has no extraction in memory, but its
// chunks are already persisted; their page markers recover the count.
func (o *IngestionOrchestrator) resolvePageCount(
	ctx context.Context, doc *domain.Document, st *pipelineState,
) (int, error) {
	if st.extracted {
		return st.pageCount, nil
	}

	chunks, err := o.docStore.GetChunks(ctx, doc.ID)
	if err != nil {
		return 0, fmt.Errorf("get chunks: %w", err)
	}
	pageCount := 0
	for _, chunk := range chunks {
		if chunk.PageNumber != nil && *chunk.PageNumber > pageCount {
			pageCount = *chunk.PageNumber
		}
	}
	return pageCount, nil
}

// --- Transitions and bookkeeping ---

// isFatalIngestErr reports whether the error must not be retried.
// Unsupported formats and empty extractions are content problems;
// missing OCR is a configuration problem. All leave the document
// reprocessable.
func isFatalIngestErr(err error) bool {
	return errors.Is(err, domain.ErrUnsupportedFormat) ||
		errors.Is(err, domain.ErrEmptyExtraction) ||
		errors.Is(err, domain.ErrOCRUnavailable)
}

// transition advances the job to the next state and persists it.
func (o *IngestionOrchestrator) transition(ctx context.Context, job *domain.IngestionJob, next domain.IngestionState) {
	logger.Debug("Document %s: %s -> %s", job.DocumentID, job.State, next)
	job.State = next
	job.LastError = ""
	job.UpdatedAt = time.Now()
	if err := o.jobStore.SaveJob(ctx, job); err != nil {
		logger.Warn("Document %s: job save failed: %v", job.DocumentID, err)
	}
}

// recordRetry persists the failure without leaving the current state.
func (o *IngestionOrchestrator) recordRetry(ctx context.Context, job *domain.IngestionJob, cause error) {
	job.LastError = cause.Error()
	job.UpdatedAt = time.Now()
	if err := o.jobStore.SaveJob(ctx, job); err != nil {
		logger.Warn("Document %s: job save failed: %v", job.DocumentID, err)
	}
}

// fail transitions the job and the document to their error states.
// The document stays reprocessable.
func (o *IngestionOrchestrator) fail(ctx context.Context, job *domain.IngestionJob, cause error) {
	job.State = domain.StateErrored
	job.LastError = cause.Error()
	job.UpdatedAt = time.Now()
	if err := o.jobStore.SaveJob(ctx, job); err != nil {
		logger.Warn("Document %s: job save failed: %v", job.DocumentID, err)
	}
	if err := o.docStore.SetStatus(ctx, job.DocumentID, domain.StatusError, cause.Error()); err != nil {
		logger.Warn("Document %s: status update failed: %v", job.DocumentID, err)
	}
}

// loadOrCreateJob returns the existing job for the document or a fresh
// one at the top of the pipeline.
func (o *IngestionOrchestrator) loadOrCreateJob(ctx context.Context, documentID string) (*domain.IngestionJob, error) {
	job, err := o.jobStore.GetJob(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.IngestionJob{
			DocumentID: documentID,
			State:      domain.StateDownloading,
			CreatedAt:  time.Now(),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// markInFlight records the document as having a live pipeline. Returns
// false if one is already running.
func (o *IngestionOrchestrator) markInFlight(documentID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, running := o.inFlight[documentID]; running {
		return false
	}
	o.inFlight[documentID] = struct{}{}
	return true
}

// clearInFlight removes the document's in-flight mark.
func (o *IngestionOrchestrator) clearInFlight(documentID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, documentID)
}
