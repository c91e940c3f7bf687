package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
	"github.com/custodia-labs/pubminer/internal/core/ports/driving"
	"github.com/custodia-labs/pubminer/internal/logger"
)

// Ensure BatchCoordinator implements the interface.
var _ driving.BatchCoordinator = (*BatchCoordinator)(nil)

// DefaultWorkers is the worker pool size when none is configured.
const DefaultWorkers = 20

// BatchConfig holds coordinator settings.
type BatchConfig struct {
	// Resource is recorded on every report (PUBMED or PMC).
	Resource string

	// Workers is the pool size; zero means DefaultWorkers.
	Workers int

	// ProgressInterval bounds how often progress is logged.
	ProgressInterval time.Duration
}

// BatchCoordinator merges the documents of a batch with a fixed-size
// worker pool draining a shared queue.
type BatchCoordinator struct {
	config    BatchConfig
	source    driven.RecognizerSource
	loader    driven.ReferenceLoader
	factory   driven.StagePipelineFactory
	processor *DocumentProcessor
	runs      driven.RunStore
	postings  driving.PostingsService

	mu      sync.RWMutex
	running bool
	status  driving.BatchStatus
}

// NewBatchCoordinator creates a coordinator.
// The run store and postings service are optional; when postings is set it
// is rebuilt for the batch after every run that persisted documents.
func NewBatchCoordinator(
	config BatchConfig,
	source driven.RecognizerSource,
	loader driven.ReferenceLoader,
	factory driven.StagePipelineFactory,
	processor *DocumentProcessor,
	runs driven.RunStore,
	postings driving.PostingsService,
) *BatchCoordinator {
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers
	}
	if config.ProgressInterval <= 0 {
		config.ProgressInterval = 10 * time.Second
	}
	return &BatchCoordinator{
		config:    config,
		source:    source,
		loader:    loader,
		factory:   factory,
		processor: processor,
		runs:      runs,
		postings:  postings,
	}
}

// Run merges every document of a batch.
//
//nolint:gocognit // Orchestration function coordinating the worker pool
func (c *BatchCoordinator) Run(ctx context.Context, batch string, opts driving.RunOptions) (*domain.BatchReport, error) {
	runID := uuid.NewString()
	if err := c.begin(runID, batch); err != nil {
		return nil, err
	}
	defer c.end()

	// 1. Shared reference data, read-only for the whole run
	ref, err := c.loader.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrReferenceData) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrReferenceData, err)
	}

	// 2. Stage pipeline bound to this snapshot
	pipeline, err := c.factory.Build(ref)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	// 3. Documents to process
	refs, err := c.source.ListDocuments(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	report := &domain.BatchReport{
		RunID:     runID,
		Batch:     batch,
		Resource:  c.config.Resource,
		StartedAt: time.Now(),
		Total:     len(refs),
	}
	progress := driving.BatchProgress{Batch: batch, Total: len(refs)}
	c.setProgress(progress)

	logger.Info("Starting batch %s (%d documents, run %s)", batch, len(refs), runID)

	run := &runContext{
		runID:     runID,
		reference: ref,
		pipeline:  pipeline,
		signature: c.factory.Signature(),
		force:     opts.Force,
	}
	queue := &workQueue{items: refs}
	sometimes := rate.Sometimes{First: 1, Every: 500, Interval: c.config.ProgressInterval}

	var mu sync.Mutex
	record := func(docRef domain.DocumentRef, rec *domain.DocumentRecord, err error) {
		mu.Lock()
		progress.Done++
		progress.Last = docRef.Name
		switch {
		case err != nil:
			failure := domain.DocumentFailure{DocumentID: docRef.Name, Stage: domain.StateFailed, Error: err.Error()}
			var stageErr *domain.StageError
			if errors.As(err, &stageErr) {
				failure.DocumentID = stageErr.DocumentID
				failure.Stage = stageErr.Stage
				failure.Error = stageErr.Err.Error()
			}
			report.Failed++
			report.Failures = append(report.Failures, failure)
			progress.Failed++
			progress.LastState = domain.StateFailed
			logger.Error("Document %s failed during %s: %s", failure.DocumentID, failure.Stage, failure.Error)
		case rec.State == domain.StateSkipped:
			report.Skipped++
			progress.Skipped++
			progress.LastState = domain.StateSkipped
		default:
			report.Persisted++
			progress.Persisted++
			progress.LastState = domain.StatePersisted
		}
		snapshot := progress
		c.setProgress(snapshot)
		mu.Unlock()

		sometimes.Do(func() {
			logger.Info("Batch %s: %d/%d documents (%d failed)", batch, snapshot.Done, snapshot.Total, snapshot.Failed)
		})
		if opts.Progress != nil {
			opts.Progress(snapshot)
		}
	}

	// 4. Worker pool
	workers := c.config.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	if workers > len(refs) {
		workers = len(refs)
	}

	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				docRef, ok := queue.next()
				if !ok {
					return nil
				}
				rec, err := c.process(ctx, docRef, run)
				record(docRef, rec, err)
			}
		})
	}
	runErr := g.Wait()

	report.EndedAt = time.Now()
	logger.Info("Batch %s complete: %d persisted, %d failed, %d skipped in %s",
		batch, report.Persisted, report.Failed, report.Skipped, report.Duration().Round(time.Millisecond))

	// 5. Run history and postings
	saveCtx := context.WithoutCancel(ctx)
	if c.runs != nil {
		if err := c.runs.SaveRun(saveCtx, report); err != nil {
			logger.Warn("Failed to save run %s: %v", runID, err)
		}
	}
	if runErr != nil {
		return report, fmt.Errorf("batch %s interrupted: %w", batch, runErr)
	}
	if c.postings != nil && report.Persisted > 0 {
		if _, err := c.postings.Rebuild(ctx, batch); err != nil {
			logger.Warn("Failed to rebuild postings for %s: %v", batch, err)
		}
	}

	return report, nil
}

// process merges one document. A panic fails that document only.
func (c *BatchCoordinator) process(ctx context.Context, docRef domain.DocumentRef, run *runContext) (rec *domain.DocumentRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = &domain.StageError{DocumentID: docRef.Name, Stage: domain.StateFailed, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return c.processor.Process(ctx, docRef, run)
}

// RunAll runs every discoverable batch in name order.
// A batch that cannot start does not stop the others.
func (c *BatchCoordinator) RunAll(ctx context.Context, opts driving.RunOptions) ([]*domain.BatchReport, error) {
	batches, err := c.source.ListBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}

	var reports []*domain.BatchReport
	var errs []error
	for _, batch := range batches {
		report, err := c.Run(ctx, batch, opts)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("batch %s: %w", batch, err))
			if ctx.Err() != nil {
				break
			}
		}
	}

	return reports, errors.Join(errs...)
}

// Batches lists the discoverable batches.
func (c *BatchCoordinator) Batches(ctx context.Context) ([]string, error) {
	return c.source.ListBatches(ctx)
}

// Status returns the state of the current or last run.
func (c *BatchCoordinator) Status() driving.BatchStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *BatchCoordinator) begin(runID, batch string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return fmt.Errorf("%w: %s", domain.ErrBatchInProgress, c.status.Progress.Batch)
	}
	c.running = true
	c.status = driving.BatchStatus{
		Running:  true,
		RunID:    runID,
		Progress: driving.BatchProgress{Batch: batch},
	}
	return nil
}

func (c *BatchCoordinator) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.status.Running = false
}

func (c *BatchCoordinator) setProgress(p driving.BatchProgress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Progress = p
}

// workQueue is the shared queue of pending documents. Dequeue is the only
// mutation workers share.
type workQueue struct {
	mu    sync.Mutex
	items []domain.DocumentRef
	pos   int
}

func (q *workQueue) next() (domain.DocumentRef, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pos >= len(q.items) {
		return domain.DocumentRef{}, false
	}
	item := q.items[q.pos]
	q.pos++
	return item, true
}
