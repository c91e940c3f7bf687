package driving

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// BatchCoordinator drives the per-document merge pipeline over batches of
// recognizer outputs.
type BatchCoordinator interface {
	// Run merges every document of a batch. Document failures are isolated
	// and reported; an error is returned only when the batch cannot start.
	Run(ctx context.Context, batch string, opts RunOptions) (*domain.BatchReport, error)

	// RunAll runs every discoverable batch in name order.
	RunAll(ctx context.Context, opts RunOptions) ([]*domain.BatchReport, error)

	// Batches lists the discoverable batches.
	Batches(ctx context.Context) ([]string, error)

	// Status returns the state of the current run.
	Status() BatchStatus
}

// RunOptions tune a batch run.
type RunOptions struct {
	// Workers overrides the configured pool size when positive.
	Workers int

	// Force re-processes documents whose inputs are unchanged.
	Force bool

	// Progress receives a snapshot after every finished document.
	// It is called from worker goroutines and must not block.
	Progress func(BatchProgress)
}

// BatchProgress is a point-in-time view of a running batch.
type BatchProgress struct {
	Batch     string
	Total     int
	Done      int
	Persisted int
	Failed    int
	Skipped   int

	// Last is the most recently finished document and its state.
	Last      string
	LastState domain.DocumentState
}

// Fraction returns the completed share in [0, 1].
func (p BatchProgress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Done) / float64(p.Total)
}

// BatchStatus represents the current state of the coordinator.
type BatchStatus struct {
	// Running indicates if a batch is in progress.
	Running bool

	// RunID identifies the current or last run.
	RunID string

	// Progress is the latest progress snapshot.
	Progress BatchProgress
}
