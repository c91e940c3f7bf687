package driven

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// RunStore persists batch run reports.
type RunStore interface {
	// SaveRun stores or replaces a report.
	SaveRun(ctx context.Context, report *domain.BatchReport) error

	// GetRun retrieves a report by run ID.
	// Returns domain.ErrNotFound if the run does not exist.
	GetRun(ctx context.Context, runID string) (*domain.BatchReport, error)

	// ListRuns returns the most recent reports first.
	ListRuns(ctx context.Context, limit int) ([]domain.BatchReport, error)
}
