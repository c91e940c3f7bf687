package driving

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// DocumentService reads merged documents and run history.
type DocumentService interface {
	// Get retrieves a merged document by ID.
	Get(ctx context.Context, documentID string) (*domain.DocumentRecord, error)

	// List returns record summaries for a batch, or every record when batch is empty.
	List(ctx context.Context, batch string) ([]domain.DocumentRecord, error)

	// Runs returns the most recent batch runs first.
	Runs(ctx context.Context, limit int) ([]domain.BatchReport, error)
}
