package driven

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// ReferenceLoader builds the shared vocabulary snapshot.
// A failure wraps domain.ErrReferenceData and aborts the batch.
type ReferenceLoader interface {
	Load(ctx context.Context) (*domain.ReferenceData, error)
}
