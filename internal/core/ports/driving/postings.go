package driving

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// PostingsService derives and queries identifier and mention postings.
type PostingsService interface {
	// Rebuild scans persisted records and merges their postings.
	// An empty batch scans every record.
	Rebuild(ctx context.Context, batch string) (*domain.PostingsStats, error)

	// Lookup returns the IDs of documents posted under key.
	Lookup(ctx context.Context, kind domain.PostingKind, key string) ([]string, error)
}
