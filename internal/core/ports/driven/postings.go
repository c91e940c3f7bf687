package driven

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// PostingsStore persists identifier→documents and mention→documents
// bitmaps.
type PostingsStore interface {
	// MergePostings ORs each set into the stored set for its key.
	MergePostings(ctx context.Context, kind domain.PostingKind, postings map[string]*domain.DocSet) error

	// GetPostings returns the stored set for a key.
	// Returns an empty set and no error if the key is unknown.
	GetPostings(ctx context.Context, kind domain.PostingKind, key string) (*domain.DocSet, error)

	// CountKeys returns the number of keys stored for a kind.
	CountKeys(ctx context.Context, kind domain.PostingKind) (int, error)
}
