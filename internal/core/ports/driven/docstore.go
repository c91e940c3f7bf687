package driven

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// DocumentWriter emits a merged document. Each document's output target
// is unique to it, so writers may be called concurrently.
type DocumentWriter interface {
	// Name identifies the writer in logs.
	Name() string

	// Write persists the record.
	Write(ctx context.Context, rec *domain.DocumentRecord) error
}

// DocumentStore persists merged documents and their annotations.
// Backed by SQLite.
type DocumentStore interface {
	// SaveRecord stores or replaces a merged document and sets rec.Seq.
	SaveRecord(ctx context.Context, rec *domain.DocumentRecord) error

	// GetRecord retrieves a record with its merged document.
	// Returns domain.ErrNotFound if the document was never persisted.
	GetRecord(ctx context.Context, documentID string) (*domain.DocumentRecord, error)

	// GetFingerprint returns the fingerprint of a persisted document.
	// Returns an empty string and no error if the document is unknown.
	GetFingerprint(ctx context.Context, documentID string) (string, error)

	// ListRecords returns record summaries (Document is nil), ordered by Seq.
	// An empty batch lists every record.
	ListRecords(ctx context.Context, batch string) ([]domain.DocumentRecord, error)

	// ResolveSeqs maps store sequence numbers back to document IDs.
	ResolveSeqs(ctx context.Context, seqs []uint32) ([]string, error)
}
