package driven

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// RecognizerSource reads already-materialised recognizer outputs keyed by
// (document, recognizer kind).
type RecognizerSource interface {
	// ListBatches returns the batches available for the configured resource.
	ListBatches(ctx context.Context) ([]string, error)

	// ListDocuments returns the documents of a batch, ordered by name.
	ListDocuments(ctx context.Context, batch string) ([]domain.DocumentRef, error)

	// Base reads the base document (passages, sentences, text).
	// Returns domain.ErrUnresolvableDocument when the base output is absent
	// or has no passages.
	Base(ctx context.Context, ref domain.DocumentRef) (*BaseDocument, error)

	// Load reads one recognizer's output for a document.
	// Returns nil and no error when the recognizer produced no output.
	// Returns domain.ErrMalformedOutput when the output cannot be parsed.
	Load(ctx context.Context, ref domain.DocumentRef, kind domain.RecognizerKind) (*domain.RecognizerOutput, error)

	// WatchRoot returns the directory new batches appear in.
	WatchRoot() string
}

// BaseDocument is the document skeleton merged annotations are attached to.
type BaseDocument struct {
	// Document holds passages and sentences; its annotations are discarded.
	Document *domain.Document

	// Digest fingerprints the base bytes.
	Digest string
}
