package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
	"github.com/custodia-labs/pubminer/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService reads merged documents and batch run history.
type DocumentService struct {
	docs driven.DocumentStore
	runs driven.RunStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(docs driven.DocumentStore, runs driven.RunStore) *DocumentService {
	return &DocumentService{
		docs: docs,
		runs: runs,
	}
}

// Get retrieves a merged document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.DocumentRecord, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, fmt.Errorf("%w: empty document id", domain.ErrInvalidInput)
	}
	return s.docs.GetRecord(ctx, documentID)
}

// List returns record summaries for a batch.
func (s *DocumentService) List(ctx context.Context, batch string) ([]domain.DocumentRecord, error) {
	return s.docs.ListRecords(ctx, batch)
}

// Runs returns the most recent batch runs first.
func (s *DocumentService) Runs(ctx context.Context, limit int) ([]domain.BatchReport, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.ListRuns(ctx, limit)
}
