package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.BatchReport
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.BatchReport),
	}
}

// SaveRun stores or replaces a report.
func (s *RunStore) SaveRun(_ context.Context, report *domain.BatchReport) error {
	if report == nil || report.RunID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[report.RunID] = *report
	return nil
}

// GetRun retrieves a report by run ID.
func (s *RunStore) GetRun(_ context.Context, runID string) (*domain.BatchReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &report, nil
}

// ListRuns returns the most recent reports first.
func (s *RunStore) ListRuns(_ context.Context, limit int) ([]domain.BatchReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.BatchReport, 0, len(s.runs))
	for id := range s.runs {
		result = append(result, s.runs[id])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
