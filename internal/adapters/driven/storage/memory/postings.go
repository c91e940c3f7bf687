package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
)

// Ensure PostingsStore implements the interface.
var _ driven.PostingsStore = (*PostingsStore)(nil)

// PostingsStore is an in-memory implementation of driven.PostingsStore.
type PostingsStore struct {
	mu       sync.RWMutex
	postings map[domain.PostingKind]map[string]*domain.DocSet
}

// NewPostingsStore creates a new in-memory postings store.
func NewPostingsStore() *PostingsStore {
	return &PostingsStore{
		postings: make(map[domain.PostingKind]map[string]*domain.DocSet),
	}
}

// MergePostings ORs each set into the stored set for its key.
func (s *PostingsStore) MergePostings(_ context.Context, kind domain.PostingKind, postings map[string]*domain.DocSet) error {
	if !kind.IsValid() {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byKey, ok := s.postings[kind]
	if !ok {
		byKey = make(map[string]*domain.DocSet)
		s.postings[kind] = byKey
	}
	for key, set := range postings {
		stored, ok := byKey[key]
		if !ok {
			stored = domain.NewDocSet()
			byKey[key] = stored
		}
		stored.Or(set)
	}
	return nil
}

// GetPostings returns a copy of the stored set for a key.
func (s *PostingsStore) GetPostings(_ context.Context, kind domain.PostingKind, key string) (*domain.DocSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := domain.NewDocSet()
	out.Or(s.postings[kind][key])
	return out, nil
}

// CountKeys returns the number of keys stored for a kind.
func (s *PostingsStore) CountKeys(_ context.Context, kind domain.PostingKind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.postings[kind]), nil
}
