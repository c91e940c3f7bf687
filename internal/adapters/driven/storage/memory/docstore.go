package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.DocumentStore  = (*DocumentStore)(nil)
	_ driven.DocumentWriter = (*DocumentStore)(nil)
)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It doubles as a DocumentWriter so tests can observe persisted records.
type DocumentStore struct {
	mu      sync.RWMutex
	records map[string]domain.DocumentRecord
	seqs    map[uint32]string
	nextSeq uint32
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		records: make(map[string]domain.DocumentRecord),
		seqs:    make(map[uint32]string),
		nextSeq: 1,
	}
}

// Name identifies the writer in logs.
func (s *DocumentStore) Name() string {
	return "memory"
}

// Write saves the record.
func (s *DocumentStore) Write(ctx context.Context, rec *domain.DocumentRecord) error {
	return s.SaveRecord(ctx, rec)
}

// SaveRecord stores or replaces a record. Re-saved documents keep their Seq.
func (s *DocumentStore) SaveRecord(_ context.Context, rec *domain.DocumentRecord) error {
	if rec == nil || rec.DocumentID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[rec.DocumentID]; ok {
		rec.Seq = existing.Seq
	} else {
		rec.Seq = s.nextSeq
		s.nextSeq++
		s.seqs[rec.Seq] = rec.DocumentID
	}
	s.records[rec.DocumentID] = *rec
	return nil
}

// GetRecord retrieves a record with its merged document.
func (s *DocumentStore) GetRecord(_ context.Context, documentID string) (*domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// GetFingerprint returns the stored fingerprint, or "" for unknown documents.
func (s *DocumentStore) GetFingerprint(_ context.Context, documentID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[documentID].Fingerprint, nil
}

// ListRecords returns record summaries ordered by Seq.
func (s *DocumentStore) ListRecords(_ context.Context, batch string) ([]domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.DocumentRecord
	for id := range s.records {
		rec := s.records[id]
		if batch != "" && rec.Batch != batch {
			continue
		}
		rec.Document = nil
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result, nil
}

// ResolveSeqs maps sequence numbers to document IDs, skipping unknown ones.
func (s *DocumentStore) ResolveSeqs(_ context.Context, seqs []uint32) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(seqs))
	for _, seq := range seqs {
		if id, ok := s.seqs[seq]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Count returns the number of stored records.
func (s *DocumentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
