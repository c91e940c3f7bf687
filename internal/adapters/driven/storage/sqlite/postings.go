package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
)

// postingsStore implements driven.PostingsStore.
type postingsStore struct {
	store *Store
}

var _ driven.PostingsStore = (*postingsStore)(nil)

// MergePostings ORs each set into the stored bitmap for its key in one
// transaction.
func (s *postingsStore) MergePostings(ctx context.Context, kind domain.PostingKind, postings map[string]*domain.DocSet) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: posting kind %q", domain.ErrInvalidInput, kind)
	}
	if len(postings) == 0 {
		return nil
	}

	keys := make([]string, 0, len(postings))
	for k := range postings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, key := range keys {
		set, err := getPostings(ctx, tx, kind, key)
		if err != nil {
			return err
		}
		set.Or(postings[key])

		data, err := set.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encoding postings %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO postings (kind, key, bitmap) VALUES (?, ?, ?)
			ON CONFLICT(kind, key) DO UPDATE SET bitmap = excluded.bitmap
		`, string(kind), key, data); err != nil {
			return fmt.Errorf("saving postings %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing postings: %w", err)
	}
	return nil
}

// GetPostings returns the stored set for a key, empty if unknown.
func (s *postingsStore) GetPostings(ctx context.Context, kind domain.PostingKind, key string) (*domain.DocSet, error) {
	return getPostings(ctx, s.store.db, kind, key)
}

// CountKeys returns the number of keys stored for a kind.
func (s *postingsStore) CountKeys(ctx context.Context, kind domain.PostingKind) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM postings WHERE kind = ?", string(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting postings: %w", err)
	}
	return n, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getPostings(ctx context.Context, q queryer, kind domain.PostingKind, key string) (*domain.DocSet, error) {
	var data []byte
	err := q.QueryRowContext(ctx, "SELECT bitmap FROM postings WHERE kind = ? AND key = ?",
		string(kind), key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewDocSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	return domain.UnmarshalDocSet(data)
}
