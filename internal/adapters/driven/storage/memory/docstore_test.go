package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	require.NotNil(t, store)
	assert.Equal(t, 0, store.Count())
	assert.Equal(t, "memory", store.Name())
}

func TestDocumentStore_SaveRecord_AssignsSeq(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	a := &domain.DocumentRecord{DocumentID: "PMID1", Batch: "b1", Fingerprint: "f1"}
	b := &domain.DocumentRecord{DocumentID: "PMID2", Batch: "b1"}
	require.NoError(t, store.SaveRecord(ctx, a))
	require.NoError(t, store.SaveRecord(ctx, b))

	assert.Equal(t, uint32(1), a.Seq)
	assert.Equal(t, uint32(2), b.Seq)
}

func TestDocumentStore_SaveRecord_ReplaceKeepsSeq(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveRecord(ctx, &domain.DocumentRecord{DocumentID: "PMID1", Fingerprint: "old"}))
	again := &domain.DocumentRecord{DocumentID: "PMID1", Fingerprint: "new"}
	require.NoError(t, store.SaveRecord(ctx, again))

	assert.Equal(t, uint32(1), again.Seq)
	fp, err := store.GetFingerprint(ctx, "PMID1")
	require.NoError(t, err)
	assert.Equal(t, "new", fp)
	assert.Equal(t, 1, store.Count())
}

func TestDocumentStore_SaveRecord_Invalid(t *testing.T) {
	store := NewDocumentStore()
	err := store.SaveRecord(context.Background(), &domain.DocumentRecord{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentStore_GetRecord_NotFound(t *testing.T) {
	store := NewDocumentStore()
	_, err := store.GetRecord(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_GetFingerprint_Unknown(t *testing.T) {
	store := NewDocumentStore()
	fp, err := store.GetFingerprint(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, fp)
}

func TestDocumentStore_ListRecords(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	doc := &domain.Document{ID: "PMID1"}

	require.NoError(t, store.Write(ctx, &domain.DocumentRecord{DocumentID: "PMID1", Batch: "b1", Document: doc}))
	require.NoError(t, store.Write(ctx, &domain.DocumentRecord{DocumentID: "PMID2", Batch: "b2"}))
	require.NoError(t, store.Write(ctx, &domain.DocumentRecord{DocumentID: "PMID3", Batch: "b1"}))

	b1, err := store.ListRecords(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, b1, 2)
	assert.Equal(t, "PMID1", b1[0].DocumentID)
	assert.Equal(t, "PMID3", b1[1].DocumentID)
	assert.Nil(t, b1[0].Document)

	all, err := store.ListRecords(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	rec, err := store.GetRecord(ctx, "PMID1")
	require.NoError(t, err)
	assert.Same(t, doc, rec.Document)
}

func TestDocumentStore_ResolveSeqs(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveRecord(ctx, &domain.DocumentRecord{DocumentID: "PMID1"}))
	require.NoError(t, store.SaveRecord(ctx, &domain.DocumentRecord{DocumentID: "PMID2"}))

	ids, err := store.ResolveSeqs(ctx, []uint32{2, 9, 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"PMID2", "PMID1"}, ids)
}
