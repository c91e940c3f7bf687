package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pubminer/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pubminer/internal/core/domain"
)

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	svc := NewDocumentService(docs, memory.NewRunStore())

	require.NoError(t, docs.SaveRecord(ctx, &domain.DocumentRecord{DocumentID: "PMID1", Batch: "b1"}))

	rec, err := svc.Get(ctx, " PMID1 ")
	require.NoError(t, err)
	assert.Equal(t, "b1", rec.Batch)

	_, err = svc.Get(ctx, "PMID2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	svc := NewDocumentService(docs, nil)

	require.NoError(t, docs.SaveRecord(ctx, &domain.DocumentRecord{DocumentID: "PMID1", Batch: "b1"}))
	require.NoError(t, docs.SaveRecord(ctx, &domain.DocumentRecord{DocumentID: "PMID2", Batch: "b2"}))

	recs, err := svc.List(ctx, "b2")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "PMID2", recs[0].DocumentID)
}

func TestDocumentService_Runs(t *testing.T) {
	ctx := context.Background()
	runs := memory.NewRunStore()
	svc := NewDocumentService(memory.NewDocumentStore(), runs)

	now := time.Now()
	require.NoError(t, runs.SaveRun(ctx, &domain.BatchReport{RunID: "old", StartedAt: now.Add(-time.Hour)}))
	require.NoError(t, runs.SaveRun(ctx, &domain.BatchReport{RunID: "new", StartedAt: now}))

	got, err := svc.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].RunID)
}

func TestDocumentService_Runs_NoStore(t *testing.T) {
	svc := NewDocumentService(memory.NewDocumentStore(), nil)
	got, err := svc.Runs(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
