package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pubminer/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pubminer/internal/core/domain"
)

func postingsDoc(id string, passages ...domain.Passage) *domain.Document {
	return &domain.Document{ID: id, Passages: passages}
}

func passageWith(section string, anns ...domain.Annotation) domain.Passage {
	return domain.Passage{
		Infons:      map[string]string{"section_type": section},
		Annotations: anns,
	}
}

func TestCollectPostings(t *testing.T) {
	doc := postingsDoc("PMC1",
		passageWith("ABSTRACT",
			domain.Annotation{Type: domain.EntityGene, Text: "EGFR", Identifier: "1956", Symbol: "EGFR"},
			domain.Annotation{Type: domain.EntityGene, Text: "egfr", Identifier: "1956", Symbol: "EGFR"},
			domain.Annotation{Type: domain.EntityChemical, Text: "Gefitinib", Identifier: "MESH:D000077156;CHEBI:49668", Symbol: "gefitinib;gefitinib"},
			domain.Annotation{Type: domain.EntityMutation, Text: "L858R", Identifier: "p|SUB|L|858|R", Symbol: domain.UnknownSymbol},
			domain.Annotation{Type: domain.EntityEvidence, Text: "sensitive", Identifier: domain.UnknownIdentifier, Symbol: "sensitive"},
		),
		passageWith("REF",
			domain.Annotation{Type: domain.EntityGene, Text: "KRAS", Identifier: "3845", Symbol: "KRAS"},
		),
		passageWith("table",
			domain.Annotation{Type: domain.EntityGene, Text: "ALK", Identifier: "238", Symbol: "ALK"},
		),
	)

	ids, mentions := CollectPostings(doc)
	assert.Equal(t, []string{"1956", "MESH:D000077156", "CHEBI:49668"}, ids)
	assert.Equal(t, []string{"egfr", "gefitinib", "l858r"}, mentions)
}

func TestPostingsService_RebuildAndLookup(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	svc := NewPostingsService(docs, memory.NewPostingsStore())

	egfrAnn := domain.Annotation{Type: domain.EntityGene, Text: "EGFR", Identifier: "1956", Symbol: "EGFR"}
	require.NoError(t, docs.SaveRecord(ctx, &domain.DocumentRecord{
		DocumentID: "PMID1", Batch: "b1", State: domain.StatePersisted,
		Document: postingsDoc("PMID1", passageWith("ABSTRACT", egfrAnn)),
	}))
	require.NoError(t, docs.SaveRecord(ctx, &domain.DocumentRecord{
		DocumentID: "PMID2", Batch: "b1", State: domain.StatePersisted,
		Document: postingsDoc("PMID2", passageWith("TITLE", egfrAnn)),
	}))
	require.NoError(t, docs.SaveRecord(ctx, &domain.DocumentRecord{
		DocumentID: "PMID3", Batch: "b2", State: domain.StatePersisted,
		Document: postingsDoc("PMID3", passageWith("TITLE", egfrAnn)),
	}))

	stats, err := svc.Rebuild(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 1, stats.Identifiers)
	assert.Equal(t, 1, stats.Mentions)

	ids, err := svc.Lookup(ctx, domain.PostingIdentifier, "1956")
	require.NoError(t, err)
	assert.Equal(t, []string{"PMID1", "PMID2"}, ids)

	// Rebuilding another batch merges into the stored sets.
	_, err = svc.Rebuild(ctx, "b2")
	require.NoError(t, err)

	ids, err = svc.Lookup(ctx, domain.PostingMention, "  EGFR ")
	require.NoError(t, err)
	assert.Equal(t, []string{"PMID1", "PMID2", "PMID3"}, ids)
}

func TestPostingsService_Lookup_Unknown(t *testing.T) {
	svc := NewPostingsService(memory.NewDocumentStore(), memory.NewPostingsStore())

	ids, err := svc.Lookup(context.Background(), domain.PostingIdentifier, "9999")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPostingsService_Lookup_Invalid(t *testing.T) {
	svc := NewPostingsService(memory.NewDocumentStore(), memory.NewPostingsStore())

	_, err := svc.Lookup(context.Background(), domain.PostingKind("symbol"), "EGFR")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Lookup(context.Background(), domain.PostingMention, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPostingsService_Rebuild_IgnoresUnpersisted(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	svc := NewPostingsService(docs, memory.NewPostingsStore())

	require.NoError(t, docs.SaveRecord(ctx, &domain.DocumentRecord{DocumentID: "PMID1", State: domain.StateFailed}))
	require.NoError(t, docs.SaveRecord(ctx, &domain.DocumentRecord{DocumentID: "PMID2", State: domain.StatePersisted}))

	stats, err := svc.Rebuild(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Documents)
}
