package bioconcept

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestKinds(t *testing.T) {
	kinds := New().Kinds()
	assert.ElementsMatch(t, []domain.RecognizerKind{
		domain.RecognizerGene, domain.RecognizerDisease, domain.RecognizerChemical,
	}, kinds)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_InvalidRequest(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().Normalise(context.Background(), &driven.NormaliseRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_Gene(t *testing.T) {
	doc := &domain.Document{
		ID:       "1",
		Passages: []domain.Passage{{Text: "EGFR mutation found in lung cancer patients."}},
	}
	b := domain.NewReferenceDataBuilder()
	b.AddIdentifierSymbol("1956", "EGFR")

	req := &driven.NormaliseRequest{
		Output: &domain.RecognizerOutput{
			DocumentID: "1",
			Kind:       domain.RecognizerGene,
			Annotations: []domain.RawAnnotation{
				{Infons: map[string]string{"type": "Gene", "NCBI Gene": "1956"}, Text: "EGFR", Offset: 0, Length: 4},
			},
		},
		Text:      domain.NewTextIndex(doc),
		Reference: b.Build(),
	}

	anns, err := New().Normalise(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, anns, 1)
	assert.Equal(t, domain.EntityGene, anns[0].Type)
	assert.Equal(t, "1956", anns[0].Identifier)
	assert.Equal(t, "EGFR", anns[0].Symbol)
	assert.Equal(t, "gene", anns[0].Origin)
}

func TestNormalise_EmptyOutput(t *testing.T) {
	req := &driven.NormaliseRequest{
		Text:      domain.NewTextIndex(&domain.Document{}),
		Reference: domain.NewReferenceDataBuilder().Build(),
	}

	anns, err := New().Normalise(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, anns)
}
