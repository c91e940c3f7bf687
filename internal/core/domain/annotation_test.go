package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntityType(t *testing.T) {
	tests := []struct {
		raw       string
		wantType  EntityType
		wantLabel string
		wantOK    bool
	}{
		{"Gene", EntityGene, "", true},
		{"disease", EntityDisease, "", true},
		{" chemical ", EntityChemical, "", true},
		{"mutation", EntityMutation, "", true},
		{"evidirt", EntityEvidence, LabelEvidenceDirection, true},
		{"CLINSIG", EntityEvidence, LabelClinicalSignificance, true},
		{"species", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, label, ok := ParseEntityType(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantType, got)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}

func TestEntityType_IsEvidence(t *testing.T) {
	assert.True(t, EntityEvidence.IsEvidence())
	assert.False(t, EntityGene.IsEvidence())
}

func TestAnnotation_IdentifierParts(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		want       []string
	}{
		{"single", "1956", []string{"1956"}},
		{"composite", "MESH:D008175; MESH:D002289", []string{"MESH:D008175", "MESH:D002289"}},
		{"unknown", UnknownIdentifier, nil},
		{"empty", "", nil},
		{"trailing separator", "1956;", []string{"1956"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Annotation{Identifier: tt.identifier}
			got := a.IdentifierParts()
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCloneAnnotations(t *testing.T) {
	orig := []Annotation{
		{ID: 1, Identifier: "MESH:D008175", CrossRefs: []CrossRef{{Identifier: "DOID:1324", Symbol: "lung cancer"}}},
		{ID: 2, Identifier: "1956"},
	}

	clone := CloneAnnotations(orig)
	require.Len(t, clone, 2)

	clone[0].CrossRefs[0].Symbol = "changed"
	clone[1].ID = 9

	assert.Equal(t, "lung cancer", orig[0].CrossRefs[0].Symbol)
	assert.Equal(t, 2, orig[1].ID)
	assert.Nil(t, CloneAnnotations(nil))
}

func TestSortAnnotations_Stable(t *testing.T) {
	anns := []Annotation{
		{Span: Span{Start: 10, Length: 2}, Origin: "chemical"},
		{Span: Span{Start: 3, Length: 2}, Origin: "gene"},
		{Span: Span{Start: 10, Length: 5}, Origin: "disease"},
	}

	SortAnnotations(anns)
	Renumber(anns)

	assert.Equal(t, "gene", anns[0].Origin)
	assert.Equal(t, "chemical", anns[1].Origin)
	assert.Equal(t, "disease", anns[2].Origin)
	assert.Equal(t, []int{1, 2, 3}, []int{anns[0].ID, anns[1].ID, anns[2].ID})
}
