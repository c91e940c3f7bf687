package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDocument() *Document {
	return &Document{
		ID: "12345",
		Passages: []Passage{
			{Offset: 0, Text: "EGFR in lung cancer"},
			{
				Offset: 20,
				Text:   "Résumé of EGFR mutations.",
				Annotations: []Annotation{
					{ID: 2, Span: Span{Start: 30, Length: 4}, Text: "EGFR", Type: EntityGene},
				},
			},
		},
	}
}

func TestPassage_Len_CountsCharacters(t *testing.T) {
	p := Passage{Text: "Résumé"}
	assert.Equal(t, 6, p.Len())
	assert.Equal(t, Span{Start: 0, Length: 6}, p.Range())
}

func TestTextIndex_TextAt(t *testing.T) {
	idx := NewTextIndex(testDocument())

	tests := []struct {
		name   string
		span   Span
		want   string
		wantOK bool
	}{
		{"first passage", Span{Start: 0, Length: 4}, "EGFR", true},
		{"end of first passage", Span{Start: 8, Length: 11}, "lung cancer", true},
		{"after multibyte runes", Span{Start: 30, Length: 4}, "EGFR", true},
		{"multibyte", Span{Start: 20, Length: 6}, "Résumé", true},
		{"crosses passage end", Span{Start: 15, Length: 10}, "", false},
		{"empty", Span{Start: 3}, "", false},
		{"before document", Span{Start: -5, Length: 2}, "", false},
		{"huge offset", Span{Start: math.MaxInt - 500, Length: 1000}, "", false},
		{"huge length", Span{Start: 2, Length: math.MaxInt}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := idx.TextAt(tt.span)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocument_Annotations(t *testing.T) {
	doc := testDocument()
	doc.Passages[0].Annotations = []Annotation{
		{ID: 1, Span: Span{Start: 0, Length: 4}, Type: EntityGene},
	}

	anns := doc.Annotations()
	assert.Len(t, anns, 2)
	assert.Equal(t, 1, anns[0].ID)
	assert.Equal(t, 2, anns[1].ID)
}

func TestDocument_HasCancerAnnotation(t *testing.T) {
	doc := testDocument()
	assert.False(t, doc.HasCancerAnnotation())

	doc.Passages[0].Annotations = []Annotation{
		{ID: 1, Span: Span{Start: 8, Length: 11}, Type: EntityDisease},
	}
	assert.True(t, doc.HasCancerAnnotation())
}

func TestDocument_HasCancerAnnotation_IgnoresAuxiliarySections(t *testing.T) {
	for _, section := range []string{"REF", "SUPPL", "TABLE", "BACK", "ref"} {
		t.Run(section, func(t *testing.T) {
			doc := testDocument()
			doc.Passages[0].Infons = map[string]string{"section_type": section}
			doc.Passages[0].Annotations = []Annotation{
				{ID: 1, Span: Span{Start: 8, Length: 11}, Type: EntityDisease},
			}
			assert.False(t, doc.HasCancerAnnotation())

			doc.Passages[1].Infons = map[string]string{"section_type": "ABSTRACT"}
			doc.Passages[1].Annotations = append(doc.Passages[1].Annotations,
				Annotation{ID: 3, Span: Span{Start: 20, Length: 6}, Type: EntityDisease})
			assert.True(t, doc.HasCancerAnnotation())
		})
	}
}

func TestPassage_IsAuxiliary(t *testing.T) {
	assert.True(t, (&Passage{Infons: map[string]string{"section_type": "BACK"}}).IsAuxiliary())
	assert.False(t, (&Passage{Infons: map[string]string{"section_type": "INTRO"}}).IsAuxiliary())
	assert.False(t, (&Passage{}).IsAuxiliary())
}

func TestPassage_SentenceAnnotations(t *testing.T) {
	p := Passage{
		Annotations: []Annotation{{ID: 1}, {ID: 2}, {ID: 3}},
		Sentences: []Sentence{
			{AnnotationRefs: []int{0, 2}},
			{AnnotationRefs: []int{7}},
		},
	}

	got := p.SentenceAnnotations(0)
	assert.Len(t, got, 2)
	assert.Equal(t, 3, got[1].ID)
	assert.Empty(t, p.SentenceAnnotations(1))
	assert.Nil(t, p.SentenceAnnotations(5))
}
