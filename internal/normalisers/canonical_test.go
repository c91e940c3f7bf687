package normalisers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
)

const passageText = "Rheumatoid arthritis and lung adenocarcinoma with EGFR and gefitinib."

func testReference() *domain.ReferenceData {
	b := domain.NewReferenceDataBuilder()
	b.AddIdentifierSymbol("1956", "EGFR")
	b.AddIdentifierSymbol("MESH:D000077192", "Adenocarcinoma of Lung")
	b.AddIdentifierSymbol("MESH:D001172", "Rheumatoid Arthritis")
	b.AddCancerIdentifier("MESH:D000077192", []string{"DOID:3910"})
	b.AddDOSymbol("DOID:3910", "lung adenocarcinoma")
	return b.Build()
}

func testRequest(kind domain.RecognizerKind, raws ...domain.RawAnnotation) *driven.NormaliseRequest {
	doc := &domain.Document{
		ID:       "100",
		Passages: []domain.Passage{{Offset: 0, Text: passageText}},
	}
	return &driven.NormaliseRequest{
		Output:    &domain.RecognizerOutput{DocumentID: "100", Kind: kind, Annotations: raws},
		Text:      domain.NewTextIndex(doc),
		Reference: testReference(),
	}
}

func raw(typ string, offset int, text string, infons map[string]string) domain.RawAnnotation {
	all := map[string]string{"type": typ}
	for k, v := range infons {
		all[k] = v
	}
	return domain.RawAnnotation{Infons: all, Text: text, Offset: offset, Length: len([]rune(text))}
}

func TestEntityTypeOf(t *testing.T) {
	tests := []struct {
		label string
		want  domain.EntityType
		ok    bool
	}{
		{"Gene", domain.EntityGene, true},
		{"Disease", domain.EntityDisease, true},
		{"Chemical", domain.EntityChemical, true},
		{"SNP", domain.EntityMutation, true},
		{"DNAMutation", domain.EntityMutation, true},
		{"ProteinMutation", domain.EntityMutation, true},
		{"Species", "", false},
		{"gene", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := EntityTypeOf(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveIdentifier(t *testing.T) {
	tests := []struct {
		name   string
		infons map[string]string
		want   string
	}{
		{"Identifier wins", map[string]string{"Identifier": "1956", "identifier": "x", "MESH": "D1"}, "1956"},
		{"identifier", map[string]string{"identifier": "MESH:D008175", "MESH": "D1"}, "MESH:D008175"},
		{"MESH", map[string]string{"MESH": "D008175", "OMIM": "1"}, "MESH:D008175"},
		{"OMIM", map[string]string{"OMIM": "211980", "CHEBI": "2"}, "OMIM:211980"},
		{"CHEBI", map[string]string{"CHEBI": "49668", "NCBI Gene": "3"}, "CHEBI:49668"},
		{"NCBI Gene", map[string]string{"NCBI Gene": "1956"}, "1956"},
		{"none", map[string]string{"type": "Gene"}, domain.UnknownIdentifier},
		{"empty explicit", map[string]string{"identifier": " "}, domain.UnknownIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveIdentifier(tt.infons))
		})
	}
}

func TestIsCancerMention(t *testing.T) {
	ref := testReference()

	assert.True(t, IsCancerMention(ref, "MESH:D000077192", "NSCLC"))
	assert.True(t, IsCancerMention(ref, domain.UnknownIdentifier, "Lung Adenocarcinoma"))
	assert.True(t, IsCancerMention(ref, domain.UnknownIdentifier, "brain TUMOUR"))
	assert.True(t, IsCancerMention(ref, domain.UnknownIdentifier, "liver metastases"))
	assert.False(t, IsCancerMention(ref, "MESH:D001172", "arthritis"))
	assert.False(t, IsCancerMention(ref, domain.UnknownIdentifier, "metastasis"))
}

func TestSymbolFor(t *testing.T) {
	ref := testReference()

	assert.Equal(t, "EGFR", SymbolFor(ref, "1956"))
	assert.Equal(t, "EGFR;Rheumatoid Arthritis", SymbolFor(ref, "1956;MESH:D001172"))
	assert.Equal(t, "EGFR", SymbolFor(ref, "1956;9999"))
	assert.Equal(t, domain.UnknownSymbol, SymbolFor(ref, "9999"))
	assert.Equal(t, domain.UnknownSymbol, SymbolFor(ref, domain.UnknownIdentifier))
}

func TestConvert_CancerFilter(t *testing.T) {
	req := testRequest(domain.RecognizerDisease,
		raw("Disease", 0, "Rheumatoid arthritis", map[string]string{"MESH": "D001172"}),
		raw("Disease", 25, "lung adenocarcinoma", map[string]string{"MESH": "D999999"}),
	)

	anns := ConvertAll(req)
	require.Len(t, anns, 1)

	got := anns[0]
	assert.Equal(t, "lung adenocarcinoma", got.Text)
	assert.Equal(t, domain.EntityDisease, got.Type)
	assert.Equal(t, "MESH:D999999", got.Identifier)
	assert.Equal(t, domain.UnknownSymbol, got.Symbol)
	assert.Empty(t, got.CrossRefs)
	assert.Equal(t, "disease", got.Origin)
}

func TestConvert_CancerCrossRefs(t *testing.T) {
	req := testRequest(domain.RecognizerDisease,
		raw("Disease", 25, "lung adenocarcinoma", map[string]string{"identifier": "MESH:D000077192"}),
	)

	anns := ConvertAll(req)
	require.Len(t, anns, 1)
	assert.Equal(t, "Adenocarcinoma of Lung", anns[0].Symbol)
	assert.Equal(t, []domain.CrossRef{{Identifier: "DOID:3910", Symbol: "lung adenocarcinoma"}}, anns[0].CrossRefs)
}

func TestConvert_DropsUnknownTypeAndMismatchedText(t *testing.T) {
	req := testRequest(domain.RecognizerGene,
		raw("Species", 0, "Rheumatoid", nil),
		raw("Gene", 51, "EGFR", map[string]string{"NCBI Gene": "1956"}),
		raw("Gene", 50, "EGFR", map[string]string{"NCBI Gene": "1956"}),
		domain.RawAnnotation{Infons: map[string]string{"type": "Gene"}, Text: "", Offset: 3},
	)

	anns := ConvertAll(req)
	require.Len(t, anns, 1)
	assert.Equal(t, domain.Span{Start: 50, Length: 4}, anns[0].Span)
	assert.Equal(t, "EGFR", anns[0].Symbol)
	assert.Equal(t, domain.EntityGene, anns[0].Type)
}

func TestConvert_OneAnnotationPerRaw(t *testing.T) {
	req := testRequest(domain.RecognizerChemical,
		raw("Chemical", 59, "gefitinib", map[string]string{"MESH": "D000077156"}),
		raw("Chemical", 59, "gefitinib", map[string]string{"MESH": "D000077156"}),
	)

	anns := ConvertAll(req)
	assert.Len(t, anns, 2)
	for _, a := range anns {
		assert.Equal(t, "MESH:D000077156", a.Identifier)
		assert.NotEmpty(t, a.Symbol)
	}
}

func TestConvert_DropsOutOfRangeSpans(t *testing.T) {
	req := testRequest(domain.RecognizerGene,
		domain.RawAnnotation{
			Infons: map[string]string{"type": "Gene", "NCBI Gene": "1956"},
			Text:   "EGFR",
			Offset: math.MaxInt - 800,
			Length: 1000,
		},
		domain.RawAnnotation{
			Infons: map[string]string{"type": "Gene", "NCBI Gene": "1956"},
			Text:   "EGFR",
			Offset: 50,
			Length: math.MaxInt,
		},
		raw("Gene", 50, "EGFR", map[string]string{"NCBI Gene": "1956"}),
	)

	var anns []domain.Annotation
	require.NotPanics(t, func() { anns = ConvertAll(req) })
	require.Len(t, anns, 1)
	assert.Equal(t, domain.Span{Start: 50, Length: 4}, anns[0].Span)
}
