package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceDataBuilder_Terms(t *testing.T) {
	b := NewReferenceDataBuilder()
	b.AddTerm("egfr", DictionaryEntry{Identifier: "1956", Type: EntityGene})
	b.AddTerm("egfr", DictionaryEntry{Identifier: "1956", Symbol: "EGFR", Type: EntityGene})
	b.AddTerm("", DictionaryEntry{Identifier: "ignored"})
	ref := b.Build()

	e, ok := ref.LookupTerm("egfr")
	require.True(t, ok)
	assert.Equal(t, "EGFR", e.Symbol)
	assert.Equal(t, 1, ref.TermCount())

	_, ok = ref.LookupTerm("kras")
	assert.False(t, ok)
}

func TestReferenceDataBuilder_IdentifierSymbolFirstWins(t *testing.T) {
	b := NewReferenceDataBuilder()
	b.AddIdentifierSymbol("1956", "EGFR")
	b.AddIdentifierSymbol("1956", "ERBB1")
	b.AddIdentifierSymbol(UnknownIdentifier, "nothing")
	ref := b.Build()

	sym, ok := ref.Symbol("1956")
	assert.True(t, ok)
	assert.Equal(t, "EGFR", sym)

	_, ok = ref.Symbol(UnknownIdentifier)
	assert.False(t, ok)
}

func TestReferenceDataBuilder_CancerIdentifiers(t *testing.T) {
	b := NewReferenceDataBuilder()
	b.AddCancerIdentifier("MESH:D008175", []string{"DOID:1324"}, "OMIM:211980")
	b.AddCancerIdentifier("MESH:D009369", nil)
	b.AddDOSymbol("DOID:1324", "lung cancer")
	ref := b.Build()

	assert.True(t, ref.IsCancerIdentifier("MESH:D008175"))
	assert.True(t, ref.IsCancerIdentifier("OMIM:211980"))
	assert.True(t, ref.IsCancerIdentifier("MESH:D009369"))
	assert.False(t, ref.IsCancerIdentifier("MESH:D001172"))
	assert.False(t, ref.IsCancerIdentifier(UnknownIdentifier))
	assert.Equal(t, 3, ref.CancerIdentifierCount())

	assert.Equal(t, []CrossRef{{Identifier: "DOID:1324", Symbol: "lung cancer"}}, ref.CrossRefs("MESH:D008175"))
	assert.Equal(t, ref.CrossRefs("MESH:D008175"), ref.CrossRefs("OMIM:211980"))
	assert.Empty(t, ref.CrossRefs("MESH:D009369"))
}

func TestReferenceData_CrossRefsUnknownDOSymbol(t *testing.T) {
	b := NewReferenceDataBuilder()
	b.AddCancerIdentifier("MESH:D001943", []string{"DOID:1612"})
	ref := b.Build()

	assert.Equal(t, []CrossRef{{Identifier: "DOID:1612", Symbol: UnknownSymbol}}, ref.CrossRefs("MESH:D001943"))
}

func TestReferenceData_Digest(t *testing.T) {
	b := NewReferenceDataBuilder()
	b.SetDigest("abc")
	assert.Equal(t, "abc", b.Build().Digest())
}
