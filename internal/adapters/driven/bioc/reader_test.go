package bioc

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

func TestRead_Document(t *testing.T) {
	f, err := os.Open("testdata/disease.xml")
	require.NoError(t, err)
	defer f.Close()

	parsed, err := Read(f)
	require.NoError(t, err)

	doc := parsed.Document
	assert.Equal(t, "31000001", doc.ID)
	assert.Equal(t, "2019", doc.Infons["year"])
	require.Len(t, doc.Passages, 2)

	title := doc.Passages[0]
	assert.Equal(t, 0, title.Offset)
	assert.Equal(t, "EGFR mutation found in lung cancer patients.", title.Text)
	assert.Equal(t, "TITLE", title.Infons["section_type"])
	require.Len(t, title.Sentences, 1)
	assert.Empty(t, title.Annotations)

	abstract := doc.Passages[1]
	assert.Equal(t, 45, abstract.Offset)
	require.Len(t, abstract.Sentences, 1)
	assert.Equal(t, 45, abstract.Sentences[0].Offset)

	require.Len(t, parsed.Annotations, 2)
	lung := parsed.Annotations[0]
	assert.Equal(t, "0", lung.ID)
	assert.Equal(t, "Disease", lung.Infons["type"])
	assert.Equal(t, "D008175", lung.Infons["MESH"])
	assert.Equal(t, domain.Span{Start: 23, Length: 11}, lung.Span())
	assert.Equal(t, "lung cancer", lung.Text)

	// Sentence-level annotations are collected too.
	assert.Equal(t, "NSCLC", parsed.Annotations[1].Text)
	assert.Equal(t, 67, parsed.Annotations[1].Offset)
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"not xml", "<collection><document>"},
		{"no document", "<collection><source/></collection>"},
		{"bad passage offset", "<collection><document><id>1</id><passage><offset>x</offset></passage></document></collection>"},
		{"missing location", `<collection><document><id>1</id><passage><offset>0</offset><annotation id="1"><text>a</text></annotation></passage></document></collection>`},
		{"offset out of range", `<collection><document><id>1</id><passage><offset>0</offset><annotation id="1"><location offset="9223372036854775000" length="1000"/></annotation></passage></document></collection>`},
		{"length out of range", `<collection><document><id>1</id><passage><offset>0</offset><annotation id="1"><location offset="0" length="4294967296"/></annotation></passage></document></collection>`},
		{"negative length", `<collection><document><id>1</id><passage><offset>0</offset><annotation id="1"><location offset="0" length="-1"/></annotation></passage></document></collection>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.xml))
			assert.ErrorIs(t, err, domain.ErrMalformedOutput)
		})
	}
}

func TestRead_EmptyDocument(t *testing.T) {
	parsed, err := Read(strings.NewReader("<collection><document><id>7</id></document></collection>"))
	require.NoError(t, err)
	assert.Equal(t, "7", parsed.Document.ID)
	assert.Empty(t, parsed.Document.Passages)
	assert.Empty(t, parsed.Annotations)
}
