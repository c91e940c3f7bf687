package domain

import (
	"fmt"
	"strings"
)

// RecognizerKind identifies one of the four external entity recognizers.
type RecognizerKind string

// Recognizer kinds.
const (
	RecognizerGene     RecognizerKind = "gene"
	RecognizerMutation RecognizerKind = "mutation"
	RecognizerDisease  RecognizerKind = "disease"
	RecognizerChemical RecognizerKind = "chemical"
)

// DefaultPrecedence is the fixed tool-priority order used to break ties
// between annotations that start at the same offset. Earlier kinds win.
var DefaultPrecedence = []RecognizerKind{
	RecognizerGene,
	RecognizerMutation,
	RecognizerDisease,
	RecognizerChemical,
}

// AllRecognizerKinds returns every recognizer kind in default precedence order.
func AllRecognizerKinds() []RecognizerKind {
	return append([]RecognizerKind(nil), DefaultPrecedence...)
}

// TaskName returns the tool-manifest task name, e.g. "gene_ner".
func (k RecognizerKind) TaskName() string {
	return string(k) + "_ner"
}

// ParseRecognizerKind accepts a kind ("gene") or a task name ("gene_ner").
func ParseRecognizerKind(s string) (RecognizerKind, error) {
	v := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_ner")
	switch k := RecognizerKind(v); k {
	case RecognizerGene, RecognizerMutation, RecognizerDisease, RecognizerChemical:
		return k, nil
	}
	return "", fmt.Errorf("%w: recognizer %q", ErrUnsupportedType, s)
}

// RawAnnotation is an annotation as emitted by a recognizer, before
// normalisation.
type RawAnnotation struct {
	// ID is the recognizer-assigned annotation id.
	ID string

	// Infons are the recognizer's key/value fields (type, identifier, MESH, ...).
	Infons map[string]string

	// Text is the mention text.
	Text string

	// Offset is the absolute start offset.
	Offset int

	// Length is the mention length.
	Length int
}

// Span returns the raw annotation's span.
func (r RawAnnotation) Span() Span {
	return Span{Start: r.Offset, Length: r.Length}
}

// RecognizerOutput is the unordered bag of raw annotations one recognizer
// produced for one document.
type RecognizerOutput struct {
	// DocumentID is the document the output belongs to.
	DocumentID string

	// Kind is the recognizer that produced it.
	Kind RecognizerKind

	// Annotations are the raw annotations across all passages.
	Annotations []RawAnnotation

	// Digest fingerprints the bytes the output was read from.
	Digest string
}

// Len returns the number of raw annotations; nil outputs count as empty.
func (o *RecognizerOutput) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Annotations)
}

// DocumentRef locates one document's recognizer outputs: the file Name
// inside Batch of Resource.
type DocumentRef struct {
	Resource string
	Batch    string
	Name     string
}

func (r DocumentRef) String() string {
	return r.Resource + "/" + r.Batch + "/" + r.Name
}
