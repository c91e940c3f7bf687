package domain

import (
	"sort"
	"strings"
)

// EntityType is the canonical annotation taxonomy.
type EntityType string

// Canonical entity types.
const (
	EntityGene     EntityType = "gene"
	EntityDisease  EntityType = "disease"
	EntityChemical EntityType = "chemical"
	EntityMutation EntityType = "mutation"
	EntityEvidence EntityType = "evidence"
)

// Evidence vocabulary labels. Both map to EntityEvidence; the label is
// kept on the annotation for display.
const (
	LabelEvidenceDirection    = "evidirt"
	LabelClinicalSignificance = "clinsig"
)

// UnknownIdentifier is the sentinel for annotations whose identifier
// could not be resolved.
const UnknownIdentifier = "-"

// UnknownSymbol is the display symbol used when no identifier maps to one.
const UnknownSymbol = "-"

// OriginDictionary marks annotations added by the dictionary gap-fill pass.
const OriginDictionary = "dictionary"

// IsEvidence reports whether the type is an evidence term.
// Evidence terms never override real entities.
func (t EntityType) IsEvidence() bool {
	return t == EntityEvidence
}

// IsValid reports whether t is one of the canonical types.
func (t EntityType) IsValid() bool {
	switch t {
	case EntityGene, EntityDisease, EntityChemical, EntityMutation, EntityEvidence:
		return true
	}
	return false
}

// ParseEntityType maps a vocabulary type column to the canonical taxonomy.
// Evidence labels are folded into EntityEvidence. The second return value
// carries the original label for evidence terms.
func ParseEntityType(raw string) (EntityType, string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case LabelEvidenceDirection, LabelClinicalSignificance:
		return EntityEvidence, v, true
	}
	t := EntityType(v)
	if !t.IsValid() {
		return "", "", false
	}
	return t, "", true
}

// CrossRef is a secondary cross-reference attached to cancer-disease
// annotations (a Disease Ontology term).
type CrossRef struct {
	// Identifier is the cross-referenced identifier, e.g. "DOID:1324".
	Identifier string

	// Symbol is the display name of the identifier, or UnknownSymbol.
	Symbol string
}

// Annotation is a typed entity mention tied to exactly one Span.
type Annotation struct {
	// ID is the sequential identifier assigned in offset order.
	ID int

	// Span locates the mention in document text.
	Span Span

	// Text is the mention text; it equals the document text at Span.
	Text string

	// Type is the canonical entity type.
	Type EntityType

	// Identifier is the normalised vocabulary identifier or UnknownIdentifier.
	// Composite identifiers are separated by ';'.
	Identifier string

	// Symbol is the display symbol or UnknownSymbol.
	Symbol string

	// Label is the vocabulary category of evidence terms.
	Label string

	// CrossRefs holds Disease Ontology references for cancer-disease annotations.
	CrossRefs []CrossRef

	// Origin names the recognizer kind or OriginDictionary.
	Origin string
}

// IdentifierParts splits a composite identifier into its components.
func (a Annotation) IdentifierParts() []string {
	if a.Identifier == "" || a.Identifier == UnknownIdentifier {
		return nil
	}
	parts := strings.Split(a.Identifier, ";")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CloneAnnotations returns a copy of anns with independent CrossRefs slices.
func CloneAnnotations(anns []Annotation) []Annotation {
	if anns == nil {
		return nil
	}
	out := make([]Annotation, len(anns))
	for i, a := range anns {
		if a.CrossRefs != nil {
			a.CrossRefs = append([]CrossRef(nil), a.CrossRefs...)
		}
		out[i] = a
	}
	return out
}

// SortAnnotations orders anns by span start, keeping the relative order of
// annotations that start at the same offset.
func SortAnnotations(anns []Annotation) {
	sort.SliceStable(anns, func(i, j int) bool {
		return anns[i].Span.Start < anns[j].Span.Start
	})
}

// Renumber assigns sequential IDs starting at 1 in slice order.
func Renumber(anns []Annotation) {
	for i := range anns {
		anns[i].ID = i + 1
	}
}
