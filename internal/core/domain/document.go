package domain

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// auxiliarySections are the section_type infons of reference,
// supplementary, table and back-matter passages.
var auxiliarySections = map[string]bool{
	"REF":   true,
	"SUPPL": true,
	"TABLE": true,
	"BACK":  true,
}

// Document is one literature document: a stable external ID and an ordered
// sequence of passages covering disjoint ranges of the logical text.
type Document struct {
	// ID is the stable external identifier (PMID or PMCID).
	ID string

	// Infons holds document-level BioC key/value pairs.
	Infons map[string]string

	// Passages are ordered by offset.
	Passages []Passage
}

// Passage is a structural text block (title, abstract, section).
// It owns its annotations; sentences refer to them by index.
type Passage struct {
	// Offset is the absolute start of the passage in document text.
	Offset int

	// Text is the passage text.
	Text string

	// Infons holds passage-level BioC key/value pairs (e.g. type=abstract).
	Infons map[string]string

	// Sentences are ordered by offset and contained in the passage range.
	Sentences []Sentence

	// Annotations is the arena of annotations belonging to this passage,
	// ordered by span start.
	Annotations []Annotation
}

// Sentence is a sentence inside a passage.
type Sentence struct {
	// Offset is the absolute start of the sentence in document text.
	Offset int

	// Text is the sentence text.
	Text string

	// AnnotationRefs are indices into the parent passage's Annotations.
	AnnotationRefs []int
}

// Len returns the passage length in characters.
func (p *Passage) Len() int {
	return utf8.RuneCountInString(p.Text)
}

// Range returns the passage range in document coordinates.
func (p *Passage) Range() Span {
	return Span{Start: p.Offset, Length: p.Len()}
}

// IsAuxiliary reports whether the passage is reference, supplementary,
// table or back matter. Such passages are kept in the merged document
// but do not count towards postings or the cancer flag.
func (p *Passage) IsAuxiliary() bool {
	return auxiliarySections[strings.ToUpper(p.Infons["section_type"])]
}

// SentenceAnnotations resolves the annotations referenced by sentence i.
func (p *Passage) SentenceAnnotations(i int) []Annotation {
	if i < 0 || i >= len(p.Sentences) {
		return nil
	}
	refs := p.Sentences[i].AnnotationRefs
	out := make([]Annotation, 0, len(refs))
	for _, ref := range refs {
		if ref >= 0 && ref < len(p.Annotations) {
			out = append(out, p.Annotations[ref])
		}
	}
	return out
}

// Range returns the sentence range in document coordinates.
func (s *Sentence) Range() Span {
	return Span{Start: s.Offset, Length: utf8.RuneCountInString(s.Text)}
}

// Annotations flattens the passage arenas into one offset-ordered list.
func (d *Document) Annotations() []Annotation {
	var n int
	for i := range d.Passages {
		n += len(d.Passages[i].Annotations)
	}
	out := make([]Annotation, 0, n)
	for i := range d.Passages {
		out = append(out, d.Passages[i].Annotations...)
	}
	return out
}

// HasCancerAnnotation reports whether any body passage carries a disease
// annotation. Disease annotations only survive normalisation when they are
// cancer-relevant.
func (d *Document) HasCancerAnnotation() bool {
	for i := range d.Passages {
		if d.Passages[i].IsAuxiliary() {
			continue
		}
		for _, a := range d.Passages[i].Annotations {
			if a.Type == EntityDisease {
				return true
			}
		}
	}
	return false
}

// TextIndex gives character-offset access to a document's passages.
// Build it once per document; it is read-only afterwards.
type TextIndex struct {
	offsets []int
	runes   [][]rune
}

// NewTextIndex indexes the passages of d.
func NewTextIndex(d *Document) *TextIndex {
	idx := &TextIndex{
		offsets: make([]int, len(d.Passages)),
		runes:   make([][]rune, len(d.Passages)),
	}
	for i := range d.Passages {
		idx.offsets[i] = d.Passages[i].Offset
		idx.runes[i] = []rune(d.Passages[i].Text)
	}
	return idx
}

// TextAt returns the document text covered by span.
// The second value is false when the span is empty or not inside one passage.
func (x *TextIndex) TextAt(span Span) (string, bool) {
	if span.IsEmpty() {
		return "", false
	}
	i := sort.Search(len(x.offsets), func(i int) bool { return x.offsets[i] > span.Start }) - 1
	if i < 0 {
		return "", false
	}
	rel := span.Start - x.offsets[i]
	if span.Length > len(x.runes[i])-rel {
		return "", false
	}
	return string(x.runes[i][rel : rel+span.Length]), true
}
