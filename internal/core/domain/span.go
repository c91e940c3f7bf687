package domain

import "fmt"

// Span is a half-open interval [Start, Start+Length) in document-text
// coordinates.
type Span struct {
	// Start is the absolute character offset of the first character.
	Start int

	// Length is the number of characters covered.
	Length int
}

// End returns the exclusive end offset.
func (s Span) End() int {
	return s.Start + s.Length
}

// IsEmpty reports whether the span covers no characters.
func (s Span) IsEmpty() bool {
	return s.Length <= 0
}

// Overlaps reports whether neither span lies fully before or fully after
// the other.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End() && o.Start < s.End()
}

// Contains reports whether s covers every character of o.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End() <= s.End()
}

// StrictlyContains reports whether s contains o and is larger than it.
func (s Span) StrictlyContains(o Span) bool {
	return s.Contains(o) && s.Length > o.Length
}

// ContainsOffset reports whether offset falls inside the span.
func (s Span) ContainsOffset(offset int) bool {
	return s.Start <= offset && offset < s.End()
}

// String renders the span in interval notation.
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End())
}
