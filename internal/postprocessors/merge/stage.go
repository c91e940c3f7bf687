// Package merge provides the interval merge stage: it combines the
// normalised annotations of all recognizers into one ordered,
// non-overlapping list.
package merge

import (
	"context"
	"sort"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// Stage resolves overlapping annotations first-wins.
// It implements the Stage interface.
type Stage struct {
	precedence []domain.RecognizerKind
	rank       map[string]int
}

// Option configures the merge stage.
type Option func(*Stage)

// WithPrecedence sets the recognizer order used to break ties between
// annotations starting at the same offset. Earlier kinds win.
func WithPrecedence(kinds []domain.RecognizerKind) Option {
	return func(s *Stage) {
		if len(kinds) > 0 {
			s.precedence = append([]domain.RecognizerKind(nil), kinds...)
		}
	}
}

// New creates a merge stage with the given options.
func New(opts ...Option) *Stage {
	s := &Stage{precedence: domain.AllRecognizerKinds()}
	for _, opt := range opts {
		opt(s)
	}

	s.rank = make(map[string]int, len(s.precedence))
	for i, k := range s.precedence {
		if _, ok := s.rank[string(k)]; !ok {
			s.rank[string(k)] = i
		}
	}
	return s
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return "merge"
}

// State returns the document state while the stage runs.
func (s *Stage) State() domain.DocumentState {
	return domain.StateMerging
}

// Precedence returns the tie-break order.
func (s *Stage) Precedence() []domain.RecognizerKind {
	return append([]domain.RecognizerKind(nil), s.precedence...)
}

// Process sorts candidates by (start, precedence) and keeps every
// candidate that does not overlap an already accepted one.
// The result is numbered from 1 in offset order.
func (s *Stage) Process(_ context.Context, _ *domain.Document, anns []domain.Annotation) ([]domain.Annotation, error) {
	candidates := make([]domain.Annotation, 0, len(anns))
	for _, a := range anns {
		if !a.Span.IsEmpty() {
			candidates = append(candidates, a)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		return s.rankOf(a.Origin) < s.rankOf(b.Origin)
	})

	// Accepted spans are sorted and disjoint, so only the last one can
	// overlap a candidate that starts at or after it.
	merged := make([]domain.Annotation, 0, len(candidates))
	for _, c := range candidates {
		if n := len(merged); n > 0 && c.Span.Overlaps(merged[n-1].Span) {
			continue
		}
		merged = append(merged, c)
	}

	domain.Renumber(merged)
	return merged, nil
}

func (s *Stage) rankOf(origin string) int {
	if r, ok := s.rank[origin]; ok {
		return r
	}
	return len(s.precedence)
}
