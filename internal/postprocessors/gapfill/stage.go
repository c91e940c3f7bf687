// Package gapfill provides the dictionary gap-fill stage: it scans passage
// text for vocabulary terms every recognizer missed and reconciles them
// with the merged annotations.
package gapfill

import (
	"context"
	"sort"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/logger"
)

// DefaultWindow is the maximum number of tokens a dictionary term may span.
const DefaultWindow = 17

// Stage adds dictionary matches to the merged annotation list.
// It implements the Stage interface.
type Stage struct {
	ref    *domain.ReferenceData
	window int
}

// Option configures the gap-fill stage.
type Option func(*Stage)

// WithWindow sets the maximum match length in tokens.
func WithWindow(window int) Option {
	return func(s *Stage) {
		if window > 0 {
			s.window = window
		}
	}
}

// New creates a gap-fill stage over the given vocabulary snapshot.
func New(ref *domain.ReferenceData, opts ...Option) *Stage {
	s := &Stage{ref: ref, window: DefaultWindow}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return "gapfill"
}

// State returns the document state while the stage runs.
func (s *Stage) State() domain.DocumentState {
	return domain.StateGapFilling
}

// Process scans every passage, reconciles the candidates against anns and
// returns the combined list numbered from 1 in offset order.
func (s *Stage) Process(ctx context.Context, doc *domain.Document, anns []domain.Annotation) ([]domain.Annotation, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	if s.ref == nil {
		return nil, domain.ErrReferenceData
	}

	r := newReconciler(anns)
	for i := range doc.Passages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := &doc.Passages[i]
		for _, cand := range s.candidates(p) {
			r.offer(cand)
		}
	}

	out := r.result()
	if r.added > 0 || r.removed > 0 {
		logger.Debug("gapfill %s: +%d -%d annotations", doc.ID, r.added, r.removed)
	}
	return out, nil
}

// candidates returns the passage's dictionary hits that survive the
// false-positive filters, in document coordinates.
func (s *Stage) candidates(p *domain.Passage) []domain.Annotation {
	matches := Scan(p.Text, s.window, func(key string) bool {
		_, ok := s.ref.LookupTerm(key)
		return ok
	})
	if len(matches) == 0 {
		return nil
	}

	runes := []rune(p.Text)
	out := make([]domain.Annotation, 0, len(matches))
	for _, m := range matches {
		entry, _ := s.ref.LookupTerm(m.Key)
		mention := string(runes[m.Start:m.End])
		if Suppressed(mention, m.Key, entry) {
			continue
		}
		out = append(out, s.annotation(p.Offset, m, mention, entry))
	}
	return out
}

func (s *Stage) annotation(offset int, m Match, mention string, entry domain.DictionaryEntry) domain.Annotation {
	a := domain.Annotation{
		Span:       domain.Span{Start: offset + m.Start, Length: m.End - m.Start},
		Text:       mention,
		Type:       entry.Type,
		Identifier: entry.Identifier,
		Symbol:     entry.Symbol,
		Label:      entry.Label,
		Origin:     domain.OriginDictionary,
	}
	if a.Identifier == "" {
		a.Identifier = domain.UnknownIdentifier
	}
	if a.Symbol == "" {
		a.Symbol = domain.UnknownSymbol
	}
	if a.Type == domain.EntityDisease {
		a.CrossRefs = s.ref.CrossRefs(a.Identifier)
	}
	return a
}

// reconciler tracks the live annotation set while candidates are offered.
// existing is sorted by start and pairwise disjoint.
type reconciler struct {
	existing []domain.Annotation
	deleted  []bool
	accepted []domain.Annotation

	added, removed int
}

func newReconciler(anns []domain.Annotation) *reconciler {
	existing := domain.CloneAnnotations(anns)
	domain.SortAnnotations(existing)
	return &reconciler{
		existing: existing,
		deleted:  make([]bool, len(existing)),
	}
}

// overlapping returns the indices of live annotations overlapping span,
// in offset order.
func (r *reconciler) overlapping(span domain.Span) []int {
	i := sort.Search(len(r.existing), func(i int) bool {
		return r.existing[i].Span.End() > span.Start
	})
	var idx []int
	for ; i < len(r.existing) && r.existing[i].Span.Start < span.End(); i++ {
		if !r.deleted[i] && r.existing[i].Span.Overlaps(span) {
			idx = append(idx, i)
		}
	}
	return idx
}

// offer applies the overlap rules to one candidate:
//   - no overlap: keep the candidate
//   - evidence candidate overlapping anything: discard it
//   - candidate strictly containing the first overlap: delete every overlap
//   - first overlap is evidence: delete it; the remaining overlaps must be
//     contained by the candidate or be evidence, otherwise discard
//   - anything else: discard the candidate
func (r *reconciler) offer(cand domain.Annotation) {
	hits := r.overlapping(cand.Span)
	if len(hits) == 0 {
		r.accept(cand, nil)
		return
	}
	if cand.Type.IsEvidence() {
		return
	}

	first := r.existing[hits[0]]
	if cand.Span.StrictlyContains(first.Span) {
		r.accept(cand, hits)
		return
	}
	if !first.Type.IsEvidence() {
		return
	}
	for _, i := range hits[1:] {
		e := r.existing[i]
		if !e.Type.IsEvidence() && !cand.Span.Contains(e.Span) {
			return
		}
	}
	r.accept(cand, hits)
}

func (r *reconciler) accept(cand domain.Annotation, remove []int) {
	for _, i := range remove {
		r.deleted[i] = true
	}
	r.removed += len(remove)
	r.added++
	r.accepted = append(r.accepted, cand)
}

// result returns the surviving annotations plus accepted candidates,
// ordered by offset and renumbered from 1.
func (r *reconciler) result() []domain.Annotation {
	out := make([]domain.Annotation, 0, len(r.existing)-r.removed+len(r.accepted))
	for i, a := range r.existing {
		if !r.deleted[i] {
			out = append(out, a)
		}
	}
	out = append(out, r.accepted...)
	domain.SortAnnotations(out)
	domain.Renumber(out)
	return out
}
