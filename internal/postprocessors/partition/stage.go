// Package partition provides the stage that re-derives passage and sentence
// membership from the merged, document-level annotation list.
package partition

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/logger"
)

// Stage assigns annotations to passages and sentences in a single forward
// pass. It implements the Stage interface.
type Stage struct{}

// New creates a partition stage.
func New() *Stage {
	return &Stage{}
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return "partition"
}

// State returns the document state while the stage runs.
func (s *Stage) State() domain.DocumentState {
	return domain.StatePartitioning
}

// Process replaces every passage's annotation arena and every sentence's
// references, then returns the annotations that found a passage.
func (s *Stage) Process(_ context.Context, doc *domain.Document, anns []domain.Annotation) ([]domain.Annotation, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	sorted := domain.CloneAnnotations(anns)
	domain.SortAnnotations(sorted)

	assigned := assignPassages(doc.Passages, sorted)
	for i := range doc.Passages {
		assignSentences(&doc.Passages[i])
	}

	if dropped := len(sorted) - assigned; dropped > 0 {
		logger.Debug("partition %s: %d annotations outside every passage", doc.ID, dropped)
	}
	return doc.Annotations(), nil
}

// assignPassages gives each annotation to the passage whose range contains
// its start. The cursor never moves backwards; annotations starting before
// the current passage are left unassigned.
func assignPassages(passages []domain.Passage, anns []domain.Annotation) int {
	assigned, next := 0, 0
	for i := range passages {
		p := &passages[i]
		rng := p.Range()
		p.Annotations = nil
		for next < len(anns) {
			a := anns[next]
			if a.Span.Start >= rng.End() {
				break
			}
			if rng.ContainsOffset(a.Span.Start) {
				p.Annotations = append(p.Annotations, a)
				assigned++
			}
			next++
		}
	}
	return assigned
}

// assignSentences references each passage annotation from the sentence
// that fully contains it. Annotations that start before the sentence
// cursor are skipped; an annotation crossing a sentence end stops the
// sentence and is never assigned backwards.
func assignSentences(p *domain.Passage) {
	cursor := 0
	for i := range p.Sentences {
		s := &p.Sentences[i]
		rng := s.Range()
		s.AnnotationRefs = nil
		for k := cursor; k < len(p.Annotations); k++ {
			span := p.Annotations[k].Span
			if rng.Start > span.Start {
				continue
			}
			if !rng.Contains(span) {
				cursor = k
				break
			}
			s.AnnotationRefs = append(s.AnnotationRefs, k)
		}
	}
}
