package partition

import (
	"context"
	"testing"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

func ann(id, start, length int) domain.Annotation {
	return domain.Annotation{ID: id, Span: domain.Span{Start: start, Length: length}, Type: domain.EntityGene}
}

func twoPassageDoc() *domain.Document {
	return &domain.Document{
		ID: "42",
		Passages: []domain.Passage{
			{
				Offset: 0,
				Text:   "EGFR in NSCLC. KRAS too.",
				Sentences: []domain.Sentence{
					{Offset: 0, Text: "EGFR in NSCLC."},
					{Offset: 15, Text: "KRAS too."},
				},
				Annotations: []domain.Annotation{ann(99, 0, 1)},
			},
			{
				Offset: 30,
				Text:   "BRAF V600E.",
				Sentences: []domain.Sentence{
					{Offset: 30, Text: "BRAF V600E."},
				},
			},
		},
	}
}

func TestStage_NameAndState(t *testing.T) {
	s := New()
	if s.Name() != "partition" || s.State() != domain.StatePartitioning {
		t.Errorf("unexpected name/state %q/%q", s.Name(), s.State())
	}
}

func TestProcess_AssignsPassagesAndSentences(t *testing.T) {
	doc := twoPassageDoc()
	in := []domain.Annotation{
		ann(4, 35, 5),
		ann(1, 0, 4),
		ann(2, 8, 5),
		ann(3, 15, 4),
		ann(5, 30, 4),
	}

	out, err := New().Process(context.Background(), doc, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("expected 5 annotations, got %d", len(out))
	}

	p0, p1 := doc.Passages[0], doc.Passages[1]
	if len(p0.Annotations) != 3 || len(p1.Annotations) != 2 {
		t.Fatalf("unexpected passage sizes %d/%d", len(p0.Annotations), len(p1.Annotations))
	}
	if got := p0.Sentences[0].AnnotationRefs; len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("unexpected first sentence refs %v", got)
	}
	if got := p0.Sentences[1].AnnotationRefs; len(got) != 1 || got[0] != 2 {
		t.Errorf("unexpected second sentence refs %v", got)
	}
	if got := p1.SentenceAnnotations(0); len(got) != 2 || got[0].ID != 5 || got[1].ID != 4 {
		t.Errorf("unexpected passage 2 sentence annotations %+v", got)
	}
}

func TestProcess_ContainmentInvariant(t *testing.T) {
	doc := twoPassageDoc()
	in := []domain.Annotation{ann(1, 0, 4), ann(2, 12, 5), ann(3, 15, 4), ann(4, 26, 6), ann(5, 35, 5)}

	if _, err := New().Process(context.Background(), doc, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range doc.Passages {
		for _, a := range p.Annotations {
			if !p.Range().ContainsOffset(a.Span.Start) {
				t.Errorf("annotation %d outside passage at %d", a.ID, p.Offset)
			}
		}
		for i, s := range p.Sentences {
			for _, a := range p.SentenceAnnotations(i) {
				if !s.Range().Contains(a.Span) {
					t.Errorf("annotation %d not contained in sentence at %d", a.ID, s.Offset)
				}
			}
		}
	}
}

func TestProcess_CrossSentenceAnnotationStaysOnPassage(t *testing.T) {
	doc := twoPassageDoc()
	in := []domain.Annotation{ann(1, 12, 5), ann(2, 20, 3)}

	if _, err := New().Process(context.Background(), doc, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := doc.Passages[0]
	if len(p.Annotations) != 2 {
		t.Fatalf("expected both annotations on passage, got %d", len(p.Annotations))
	}
	if len(p.Sentences[0].AnnotationRefs) != 0 {
		t.Errorf("expected crossing annotation to be unassigned, got %v", p.Sentences[0].AnnotationRefs)
	}
	if got := p.Sentences[1].AnnotationRefs; len(got) != 1 || got[0] != 1 {
		t.Errorf("unexpected second sentence refs %v", got)
	}
}

func TestProcess_AnnotationsOutsidePassagesDropped(t *testing.T) {
	doc := twoPassageDoc()
	in := []domain.Annotation{ann(1, 26, 2), ann(2, 60, 3)}

	out, err := New().Process(context.Background(), doc, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected gap annotations to be dropped, got %+v", out)
	}
	if doc.Passages[0].Annotations != nil {
		t.Error("expected stale passage annotations to be replaced")
	}
}

func TestProcess_NilDocument(t *testing.T) {
	if _, err := New().Process(context.Background(), nil, nil); err == nil {
		t.Error("expected error for nil document")
	}
}
