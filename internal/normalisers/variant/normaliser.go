// Package variant normalises the mutation recognizer (tmVar).
// tmVar labels variants SNP, DNAMutation or ProteinMutation; all three
// become mutation annotations. Gene, disease and chemical labels that tmVar
// carries over from its input are dropped: the bio-concept recognizers own
// those types.
package variant

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
	"github.com/custodia-labs/pubminer/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles mutation recognizer outputs.
type Normaliser struct{}

// New creates a new variant normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kinds returns the recognizer kinds this normaliser handles.
func (n *Normaliser) Kinds() []domain.RecognizerKind {
	return []domain.RecognizerKind{domain.RecognizerMutation}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 90
}

// Normalise maps the output's variant annotations.
func (n *Normaliser) Normalise(_ context.Context, req *driven.NormaliseRequest) ([]domain.Annotation, error) {
	if req == nil || req.Text == nil || req.Reference == nil {
		return nil, domain.ErrInvalidInput
	}
	if req.Output.Len() == 0 {
		return nil, nil
	}

	anns := make([]domain.Annotation, 0, req.Output.Len())
	for _, raw := range req.Output.Annotations {
		if typ, ok := normalisers.EntityTypeOf(raw.Infons["type"]); !ok || typ != domain.EntityMutation {
			continue
		}
		if ann, ok := normalisers.Convert(raw, req); ok {
			anns = append(anns, ann)
		}
	}
	return anns, nil
}
