// Package bioconcept normalises the gene, disease and chemical recognizers
// (GNormPlus, DNorm, tmChem).
package bioconcept

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
	"github.com/custodia-labs/pubminer/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles bio-concept recognizer outputs.
type Normaliser struct{}

// New creates a new bio-concept normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kinds returns the recognizer kinds this normaliser handles.
func (n *Normaliser) Kinds() []domain.RecognizerKind {
	return []domain.RecognizerKind{
		domain.RecognizerGene,
		domain.RecognizerDisease,
		domain.RecognizerChemical,
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise maps the output's raw annotations. Disease annotations only
// survive when they are cancer-relevant.
func (n *Normaliser) Normalise(_ context.Context, req *driven.NormaliseRequest) ([]domain.Annotation, error) {
	if req == nil || req.Text == nil || req.Reference == nil {
		return nil, domain.ErrInvalidInput
	}
	if req.Output.Len() == 0 {
		return nil, nil
	}
	return normalisers.ConvertAll(req), nil
}
