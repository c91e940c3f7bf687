package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
)

// Ensure NormaliserRegistry implements the interface.
var _ driven.NormaliserRegistry = (*NormaliserRegistry)(nil)

// NormaliserRegistry dispatches recognizer outputs to the highest-priority
// normaliser registered for their kind.
type NormaliserRegistry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewNormaliserRegistry creates a registry holding the given normalisers.
func NewNormaliserRegistry(normalisers ...driven.Normaliser) *NormaliserRegistry {
	r := &NormaliserRegistry{}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser. Normalisers with equal priority keep
// registration order.
func (r *NormaliserRegistry) Register(normaliser driven.Normaliser) {
	if normaliser == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, normaliser)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// Normalise transforms an output using the best matching normaliser.
func (r *NormaliserRegistry) Normalise(ctx context.Context, req *driven.NormaliseRequest) ([]domain.Annotation, error) {
	if req == nil || req.Output == nil {
		return nil, domain.ErrInvalidInput
	}
	n := r.lookup(req.Output.Kind)
	if n == nil {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrUnsupportedType, req.Output.Kind)
	}
	return n.Normalise(ctx, req)
}

// SupportedKinds returns every kind some normaliser handles, in default
// precedence order.
func (r *NormaliserRegistry) SupportedKinds() []domain.RecognizerKind {
	var kinds []domain.RecognizerKind
	for _, k := range domain.AllRecognizerKinds() {
		if r.lookup(k) != nil {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (r *NormaliserRegistry) lookup(kind domain.RecognizerKind) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.normalisers {
		for _, k := range n.Kinds() {
			if k == kind {
				return n
			}
		}
	}
	return nil
}
