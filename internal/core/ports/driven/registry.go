package driven

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a recognizer
// output. It maintains a priority-ordered list of normalisers and dispatches
// on recognizer kind.
type NormaliserRegistry interface {
	// Normalise transforms an output using the best matching normaliser.
	Normalise(ctx context.Context, req *NormaliseRequest) ([]domain.Annotation, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedKinds returns all recognizer kinds that can be normalised.
	SupportedKinds() []domain.RecognizerKind
}
