package driven

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// Normaliser maps one recognizer's raw annotations into canonical
// annotations. Each normaliser handles specific recognizer kinds.
type Normaliser interface {
	// Kinds returns the recognizer kinds this normaliser handles.
	Kinds() []domain.RecognizerKind

	// Priority returns the selection priority (higher = preferred).
	Priority() int

	// Normalise produces zero or one annotation per raw annotation.
	// It must not mutate the request.
	Normalise(ctx context.Context, req *NormaliseRequest) ([]domain.Annotation, error)
}

// NormaliseRequest carries everything a normaliser reads.
type NormaliseRequest struct {
	// Output is the recognizer output to normalise.
	Output *domain.RecognizerOutput

	// Text resolves document text at a span.
	Text *domain.TextIndex

	// Reference is the batch's shared vocabulary snapshot.
	Reference *domain.ReferenceData
}
