package driven

import (
	"context"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// Stage is one step of the per-document merge pipeline.
// Stages are chained in a pipeline (merge, gap-fill, partition).
type Stage interface {
	// Name returns the stage name for logging and configuration.
	Name() string

	// State returns the document state while the stage runs.
	State() domain.DocumentState

	// Process receives the document-level annotation list and returns the
	// list for the next stage. Stages may replace passage and sentence
	// membership on doc.
	Process(ctx context.Context, doc *domain.Document, anns []domain.Annotation) ([]domain.Annotation, error)
}

// StagePipeline chains multiple Stages.
type StagePipeline interface {
	// Process runs the annotations through all stages in order.
	// A failing stage is reported as a *domain.StageError.
	Process(ctx context.Context, doc *domain.Document, anns []domain.Annotation) ([]domain.Annotation, error)
}

// StagePipelineFactory builds the pipeline for one batch run over that
// run's vocabulary snapshot.
type StagePipelineFactory interface {
	Build(ref *domain.ReferenceData) (StagePipeline, error)

	// Signature identifies the stage order and per-stage config.
	// It changes whenever the pipeline would produce different output.
	Signature() string
}
