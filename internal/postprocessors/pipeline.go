// Package postprocessors provides the per-document merge pipeline: the
// ordered stages that run after normalisation.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.StagePipeline = (*Pipeline)(nil)

// Pipeline chains multiple Stages and runs them in order.
// It implements the StagePipeline interface.
type Pipeline struct {
	stages []driven.Stage
}

// NewPipeline creates a new pipeline with the given stages.
// Stages are executed in the order provided.
func NewPipeline(stages ...driven.Stage) *Pipeline {
	return &Pipeline{
		stages: stages,
	}
}

// Process runs the annotations through all stages in order.
// Each stage receives the previous stage's full output.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document, anns []domain.Annotation) ([]domain.Annotation, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, &domain.StageError{DocumentID: doc.ID, Stage: stage.State(), Err: err}
		}
		var err error
		anns, err = stage.Process(ctx, doc, anns)
		if err != nil {
			return nil, &domain.StageError{
				DocumentID: doc.ID,
				Stage:      stage.State(),
				Err:        fmt.Errorf("stage %s: %w", stage.Name(), err),
			}
		}
	}

	return anns, nil
}

// Add appends a stage to the pipeline.
func (p *Pipeline) Add(stage driven.Stage) {
	p.stages = append(p.stages, stage)
}

// Len returns the number of stages in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
