package postprocessors

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
)

// BuilderFunc creates a Stage for one batch run.
// Config is a map of stage-specific settings parsed from user config.
// The reference data is the batch's shared vocabulary snapshot.
type BuilderFunc func(ref *domain.ReferenceData, cfg map[string]any) (driven.Stage, error)

// Registry maps stage names to their builders.
// It allows dynamic construction of the pipeline from configuration.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates a new stage registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a stage builder to the registry.
// Name should be unique and match the stage's Name() return value.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a stage by name with the given config.
// Returns error if the stage name is not registered.
func (r *Registry) Build(name string, ref *domain.ReferenceData, cfg map[string]any) (driven.Stage, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: stage %s", domain.ErrUnsupportedType, name)
	}
	return builder(ref, cfg)
}

// BuildPipeline builds the named stages in order. cfgs holds per-stage
// config keyed by stage name; missing entries mean defaults.
func (r *Registry) BuildPipeline(names []string, ref *domain.ReferenceData, cfgs map[string]map[string]any) (*Pipeline, error) {
	p := NewPipeline()
	for _, name := range names {
		stage, err := r.Build(name, ref, cfgs[name])
		if err != nil {
			return nil, fmt.Errorf("build stage %s: %w", name, err)
		}
		p.Add(stage)
	}
	return p, nil
}

// Has returns true if a stage with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered stage names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ensure Factory implements the interface.
var _ driven.StagePipelineFactory = (*Factory)(nil)

// Factory builds a configured pipeline for each batch run.
type Factory struct {
	Registry *Registry

	// Stages lists stage names in execution order.
	Stages []string

	// Configs holds per-stage config keyed by stage name.
	Configs map[string]map[string]any
}

// Build creates the pipeline over ref.
func (f *Factory) Build(ref *domain.ReferenceData) (driven.StagePipeline, error) {
	return f.Registry.BuildPipeline(f.Stages, ref, f.Configs)
}

// Signature encodes the stage order and configs. Map keys are sorted by
// the JSON encoder, so equal configurations give equal signatures.
func (f *Factory) Signature() string {
	data, err := json.Marshal(struct {
		Stages  []string                  `json:"stages"`
		Configs map[string]map[string]any `json:"configs,omitempty"`
	}{f.Stages, f.Configs})
	if err != nil {
		return fmt.Sprint(f.Stages, f.Configs)
	}
	return string(data)
}
