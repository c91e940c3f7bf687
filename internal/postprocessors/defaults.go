package postprocessors

import (
	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
	"github.com/custodia-labs/pubminer/internal/postprocessors/gapfill"
	"github.com/custodia-labs/pubminer/internal/postprocessors/merge"
	"github.com/custodia-labs/pubminer/internal/postprocessors/partition"
)

// Stage names.
const (
	StageMerge     = "merge"
	StageGapFill   = "gapfill"
	StagePartition = "partition"
)

// DefaultStages returns the stage order of the merge pipeline.
func DefaultStages() []string {
	return []string{StageMerge, StageGapFill, StagePartition}
}

// RegisterDefaults registers all built-in stages with the registry.
// Call this during application initialisation to enable standard stages.
func RegisterDefaults(r *Registry) {
	r.Register(StageMerge, buildMerge)
	r.Register(StageGapFill, buildGapFill)
	r.Register(StagePartition, buildPartition)
}

// buildMerge creates the merge stage from generic config.
// Supported config keys:
//   - precedence ([]string): Recognizer tie-break order (default: gene, mutation, disease, chemical)
func buildMerge(_ *domain.ReferenceData, cfg map[string]any) (driven.Stage, error) {
	var opts []merge.Option

	if names := getStringSliceFromConfig(cfg, "precedence"); len(names) > 0 {
		kinds := make([]domain.RecognizerKind, 0, len(names))
		for _, n := range names {
			k, err := domain.ParseRecognizerKind(n)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, k)
		}
		opts = append(opts, merge.WithPrecedence(kinds))
	}

	return merge.New(opts...), nil
}

// buildGapFill creates the gap-fill stage from generic config.
// Supported config keys:
//   - window (int): Maximum term length in tokens (default: 17)
func buildGapFill(ref *domain.ReferenceData, cfg map[string]any) (driven.Stage, error) {
	if ref == nil {
		return nil, domain.ErrReferenceData
	}

	var opts []gapfill.Option
	if window := getIntFromConfig(cfg, "window"); window > 0 {
		opts = append(opts, gapfill.WithWindow(window))
	}

	return gapfill.New(ref, opts...), nil
}

func buildPartition(_ *domain.ReferenceData, _ map[string]any) (driven.Stage, error) {
	return partition.New(), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// getStringSliceFromConfig extracts a string list, accepting the []any
// shape TOML decoding produces.
func getStringSliceFromConfig(cfg map[string]any, key string) []string {
	val, ok := cfg[key]
	if !ok {
		return nil
	}

	switch v := val.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
