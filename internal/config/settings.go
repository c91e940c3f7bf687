// Package config derives typed pubminer settings from the TOML config store
// and reads the YAML recognizer tool manifest.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/pubminer/internal/core/domain"
	"github.com/custodia-labs/pubminer/internal/core/ports/driven"
	"github.com/custodia-labs/pubminer/internal/postprocessors"
	"github.com/custodia-labs/pubminer/internal/postprocessors/gapfill"
)

// Config keys.
const (
	KeyNERRoot           = "storage.ner"
	KeyResultRoot        = "storage.result"
	KeyDataDir           = "storage.data"
	KeyResource          = "resource"
	KeyWorkers           = "batch.workers"
	KeyBaseRecognizer    = "batch.base_recognizer"
	KeyReadySuffix       = "batch.ready_suffix"
	KeyPrecedence        = "merge.precedence"
	KeyGapFillWindow     = "gapfill.window"
	KeyGapFillEnabled    = "gapfill.enabled"
	KeyVocabGene         = "vocabulary.gene"
	KeyVocabCancer       = "vocabulary.cancer"
	KeyVocabChemical     = "vocabulary.chemical"
	KeyVocabEvidence     = "vocabulary.evidence"
	KeyVocabDOID         = "vocabulary.doid"
	KeyVocabStopwords    = "vocabulary.gene_stopwords"
	KeyToolsManifest     = "tools.manifest"
	KeySchedulerEnabled  = "scheduler.enabled"
	KeySchedulerInterval = "scheduler.interval"
	KeyVerbose           = "logging.verbose"
)

// Defaults.
const (
	DefaultResource          = "PUBMED"
	DefaultWorkers           = 20
	DefaultBaseRecognizer    = domain.RecognizerDisease
	DefaultSchedulerInterval = 24 * time.Hour
	DatabaseFile             = "pubminer.db"
)

// Resources are the literature collections a batch can belong to.
var Resources = []string{"PUBMED", "PMC"}

// VocabularyPaths locates the reference vocabulary files. Empty paths are
// skipped by the loader.
type VocabularyPaths struct {
	Gene      string
	Cancer    string
	Chemical  string
	Evidence  string
	DOID      string
	Stopwords string
}

// Settings is the typed view of the config file.
type Settings struct {
	NERRoot    string
	ResultRoot string
	DataDir    string
	Resource   string

	Workers        int
	BaseRecognizer domain.RecognizerKind
	ReadySuffix    string

	Precedence     []domain.RecognizerKind
	GapFillWindow  int
	GapFillEnabled bool

	Vocabulary   VocabularyPaths
	ManifestPath string

	SchedulerEnabled  bool
	SchedulerInterval time.Duration

	Verbose bool
}

// Load reads settings from store, filling defaults for unset keys.
// Relative storage paths resolve against the config file's directory.
func Load(store driven.ConfigStore) (*Settings, error) {
	base := filepath.Dir(store.Path())
	s := &Settings{
		NERRoot:           resolve(base, store.GetString(KeyNERRoot), "ner"),
		ResultRoot:        resolve(base, store.GetString(KeyResultRoot), "result"),
		DataDir:           resolve(base, store.GetString(KeyDataDir), "data"),
		Resource:          strings.ToUpper(strings.TrimSpace(store.GetString(KeyResource))),
		Workers:           store.GetInt(KeyWorkers),
		ReadySuffix:       store.GetString(KeyReadySuffix),
		GapFillWindow:     store.GetInt(KeyGapFillWindow),
		GapFillEnabled:    true,
		SchedulerEnabled:  store.GetBool(KeySchedulerEnabled),
		SchedulerInterval: DefaultSchedulerInterval,
		Verbose:           store.GetBool(KeyVerbose),
		ManifestPath:      resolve(base, store.GetString(KeyToolsManifest), ""),
		Vocabulary: VocabularyPaths{
			Gene:      resolve(base, store.GetString(KeyVocabGene), ""),
			Cancer:    resolve(base, store.GetString(KeyVocabCancer), ""),
			Chemical:  resolve(base, store.GetString(KeyVocabChemical), ""),
			Evidence:  resolve(base, store.GetString(KeyVocabEvidence), ""),
			DOID:      resolve(base, store.GetString(KeyVocabDOID), ""),
			Stopwords: resolve(base, store.GetString(KeyVocabStopwords), ""),
		},
	}

	if s.Resource == "" {
		s.Resource = DefaultResource
	}
	if s.Workers <= 0 {
		s.Workers = DefaultWorkers
	}
	if s.GapFillWindow <= 0 {
		s.GapFillWindow = gapfill.DefaultWindow
	}
	if v, ok := store.Get(KeyGapFillEnabled); ok {
		if b, isBool := v.(bool); isBool {
			s.GapFillEnabled = b
		}
	}

	s.BaseRecognizer = DefaultBaseRecognizer
	if raw := store.GetString(KeyBaseRecognizer); raw != "" {
		kind, err := domain.ParseRecognizerKind(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyBaseRecognizer, err)
		}
		s.BaseRecognizer = kind
	}

	s.Precedence = domain.AllRecognizerKinds()
	if names := store.GetStringSlice(KeyPrecedence); len(names) > 0 {
		kinds, err := parsePrecedence(names)
		if err != nil {
			return nil, err
		}
		s.Precedence = kinds
	}

	if raw := store.GetString(KeySchedulerInterval); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: %s %q", domain.ErrInvalidInput, KeySchedulerInterval, raw)
		}
		s.SchedulerInterval = d
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

var knownKeys = map[string]bool{
	KeyNERRoot: true, KeyResultRoot: true, KeyDataDir: true, KeyResource: true,
	KeyWorkers: true, KeyBaseRecognizer: true, KeyReadySuffix: true, KeyPrecedence: true,
	KeyGapFillWindow: true, KeyGapFillEnabled: true, KeyVocabGene: true, KeyVocabCancer: true,
	KeyVocabChemical: true, KeyVocabEvidence: true, KeyVocabDOID: true, KeyVocabStopwords: true,
	KeyToolsManifest: true, KeySchedulerEnabled: true, KeySchedulerInterval: true, KeyVerbose: true,
}

// UnknownKeys returns configured keys pubminer does not read, usually typos.
func UnknownKeys(store driven.ConfigStore) []string {
	var unknown []string
	for _, k := range store.Keys() {
		if !knownKeys[k] {
			unknown = append(unknown, k)
		}
	}
	return unknown
}

// parsePrecedence accepts a full ordering of the four recognizer kinds.
func parsePrecedence(names []string) ([]domain.RecognizerKind, error) {
	seen := make(map[domain.RecognizerKind]bool, len(names))
	kinds := make([]domain.RecognizerKind, 0, len(names))
	for _, n := range names {
		k, err := domain.ParseRecognizerKind(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyPrecedence, err)
		}
		if seen[k] {
			return nil, fmt.Errorf("%w: %s lists %s twice", domain.ErrInvalidInput, KeyPrecedence, k)
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	if len(kinds) != len(domain.DefaultPrecedence) {
		return nil, fmt.Errorf("%w: %s must order all of %v", domain.ErrInvalidInput, KeyPrecedence, domain.DefaultPrecedence)
	}
	return kinds, nil
}

// Validate checks values that cannot be defaulted.
func (s *Settings) Validate() error {
	known := false
	for _, r := range Resources {
		if s.Resource == r {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %s %q (want one of %s)", domain.ErrInvalidInput,
			KeyResource, s.Resource, strings.Join(Resources, ", "))
	}
	if strings.ContainsAny(s.ReadySuffix, `/\`) {
		return fmt.Errorf("%w: %s %q", domain.ErrInvalidInput, KeyReadySuffix, s.ReadySuffix)
	}
	return nil
}

// DatabasePath is the sqlite file holding merged documents, postings and runs.
func (s *Settings) DatabasePath() string {
	return filepath.Join(s.DataDir, DatabaseFile)
}

// JSONRoot is where BioC JSON output is written.
func (s *Settings) JSONRoot() string {
	return filepath.Join(s.ResultRoot, "json")
}

// Stages returns the post-processing stage order.
func (s *Settings) Stages() []string {
	if s.GapFillEnabled {
		return postprocessors.DefaultStages()
	}
	return []string{postprocessors.StageMerge, postprocessors.StagePartition}
}

// StageConfigs returns per-stage config for the stage registry.
func (s *Settings) StageConfigs() map[string]map[string]any {
	precedence := make([]string, len(s.Precedence))
	for i, k := range s.Precedence {
		precedence[i] = string(k)
	}
	return map[string]map[string]any{
		postprocessors.StageMerge:   {"precedence": precedence},
		postprocessors.StageGapFill: {"window": s.GapFillWindow},
	}
}

// SchedulerConfig returns the schedule of the merge-batches task.
func (s *Settings) SchedulerConfig() domain.SchedulerConfig {
	return domain.SchedulerConfig{
		Enabled: s.SchedulerEnabled,
		TaskConfigs: map[string]domain.TaskConfig{
			domain.TaskIDMergeBatches: {
				Enabled:  s.SchedulerEnabled,
				Interval: s.SchedulerInterval,
			},
		},
	}
}

// EnsureDirs creates the directories pubminer writes to.
func (s *Settings) EnsureDirs() error {
	for _, dir := range []string{s.ResultRoot, s.DataDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func resolve(base, value, fallback string) string {
	if value == "" {
		value = fallback
	}
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, value[2:])
		}
	}
	if filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(base, value)
}
