package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pubminer/internal/core/domain"
)

// Tool describes one recognizer in the manifest.
type Tool struct {
	// ToolName prefixes the output directory: <ToolName>_OUTPUT.
	ToolName string `yaml:"toolName"`

	// Suffix is appended to input file names by tools that rename their output.
	Suffix string `yaml:"suffix,omitempty"`
}

// Manifest maps recognizer task names ("gene_ner") to tools.
type Manifest struct {
	Tasks map[string]Tool `yaml:"tasks"`
}

// DefaultManifest returns the stock GNormPlus/tmVar/DNorm/tmChem setup.
func DefaultManifest() *Manifest {
	return &Manifest{Tasks: map[string]Tool{
		domain.RecognizerGene.TaskName():     {ToolName: "GNormPlus"},
		domain.RecognizerMutation.TaskName(): {ToolName: "tmVar", Suffix: ".BioC.XML"},
		domain.RecognizerDisease.TaskName():  {ToolName: "DNorm"},
		domain.RecognizerChemical.TaskName(): {ToolName: "tmChem"},
	}}
}

// LoadManifest reads a YAML manifest. An empty path returns the default.
// Tasks missing from the file keep their default tool.
func LoadManifest(path string) (*Manifest, error) {
	m := DefaultManifest()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return parseManifest(data, m)
}

func parseManifest(data []byte, m *Manifest) (*Manifest, error) {
	var loaded Manifest
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", domain.ErrInvalidInput, err)
	}

	for task, tool := range loaded.Tasks {
		kind, err := domain.ParseRecognizerKind(task)
		if err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
		if tool.ToolName == "" {
			return nil, fmt.Errorf("%w: manifest task %s has no toolName", domain.ErrInvalidInput, task)
		}
		if tool.Suffix == "" {
			tool.Suffix = m.Tasks[kind.TaskName()].Suffix
		}
		m.Tasks[kind.TaskName()] = tool
	}
	return m, nil
}

// Tool returns the tool for a recognizer kind.
func (m *Manifest) Tool(kind domain.RecognizerKind) Tool {
	return m.Tasks[kind.TaskName()]
}

// OutputDir is the directory name a recognizer writes under the NER root.
func (m *Manifest) OutputDir(kind domain.RecognizerKind) string {
	return m.Tool(kind).ToolName + "_OUTPUT"
}

// OutputFile maps an input file name to the recognizer's output file name.
func (m *Manifest) OutputFile(kind domain.RecognizerKind, name string) string {
	return name + m.Tool(kind).Suffix
}
