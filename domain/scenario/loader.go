package scenario

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"lumina-go/core/event"
)

// yamlScenarioDefinition is the YAML structure for scenario files.
type yamlScenarioDefinition struct {
	Scenarios []yamlScenario `yaml:"scenarios"`
}

type yamlScenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Steps       []yamlStep `yaml:"steps"`
}

type yamlStep struct {
	AtTick   int            `yaml:"at_tick"`
	Producer string         `yaml:"producer"`
	Event    string         `yaml:"event"`
	Priority int            `yaml:"priority"`
	Params   map[string]any `yaml:"params"`
}

// Loader handles loading scenario definitions from various sources.
type Loader struct {
	registry *Registry
}

// NewLoader creates a new scenario loader that populates the given registry.
func NewLoader(registry *Registry) *Loader {
	return &Loader{registry: registry}
}

// LoadFromFS loads scenario definitions from an embedded or real filesystem.
// It expects YAML files in a "scenarios" subdirectory.
func (l *Loader) LoadFromFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, "scenarios")
	if err != nil {
		return fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		if err := l.loadFile(fsys, "scenarios/"+entry.Name()); err != nil {
			return err
		}
	}

	return nil
}

// loadFile loads a single scenario definition file.
func (l *Loader) loadFile(fsys fs.FS, path string) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}

	var def yamlScenarioDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}

	for _, ys := range def.Scenarios {
		s := convertYAMLScenario(&ys)
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid scenario in %s: %w", path, err)
		}
		l.registry.Register(s)
	}

	return nil
}

// convertYAMLScenario converts a YAML scenario to a domain Scenario.
func convertYAMLScenario(ys *yamlScenario) *Scenario {
	s := &Scenario{
		Name:        ys.Name,
		Description: ys.Description,
		Steps:       make([]Step, len(ys.Steps)),
	}

	for i, yst := range ys.Steps {
		s.Steps[i] = Step{
			AtTick:   yst.AtTick,
			Producer: yst.Producer,
			Event:    yst.Event,
			Priority: event.Priority(yst.Priority),
			Params:   yst.Params,
		}
	}

	return s
}
