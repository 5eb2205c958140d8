package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// personaFile models the on-disk panel schema: a version header plus the
// reviewer list.
type personaFile struct {
	Version   int     `yaml:"version"`
	Reviewers []Agent `yaml:"reviewers"`
}

// LoadPanel reads a custom reviewer panel from a YAML file. The file carries
// persona records only; roster rules (editor presence, uniqueness) are
// applied later by Resolve.
func LoadPanel(path string) ([]Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agent: read %s: %w", path, err)
	}
	var file personaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("agent: parse %s: %w", path, err)
	}
	if file.Version < 1 {
		return nil, fmt.Errorf("agent: %s: version must be >= 1", path)
	}
	if len(file.Reviewers) == 0 {
		return nil, fmt.Errorf("agent: %s: no reviewers defined", path)
	}
	for _, r := range file.Reviewers {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("agent: %s: %w", path, err)
		}
	}
	return file.Reviewers, nil
}

// SavePanel writes a reviewer panel to a YAML file, so a generated panel can
// be inspected or reused across revisions of the same manuscript.
func SavePanel(path string, reviewers []Agent) error {
	data, err := yaml.Marshal(personaFile{Version: 1, Reviewers: reviewers})
	if err != nil {
		return fmt.Errorf("agent: marshal panel: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("agent: write %s: %w", path, err)
	}
	return nil
}
