// Package config handles configuration and the .colloquy directory
// structure. Every project that runs reviews gets a .colloquy/ folder
// created in its root.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mwhittier/colloquy/internal/transcript"
)

const (
	// ColloquyDir is the name of the directory created in each project.
	ColloquyDir = ".colloquy"

	defaultModel           = "gpt-4o"
	defaultRounds          = 1
	defaultMaxContextChars = 50000
)

const defaultProjectConfigYAML = `# colloquy project configuration
version: 1

review:
  # panel or individual
  type: panel
  rounds: 1
  # Allow agents to search PubMed Central during the discussion.
  pubmed: true

model:
  name: gpt-4o
  temperature: 0.2

manuscript:
  # Manuscript text beyond this many characters is truncated in prompts.
  # Set to -1 to disable truncation.
  max_context_chars: 50000

# Per-token prices in USD, used for cost estimates. Model names match by
# longest prefix, so dated releases resolve to their family entry.
rates:
  gpt-4o:
    input: 0.0000025
    output: 0.00001
  gpt-4o-mini:
    input: 0.00000015
    output: 0.0000006
`

// ReviewConfig captures the review shape preferences.
type ReviewConfig struct {
	Type   string `yaml:"type"`
	Rounds int    `yaml:"rounds"`
	PubMed bool   `yaml:"pubmed"`
}

// ModelConfig selects the model every agent uses unless it pins its own.
type ModelConfig struct {
	Name        string  `yaml:"name"`
	Temperature float64 `yaml:"temperature"`
}

// ManuscriptConfig bounds what of the manuscript enters prompts.
type ManuscriptConfig struct {
	MaxContextChars int `yaml:"max_context_chars"`
}

// ProjectConfig models .colloquy/config.yaml.
type ProjectConfig struct {
	Version    int                  `yaml:"version"`
	Review     ReviewConfig         `yaml:"review"`
	Model      ModelConfig          `yaml:"model"`
	Manuscript ManuscriptConfig     `yaml:"manuscript"`
	Rates      transcript.RateTable `yaml:"rates"`
}

// Config holds the runtime configuration for one project.
type Config struct {
	// ProjectDir is the directory the review project lives in.
	ProjectDir string

	// ColloquyProjectDir is ProjectDir/.colloquy.
	ColloquyProjectDir string

	// APIKey is the OpenAI credential, loaded from the environment or a
	// .env file in the project directory.
	APIKey string

	Project ProjectConfig
}

// InitColloquyDir creates the .colloquy directory structure in the given
// project directory and seeds a default config.yaml when none exists.
//
// Structure created:
// .colloquy/
// ├── logs/       <- per-run logbooks
// ├── reviews/    <- exported run artifacts
// ├── personas/   <- saved reviewer panels
// └── revisions/  <- manuscript version history
func InitColloquyDir(projectDir string) error {
	colloquyDir := filepath.Join(projectDir, ColloquyDir)
	dirs := []string{
		filepath.Join(colloquyDir, "logs"),
		filepath.Join(colloquyDir, "reviews"),
		filepath.Join(colloquyDir, "personas"),
		filepath.Join(colloquyDir, "revisions"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(colloquyDir, "config.yaml"))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// NewConfig loads the project configuration, creating the .colloquy
// structure if needed. A .env file next to the project is honored but never
// overrides variables already set in the environment.
func NewConfig(projectDir string) (*Config, error) {
	if err := InitColloquyDir(projectDir); err != nil {
		return nil, err
	}

	// Best effort: absence of a .env file is the common case.
	_ = godotenv.Load(filepath.Join(projectDir, ".env"))

	cfg := &Config{
		ProjectDir:         projectDir,
		ColloquyProjectDir: filepath.Join(projectDir, ColloquyDir),
		APIKey:             os.Getenv("OPENAI_API_KEY"),
		Project:            defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.Project.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the per-run logbook directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.ColloquyProjectDir, "logs")
}

// ReviewsDir returns the directory exported run artifacts land in.
func (c *Config) ReviewsDir() string {
	return filepath.Join(c.ColloquyProjectDir, "reviews")
}

// PersonasPath returns the on-disk location for a saved reviewer panel.
func (c *Config) PersonasPath() string {
	return filepath.Join(c.ColloquyProjectDir, "personas", "panel.yaml")
}

// RevisionsDir returns the manuscript version history directory.
func (c *Config) RevisionsDir() string {
	return filepath.Join(c.ColloquyProjectDir, "revisions")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.ColloquyProjectDir, "config.yaml")
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Review:  ReviewConfig{Type: "panel", Rounds: defaultRounds, PubMed: true},
		Model:   ModelConfig{Name: defaultModel, Temperature: 0.2},
		Manuscript: ManuscriptConfig{
			MaxContextChars: defaultMaxContextChars,
		},
		Rates: transcript.RateTable{
			"gpt-4o":      {Input: 2.50 / 1e6, Output: 10.00 / 1e6},
			"gpt-4o-mini": {Input: 0.15 / 1e6, Output: 0.60 / 1e6},
		},
	}
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	// Unmarshal over the defaults: fields the file omits keep their
	// default values.
	if err := yaml.Unmarshal(data, &c.Project); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.Project.Review.Type = strings.ToLower(strings.TrimSpace(c.Project.Review.Type))
	return nil
}

func (p ProjectConfig) validate() error {
	switch p.Review.Type {
	case "panel", "individual":
	default:
		return fmt.Errorf("config: invalid review type %q", p.Review.Type)
	}
	if p.Review.Rounds < 1 {
		return fmt.Errorf("config: rounds must be at least 1, got %d", p.Review.Rounds)
	}
	if p.Model.Name == "" {
		return fmt.Errorf("config: model name is required")
	}
	for model, rate := range p.Rates {
		if rate.Input < 0 || rate.Output < 0 {
			return fmt.Errorf("config: negative rate for model %q", model)
		}
	}
	return nil
}
