package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitColloquyDirCreatesStructure(t *testing.T) {
	dir := t.TempDir()
	if err := InitColloquyDir(dir); err != nil {
		t.Fatalf("InitColloquyDir: %v", err)
	}
	for _, sub := range []string{"logs", "reviews", "personas", "revisions"} {
		if _, err := os.Stat(filepath.Join(dir, ColloquyDir, sub)); err != nil {
			t.Errorf("missing %s: %v", sub, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, ColloquyDir, "config.yaml"))
	if err != nil {
		t.Fatalf("default config not seeded: %v", err)
	}
	if !strings.Contains(string(data), "rates:") {
		t.Errorf("seeded config missing rate table")
	}
}

func TestInitColloquyDirPreservesExistingConfig(t *testing.T) {
	dir := t.TempDir()
	if err := InitColloquyDir(dir); err != nil {
		t.Fatalf("InitColloquyDir: %v", err)
	}
	path := filepath.Join(dir, ColloquyDir, "config.yaml")
	custom := "version: 1\nreview:\n  type: individual\n  rounds: 4\n  pubmed: true\n"
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}
	if err := InitColloquyDir(dir); err != nil {
		t.Fatalf("second InitColloquyDir: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) != custom {
		t.Fatalf("existing config overwritten")
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	// The seeded config.yaml mirrors the built-in defaults.
	if cfg.Project.Review.Type != "panel" || cfg.Project.Review.Rounds != 1 {
		t.Errorf("review defaults = %+v", cfg.Project.Review)
	}
	if !cfg.Project.Review.PubMed {
		t.Errorf("pubmed not enabled by default")
	}
	if cfg.Project.Model.Name != "gpt-4o" {
		t.Errorf("model default = %q", cfg.Project.Model.Name)
	}
	if cfg.Project.Manuscript.MaxContextChars != 50000 {
		t.Errorf("max context chars = %d", cfg.Project.Manuscript.MaxContextChars)
	}
	if _, ok := cfg.Project.Rates["gpt-4o"]; !ok {
		t.Errorf("rate table missing gpt-4o: %v", cfg.Project.Rates)
	}
}

func TestNewConfigOverridesKeepOmittedDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := InitColloquyDir(dir); err != nil {
		t.Fatalf("InitColloquyDir: %v", err)
	}
	custom := `version: 1
review:
  type: Individual
  rounds: 3
  pubmed: true
model:
  name: gpt-4o-mini
`
	if err := os.WriteFile(filepath.Join(dir, ColloquyDir, "config.yaml"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Project.Review.Type != "individual" {
		t.Errorf("review type not normalized: %q", cfg.Project.Review.Type)
	}
	if cfg.Project.Review.Rounds != 3 || cfg.Project.Model.Name != "gpt-4o-mini" {
		t.Errorf("overrides not applied: %+v", cfg.Project)
	}
	// Sections the file omits keep their defaults.
	if cfg.Project.Manuscript.MaxContextChars != 50000 {
		t.Errorf("omitted manuscript section lost default: %d", cfg.Project.Manuscript.MaxContextChars)
	}
	if len(cfg.Project.Rates) == 0 {
		t.Errorf("omitted rates section lost defaults")
	}
}

func TestNewConfigRejectsInvalid(t *testing.T) {
	cases := []string{
		"review:\n  type: committee\n  rounds: 1\n",
		"review:\n  type: panel\n  rounds: -2\n",
		"model:\n  name: \"\"\nreview:\n  type: panel\n  rounds: 1\n",
	}
	for _, body := range cases {
		dir := t.TempDir()
		if err := InitColloquyDir(dir); err != nil {
			t.Fatalf("InitColloquyDir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, ColloquyDir, "config.yaml"), []byte(body), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := NewConfig(dir); err == nil {
			t.Errorf("config %q accepted", body)
		}
	}
}

func TestNewConfigReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=sk-test-123\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")
	cfg, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.APIKey != "sk-test-123" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
}
