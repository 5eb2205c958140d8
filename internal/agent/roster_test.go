package agent

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mwhittier/colloquy/internal/llm"
)

func TestResolvePanelDefaults(t *testing.T) {
	roster, err := Resolve(ReviewPanel, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if roster.Editor.Title != "Editor" {
		t.Fatalf("editor = %q", roster.Editor.Title)
	}
	if len(roster.Reviewers) != 3 {
		t.Fatalf("reviewers = %d, want 3", len(roster.Reviewers))
	}
	for _, r := range roster.Reviewers {
		if r.Title == "Editor" {
			t.Fatalf("editor listed among reviewers")
		}
	}
}

func TestResolvePanelAppendsEditorWhenAbsent(t *testing.T) {
	custom := []Agent{{
		Title:     "Proteomics Specialist",
		Expertise: "mass spectrometry",
		Goal:      "evaluate proteomics claims",
		Role:      "assess quantification workflows",
	}}
	roster, err := Resolve(ReviewPanel, custom)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if roster.Editor.Title != "Editor" {
		t.Fatalf("editor missing from custom panel")
	}
	if len(roster.Reviewers) != 1 || roster.Reviewers[0].Title != "Proteomics Specialist" {
		t.Fatalf("reviewers = %+v", roster.Reviewers)
	}
}

func TestResolvePanelCustomEditorKept(t *testing.T) {
	custom := []Agent{
		{Title: "Editor", Expertise: "e", Goal: "g", Role: "r"},
		{Title: "Statistician", Expertise: "stats", Goal: "rigor", Role: "check models"},
	}
	roster, err := Resolve(ReviewPanel, custom)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if roster.Editor.Expertise != "e" {
		t.Fatalf("custom editor not adopted: %+v", roster.Editor)
	}
	if len(roster.Reviewers) != 1 {
		t.Fatalf("reviewers = %+v", roster.Reviewers)
	}
}

func TestResolvePanelRejectsDuplicates(t *testing.T) {
	dup := Agent{Title: "Statistician", Expertise: "stats", Goal: "rigor", Role: "check models"}
	var cfgErr *ConfigurationError
	if _, err := Resolve(ReviewPanel, []Agent{dup, dup}); !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
}

func TestResolveIndividual(t *testing.T) {
	roster, err := Resolve(ReviewIndividual, []Agent{DomainExpert})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if roster.Critic.Title != ScientificCritic.Title {
		t.Fatalf("critic = %q", roster.Critic.Title)
	}
	var cfgErr *ConfigurationError
	if _, err := Resolve(ReviewIndividual, nil); !errors.As(err, &cfgErr) {
		t.Fatalf("empty individual err = %v", err)
	}
	if _, err := Resolve(ReviewIndividual, []Agent{DomainExpert, MethodologyReviewer}); !errors.As(err, &cfgErr) {
		t.Fatalf("two-reviewer individual err = %v", err)
	}
}

func TestParseReviewType(t *testing.T) {
	if got, err := ParseReviewType(" Panel "); err != nil || got != ReviewPanel {
		t.Fatalf("parse panel = %v, %v", got, err)
	}
	if _, err := ParseReviewType("committee"); err == nil {
		t.Fatalf("invalid type accepted")
	}
}

func TestPanelRoundTripThroughYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.yaml")
	panel := []Agent{DomainExpert, PresentationReviewer}
	if err := SavePanel(path, panel); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadPanel(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].Title != DomainExpert.Title {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestGeneratePanelParsesModelOutput(t *testing.T) {
	mock := llm.NewMockInvoker(llm.Response{
		Text: "```json\n[{\"title\":\"Synaptic Biology Expert\",\"expertise\":\"synaptic vesicle dynamics\",\"goal\":\"evaluate synaptic claims\",\"role\":\"assess phenotype characterization\"}]\n```",
	})
	panel, err := GeneratePanel(context.Background(), mock, "manuscript text", 3, "gpt-4o", 0.2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(panel) != 3 {
		t.Fatalf("panel size = %d, want 3 (generated + defaults)", len(panel))
	}
	if panel[0].Title != "Synaptic Biology Expert" {
		t.Fatalf("panel[0] = %+v", panel[0])
	}
	if panel[0].Model != "gpt-4o" {
		t.Fatalf("generated reviewer model = %q", panel[0].Model)
	}
}

func TestGeneratePanelFallsBackOnGarbage(t *testing.T) {
	mock := llm.NewMockInvoker(llm.Response{Text: "I cannot do that."})
	panel, err := GeneratePanel(context.Background(), mock, "text", 3, "gpt-4o", 0.2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(panel) != 3 || panel[0].Title != MethodologyReviewer.Title {
		t.Fatalf("fallback panel = %+v", panel)
	}
}
