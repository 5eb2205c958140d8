// Package agent defines the reviewer personas and resolves which of them
// participate in a review run. A persona is plain data consumed by the
// invocation service; nothing in the core dispatches on persona identity.
package agent

import (
	"fmt"
	"strings"
)

// Agent is one reviewer persona: identity, capability profile, and the model
// it runs on. Immutable once constructed.
type Agent struct {
	Title     string `yaml:"title"`
	Expertise string `yaml:"expertise"`
	Goal      string `yaml:"goal"`
	Role      string `yaml:"role"`
	Model     string `yaml:"model,omitempty"`
}

// Validate ensures the persona is well-formed.
func (a Agent) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("agent: title is required")
	}
	if strings.TrimSpace(a.Expertise) == "" {
		return fmt.Errorf("agent: expertise is required for %s", a.Title)
	}
	if strings.TrimSpace(a.Goal) == "" {
		return fmt.Errorf("agent: goal is required for %s", a.Title)
	}
	if strings.TrimSpace(a.Role) == "" {
		return fmt.Errorf("agent: role is required for %s", a.Title)
	}
	return nil
}

// Persona renders the system prompt establishing the agent's identity.
func (a Agent) Persona() string {
	return fmt.Sprintf(
		"You are %s. Your expertise is in %s. Your goal is to %s. Your role is to %s.",
		a.Title, a.Expertise, a.Goal, a.Role,
	)
}

// String returns the title, used when addressing the agent in prompts.
func (a Agent) String() string {
	return a.Title
}

// ModelOrDefault returns the agent's model, falling back to the given
// run-level default.
func (a Agent) ModelOrDefault(def string) string {
	if a.Model != "" {
		return a.Model
	}
	return def
}

// The standing editorial panel. Custom panels may replace the reviewers, but
// the Editor role is always present for panel runs and the Critic always
// drives individual runs.
var (
	Editor = Agent{
		Title:     "Editor",
		Expertise: "scientific publishing, editorial decision-making, and manuscript evaluation for biomedical journals",
		Goal:      "provide a fair and thorough assessment of the manuscript's suitability for publication, considering novelty, significance, and scientific rigor",
		Role:      "synthesize feedback from specialist reviewers, identify the most critical issues, and provide an overall recommendation on the manuscript",
	}

	MethodologyReviewer = Agent{
		Title:     "Methodology Reviewer",
		Expertise: "experimental design, statistical analysis, and methodological rigor in biomedical research",
		Goal:      "ensure the methods are sound, reproducible, and appropriate for the research questions",
		Role:      "critically evaluate the experimental design, statistical approaches, sample sizes, controls, and reproducibility of the methods. Identify any methodological flaws or areas needing clarification",
	}

	DomainExpert = Agent{
		Title:     "Domain Expert",
		Expertise: "biomedical sciences, current literature, and the specific research area of the manuscript",
		Goal:      "assess the scientific accuracy, novelty, and significance of the research in the context of the field",
		Role:      "evaluate whether the findings are novel, scientifically sound, and significant. Assess how well the manuscript relates to existing literature and whether claims are supported by the data",
	}

	PresentationReviewer = Agent{
		Title:     "Presentation Reviewer",
		Expertise: "scientific writing, data visualization, and clear communication of research findings",
		Goal:      "ensure the manuscript is clearly written, well-organized, and effectively communicates its findings",
		Role:      "evaluate the clarity of writing, quality of figures and tables, logical organization, and overall readability. Identify areas where presentation could be improved",
	}

	ScientificCritic = Agent{
		Title:     "Scientific Critic",
		Expertise: "providing rigorous critical feedback for scientific manuscripts",
		Goal:      "ensure that reviews are thorough, fair, and constructively critical",
		Role:      "provide critical feedback on the review process to ensure all important issues are identified and feedback is actionable",
	}
)

// DefaultReviewers is the stock panel used when no custom reviewers are
// supplied and panel generation is disabled.
func DefaultReviewers() []Agent {
	return []Agent{MethodologyReviewer, DomainExpert, PresentationReviewer}
}
