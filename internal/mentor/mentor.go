// Package mentor turns a completed review into actionable guidance for the
// authors: what to fix first, how to fix it, and how to structure the
// response letter.
package mentor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwhittier/colloquy/internal/agent"
	"github.com/mwhittier/colloquy/internal/llm"
	"github.com/mwhittier/colloquy/internal/review"
)

// Mentor is the advisory persona. Unlike the review panel it works for the
// authors, not the journal.
var Mentor = agent.Agent{
	Title:     "Scientific Mentor",
	Expertise: "guiding researchers through the peer review and revision process",
	Goal:      "help authors understand and effectively address reviewer feedback",
	Role: "translate reviewer criticism into a prioritized, concrete revision plan " +
		"and advise on how to respond to each point",
}

// Options configures report generation.
type Options struct {
	Model       string
	Temperature float64
	// ManuscriptExcerpt gives the mentor the text under discussion; it is
	// optional, the review alone already supports useful guidance.
	ManuscriptExcerpt string
}

// GenerateReport asks the mentor to produce a revision-guidance report from
// the final review. The report is markdown.
func GenerateReport(ctx context.Context, invoker llm.Invoker, reviewText string, verdict review.Verdict, opts Options) (string, error) {
	if strings.TrimSpace(reviewText) == "" {
		return "", fmt.Errorf("mentor: empty review")
	}
	resp, err := invoker.Invoke(ctx, llm.Request{
		Model:       Mentor.ModelOrDefault(opts.Model),
		System:      Mentor.Persona(),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildPrompt(reviewText, verdict, opts.ManuscriptExcerpt)}},
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", err
	}
	report := strings.TrimSpace(resp.Text)
	if report == "" {
		return "", fmt.Errorf("mentor: model returned an empty report")
	}
	return report, nil
}

func buildPrompt(reviewText string, verdict review.Verdict, excerpt string) string {
	var sb strings.Builder
	sb.WriteString("The authors have received the following peer review")
	if verdict.Recommendation != "" {
		fmt.Fprintf(&sb, " with a recommendation of %q", verdict.Recommendation)
	}
	sb.WriteString(":\n\n[begin review]\n\n")
	sb.WriteString(reviewText)
	sb.WriteString("\n\n[end review]\n\n")
	if excerpt != "" {
		fmt.Fprintf(&sb, "Here is the manuscript under review:\n\n[begin manuscript]\n\n%s\n\n[end manuscript]\n\n", excerpt)
	}
	sb.WriteString(`Please write a mentoring report for the authors with the following sections:

### Priorities
Rank the reviewers' concerns by how much they threaten acceptance.

### Revision Plan
For each major concern, suggest concrete experiments, analyses, or text changes.

### Response Letter Guidance
Advise how to respond to each point, including where to push back respectfully.

### Encouragement
Briefly note the manuscript's genuine strengths.`)
	return sb.String()
}

// SaveReport writes the report under dir as mentor_report.md.
func SaveReport(dir, report string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mentor: create output dir: %w", err)
	}
	path := filepath.Join(dir, "mentor_report.md")
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("mentor: write report: %w", err)
	}
	return path, nil
}
