package agent

import (
	"fmt"
	"strings"
)

// ReviewType selects the discussion shape for a run.
type ReviewType string

const (
	// ReviewPanel runs every reviewer each round plus an editor synthesis.
	ReviewPanel ReviewType = "panel"
	// ReviewIndividual runs one reviewer refined by the critic.
	ReviewIndividual ReviewType = "individual"
)

// ParseReviewType validates a user-supplied review type string.
func ParseReviewType(s string) (ReviewType, error) {
	switch ReviewType(strings.ToLower(strings.TrimSpace(s))) {
	case ReviewPanel:
		return ReviewPanel, nil
	case ReviewIndividual:
		return ReviewIndividual, nil
	}
	return "", &ConfigurationError{Reason: fmt.Sprintf("invalid review type %q", s)}
}

// ConfigurationError reports a bad agent/review-type combination.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("agent: %s", e.Reason)
}

// Roster is the resolved, read-only set of participants for one run.
// For panel runs the Editor synthesizes; for individual runs the Critic
// evaluates the single reviewer's drafts.
type Roster struct {
	Type      ReviewType
	Editor    Agent
	Critic    Agent
	Reviewers []Agent
}

// Resolve builds the roster for a run. A nil or empty reviewer list selects
// the defaults. For panel runs the Editor is appended if the custom set does
// not carry an editor role; editor synthesis is mandatory. Individual runs
// accept exactly one reviewer.
func Resolve(reviewType ReviewType, reviewers []Agent) (Roster, error) {
	switch reviewType {
	case ReviewPanel:
		return resolvePanel(reviewers)
	case ReviewIndividual:
		return resolveIndividual(reviewers)
	}
	return Roster{}, &ConfigurationError{Reason: fmt.Sprintf("invalid review type %q", reviewType)}
}

func resolvePanel(reviewers []Agent) (Roster, error) {
	if len(reviewers) == 0 {
		reviewers = DefaultReviewers()
	}
	editor := Editor
	kept := make([]Agent, 0, len(reviewers))
	seen := make(map[string]bool, len(reviewers))
	for _, r := range reviewers {
		if err := r.Validate(); err != nil {
			return Roster{}, &ConfigurationError{Reason: err.Error()}
		}
		if strings.EqualFold(r.Title, Editor.Title) {
			editor = r
			continue
		}
		key := strings.ToLower(strings.TrimSpace(r.Title))
		if seen[key] {
			return Roster{}, &ConfigurationError{Reason: fmt.Sprintf("duplicate reviewer %q", r.Title)}
		}
		seen[key] = true
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return Roster{}, &ConfigurationError{Reason: "panel review requires at least one reviewer"}
	}
	return Roster{Type: ReviewPanel, Editor: editor, Critic: ScientificCritic, Reviewers: kept}, nil
}

func resolveIndividual(reviewers []Agent) (Roster, error) {
	if len(reviewers) == 0 {
		return Roster{}, &ConfigurationError{Reason: "individual review requires a reviewer"}
	}
	if len(reviewers) > 1 {
		return Roster{}, &ConfigurationError{Reason: fmt.Sprintf("individual review takes exactly one reviewer, got %d", len(reviewers))}
	}
	reviewer := reviewers[0]
	if err := reviewer.Validate(); err != nil {
		return Roster{}, &ConfigurationError{Reason: err.Error()}
	}
	if strings.EqualFold(reviewer.Title, ScientificCritic.Title) {
		return Roster{}, &ConfigurationError{Reason: "the critic cannot review its own drafts"}
	}
	return Roster{Type: ReviewIndividual, Critic: ScientificCritic, Reviewers: []Agent{reviewer}}, nil
}

// Contains reports whether the roster carries a participant with the given
// title. The transcript uses rosters to attribute speakers.
func (r Roster) Contains(title string) bool {
	if strings.EqualFold(r.Editor.Title, title) || strings.EqualFold(r.Critic.Title, title) {
		return true
	}
	for _, rev := range r.Reviewers {
		if strings.EqualFold(rev.Title, title) {
			return true
		}
	}
	return false
}
