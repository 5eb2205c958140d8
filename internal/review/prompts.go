package review

import (
	"fmt"
	"strings"

	"github.com/mwhittier/colloquy/internal/agent"
)

// Prompt builders for both review shapes. Exact wording carries no contract;
// only the structure markers consumed by the synthesizer and the critic
// verdict line are load-bearing.

const synthesisCharge = "synthesize the points raised by each reviewer, identify the most critical issues, and determine the overall assessment of the manuscript"

const summaryCharge = "summarize the review discussion, provide specific recommendations for the authors, and give a final publication recommendation"

// criticApprovalLine is the structured verdict the critic must lead with.
// The orchestrator's critique-revise loop keys its early termination on it.
const (
	criticApprovedMark = "Assessment: Approved"
	criticRevisionMark = "Assessment: Needs Revision"
)

func formatNumbered(items []string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(parts, "\n\n")
}

func formatManuscript(text string) string {
	return fmt.Sprintf("Here is the manuscript to review:\n\n[begin manuscript]\n\n%s\n\n[end manuscript]\n\n", text)
}

func formatCriteria(criteria []string, intro string) string {
	if len(criteria) == 0 {
		return ""
	}
	return fmt.Sprintf("%s\n\n%s\n\n", intro, formatNumbered(criteria))
}

func formatPreviousReviews(reviews []string) string {
	if len(reviews) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Here are the previous reviews of this manuscript:\n\n")
	for i, review := range reviews {
		fmt.Fprintf(&sb, "[begin review %d]\n\n%s\n\n[end review %d]", i+1, review, i+1)
	}
	sb.WriteString("\n\n")
	return sb.String()
}

func formatAuthorResponse(response string) string {
	if response == "" {
		return ""
	}
	return fmt.Sprintf("Here is the authors' response to previous reviews:\n\n[begin author response]\n\n%s\n\n[end author response]\n\n", response)
}

func revisionContext(previousReviews []string, authorResponse string) string {
	if len(previousReviews) == 0 {
		return ""
	}
	return "This is a REVISED manuscript. Please evaluate how well the authors have addressed previous concerns.\n\n" +
		formatPreviousReviews(previousReviews) +
		formatAuthorResponse(authorResponse)
}

// reviewStructure is the shape the final synthesis must take. The section
// headings here are what the synthesizer extracts.
func reviewStructure() string {
	return `Your review should follow this structure:

### Summary
Provide a brief summary of the manuscript's main findings and contributions.

### Major Strengths
List the key strengths of the manuscript (2-4 points).

### Major Weaknesses
List the significant weaknesses that must be addressed (2-4 points).

### Minor Issues
List minor issues or suggestions for improvement.

### Specific Comments
Provide detailed, section-by-section feedback. Use a sub-heading per manuscript section.

### Recommendation
Provide one of: Accept, Minor Revisions, Major Revisions, or Reject.
Justify your recommendation based on the above assessment.`
}

func meetingStartPrompt(roster agent.Roster, manuscriptText string, criteria []string, previousReviews []string, authorResponse string, rounds int) string {
	titles := make([]string, len(roster.Reviewers))
	for i, r := range roster.Reviewers {
		titles[i] = r.Title
	}
	return fmt.Sprintf(
		"This is a manuscript review meeting to evaluate a scientific paper for publication. "+
			"The review panel consists of the %s and the following reviewers: %s.\n\n%s%s%s"+
			"Each reviewer will provide their assessment one-by-one, for %d round(s) of discussion. "+
			"Reviewers may respond to points raised in earlier rounds. "+
			"Finally, the %s will %s and %s.",
		roster.Editor.Title,
		strings.Join(titles, ", "),
		revisionContext(previousReviews, authorResponse),
		formatManuscript(manuscriptText),
		formatCriteria(criteria, "Please evaluate the manuscript on the following criteria:"),
		rounds,
		roster.Editor.Title,
		synthesisCharge,
		summaryCharge,
	)
}

func reviewerPrompt(reviewer agent.Agent, round, rounds int) string {
	return fmt.Sprintf(
		"%s, please provide your assessment of the manuscript (round %d of %d). "+
			"Focus on your area of expertise. "+
			"If you do not have anything new or relevant to add, you may say \"pass\". "+
			"You may respectfully disagree with other reviewers if you have a different perspective.",
		reviewer.Title, round, rounds,
	)
}

func editorFinalPrompt(editor agent.Agent, criteria []string) string {
	return fmt.Sprintf(
		"%s, please %s.\n\n%sYour summary should take the following form:\n\n%s",
		editor.Title,
		summaryCharge,
		formatCriteria(criteria, "As a reminder, here are the review criteria that must be addressed:"),
		reviewStructure(),
	)
}

func individualStartPrompt(reviewer agent.Agent, manuscriptText string, criteria []string, previousReviews []string, authorResponse string) string {
	return fmt.Sprintf(
		"This is an individual review session with %s to evaluate a scientific manuscript.\n\n%s%s%s"+
			"%s, please provide your comprehensive review of this manuscript.\n\n%s",
		reviewer.Title,
		revisionContext(previousReviews, authorResponse),
		formatManuscript(manuscriptText),
		formatCriteria(criteria, "Please evaluate the manuscript on the following criteria:"),
		reviewer.Title,
		reviewStructure(),
	)
}

func criticPrompt(critic, reviewer agent.Agent) string {
	return fmt.Sprintf(
		"%s, please critique %s's review. "+
			"Is the review thorough and fair? Are there important issues the reviewer missed? "+
			"Is the feedback specific and actionable? "+
			"Begin your response with exactly %q if the review needs no further work, "+
			"or %q followed by the specific deficiencies otherwise. "+
			"Only provide feedback; do not write the review yourself.",
		critic.Title, reviewer.Title, criticApprovedMark, criticRevisionMark,
	)
}

func revisionPrompt(critic, reviewer agent.Agent) string {
	return fmt.Sprintf(
		"%s, please revise your review based on %s's feedback. "+
			"Address the issues raised and improve your review accordingly. "+
			"Reply with the full revised review in the required structure.",
		reviewer.Title, critic.Title,
	)
}

// criticApproved parses the critic's structured verdict. The critic is told
// to lead with the mark, so only a leading mark counts as approval; a
// needs-revision critique quoting it further down must not end the loop.
func criticApproved(content string) bool {
	trimmed := strings.TrimSpace(strings.ToLower(content))
	return strings.HasPrefix(trimmed, strings.ToLower(criticApprovedMark))
}
