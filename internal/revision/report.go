package revision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Report renders the full revision history as markdown: every version, its
// reviews, and the diff summary against its predecessor.
func (t *Tracker) Report() string {
	var sb strings.Builder
	sb.WriteString("# Revision History\n\n")
	if len(t.hist.Versions) == 0 {
		sb.WriteString("No versions tracked yet.\n")
		return sb.String()
	}
	for _, v := range t.hist.Versions {
		fmt.Fprintf(&sb, "## Version %d\n\n", v.Number)
		fmt.Fprintf(&sb, "- Title: %s\n", v.Title)
		fmt.Fprintf(&sb, "- Hash: %s\n", v.Hash)
		fmt.Fprintf(&sb, "- Added: %s\n", v.AddedAt.Format("2006-01-02 15:04 MST"))
		if v.Number > 1 {
			if diff, err := t.CompareVersions(v.Number-1, v.Number); err == nil {
				fmt.Fprintf(&sb, "- Changes: %s\n", diff.Summary())
			}
		}
		sb.WriteString("\n")
		for i, r := range v.Reviews {
			fmt.Fprintf(&sb, "### Review %d", i+1)
			if r.Reviewer != "" {
				fmt.Fprintf(&sb, " (%s)", r.Reviewer)
			}
			sb.WriteString("\n\n")
			if r.Recommendation != "" {
				fmt.Fprintf(&sb, "Recommendation: **%s**\n\n", r.Recommendation)
			}
			sb.WriteString(r.Text)
			sb.WriteString("\n\n")
		}
		if v.AuthorResponse != "" {
			sb.WriteString("### Author Response\n\n")
			sb.WriteString(v.AuthorResponse)
			sb.WriteString("\n\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// SaveReport writes the markdown report next to the history file.
func (t *Tracker) SaveReport() (string, error) {
	if t.dir == "" {
		return "", fmt.Errorf("revision: tracker has no project directory")
	}
	path := filepath.Join(t.dir, "revision_report.md")
	if err := os.WriteFile(path, []byte(t.Report()), 0o644); err != nil {
		return "", fmt.Errorf("revision: write report: %w", err)
	}
	return path, nil
}
