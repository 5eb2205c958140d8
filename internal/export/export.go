// Package export writes the artifacts of a completed (or failed) run to
// disk: the transcript as JSON, the final review as markdown with a YAML
// frontmatter envelope, and the structured verdict as JSON.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mwhittier/colloquy/internal/agent"
	"github.com/mwhittier/colloquy/internal/review"
)

// Paths lists the files one export produced.
type Paths struct {
	TranscriptJSON string
	ReviewMarkdown string
	VerdictJSON    string
}

// WriteRun persists a run's artifacts under dir. A failed run (nil or empty
// review) still gets its transcript written, marked incomplete.
func WriteRun(dir string, result *review.Result, reviewType agent.ReviewType) (Paths, error) {
	if result == nil || result.Transcript == nil {
		return Paths{}, fmt.Errorf("export: no run result")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("export: create output dir: %w", err)
	}

	var paths Paths
	complete := result.Review != ""

	record := result.Transcript.Record(complete)
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return Paths{}, fmt.Errorf("export: encode transcript: %w", err)
	}
	paths.TranscriptJSON = filepath.Join(dir, "transcript.json")
	if err := os.WriteFile(paths.TranscriptJSON, data, 0o644); err != nil {
		return Paths{}, fmt.Errorf("export: write transcript: %w", err)
	}

	if !complete {
		return paths, nil
	}

	meta := Metadata{
		RunID:          result.Transcript.RunID(),
		Model:          result.Transcript.Model(),
		ReviewType:     string(reviewType),
		Recommendation: string(result.Verdict.Recommendation),
		CreatedAt:      time.Now().UTC(),
		Tokens:         result.Totals.Sum(),
		CostUSD:        result.CostUSD,
	}
	doc, err := WriteFrontMatter(meta, []byte(result.Review))
	if err != nil {
		return Paths{}, err
	}
	paths.ReviewMarkdown = filepath.Join(dir, "review.md")
	if err := os.WriteFile(paths.ReviewMarkdown, doc, 0o644); err != nil {
		return Paths{}, fmt.Errorf("export: write review: %w", err)
	}

	verdict, err := json.MarshalIndent(result.Verdict, "", "  ")
	if err != nil {
		return Paths{}, fmt.Errorf("export: encode verdict: %w", err)
	}
	paths.VerdictJSON = filepath.Join(dir, "verdict.json")
	if err := os.WriteFile(paths.VerdictJSON, verdict, 0o644); err != nil {
		return Paths{}, fmt.Errorf("export: write verdict: %w", err)
	}
	return paths, nil
}
