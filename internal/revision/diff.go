package revision

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeOp tags a span in a version diff.
type ChangeOp int

const (
	OpEqual ChangeOp = iota
	OpInsert
	OpDelete
)

// ChangeSpan is one contiguous run of text sharing a change operation.
type ChangeSpan struct {
	Op   ChangeOp
	Text string
}

// Diff summarizes the textual change between two tracked versions.
type Diff struct {
	From, To     int
	AddedChars   int
	RemovedChars int
	AddedLines   int
	RemovedLines int
	// Similarity is 1 minus the Levenshtein distance over the longer text's
	// length; 1.0 for identical texts.
	Similarity float64
	Spans      []ChangeSpan
}

// Empty reports whether the two versions have identical text.
func (d Diff) Empty() bool {
	return d.AddedChars == 0 && d.RemovedChars == 0
}

// Summary renders a one-line human-readable account of the change.
func (d Diff) Summary() string {
	if d.Empty() {
		return fmt.Sprintf("versions %d and %d are identical", d.From, d.To)
	}
	return fmt.Sprintf("v%d -> v%d: +%d/-%d chars, +%d/-%d lines, %.1f%% similar",
		d.From, d.To, d.AddedChars, d.RemovedChars, d.AddedLines, d.RemovedLines, d.Similarity*100)
}

// CompareVersions diffs two tracked versions. Comparing a version against
// itself yields an empty diff.
func (t *Tracker) CompareVersions(from, to int) (Diff, error) {
	a, err := t.version(from)
	if err != nil {
		return Diff{}, err
	}
	b, err := t.version(to)
	if err != nil {
		return Diff{}, err
	}
	return diffTexts(from, to, a.Text, b.Text), nil
}

func diffTexts(from, to int, a, b string) Diff {
	d := Diff{From: from, To: to, Similarity: 1}
	if a == b {
		if a != "" {
			d.Spans = []ChangeSpan{{Op: OpEqual, Text: a}}
		}
		return d
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	for _, part := range diffs {
		span := ChangeSpan{Text: part.Text}
		switch part.Type {
		case diffmatchpatch.DiffInsert:
			span.Op = OpInsert
			d.AddedChars += len(part.Text)
			d.AddedLines += countLines(part.Text)
		case diffmatchpatch.DiffDelete:
			span.Op = OpDelete
			d.RemovedChars += len(part.Text)
			d.RemovedLines += countLines(part.Text)
		default:
			span.Op = OpEqual
		}
		d.Spans = append(d.Spans, span)
	}

	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	if longer > 0 {
		distance := dmp.DiffLevenshtein(diffs)
		d.Similarity = 1 - float64(distance)/float64(longer)
		if d.Similarity < 0 {
			d.Similarity = 0
		}
	}
	return d
}

func countLines(s string) int {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
