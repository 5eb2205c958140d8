package revision

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwhittier/colloquy/internal/manuscript"
)

const v1Text = `A Study of Autophagy

Abstract

We identify two regulators of autophagy using a targeted screen across
multiple human cell lines and validate both hits independently.

Results

Regulator A increases flux.`

const v2Text = `A Study of Autophagy

Abstract

We identify three regulators of autophagy using a genome-wide screen across
multiple human cell lines and validate all hits independently.

Results

Regulator A increases flux.

Regulator C suppresses flux in starved cells.`

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tracker, err := NewTracker(t.TempDir())
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	return tracker
}

func addVersion(t *testing.T, tracker *Tracker, number int, text string) {
	t.Helper()
	if err := tracker.AddVersion(number, manuscript.FromText(text, "")); err != nil {
		t.Fatalf("AddVersion(%d): %v", number, err)
	}
}

func TestAddVersionSequence(t *testing.T) {
	tracker := newTestTracker(t)
	addVersion(t, tracker, 1, v1Text)
	addVersion(t, tracker, 2, v2Text)
	addVersion(t, tracker, 3, v2Text)
	if got := tracker.LatestVersion(); got != 3 {
		t.Fatalf("LatestVersion = %d, want 3", got)
	}
}

func TestAddVersionOutOfOrder(t *testing.T) {
	tracker := newTestTracker(t)
	addVersion(t, tracker, 1, v1Text)

	var seqErr *OutOfOrderVersionError
	if err := tracker.AddVersion(3, manuscript.FromText(v2Text, "")); !errors.As(err, &seqErr) {
		t.Fatalf("AddVersion(3) err = %v, want OutOfOrderVersionError", err)
	}
	if seqErr.Got != 3 || seqErr.Want != 2 {
		t.Errorf("seqErr = %+v", seqErr)
	}
	if err := tracker.AddVersion(1, manuscript.FromText(v1Text, "")); !errors.As(err, &seqErr) {
		t.Fatalf("repeated AddVersion(1) err = %v, want OutOfOrderVersionError", err)
	}
}

func TestCompareVersions(t *testing.T) {
	tracker := newTestTracker(t)
	addVersion(t, tracker, 1, v1Text)
	addVersion(t, tracker, 2, v2Text)
	addVersion(t, tracker, 3, v2Text)

	diff, err := tracker.CompareVersions(1, 3)
	if err != nil {
		t.Fatalf("CompareVersions(1,3): %v", err)
	}
	if diff.Empty() {
		t.Fatalf("diff between distinct versions is empty")
	}
	if diff.AddedChars == 0 {
		t.Errorf("no added chars in %+v", diff)
	}
	if diff.Similarity <= 0 || diff.Similarity >= 1 {
		t.Errorf("similarity = %f, want in (0,1)", diff.Similarity)
	}
	inserted := false
	for _, span := range diff.Spans {
		if span.Op == OpInsert && strings.Contains(span.Text, "genome-wide") {
			inserted = true
		}
	}
	if !inserted {
		t.Errorf("expected an insert span carrying the new wording")
	}
}

func TestCompareVersionsUnknown(t *testing.T) {
	tracker := newTestTracker(t)
	addVersion(t, tracker, 1, v1Text)

	var unknownErr *UnknownVersionError
	if _, err := tracker.CompareVersions(1, 4); !errors.As(err, &unknownErr) {
		t.Fatalf("CompareVersions(1,4) err = %v, want UnknownVersionError", err)
	}
	if unknownErr.Version != 4 {
		t.Errorf("unknownErr.Version = %d", unknownErr.Version)
	}
	if _, err := tracker.CompareVersions(0, 1); !errors.As(err, &unknownErr) {
		t.Fatalf("CompareVersions(0,1) err = %v, want UnknownVersionError", err)
	}
}

func TestCompareVersionSelfDiffEmpty(t *testing.T) {
	tracker := newTestTracker(t)
	addVersion(t, tracker, 1, v1Text)
	diff, err := tracker.CompareVersions(1, 1)
	if err != nil {
		t.Fatalf("CompareVersions(1,1): %v", err)
	}
	if !diff.Empty() {
		t.Fatalf("self diff not empty: %+v", diff)
	}
	if diff.Similarity != 1 {
		t.Errorf("self similarity = %f, want 1", diff.Similarity)
	}
}

func TestReviewContext(t *testing.T) {
	tracker := newTestTracker(t)
	addVersion(t, tracker, 1, v1Text)
	if err := tracker.AddReview(1, Review{ReviewType: "panel", Text: "Needs a genome-wide screen.", Recommendation: "Major Revisions"}); err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	if err := tracker.SetAuthorResponse(1, "We extended the screen genome-wide."); err != nil {
		t.Fatalf("SetAuthorResponse: %v", err)
	}
	addVersion(t, tracker, 2, v2Text)

	ctx, err := tracker.ReviewContext(2)
	if err != nil {
		t.Fatalf("ReviewContext(2): %v", err)
	}
	if len(ctx.PreviousReviews) != 1 || !strings.Contains(ctx.PreviousReviews[0], "genome-wide") {
		t.Errorf("previous reviews = %v", ctx.PreviousReviews)
	}
	if ctx.AuthorResponse == "" {
		t.Errorf("author response missing")
	}
	if ctx.Diff == nil || ctx.Diff.Empty() {
		t.Errorf("diff missing from context")
	}

	first, err := tracker.ReviewContext(1)
	if err != nil {
		t.Fatalf("ReviewContext(1): %v", err)
	}
	if len(first.PreviousReviews) != 0 || first.Diff != nil {
		t.Errorf("version 1 context should be empty, got %+v", first)
	}
}

func TestHistoryPersistence(t *testing.T) {
	dir := t.TempDir()
	tracker, err := NewTracker(dir)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	addVersion(t, tracker, 1, v1Text)
	if err := tracker.AddReview(1, Review{ReviewType: "individual", Reviewer: "Methodology Reviewer", Text: "Solid."}); err != nil {
		t.Fatalf("AddReview: %v", err)
	}

	reopened, err := NewTracker(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.LatestVersion() != 1 {
		t.Fatalf("reopened LatestVersion = %d", reopened.LatestVersion())
	}
	versions := reopened.Versions()
	if len(versions[0].Reviews) != 1 || versions[0].Reviews[0].Reviewer != "Methodology Reviewer" {
		t.Fatalf("reviews not persisted: %+v", versions[0].Reviews)
	}
	if versions[0].Hash == "" {
		t.Errorf("version hash not persisted")
	}

	if _, err := os.Stat(filepath.Join(dir, historyFile)); err != nil {
		t.Fatalf("history file missing: %v", err)
	}
}

func TestReport(t *testing.T) {
	tracker := newTestTracker(t)
	addVersion(t, tracker, 1, v1Text)
	if err := tracker.AddReview(1, Review{ReviewType: "panel", Text: "Expand the screen.", Recommendation: "Major Revisions"}); err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	addVersion(t, tracker, 2, v2Text)

	report := tracker.Report()
	for _, want := range []string{"## Version 1", "## Version 2", "Major Revisions", "Changes: v1 -> v2"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}

	path, err := tracker.SaveReport()
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if string(data) != report {
		t.Errorf("saved report differs from rendered report")
	}
}
