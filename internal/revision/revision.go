// Package revision tracks a manuscript across submission rounds: each
// version's text and reviews, diffs between versions, and the accumulated
// context a re-review needs.
package revision

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mwhittier/colloquy/internal/manuscript"
)

const historyFile = "history.json"

// OutOfOrderVersionError reports a version number that breaks the strict
// 1,2,3,... sequence.
type OutOfOrderVersionError struct {
	Got, Want int
}

func (e *OutOfOrderVersionError) Error() string {
	return fmt.Sprintf("revision: version %d out of order, next is %d", e.Got, e.Want)
}

// UnknownVersionError reports a lookup of a version that was never added.
type UnknownVersionError struct {
	Version int
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("revision: unknown version %d", e.Version)
}

// Review is one stored review of one manuscript version.
type Review struct {
	ReviewType     string    `json:"reviewType"`
	Reviewer       string    `json:"reviewer,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
	Text           string    `json:"text"`
	RecordedAt     time.Time `json:"recordedAt"`
}

// Version is one tracked manuscript submission.
type Version struct {
	Number  int       `json:"number"`
	Title   string    `json:"title"`
	Hash    string    `json:"hash"`
	Text    string    `json:"text"`
	AddedAt time.Time `json:"addedAt"`
	Reviews []Review  `json:"reviews,omitempty"`
	// AuthorResponse is the authors' reply to the reviews of this version,
	// carried into the next version's review context.
	AuthorResponse string `json:"authorResponse,omitempty"`
}

type history struct {
	Project  string    `json:"project,omitempty"`
	Versions []Version `json:"versions"`
}

// Tracker persists revision history for one manuscript project under a
// directory. A tracker opened with an empty directory tracks in memory only.
type Tracker struct {
	dir  string
	hist history
	now  func() time.Time
}

// NewTracker opens (or starts) the history in dir. Pass an empty dir for a
// purely in-memory tracker.
func NewTracker(dir string) (*Tracker, error) {
	t := &Tracker{dir: dir, now: time.Now}
	if dir == "" {
		return t, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, historyFile))
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("revision: read history: %w", err)
	}
	if err := json.Unmarshal(data, &t.hist); err != nil {
		return nil, fmt.Errorf("revision: parse history: %w", err)
	}
	return t, nil
}

func (t *Tracker) save() error {
	if t.dir == "" {
		return nil
	}
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return fmt.Errorf("revision: create project dir: %w", err)
	}
	data, err := json.MarshalIndent(t.hist, "", "  ")
	if err != nil {
		return fmt.Errorf("revision: encode history: %w", err)
	}
	path := filepath.Join(t.dir, historyFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("revision: write history: %w", err)
	}
	return nil
}

// LatestVersion returns the highest tracked version number, zero when empty.
func (t *Tracker) LatestVersion() int {
	return len(t.hist.Versions)
}

// Versions returns the tracked versions in submission order.
func (t *Tracker) Versions() []Version {
	return append([]Version(nil), t.hist.Versions...)
}

func (t *Tracker) version(number int) (*Version, error) {
	if number < 1 || number > len(t.hist.Versions) {
		return nil, &UnknownVersionError{Version: number}
	}
	return &t.hist.Versions[number-1], nil
}

// AddVersion records a new manuscript submission. Versions must arrive in
// strict sequence starting at 1; a resubmitted identical text is still a new
// version if the authors number it so.
func (t *Tracker) AddVersion(number int, ms *manuscript.Manuscript) error {
	if want := len(t.hist.Versions) + 1; number != want {
		return &OutOfOrderVersionError{Got: number, Want: want}
	}
	t.hist.Versions = append(t.hist.Versions, Version{
		Number:  number,
		Title:   ms.Title,
		Hash:    ms.VersionHash,
		Text:    ms.FullText,
		AddedAt: t.now().UTC(),
	})
	return t.save()
}

// AddReview attaches a completed review to a tracked version.
func (t *Tracker) AddReview(number int, review Review) error {
	v, err := t.version(number)
	if err != nil {
		return err
	}
	if review.RecordedAt.IsZero() {
		review.RecordedAt = t.now().UTC()
	}
	v.Reviews = append(v.Reviews, review)
	return t.save()
}

// SetAuthorResponse records the authors' reply to a version's reviews.
func (t *Tracker) SetAuthorResponse(number int, response string) error {
	v, err := t.version(number)
	if err != nil {
		return err
	}
	v.AuthorResponse = response
	return t.save()
}

// PreviousReviews returns the review texts of the version immediately before
// the given one, in the order they were recorded. Empty for version 1.
func (t *Tracker) PreviousReviews(number int) ([]string, error) {
	if _, err := t.version(number); err != nil {
		return nil, err
	}
	if number == 1 {
		return nil, nil
	}
	prev, err := t.version(number - 1)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(prev.Reviews))
	for i, r := range prev.Reviews {
		texts[i] = r.Text
	}
	return texts, nil
}

// Context is everything a re-review of the given version should see.
type Context struct {
	PreviousReviews []string
	AuthorResponse  string
	Diff            *Diff
}

// ReviewContext assembles the revision context for reviewing a version:
// the previous version's reviews, the authors' response to them, and the
// textual diff against the previous version.
func (t *Tracker) ReviewContext(number int) (Context, error) {
	reviews, err := t.PreviousReviews(number)
	if err != nil {
		return Context{}, err
	}
	if number == 1 {
		return Context{}, nil
	}
	prev, _ := t.version(number - 1)
	diff, err := t.CompareVersions(number-1, number)
	if err != nil {
		return Context{}, err
	}
	return Context{
		PreviousReviews: reviews,
		AuthorResponse:  prev.AuthorResponse,
		Diff:            &diff,
	}, nil
}
