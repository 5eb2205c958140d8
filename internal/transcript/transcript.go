// Package transcript holds the append-only record of a single review run:
// every utterance by an agent, the system, or a tool, in the order it was
// produced, plus the running token accounting derived from it.
package transcript

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Reserved speakers. Any other speaker must name an agent in the roster
// resolved for the run.
const (
	SpeakerSystem = "system"
	SpeakerTool   = "tool"
)

// TokenCounts carries the accounting metadata attached to one turn.
type TokenCounts struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Tool       int `json:"tool"`
}

// Turn is one utterance in the discussion. Turns are immutable once appended.
type Turn struct {
	Speaker  string      `json:"speaker"`
	Round    int         `json:"round"`
	Content  string      `json:"content"`
	Tokens   TokenCounts `json:"tokens"`
	LoggedAt time.Time   `json:"loggedAt"`
}

// Substantive reports whether the turn is attributable to an agent rather
// than the system or a tool.
func (t Turn) Substantive() bool {
	return t.Speaker != SpeakerSystem && t.Speaker != SpeakerTool
}

// InvariantViolation indicates an internal ordering bug in the orchestrator.
// It is never expected to surface to users of a well-behaved run.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("transcript: invariant violated: %s", e.Reason)
}

// Transcript is the ordered turn log for exactly one review run. Appends are
// O(1) and never reorder or delete; Finalize makes the log read-only.
type Transcript struct {
	mu        sync.Mutex
	runID     string
	model     string
	turns     []Turn
	acct      Accountant
	finalized bool
	now       func() time.Time
}

// New creates an empty transcript for one run. The model is recorded for cost
// estimation against the rate table.
func New(model string, rates RateTable) *Transcript {
	return &Transcript{
		runID: uuid.NewString(),
		model: model,
		acct:  Accountant{model: model, rates: rates},
		now:   time.Now,
	}
}

// RunID returns the unique identifier assigned to this run.
func (tr *Transcript) RunID() string {
	return tr.runID
}

// Model returns the model the run's cost estimate is computed against.
func (tr *Transcript) Model() string {
	return tr.model
}

// Append adds one turn to the log. It enforces round monotonicity: rounds
// start at 1, never decrease, and never skip.
func (tr *Transcript) Append(turn Turn) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.finalized {
		return &InvariantViolation{Reason: "append to finalized transcript"}
	}
	if turn.Speaker == "" {
		return &InvariantViolation{Reason: "turn has no speaker"}
	}
	if turn.Round < 1 {
		return &InvariantViolation{Reason: fmt.Sprintf("round %d is below 1", turn.Round)}
	}
	last := 0
	if n := len(tr.turns); n > 0 {
		last = tr.turns[n-1].Round
	}
	if turn.Round < last {
		return &InvariantViolation{Reason: fmt.Sprintf("round %d after round %d", turn.Round, last)}
	}
	if turn.Round > last+1 {
		return &InvariantViolation{Reason: fmt.Sprintf("round %d skips round %d", turn.Round, last+1)}
	}
	if turn.LoggedAt.IsZero() {
		turn.LoggedAt = tr.now().UTC()
	}
	tr.turns = append(tr.turns, turn)
	tr.acct.observe(turn)
	return nil
}

// Finalize marks the transcript read-only. Called once the run completes or
// fails; the accumulated turns stay accessible either way.
func (tr *Transcript) Finalize() {
	tr.mu.Lock()
	tr.finalized = true
	tr.mu.Unlock()
}

// Finalized reports whether the transcript has been closed.
func (tr *Transcript) Finalized() bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.finalized
}

// Len returns the number of turns appended so far.
func (tr *Transcript) Len() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.turns)
}

// Turns returns a copy of the turn log in append order.
func (tr *Transcript) Turns() []Turn {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]Turn(nil), tr.turns...)
}

// Last returns the most recent turn, if any.
func (tr *Transcript) Last() (Turn, bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.turns) == 0 {
		return Turn{}, false
	}
	return tr.turns[len(tr.turns)-1], true
}

// LastSubstantive returns the most recent agent-attributable turn, if any.
func (tr *Transcript) LastSubstantive() (Turn, bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for i := len(tr.turns) - 1; i >= 0; i-- {
		if tr.turns[i].Substantive() {
			return tr.turns[i], true
		}
	}
	return Turn{}, false
}

// HasTurn reports whether a substantive turn by the given speaker exists in
// the given round. The orchestrator uses this to resume after a failure
// without duplicating already-appended turns.
func (tr *Transcript) HasTurn(speaker string, round int) bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for _, turn := range tr.turns {
		if turn.Round == round && turn.Speaker == speaker {
			return true
		}
	}
	return false
}

// SubstantiveCount returns how many agent turns the transcript holds.
func (tr *Transcript) SubstantiveCount() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	count := 0
	for _, turn := range tr.turns {
		if turn.Substantive() {
			count++
		}
	}
	return count
}

// Totals returns the accountant's running totals. Queryable mid-run and
// after a partial failure.
func (tr *Transcript) Totals() Totals {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.acct.totals
}

// Cost estimates the monetary cost of the run so far.
func (tr *Transcript) Cost() (float64, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.acct.cost()
}
