package review

import "github.com/mwhittier/colloquy/internal/transcript"

// EventKind tags progress notifications emitted during a run.
type EventKind int

const (
	EventRunStarted EventKind = iota
	EventRoundStarted
	EventTurnLogged
	EventToolInvoked
	EventRunFinished
)

// Event is a progress notification. Observers receive each event after the
// corresponding transcript mutation, on the orchestrator's goroutine.
type Event struct {
	Kind    EventKind
	Round   int
	Speaker string
	Detail  string
	Totals  transcript.Totals
	CostUSD float64
}

// Observer receives run progress. Implementations must not block for long;
// the run waits on them.
type Observer func(Event)
