package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mwhittier/colloquy/internal/review"
	"github.com/mwhittier/colloquy/internal/transcript"
)

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T", updated)
	}
	return model
}

func TestRunViewShowsTurns(t *testing.T) {
	events := make(chan review.Event, 4)
	m := NewModel("Reviewing draft.md", events)

	m = apply(t, m, eventMsg(review.Event{Kind: review.EventRoundStarted, Round: 1}))
	m = apply(t, m, eventMsg(review.Event{
		Kind:    review.EventTurnLogged,
		Round:   1,
		Speaker: "Domain Expert",
		Detail:  "The novelty claim is well supported.",
		Totals:  transcript.Totals{Input: 100, Output: 50},
		CostUSD: 0.0012,
	}))

	view := m.View()
	for _, want := range []string{"Domain Expert", "novelty claim", "150 tokens", "$0.0012"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if m.Finished() {
		t.Errorf("view finished before the run ended")
	}
}

func TestRunViewFinishes(t *testing.T) {
	events := make(chan review.Event)
	m := NewModel("Reviewing draft.md", events)
	m = apply(t, m, eventMsg(review.Event{Kind: review.EventRunFinished, Detail: "Minor Revisions"}))
	if !m.Finished() {
		t.Fatalf("run-finished event did not finish the view")
	}
	if !strings.Contains(m.View(), "Minor Revisions") {
		t.Errorf("view missing recommendation:\n%s", m.View())
	}
}

func TestRunViewFailure(t *testing.T) {
	events := make(chan review.Event)
	m := NewModel("Reviewing draft.md", events)
	m = apply(t, m, DoneMsg{Err: errors.New("provider unreachable")})
	if !m.Finished() {
		t.Fatalf("error did not finish the view")
	}
	if !strings.Contains(m.View(), "provider unreachable") {
		t.Errorf("view missing failure reason:\n%s", m.View())
	}
}

func TestRunViewQuitKey(t *testing.T) {
	events := make(chan review.Event)
	m := NewModel("Reviewing draft.md", events)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("q did not produce a command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Fatalf("q produced %v, want quit", msg)
	}
}

func TestRunViewChannelClose(t *testing.T) {
	events := make(chan review.Event)
	close(events)
	m := NewModel("Reviewing draft.md", events)
	cmd := waitForEvent(events)
	m = apply(t, m, cmd())
	if !m.Finished() {
		t.Fatalf("closed channel did not finish the view")
	}
}
