// Package tui renders a live review run in the terminal. It uses bubbletea,
// which follows The Elm Architecture: the Model holds all state, Update
// reacts to messages, View renders the state to a string.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwhittier/colloquy/internal/review"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	speakerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	toolStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// eventMsg wraps a run event for the update loop.
type eventMsg review.Event

// closedMsg signals the event channel was closed: the run is over.
type closedMsg struct{}

// DoneMsg is sent by the driver once the run goroutine returns.
type DoneMsg struct {
	Err error
}

// Model is the live run view.
type Model struct {
	title    string
	events   <-chan review.Event
	spinner  spinner.Model
	viewport viewport.Model
	lines    []string
	round    int
	totals   string
	ready    bool
	finished bool
	failed   bool
	status   string
}

// NewModel builds the view over a run's event channel. The caller owns the
// channel and must close it when the run returns.
func NewModel(title string, events <-chan review.Event) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		title:   title,
		events:  events,
		spinner: sp,
		round:   1,
	}
}

func waitForEvent(events <-chan review.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m = m.applyEvent(review.Event(msg))
		return m, waitForEvent(m.events)

	case closedMsg:
		m.finished = true
		return m, nil

	case DoneMsg:
		m.finished = true
		if msg.Err != nil {
			m.failed = true
			m.status = msg.Err.Error()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) applyEvent(event review.Event) Model {
	switch event.Kind {
	case review.EventRunStarted:
		m.lines = append(m.lines, titleStyle.Render("Review started")+" ("+event.Detail+")")
	case review.EventRoundStarted:
		m.round = event.Round
		m.lines = append(m.lines, "", titleStyle.Render(fmt.Sprintf("— Round %d —", event.Round)))
	case review.EventTurnLogged:
		m.lines = append(m.lines, "", speakerStyle.Render(event.Speaker+":"), event.Detail)
	case review.EventToolInvoked:
		m.lines = append(m.lines, toolStyle.Render(fmt.Sprintf("%s searched the literature (%s)", event.Speaker, event.Detail)))
	case review.EventRunFinished:
		m.finished = true
		m.status = event.Detail
	}
	m.totals = fmt.Sprintf("%d tokens · $%.4f", event.Totals.Sum(), event.CostUSD)
	if m.ready {
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		m.viewport.GotoBottom()
	}
	return m
}

func (m Model) View() string {
	var header string
	switch {
	case m.failed:
		header = failStyle.Render("✗ " + m.title)
	case m.finished:
		header = doneStyle.Render("✓ " + m.title)
		if m.status != "" {
			header += footerStyle.Render("  " + m.status)
		}
	default:
		header = m.spinner.View() + titleStyle.Render(m.title) +
			footerStyle.Render(fmt.Sprintf("  round %d", m.round))
	}

	body := strings.Join(m.lines, "\n")
	if m.ready {
		body = m.viewport.View()
	}

	footer := footerStyle.Render(m.totals + "  ·  q to quit")
	if m.failed && m.status != "" {
		footer = failStyle.Render(m.status)
	}
	return header + "\n\n" + body + "\n" + footer + "\n"
}

// Finished reports whether the view considers the run over.
func (m Model) Finished() bool {
	return m.finished
}
