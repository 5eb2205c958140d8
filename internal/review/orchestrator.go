// Package review drives a manuscript review discussion: a roster of agents
// speaking in rounds over a shared transcript, with tool access to the
// literature, collapsed at the end into a structured verdict.
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwhittier/colloquy/internal/agent"
	"github.com/mwhittier/colloquy/internal/llm"
	"github.com/mwhittier/colloquy/internal/logbook"
	"github.com/mwhittier/colloquy/internal/manuscript"
	"github.com/mwhittier/colloquy/internal/transcript"
)

const (
	// DefaultModel is used when neither the run options nor the agent pin one.
	DefaultModel = "gpt-4o"

	// DefaultMaxContextChars caps the manuscript text embedded in prompts.
	DefaultMaxContextChars = 50000

	// maxToolHops bounds consecutive tool round-trips within one turn.
	maxToolHops = 3
)

// Options configures one run. The zero value is usable: one round, default
// criteria, default model, tools off.
type Options struct {
	Rounds          int
	Criteria        []string
	ToolsEnabled    bool
	PreviousReviews []string
	AuthorResponse  string
	Temperature     float64
	MaxContextChars int // 0 selects the default cap; negative disables it
	Model           string
	// Resume continues a partial, unfinalized transcript from an earlier
	// failed run instead of starting fresh. Turns already present are not
	// regenerated.
	Resume *transcript.Transcript
}

func (opts Options) rounds() int {
	if opts.Rounds < 1 {
		return 1
	}
	return opts.Rounds
}

func (opts Options) criteria() []string {
	if opts.Criteria == nil {
		return BiomedicalCriteria()
	}
	return opts.Criteria
}

func (opts Options) model() string {
	if opts.Model == "" {
		return DefaultModel
	}
	return opts.Model
}

func (opts Options) maxContextChars() int {
	switch {
	case opts.MaxContextChars < 0:
		return 0
	case opts.MaxContextChars == 0:
		return DefaultMaxContextChars
	}
	return opts.MaxContextChars
}

// Result is the outcome of a run. Transcript is always populated, even when
// the run failed partway; Verdict only on success.
type Result struct {
	Transcript *transcript.Transcript
	Review     string
	Verdict    Verdict
	Totals     transcript.Totals
	CostUSD    float64
}

// Orchestrator drives review runs against one model invoker.
type Orchestrator struct {
	invoker llm.Invoker
	bridge  *ToolBridge
	log     *logbook.Logbook
	observe Observer
	rates   transcript.RateTable
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithToolBridge enables literature search for agents that request it.
func WithToolBridge(bridge *ToolBridge) Option {
	return func(o *Orchestrator) { o.bridge = bridge }
}

// WithLogbook routes run progress into the given logbook.
func WithLogbook(log *logbook.Logbook) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithObserver registers a progress callback, invoked after each transcript
// mutation on the run's goroutine.
func WithObserver(observer Observer) Option {
	return func(o *Orchestrator) { o.observe = observer }
}

// WithRates installs the per-model pricing used for cost estimates.
func WithRates(rates transcript.RateTable) Option {
	return func(o *Orchestrator) { o.rates = rates }
}

func New(invoker llm.Invoker, opts ...Option) *Orchestrator {
	o := &Orchestrator{invoker: invoker}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one full review of the manuscript by the roster. On failure
// the returned Result still carries the partial transcript; passing it back
// via Options.Resume picks the run up at the failed turn.
func (o *Orchestrator) Run(ctx context.Context, ms *manuscript.Manuscript, roster agent.Roster, opts Options) (*Result, error) {
	tr := opts.Resume
	if tr == nil {
		tr = transcript.New(opts.model(), o.rates)
	} else if tr.Finalized() {
		return nil, fmt.Errorf("review: cannot resume a finalized transcript")
	} else {
		// A resumed transcript must belong to this roster; a turn from an
		// unknown speaker means it came from a different run.
		for _, turn := range tr.Turns() {
			if turn.Substantive() && !roster.Contains(turn.Speaker) {
				return nil, fmt.Errorf("review: resumed transcript carries speaker %q outside the roster", turn.Speaker)
			}
		}
	}

	o.log.Info("run %s started: %s review of %q, %d round(s)", tr.RunID(), roster.Type, ms.Title, opts.rounds())
	o.emit(Event{Kind: EventRunStarted, Round: 1, Detail: string(roster.Type)}, tr)

	var (
		review string
		err    error
	)
	switch roster.Type {
	case agent.ReviewPanel:
		review, err = o.runPanel(ctx, tr, ms, roster, opts)
	case agent.ReviewIndividual:
		review, err = o.runIndividual(ctx, tr, ms, roster, opts)
	default:
		err = &agent.ConfigurationError{Reason: fmt.Sprintf("invalid review type %q", roster.Type)}
	}

	result := &Result{Transcript: tr, Totals: tr.Totals()}
	if cost, costErr := tr.Cost(); costErr == nil {
		result.CostUSD = cost
	} else {
		o.log.Warn("run %s: %v", tr.RunID(), costErr)
	}

	if err != nil {
		// The transcript stays open so the run can be resumed.
		o.log.Error("run %s failed: %v", tr.RunID(), err)
		return result, err
	}

	tr.Finalize()
	result.Review = review
	verdict, err := Synthesize(review)
	if err != nil {
		o.log.Error("run %s: %v", tr.RunID(), err)
		return result, err
	}
	result.Verdict = verdict

	o.log.Info("run %s finished: %s (%d tokens, $%.4f)",
		tr.RunID(), verdict.Recommendation, result.Totals.Sum(), result.CostUSD)
	o.emit(Event{Kind: EventRunFinished, Detail: string(verdict.Recommendation)}, tr)
	return result, nil
}

func (o *Orchestrator) runPanel(ctx context.Context, tr *transcript.Transcript, ms *manuscript.Manuscript, roster agent.Roster, opts Options) (string, error) {
	rounds := opts.rounds()
	criteria := opts.criteria()

	if tr.Len() == 0 {
		start := meetingStartPrompt(roster, ms.ReviewContext(opts.maxContextChars()), criteria,
			opts.PreviousReviews, opts.AuthorResponse, rounds)
		if err := o.appendSystem(tr, 1, start); err != nil {
			return "", &RunError{Cursor: Cursor{Round: 1, Speaker: transcript.SpeakerSystem}, Err: err}
		}
	}

	for round := 1; round <= rounds; round++ {
		o.log.Info("run %s: round %d of %d", tr.RunID(), round, rounds)
		o.emit(Event{Kind: EventRoundStarted, Round: round}, tr)
		for _, reviewer := range roster.Reviewers {
			if tr.HasTurn(reviewer.Title, round) {
				continue
			}
			cursor := Cursor{Round: round, Speaker: reviewer.Title}
			if err := ctx.Err(); err != nil {
				return "", &RunError{Cursor: cursor, Err: err}
			}
			if err := o.appendPrompt(tr, round, reviewerPrompt(reviewer, round, rounds)); err != nil {
				return "", &RunError{Cursor: cursor, Err: err}
			}
			if err := o.takeTurn(ctx, tr, reviewer, round, opts); err != nil {
				return "", &RunError{Cursor: cursor, Err: err}
			}
		}
	}

	// Editor synthesis closes the last round.
	if !tr.HasTurn(roster.Editor.Title, rounds) {
		cursor := Cursor{Round: rounds, Speaker: roster.Editor.Title}
		if err := ctx.Err(); err != nil {
			return "", &RunError{Cursor: cursor, Err: err}
		}
		if err := o.appendPrompt(tr, rounds, editorFinalPrompt(roster.Editor, criteria)); err != nil {
			return "", &RunError{Cursor: cursor, Err: err}
		}
		if err := o.takeTurn(ctx, tr, roster.Editor, rounds, opts); err != nil {
			return "", &RunError{Cursor: cursor, Err: err}
		}
	}

	final, ok := turnContent(tr, roster.Editor.Title, rounds)
	if !ok {
		return "", &RunError{
			Cursor: Cursor{Round: rounds, Speaker: roster.Editor.Title},
			Err:    &transcript.InvariantViolation{Reason: "editor synthesis turn missing after run"},
		}
	}
	return final, nil
}

func (o *Orchestrator) runIndividual(ctx context.Context, tr *transcript.Transcript, ms *manuscript.Manuscript, roster agent.Roster, opts Options) (string, error) {
	rounds := opts.rounds()
	reviewer := roster.Reviewers[0]
	critic := roster.Critic

	if tr.Len() == 0 {
		start := individualStartPrompt(reviewer, ms.ReviewContext(opts.maxContextChars()),
			opts.criteria(), opts.PreviousReviews, opts.AuthorResponse)
		if err := o.appendSystem(tr, 1, start); err != nil {
			return "", &RunError{Cursor: Cursor{Round: 1, Speaker: transcript.SpeakerSystem}, Err: err}
		}
	}

	approved := false
	for round := 1; round <= rounds && !approved; round++ {
		o.log.Info("run %s: critique round %d of %d", tr.RunID(), round, rounds)
		o.emit(Event{Kind: EventRoundStarted, Round: round}, tr)

		if !tr.HasTurn(reviewer.Title, round) {
			cursor := Cursor{Round: round, Speaker: reviewer.Title}
			if err := ctx.Err(); err != nil {
				return "", &RunError{Cursor: cursor, Err: err}
			}
			if round > 1 {
				if err := o.appendPrompt(tr, round, revisionPrompt(critic, reviewer)); err != nil {
					return "", &RunError{Cursor: cursor, Err: err}
				}
			}
			if err := o.takeTurn(ctx, tr, reviewer, round, opts); err != nil {
				return "", &RunError{Cursor: cursor, Err: err}
			}
		}

		if !tr.HasTurn(critic.Title, round) {
			cursor := Cursor{Round: round, Speaker: critic.Title}
			if err := ctx.Err(); err != nil {
				return "", &RunError{Cursor: cursor, Err: err}
			}
			if err := o.appendPrompt(tr, round, criticPrompt(critic, reviewer)); err != nil {
				return "", &RunError{Cursor: cursor, Err: err}
			}
			if err := o.takeTurn(ctx, tr, critic, round, opts); err != nil {
				return "", &RunError{Cursor: cursor, Err: err}
			}
		}

		critique, _ := turnContent(tr, critic.Title, round)
		approved = criticApproved(critique)
	}

	if !approved {
		// The last critique still demands changes; produce the final revision
		// in a closing round of its own.
		final := rounds + 1
		if !tr.HasTurn(reviewer.Title, final) {
			cursor := Cursor{Round: final, Speaker: reviewer.Title}
			if err := ctx.Err(); err != nil {
				return "", &RunError{Cursor: cursor, Err: err}
			}
			if err := o.appendPrompt(tr, final, revisionPrompt(critic, reviewer)); err != nil {
				return "", &RunError{Cursor: cursor, Err: err}
			}
			if err := o.takeTurn(ctx, tr, reviewer, final, opts); err != nil {
				return "", &RunError{Cursor: cursor, Err: err}
			}
		}
	}

	final, ok := lastTurnContent(tr, reviewer.Title)
	if !ok {
		return "", &RunError{
			Cursor: Cursor{Round: rounds, Speaker: reviewer.Title},
			Err:    &transcript.InvariantViolation{Reason: "reviewer produced no turns"},
		}
	}
	return final, nil
}

// takeTurn invokes the agent against the conversation so far, resolving tool
// calls through the bridge until the agent produces its substantive answer.
// Tool output turns land before the agent's own turn.
func (o *Orchestrator) takeTurn(ctx context.Context, tr *transcript.Transcript, speaker agent.Agent, round int, opts Options) error {
	var tools []llm.ToolSpec
	if opts.ToolsEnabled {
		tools = o.bridge.Specs()
	}

	var usage llm.Usage
	for hop := 0; ; hop++ {
		resp, err := o.invoker.Invoke(ctx, llm.Request{
			Model:       speaker.ModelOrDefault(opts.model()),
			System:      speaker.Persona(),
			Messages:    conversation(tr, speaker.Title),
			Temperature: opts.Temperature,
			Tools:       tools,
		})
		if err != nil {
			return err
		}
		usage.Prompt += resp.Usage.Prompt
		usage.Completion += resp.Usage.Completion

		if len(resp.ToolCalls) == 0 || hop >= maxToolHops {
			turn := transcript.Turn{
				Speaker: speaker.Title,
				Round:   round,
				Content: strings.TrimSpace(resp.Text),
				Tokens:  transcript.TokenCounts{Prompt: usage.Prompt, Completion: usage.Completion},
			}
			if err := tr.Append(turn); err != nil {
				return err
			}
			o.log.Info("run %s: %s spoke in round %d (%d completion tokens)",
				tr.RunID(), speaker.Title, round, resp.Usage.Completion)
			o.emit(Event{Kind: EventTurnLogged, Round: round, Speaker: speaker.Title, Detail: turn.Content}, tr)
			return nil
		}

		for _, call := range resp.ToolCalls {
			output := o.bridge.Resolve(ctx, call)
			toolTurn := transcript.Turn{
				Speaker: transcript.SpeakerTool,
				Round:   round,
				Content: output,
				Tokens:  transcript.TokenCounts{Tool: transcript.EstimateTokens(output)},
			}
			if err := tr.Append(toolTurn); err != nil {
				return err
			}
			o.log.Info("run %s: %s called %s in round %d", tr.RunID(), speaker.Title, call.Name, round)
			o.emit(Event{Kind: EventToolInvoked, Round: round, Speaker: speaker.Title, Detail: call.Name}, tr)
		}
	}
}

func (o *Orchestrator) appendSystem(tr *transcript.Transcript, round int, content string) error {
	return tr.Append(transcript.Turn{
		Speaker: transcript.SpeakerSystem,
		Round:   round,
		Content: content,
	})
}

// appendPrompt records a slot's instruction turn unless an earlier attempt at
// the same slot already left it in the transcript. A failure inside takeTurn
// lands after the prompt, so a resumed run would otherwise re-append it.
func (o *Orchestrator) appendPrompt(tr *transcript.Transcript, round int, content string) error {
	for _, turn := range tr.Turns() {
		if turn.Round == round && turn.Speaker == transcript.SpeakerSystem && turn.Content == content {
			return nil
		}
	}
	return o.appendSystem(tr, round, content)
}

func (o *Orchestrator) emit(event Event, tr *transcript.Transcript) {
	if o.observe == nil {
		return
	}
	event.Totals = tr.Totals()
	if cost, err := tr.Cost(); err == nil {
		event.CostUSD = cost
	}
	o.observe(event)
}

// conversation rebuilds the model-facing message list from the transcript.
// The current speaker sees its own past turns as assistant messages and
// everything else, attributed by name, as user messages.
func conversation(tr *transcript.Transcript, self string) []llm.Message {
	turns := tr.Turns()
	msgs := make([]llm.Message, 0, len(turns))
	for _, turn := range turns {
		switch {
		case turn.Speaker == transcript.SpeakerSystem:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: turn.Content})
		case turn.Speaker == transcript.SpeakerTool:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: "Tool output:\n\n" + turn.Content})
		case strings.EqualFold(turn.Speaker, self):
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: turn.Content})
		default:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: turn.Speaker + ": " + turn.Content})
		}
	}
	return msgs
}

func turnContent(tr *transcript.Transcript, speaker string, round int) (string, bool) {
	for _, turn := range tr.Turns() {
		if turn.Round == round && strings.EqualFold(turn.Speaker, speaker) {
			return turn.Content, true
		}
	}
	return "", false
}

func lastTurnContent(tr *transcript.Transcript, speaker string) (string, bool) {
	turns := tr.Turns()
	for i := len(turns) - 1; i >= 0; i-- {
		if strings.EqualFold(turns[i].Speaker, speaker) {
			return turns[i].Content, true
		}
	}
	return "", false
}
