// cmd/colloquy/main.go
//
// Entry point for the colloquy CLI: run a multi-agent review of a manuscript
// from the command line, track revisions, and export the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mwhittier/colloquy/internal/agent"
	"github.com/mwhittier/colloquy/internal/config"
	"github.com/mwhittier/colloquy/internal/export"
	"github.com/mwhittier/colloquy/internal/llm"
	"github.com/mwhittier/colloquy/internal/logbook"
	"github.com/mwhittier/colloquy/internal/manuscript"
	"github.com/mwhittier/colloquy/internal/mentor"
	"github.com/mwhittier/colloquy/internal/pubmed"
	"github.com/mwhittier/colloquy/internal/review"
	"github.com/mwhittier/colloquy/internal/revision"
	"github.com/mwhittier/colloquy/internal/tui"
)

func main() {
	manuscriptPath := flag.String("manuscript", "", "path to the manuscript text or markdown file (required)")
	title := flag.String("title", "", "manuscript title shown in reports")
	reviewType := flag.String("type", "", "review type: panel or individual (defaults to config)")
	rounds := flag.Int("rounds", 0, "discussion rounds (defaults to config)")
	projectDir := flag.String("project", "", "project directory (defaults to cwd)")
	outputDir := flag.String("output", "", "directory for exported artifacts (defaults to .colloquy/reviews/<timestamp>)")
	model := flag.String("model", "", "model name (defaults to config)")
	temperature := flag.Float64("temperature", -1, "sampling temperature (defaults to config)")
	noPubMed := flag.Bool("no-pubmed", false, "disable literature search during the discussion")
	generate := flag.Int("generate-panel", 0, "generate this many reviewers tailored to the manuscript")
	personasPath := flag.String("personas", "", "YAML file with a custom reviewer panel")
	savePersonas := flag.Bool("save-personas", false, "save the resolved panel for reuse")
	version := flag.Int("version", 0, "manuscript version number for revision tracking")
	responsePath := flag.String("author-response", "", "file with the authors' response to previous reviews")
	withMentor := flag.Bool("mentor", false, "also generate a mentoring report for the authors")
	watch := flag.Bool("watch", false, "show the live discussion in a terminal UI")
	flag.Parse()

	if strings.TrimSpace(*manuscriptPath) == "" {
		die("--manuscript is required")
	}

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	project, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	cfg, err := config.NewConfig(project)
	if err != nil {
		die("load config: %v", err)
	}
	if cfg.APIKey == "" {
		die("OPENAI_API_KEY is not set; export it or add it to %s", filepath.Join(project, ".env"))
	}

	text, err := os.ReadFile(*manuscriptPath)
	if err != nil {
		die("read manuscript: %v", err)
	}
	ms := manuscript.FromText(string(text), *title)

	chosenType := cfg.Project.Review.Type
	if *reviewType != "" {
		chosenType = *reviewType
	}
	parsedType, err := agent.ParseReviewType(chosenType)
	if err != nil {
		die("%v", err)
	}

	opts := review.Options{
		Rounds:          cfg.Project.Review.Rounds,
		ToolsEnabled:    cfg.Project.Review.PubMed && !*noPubMed,
		Temperature:     cfg.Project.Model.Temperature,
		MaxContextChars: cfg.Project.Manuscript.MaxContextChars,
		Model:           cfg.Project.Model.Name,
	}
	if *rounds > 0 {
		opts.Rounds = *rounds
	}
	if *model != "" {
		opts.Model = *model
	}
	if *temperature >= 0 {
		opts.Temperature = *temperature
	}

	invoker, err := llm.NewOpenAIInvoker(cfg.APIKey, "")
	if err != nil {
		die("%v", err)
	}

	reviewers, err := loadReviewers(cfg, invoker, ms, parsedType, *personasPath, *generate, opts)
	if err != nil {
		die("%v", err)
	}
	roster, err := agent.Resolve(parsedType, reviewers)
	if err != nil {
		die("%v", err)
	}
	if *savePersonas {
		if err := agent.SavePanel(cfg.PersonasPath(), roster.Reviewers); err != nil {
			die("save personas: %v", err)
		}
	}

	tracker, err := revision.NewTracker(cfg.RevisionsDir())
	if err != nil {
		die("open revision history: %v", err)
	}
	if *version > 0 {
		opts.PreviousReviews, opts.AuthorResponse, err = revisionInputs(tracker, *version, ms, *responsePath)
		if err != nil {
			die("%v", err)
		}
	} else if *responsePath != "" {
		response, err := os.ReadFile(*responsePath)
		if err != nil {
			die("read author response: %v", err)
		}
		opts.AuthorResponse = string(response)
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	log, err := logbook.ForRun(cfg.LogsDir(), stamp)
	if err != nil {
		die("open logbook: %v", err)
	}

	orchestratorOpts := []review.Option{
		review.WithLogbook(log),
		review.WithRates(cfg.Project.Rates),
	}
	if opts.ToolsEnabled {
		orchestratorOpts = append(orchestratorOpts, review.WithToolBridge(review.NewToolBridge(pubmed.NewClient())))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	result, runErr := runReview(ctx, invoker, orchestratorOpts, ms, roster, opts, *watch)
	elapsed := time.Since(started).Round(time.Second)

	outDir := *outputDir
	if outDir == "" {
		outDir = filepath.Join(cfg.ReviewsDir(), stamp)
	}
	if result != nil {
		paths, err := export.WriteRun(outDir, result, parsedType)
		if err != nil {
			warn("export: %v", err)
		} else {
			fmt.Printf("Transcript: %s\n", paths.TranscriptJSON)
			if paths.ReviewMarkdown != "" {
				fmt.Printf("Review:     %s\n", paths.ReviewMarkdown)
			}
		}
	}

	if runErr != nil {
		if result != nil && result.Transcript != nil {
			if turn, ok := result.Transcript.Last(); ok {
				warn("run stopped after %s in round %d", turn.Speaker, turn.Round)
			}
		}
		die("review failed after %s: %v", elapsed, runErr)
	}

	fmt.Printf("\nRecommendation: %s\n", result.Verdict.Recommendation)
	fmt.Printf("Tokens: %d (input %d, output %d, tool %d)\n",
		result.Totals.Sum(), result.Totals.Input, result.Totals.Output, result.Totals.Tool)
	if result.CostUSD > 0 {
		fmt.Printf("Estimated cost: $%.4f\n", result.CostUSD)
	}
	fmt.Printf("Elapsed: %s\n", elapsed)

	if *version > 0 {
		err := tracker.AddReview(*version, revision.Review{
			ReviewType:     string(parsedType),
			Recommendation: string(result.Verdict.Recommendation),
			Text:           result.Review,
		})
		if err != nil {
			warn("record review: %v", err)
		}
	}

	if *withMentor {
		report, err := mentor.GenerateReport(ctx, invoker, result.Review, result.Verdict, mentor.Options{
			Model:             opts.Model,
			Temperature:       opts.Temperature,
			ManuscriptExcerpt: ms.ReviewContext(opts.MaxContextChars),
		})
		if err != nil {
			warn("mentor report: %v", err)
		} else if path, err := mentor.SaveReport(outDir, report); err != nil {
			warn("save mentor report: %v", err)
		} else {
			fmt.Printf("Mentor report: %s\n", path)
		}
	}
}

// loadReviewers resolves the reviewer set: an explicit personas file wins,
// then on-the-fly panel generation, then the built-in defaults (nil).
func loadReviewers(cfg *config.Config, invoker llm.Invoker, ms *manuscript.Manuscript, reviewType agent.ReviewType, personasPath string, generate int, opts review.Options) ([]agent.Agent, error) {
	if personasPath != "" {
		return agent.LoadPanel(personasPath)
	}
	if generate > 0 {
		if reviewType != agent.ReviewPanel {
			return nil, fmt.Errorf("panel generation only applies to panel reviews")
		}
		fmt.Printf("Generating %d reviewers tailored to the manuscript...\n", generate)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return agent.GeneratePanel(ctx, invoker, ms.FullText, generate, opts.Model, opts.Temperature)
	}
	return nil, nil
}

// revisionInputs registers the manuscript version if new and assembles the
// previous-review context for the run.
func revisionInputs(tracker *revision.Tracker, version int, ms *manuscript.Manuscript, responsePath string) ([]string, string, error) {
	if version == tracker.LatestVersion()+1 {
		if err := tracker.AddVersion(version, ms); err != nil {
			return nil, "", err
		}
	}
	if responsePath != "" {
		response, err := os.ReadFile(responsePath)
		if err != nil {
			return nil, "", fmt.Errorf("read author response: %w", err)
		}
		if err := tracker.SetAuthorResponse(version-1, string(response)); err != nil && version > 1 {
			return nil, "", err
		}
	}
	rc, err := tracker.ReviewContext(version)
	if err != nil {
		return nil, "", err
	}
	return rc.PreviousReviews, rc.AuthorResponse, nil
}

// runReview executes the run either headless (printing progress lines) or
// under the live TUI.
func runReview(ctx context.Context, invoker llm.Invoker, orchestratorOpts []review.Option, ms *manuscript.Manuscript, roster agent.Roster, opts review.Options, watch bool) (*review.Result, error) {
	if !watch {
		orchestratorOpts = append(orchestratorOpts, review.WithObserver(printProgress))
		o := review.New(invoker, orchestratorOpts...)
		return o.Run(ctx, ms, roster, opts)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan review.Event, 16)
	orchestratorOpts = append(orchestratorOpts, review.WithObserver(func(e review.Event) {
		events <- e
	}))
	o := review.New(invoker, orchestratorOpts...)

	program := tea.NewProgram(tui.NewModel("Reviewing "+ms.Title, events), tea.WithAltScreen())

	var (
		result *review.Result
		runErr error
		done   = make(chan struct{})
	)
	go func() {
		defer close(done)
		result, runErr = o.Run(runCtx, ms, roster, opts)
		close(events)
		program.Send(tui.DoneMsg{Err: runErr})
	}()

	tuiErr := func() error {
		_, err := program.Run()
		return err
	}()

	// If the user quit before the run ended, stop it at the next turn
	// boundary and drain the observer so the run goroutine can finish.
	cancel()
	for range events {
	}
	<-done

	if tuiErr != nil {
		return result, fmt.Errorf("tui: %w", tuiErr)
	}
	return result, runErr
}

func printProgress(e review.Event) {
	switch e.Kind {
	case review.EventRoundStarted:
		fmt.Printf("--- round %d ---\n", e.Round)
	case review.EventTurnLogged:
		fmt.Printf("[%s]\n%s\n\n", e.Speaker, e.Detail)
	case review.EventToolInvoked:
		fmt.Printf("(%s searched the literature: %s)\n", e.Speaker, e.Detail)
	case review.EventRunFinished:
		fmt.Printf("=== %s ===\n", e.Detail)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "colloquy: "+format+"\n", args...)
	os.Exit(1)
}

func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "colloquy: warning: "+format+"\n", args...)
}
