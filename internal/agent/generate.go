package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mwhittier/colloquy/internal/llm"
)

const generateSystemPrompt = "You are an expert at identifying the ideal peer reviewers for scientific manuscripts. " +
	"You understand the nuances of different research fields and can identify the specific expertise needed to properly evaluate a paper."

// How much manuscript text the panel-generation call sees.
const generateExcerptChars = 15000

// GeneratePanel analyzes the manuscript and asks the model for a panel of
// specialized reviewer personas. On any parse shortfall it falls back to the
// default reviewers rather than failing the run.
func GeneratePanel(ctx context.Context, invoker llm.Invoker, manuscriptText string, numReviewers int, model string, temperature float64) ([]Agent, error) {
	if numReviewers <= 0 {
		numReviewers = 3
	}
	excerpt := manuscriptText
	if len(excerpt) > generateExcerptChars {
		excerpt = excerpt[:generateExcerptChars]
	}
	resp, err := invoker.Invoke(ctx, llm.Request{
		Model:       model,
		System:      generateSystemPrompt,
		Temperature: temperature,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: generatePrompt(excerpt, numReviewers),
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("agent: generate panel: %w", err)
	}
	reviewers := parseGeneratedPanel(resp.Text, numReviewers, model)
	return fillPanel(reviewers, numReviewers), nil
}

func generatePrompt(excerpt string, n int) string {
	return fmt.Sprintf(`Analyze this scientific manuscript and identify %d specialized reviewer profiles that would be ideal for peer review.

Consider the main research techniques used, the scientific domain, and any specialized expertise needed.

For each reviewer, provide a specific title, their precise expertise relevant to THIS manuscript, their goal in reviewing this specific paper, and their role in evaluating specific aspects.

Return your response as a JSON array with exactly %d reviewer objects. Each object must have these exact fields: "title", "expertise", "goal", "role".

Here is the manuscript to analyze:

%s

Return ONLY the JSON array, no other text.`, n, n, excerpt)
}

// parseGeneratedPanel plucks reviewer records out of the model's reply,
// tolerating markdown code fences around the JSON.
func parseGeneratedPanel(text string, limit int, model string) []Agent {
	payload := stripCodeFence(text)
	parsed := gjson.Parse(payload)
	if !parsed.IsArray() {
		return nil
	}
	var reviewers []Agent
	for _, item := range parsed.Array() {
		if len(reviewers) >= limit {
			break
		}
		a := Agent{
			Title:     item.Get("title").String(),
			Expertise: item.Get("expertise").String(),
			Goal:      item.Get("goal").String(),
			Role:      item.Get("role").String(),
			Model:     model,
		}
		if a.Validate() != nil {
			continue
		}
		reviewers = append(reviewers, a)
	}
	return reviewers
}

// fillPanel tops up a short panel with defaults that are not already present.
func fillPanel(reviewers []Agent, want int) []Agent {
	for _, def := range DefaultReviewers() {
		if len(reviewers) >= want {
			break
		}
		exists := false
		for _, r := range reviewers {
			if strings.EqualFold(r.Title, def.Title) {
				exists = true
				break
			}
		}
		if !exists {
			reviewers = append(reviewers, def)
		}
	}
	return reviewers
}

func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if idx := strings.Index(trimmed, "```json"); idx >= 0 {
		trimmed = trimmed[idx+len("```json"):]
	} else if idx := strings.Index(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[idx+len("```"):]
	} else {
		return trimmed
	}
	if end := strings.Index(trimmed, "```"); end >= 0 {
		trimmed = trimmed[:end]
	}
	return strings.TrimSpace(trimmed)
}
