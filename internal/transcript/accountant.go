package transcript

import (
	"fmt"
	"strings"
)

// Rate is the per-token price pair for one model.
type Rate struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// RateTable maps model names to prices. Rates are external configuration,
// not orchestration logic.
type RateTable map[string]Rate

// ErrUnknownModelRate is wrapped by Cost when the run's model has no entry
// in the rate table.
type ErrUnknownModelRate struct {
	Model string
}

func (e *ErrUnknownModelRate) Error() string {
	return fmt.Sprintf("transcript: no rate known for model %q", e.Model)
}

// match finds the rate for a model, preferring an exact entry and falling
// back to the longest prefix match so dated model names resolve to their
// family entry.
func (rt RateTable) match(model string) (Rate, bool) {
	if rate, ok := rt[model]; ok {
		return rate, true
	}
	bestLen := -1
	var best Rate
	for name, rate := range rt {
		if strings.HasPrefix(model, name) && len(name) > bestLen {
			bestLen = len(name)
			best = rate
		}
	}
	return best, bestLen >= 0
}

// Totals holds the accountant's four running counters.
type Totals struct {
	Input   int `json:"input"`
	Output  int `json:"output"`
	Tool    int `json:"tool"`
	MaxTurn int `json:"maxTurn"`
}

// Sum returns input + output + tool.
func (t Totals) Sum() int {
	return t.Input + t.Output + t.Tool
}

// Accountant aggregates per-turn token counts into running totals and a cost
// estimate. It is scoped to one run and updated on every append.
type Accountant struct {
	model  string
	rates  RateTable
	totals Totals
}

func (a *Accountant) observe(turn Turn) {
	a.totals.Input += turn.Tokens.Prompt
	a.totals.Output += turn.Tokens.Completion
	a.totals.Tool += turn.Tokens.Tool
	if length := turn.Tokens.Prompt + turn.Tokens.Completion; length > a.totals.MaxTurn {
		a.totals.MaxTurn = length
	}
}

// cost is a linear function of the token totals under the model's rates.
// Tool output is charged at the input rate since it re-enters the context.
func (a *Accountant) cost() (float64, error) {
	rate, ok := a.rates.match(a.model)
	if !ok {
		return 0, &ErrUnknownModelRate{Model: a.model}
	}
	in := float64(a.totals.Input+a.totals.Tool) * rate.Input
	out := float64(a.totals.Output) * rate.Output
	return in + out, nil
}

// EstimateTokens approximates the token length of text that carries no
// provider-reported usage (tool output). Roughly four characters per token.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return (len(s) + 3) / 4
}
