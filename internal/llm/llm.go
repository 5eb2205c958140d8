// Package llm abstracts the language-model invocation service. The
// orchestrator treats it as a black-box turn generator: persona plus
// conversation context in, text plus token usage out.
package llm

import (
	"context"
	"fmt"
)

// Role tags a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation context sent to the model.
type Message struct {
	Role    Role
	Content string
}

// ToolSpec declares a function tool the model may call mid-turn.
type ToolSpec struct {
	Name        string
	Description string
	// Parameters is a JSON-schema object describing the arguments.
	Parameters map[string]any
}

// Request is one agent invocation: the agent's persona as the system prompt
// plus the full conversation so far.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	Temperature float64
	Tools       []ToolSpec
}

// ToolCall is a tool request emitted by the model instead of (or alongside)
// its substantive answer.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Usage carries the provider-reported token counts for one invocation.
type Usage struct {
	Prompt     int
	Completion int
}

// Response is the model's turn.
type Response struct {
	Text      string
	ToolCalls []ToolCall
	Usage     Usage
}

// Invoker generates one turn of conversation. Implementations must be safe
// for sequential reuse across a run; calls block until the provider answers.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Response, error)
}

// InvocationError wraps any unrecoverable failure of the underlying model
// call (network, rate limit, malformed response). The core never retries;
// that is the caller's concern.
type InvocationError struct {
	Provider string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("llm: %s invocation failed: %v", e.Provider, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
