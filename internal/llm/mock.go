package llm

import (
	"context"
	"sync"
)

// MockInvoker replays a scripted sequence of responses. Tests and offline
// runs use it in place of a live provider.
type MockInvoker struct {
	mu       sync.Mutex
	script   []Response
	next     int
	err      error
	Requests []Request
}

// NewMockInvoker seeds the script. When the script runs out the last
// response repeats, so fixed scripts survive variable-length loops.
func NewMockInvoker(script ...Response) *MockInvoker {
	return &MockInvoker{script: script}
}

// FailWith makes every subsequent Invoke return the given error wrapped as
// an InvocationError.
func (m *MockInvoker) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Invoke records the request and returns the next scripted response.
func (m *MockInvoker) Invoke(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, &InvocationError{Provider: "mock", Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.err != nil {
		return Response{}, &InvocationError{Provider: "mock", Err: m.err}
	}
	if len(m.script) == 0 {
		return Response{Text: "pass", Usage: Usage{Prompt: 1, Completion: 1}}, nil
	}
	resp := m.script[m.next]
	if m.next < len(m.script)-1 {
		m.next++
	}
	return resp, nil
}
