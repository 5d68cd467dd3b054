package llm

import (
	"context"
	"sync"
)

// MockProvider replays a script of replies and failures in order and
// records every request it was sent. When the script runs out it behaves
// like an unreachable backend.
type MockProvider struct {
	mu       sync.Mutex
	script   []mockStep
	requests []Request
}

type mockStep struct {
	text string
	err  error
}

// NewMockProvider returns a provider that answers with replies in order.
func NewMockProvider(replies ...string) *MockProvider {
	m := &MockProvider{}
	for _, r := range replies {
		m.Reply(r)
	}
	return m
}

// Reply queues a successful answer. An empty text is returned as an empty
// response, not as an error.
func (m *MockProvider) Reply(text string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{text: text})
	return m
}

// Fail queues a failed call.
func (m *MockProvider) Fail(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{err: err})
	return m
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req.Messages = append([]Message(nil), req.Messages...)
	m.requests = append(m.requests, req)

	if len(m.script) == 0 {
		return nil, &Error{Kind: KindUnavailable, Provider: "mock"}
	}
	step := m.script[0]
	m.script = m.script[1:]
	if step.err != nil {
		return nil, step.err
	}
	return &Response{Text: step.text}, nil
}

// Requests returns a copy of everything sent so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// CallCount returns how many requests were sent.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
