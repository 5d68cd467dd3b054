// Package llm connects the tutor to hosted chat models. Every backend is
// reached through the same Provider so the tutor never sees SDK types.
package llm

import "context"

// Provider sends one chat request and returns the model's reply.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name identifies the backend and model, e.g. "gemini/gemini-2.0-flash".
	Name() string
}

// Request is a single tutor turn.
type Request struct {
	// Purpose labels the request in logs: "chat", "hint", "welcome".
	Purpose string

	System   string
	Messages []Message

	MaxTokens   int
	Temperature float64
}

// Message is one turn of a conversation. Learners send these back as
// history, so the JSON shape is part of the API.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role is who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response is the model's text plus what it cost.
type Response struct {
	Text string

	// Truncated is set when the reply hit MaxTokens.
	Truncated bool

	InputTokens  int
	OutputTokens int
}
