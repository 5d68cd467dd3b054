// Package tutor implements Sathi, the AI coding buddy: free-form chat, a
// self-checked hint and a short welcome message after onboarding.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codesathi/internal/apperr"
	"codesathi/internal/llm"
	"codesathi/internal/logger"
	"codesathi/internal/models"
)

// ErrNotConfigured is returned when no model provider is configured.
var ErrNotConfigured = errors.New("tutor: no model provider configured")

const (
	maxHistory       = 20
	maxMessageLength = 2000
	maxWelcomeWords  = 49

	chatMaxTokens    = 300
	hintMaxTokens    = 400
	welcomeMaxTokens = 150
	temperature      = 0.7
)

// Intent is what the learner wants from a hint request.
type Intent string

const (
	IntentExplain  Intent = "explain"
	IntentHint     Intent = "hint"
	IntentDebug    Intent = "debug"
	IntentMotivate Intent = "motivate"
)

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	switch i {
	case IntentExplain, IntentHint, IntentDebug, IntentMotivate:
		return true
	}
	return false
}

// HintRequest asks for a self-checked answer about the current task.
type HintRequest struct {
	Intent   Intent       `json:"intent"`
	Context  string       `json:"context"`
	Message  string       `json:"message"`
	Track    models.Track `json:"track,omitempty"`
	AgeGroup string       `json:"ageGroup,omitempty"`
}

// Tutor talks to a model on behalf of learners. It keeps no conversation
// state; callers send the history they want considered.
type Tutor struct {
	provider llm.Provider
	log      *logger.Logger
}

// New creates a tutor. A nil provider yields a tutor that always answers
// with fallbacks.
func New(provider llm.Provider, log *logger.Logger) *Tutor {
	return &Tutor{provider: provider, log: log.With("component", "tutor")}
}

// Available reports whether a model provider is configured.
func (t *Tutor) Available() bool {
	return t.provider != nil
}

// Chat answers message given the prior history and the lesson the learner
// is on. On failure the returned text is a friendly fallback and err
// explains what went wrong.
func (t *Tutor) Chat(ctx context.Context, history []llm.Message, message, lessonContext string) (string, error) {
	const op = "tutorChat"
	message = strings.TrimSpace(message)
	if err := checkMessage(op, message); err != nil {
		return "", err
	}
	if t.provider == nil {
		return FallbackNotConfigured, ErrNotConfigured
	}

	msgs := make([]llm.Message, 0, maxHistory+1)
	for _, m := range trimHistory(history) {
		if (m.Role == llm.RoleUser || m.Role == llm.RoleAssistant) && strings.TrimSpace(m.Content) != "" {
			msgs = append(msgs, m)
		}
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: chatPrompt(lessonContext, message)})

	resp, err := t.provider.Generate(ctx, llm.Request{
		Purpose:     "chat",
		System:      SystemInstruction,
		Messages:    msgs,
		MaxTokens:   chatMaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return FallbackChatError, apperr.Wrap(op, err)
	}
	if text := strings.TrimSpace(resp.Text); text != "" {
		return text, nil
	}
	return FallbackEmpty, nil
}

// SelfCheck asks the model once, then shows it its own answer and asks it
// to double-check. Exactly two requests are made when the first succeeds.
func (t *Tutor) SelfCheck(ctx context.Context, req HintRequest) (string, error) {
	const op = "tutorHint"
	req.Message = strings.TrimSpace(req.Message)
	if !req.Intent.Valid() {
		return "", apperr.Validation(op, "intent", "intent must be one of explain, hint, debug, motivate")
	}
	if err := checkMessage(op, req.Message); err != nil {
		return "", err
	}
	if t.provider == nil {
		return FallbackHintAsleep, ErrNotConfigured
	}

	prompt := hintPrompt(req)
	first, err := t.provider.Generate(ctx, llm.Request{
		Purpose:     "hint",
		System:      SystemInstruction,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   hintMaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return FallbackHintError, apperr.Wrap(op, err)
	}
	if strings.TrimSpace(first.Text) == "" {
		return FallbackHintError, apperr.Wrap(op, &llm.Error{Kind: llm.KindEmptyReply, Provider: t.provider.Name()})
	}

	second, err := t.provider.Generate(ctx, llm.Request{
		Purpose: "hint-check",
		System:  SystemInstruction,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
			{Role: llm.RoleAssistant, Content: first.Text},
			{Role: llm.RoleUser, Content: SelfCheckFollowUp},
		},
		MaxTokens:   hintMaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return FallbackHintError, apperr.Wrap(op, err)
	}
	if text := strings.TrimSpace(second.Text); text != "" {
		return text, nil
	}
	return FallbackHintEmpty, nil
}

// WelcomePlan writes a short greeting for a freshly onboarded learner,
// always under 50 words.
func (t *Tutor) WelcomePlan(ctx context.Context, p models.Profile, track models.Track) (string, error) {
	const op = "tutorWelcome"
	if t.provider == nil {
		return fmt.Sprintf("Welcome %s! Let's start coding!", p.Name), ErrNotConfigured
	}

	resp, err := t.provider.Generate(ctx, llm.Request{
		Purpose:     "welcome",
		System:      SystemInstruction,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: welcomePrompt(p, track)}},
		MaxTokens:   welcomeMaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return fmt.Sprintf("Welcome %s! Ready to become a coding wizard?", p.Name), apperr.Wrap(op, err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return fmt.Sprintf("Welcome %s! Let's start your coding adventure!", p.Name), nil
	}
	return limitWords(text, maxWelcomeWords), nil
}

func checkMessage(op, message string) error {
	if message == "" {
		return apperr.Validation(op, "message", "message is required")
	}
	if len([]rune(message)) > maxMessageLength {
		return apperr.Validation(op, "message", fmt.Sprintf("message must be at most %d characters", maxMessageLength))
	}
	return nil
}

func trimHistory(history []llm.Message) []llm.Message {
	if len(history) > maxHistory {
		return history[len(history)-maxHistory:]
	}
	return history
}

func limitWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ") + "…"
}
