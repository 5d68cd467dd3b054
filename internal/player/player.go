// Package player drives a learner through one lesson:
// intro, theory cards, practice, an optional challenge, and the reward.
package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"codesathi/internal/kvstore"
	"codesathi/internal/lessons"
)

// Stage is one phase of a lesson
type Stage string

const (
	StageIntro     Stage = "intro"
	StageTheory    Stage = "theory"
	StagePractice  Stage = "practice"
	StageChallenge Stage = "challenge"
	StageReward    Stage = "reward"
)

// RevealAfterAttempts is how many failed challenge runs unlock the solution pattern.
const RevealAfterAttempts = 3

// ErrInvalidTransition is returned when an action does not apply to the current stage.
var ErrInvalidTransition = errors.New("invalid lesson transition")

// Cursor is the persisted position inside a lesson
type Cursor struct {
	Stage     Stage `json:"step"`
	CardIndex int   `json:"cardIndex"`
}

// CompletionFunc is invoked once when the learner continues past the reward.
type CompletionFunc func(ctx context.Context) error

// RunResult is the outcome of one Run action
type RunResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Stage   Stage  `json:"stage"`
	Message string `json:"message,omitempty"`
}

// State is a snapshot for rendering the current stage
type State struct {
	LessonID    string `json:"lessonId"`
	Stage       Stage  `json:"stage"`
	CardIndex   int    `json:"cardIndex"`
	CardCount   int    `json:"cardCount"`
	StarterCode string `json:"starterCode,omitempty"`
	Attempts    int    `json:"attempts"`
	CanReveal   bool   `json:"canReveal"`
	Solution    string `json:"solution,omitempty"`
	XPReward    int    `json:"xpReward"`
	Completed   bool   `json:"completed"`
}

// Player is the state machine for one user and one lesson. It is not safe
// for concurrent use.
type Player struct {
	store      kvstore.Store
	key        string
	lesson     *lessons.Lesson
	onComplete CompletionFunc

	cursor    Cursor
	attempts  int
	revealed  bool
	completed bool
}

// Open restores the saved cursor for the lesson, or starts at intro.
// A cursor is never restored into the reward stage.
func Open(ctx context.Context, store kvstore.Store, userID string, lesson *lessons.Lesson, onComplete CompletionFunc) (*Player, error) {
	p := &Player{
		store:      store,
		key:        kvstore.LessonCursorKey(userID, lesson.ID),
		lesson:     lesson,
		onComplete: onComplete,
		cursor:     Cursor{Stage: StageIntro},
	}

	raw, err := store.Get(ctx, p.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lesson cursor: %w", err)
	}

	var saved Cursor
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		// Unreadable cursor: start over
		if err := store.Delete(ctx, p.key); err != nil {
			return nil, fmt.Errorf("failed to clear lesson cursor: %w", err)
		}
		return p, nil
	}
	p.cursor = p.sanitize(saved)
	return p, nil
}

// sanitize clamps a saved cursor to what this lesson allows.
func (p *Player) sanitize(c Cursor) Cursor {
	switch c.Stage {
	case StageTheory:
		if len(p.lesson.TheoryCards) == 0 {
			return Cursor{Stage: StagePractice}
		}
		if c.CardIndex < 0 {
			c.CardIndex = 0
		}
		if last := len(p.lesson.TheoryCards) - 1; c.CardIndex > last {
			c.CardIndex = last
		}
		return c
	case StageChallenge:
		if p.lesson.Challenge == nil {
			return Cursor{Stage: StagePractice, CardIndex: c.CardIndex}
		}
		return c
	case StagePractice:
		return c
	default:
		return Cursor{Stage: StageIntro}
	}
}

// Lesson returns the lesson being played.
func (p *Player) Lesson() *lessons.Lesson {
	return p.lesson
}

// Cursor returns the current position.
func (p *Player) Cursor() Cursor {
	return p.cursor
}

// Start leaves the intro.
func (p *Player) Start(ctx context.Context) error {
	if p.cursor.Stage != StageIntro {
		return ErrInvalidTransition
	}
	if len(p.lesson.TheoryCards) == 0 {
		return p.moveTo(ctx, Cursor{Stage: StagePractice})
	}
	return p.moveTo(ctx, Cursor{Stage: StageTheory, CardIndex: 0})
}

// NextCard advances one theory card; past the last card it enters practice.
func (p *Player) NextCard(ctx context.Context) error {
	if p.cursor.Stage != StageTheory {
		return ErrInvalidTransition
	}
	if p.cursor.CardIndex >= len(p.lesson.TheoryCards)-1 {
		return p.moveTo(ctx, Cursor{Stage: StagePractice, CardIndex: p.cursor.CardIndex})
	}
	return p.moveTo(ctx, Cursor{Stage: StageTheory, CardIndex: p.cursor.CardIndex + 1})
}

// PrevCard steps back one theory card, stopping at the first.
func (p *Player) PrevCard(ctx context.Context) error {
	if p.cursor.Stage != StageTheory {
		return ErrInvalidTransition
	}
	if p.cursor.CardIndex == 0 {
		return nil
	}
	return p.moveTo(ctx, Cursor{Stage: StageTheory, CardIndex: p.cursor.CardIndex - 1})
}

// Run checks submitted code against the current stage's pattern.
func (p *Player) Run(ctx context.Context, code string) (RunResult, error) {
	var pattern lessons.Pattern
	switch p.cursor.Stage {
	case StagePractice:
		pattern = p.lesson.Pattern
	case StageChallenge:
		pattern = p.lesson.Challenge.Pattern
	default:
		return RunResult{}, ErrInvalidTransition
	}

	res := lessons.Evaluate(code, pattern, p.lesson.Track)
	out := RunResult{Success: res.Success, Output: res.Output}

	if !res.Success {
		if p.cursor.Stage == StageChallenge {
			p.attempts++
		}
		out.Stage = p.cursor.Stage
		return out, nil
	}

	var err error
	if p.cursor.Stage == StagePractice && p.lesson.Challenge != nil {
		err = p.moveTo(ctx, Cursor{Stage: StageChallenge, CardIndex: p.cursor.CardIndex})
	} else {
		if p.cursor.Stage == StageChallenge {
			out.Message = p.lesson.Challenge.SuccessMessage
		}
		err = p.moveTo(ctx, Cursor{Stage: StageReward, CardIndex: p.cursor.CardIndex})
	}
	out.Stage = p.cursor.Stage
	return out, err
}

// Reveal exposes the challenge solution pattern once enough attempts failed.
func (p *Player) Reveal() (string, error) {
	if p.cursor.Stage != StageChallenge || p.attempts < RevealAfterAttempts {
		return "", ErrInvalidTransition
	}
	p.revealed = true
	return p.lesson.Challenge.Pattern.String(), nil
}

// Continue leaves the reward stage. The completion callback runs at most
// once successfully; later calls are no-ops.
func (p *Player) Continue(ctx context.Context) error {
	if p.cursor.Stage != StageReward {
		return ErrInvalidTransition
	}
	if p.completed {
		return nil
	}
	if p.onComplete != nil {
		if err := p.onComplete(ctx); err != nil {
			return err
		}
	}
	p.completed = true
	return nil
}

// State returns a snapshot of the player.
func (p *Player) State() State {
	s := State{
		LessonID:  p.lesson.ID,
		Stage:     p.cursor.Stage,
		CardIndex: p.cursor.CardIndex,
		CardCount: len(p.lesson.TheoryCards),
		Attempts:  p.attempts,
		XPReward:  p.lesson.XPReward,
		Completed: p.completed,
	}
	switch p.cursor.Stage {
	case StagePractice:
		s.StarterCode = p.lesson.InitialCode
	case StageChallenge:
		s.StarterCode = p.lesson.Challenge.InitialCode
		s.CanReveal = p.attempts >= RevealAfterAttempts
		if p.revealed {
			s.Solution = p.lesson.Challenge.Pattern.String()
		}
	}
	return s
}

// moveTo applies a transition and persists it. Entering reward clears the
// saved cursor instead of writing one.
func (p *Player) moveTo(ctx context.Context, next Cursor) error {
	p.cursor = next
	if next.Stage == StageReward {
		if err := p.store.Delete(ctx, p.key); err != nil {
			return fmt.Errorf("failed to clear lesson cursor: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode lesson cursor: %w", err)
	}
	if err := p.store.Set(ctx, p.key, string(data)); err != nil {
		return fmt.Errorf("failed to save lesson cursor: %w", err)
	}
	return nil
}
