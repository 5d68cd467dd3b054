package player

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codesathi/internal/kvstore"
	"codesathi/internal/lessons"
	"codesathi/internal/models"
)

// mapStore is an in-memory kvstore.Store
type mapStore struct {
	data   map[string]string
	setErr error
}

func newMapStore() *mapStore {
	return &mapStore{data: map[string]string{}}
}

func (m *mapStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", kvstore.ErrNotFound
	}
	return v, nil
}

func (m *mapStore) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mapStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func testLesson(withChallenge bool) *lessons.Lesson {
	l := &lessons.Lesson{
		ID:       "test-101",
		Title:    "Test",
		Track:    models.TrackScratch,
		XPReward: 50,
		TheoryCards: []lessons.TheoryCard{
			{ID: "t1", Title: "One"},
			{ID: "t2", Title: "Two"},
			{ID: "t3", Title: "Three"},
		},
		InitialCode: "// start",
		Pattern:     lessons.MustRegex("Move.*Steps", "i"),
	}
	if withChallenge {
		l.Challenge = &lessons.Challenge{
			Description:    "Move and turn",
			InitialCode:    "// here",
			Pattern:        lessons.MustRegex("Turn", ""),
			SuccessMessage: "Great job!",
		}
	}
	return l
}

const userID = "user-1"

func cursorKey(l *lessons.Lesson) string {
	return kvstore.LessonCursorKey(userID, l.ID)
}

func TestOpenWithoutCursorStartsAtIntro(t *testing.T) {
	p, err := Open(context.Background(), newMapStore(), userID, testLesson(true), nil)
	require.NoError(t, err)
	assert.Equal(t, Cursor{Stage: StageIntro}, p.Cursor())
}

func TestTheoryWalk(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	l := testLesson(true)
	p, err := Open(ctx, store, userID, l, nil)
	require.NoError(t, err)

	require.NoError(t, p.Start(ctx))
	assert.Equal(t, Cursor{Stage: StageTheory, CardIndex: 0}, p.Cursor())

	// Back on the first card stays put
	require.NoError(t, p.PrevCard(ctx))
	assert.Equal(t, 0, p.Cursor().CardIndex)

	require.NoError(t, p.NextCard(ctx))
	require.NoError(t, p.NextCard(ctx))
	assert.Equal(t, Cursor{Stage: StageTheory, CardIndex: 2}, p.Cursor())
	assert.JSONEq(t, `{"step":"theory","cardIndex":2}`, store.data[cursorKey(l)])

	require.NoError(t, p.PrevCard(ctx))
	assert.Equal(t, 1, p.Cursor().CardIndex)
	require.NoError(t, p.NextCard(ctx))

	// Past the last card: practice, exactly once
	require.NoError(t, p.NextCard(ctx))
	assert.Equal(t, StagePractice, p.Cursor().Stage)
	assert.ErrorIs(t, p.NextCard(ctx), ErrInvalidTransition)
	assert.Equal(t, StagePractice, p.Cursor().Stage)
}

func TestStartWithoutTheoryCardsGoesToPractice(t *testing.T) {
	ctx := context.Background()
	l := testLesson(false)
	l.TheoryCards = nil
	p, err := Open(ctx, newMapStore(), userID, l, nil)
	require.NoError(t, err)

	require.NoError(t, p.Start(ctx))
	assert.Equal(t, StagePractice, p.Cursor().Stage)
}

func TestPracticeWithoutChallengeGoesToReward(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	l := testLesson(false)
	store.data[cursorKey(l)] = `{"step":"practice","cardIndex":2}`

	p, err := Open(ctx, store, userID, l, nil)
	require.NoError(t, err)
	require.Equal(t, StagePractice, p.Cursor().Stage)

	res, err := p.Run(ctx, "Turn 15 Degrees")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, StagePractice, res.Stage)
	assert.Equal(t, "Sprite moved 10 steps!", res.Output)

	res, err = p.Run(ctx, "move 10 steps")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, StageReward, res.Stage)

	_, saved := store.data[cursorKey(l)]
	assert.False(t, saved, "cursor must be cleared on reward")
}

func TestPracticeWithChallenge(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	l := testLesson(true)
	store.data[cursorKey(l)] = `{"step":"practice","cardIndex":2}`

	p, err := Open(ctx, store, userID, l, nil)
	require.NoError(t, err)

	res, err := p.Run(ctx, "Move 10 Steps")
	require.NoError(t, err)
	assert.Equal(t, StageChallenge, res.Stage)
	assert.JSONEq(t, `{"step":"challenge","cardIndex":2}`, store.data[cursorKey(l)])
	assert.Equal(t, "// here", p.State().StarterCode)

	res, err = p.Run(ctx, "Move 10 Steps Turn")
	require.NoError(t, err)
	assert.Equal(t, StageReward, res.Stage)
	assert.Equal(t, "Great job!", res.Message)
}

func TestReopenRestoresChallengeNeverReward(t *testing.T) {
	ctx := context.Background()
	l := testLesson(true)

	tests := []struct {
		name  string
		saved string
		want  Cursor
	}{
		{"challenge card 2", `{"step":"challenge","cardIndex":2}`, Cursor{Stage: StageChallenge, CardIndex: 2}},
		{"theory", `{"step":"theory","cardIndex":1}`, Cursor{Stage: StageTheory, CardIndex: 1}},
		{"reward", `{"step":"reward","cardIndex":2}`, Cursor{Stage: StageIntro}},
		{"theory index past end", `{"step":"theory","cardIndex":9}`, Cursor{Stage: StageTheory, CardIndex: 2}},
		{"unknown stage", `{"step":"done","cardIndex":0}`, Cursor{Stage: StageIntro}},
		{"corrupt", `not json`, Cursor{Stage: StageIntro}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMapStore()
			store.data[cursorKey(l)] = tt.saved
			p, err := Open(ctx, store, userID, l, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Cursor())
		})
	}
}

func TestChallengeWithoutChallengeFallsBackToPractice(t *testing.T) {
	store := newMapStore()
	l := testLesson(false)
	store.data[cursorKey(l)] = `{"step":"challenge","cardIndex":1}`

	p, err := Open(context.Background(), store, userID, l, nil)
	require.NoError(t, err)
	assert.Equal(t, StagePractice, p.Cursor().Stage)
}

func TestRevealAfterThreeFailedAttempts(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	l := testLesson(true)
	store.data[cursorKey(l)] = `{"step":"challenge","cardIndex":0}`

	p, err := Open(ctx, store, userID, l, nil)
	require.NoError(t, err)

	for i := 1; i < RevealAfterAttempts; i++ {
		_, err := p.Run(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, p.State().CanReveal)
		_, err = p.Reveal()
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}

	_, err = p.Run(ctx, "still nope")
	require.NoError(t, err)
	state := p.State()
	assert.Equal(t, RevealAfterAttempts, state.Attempts)
	assert.True(t, state.CanReveal)
	assert.Empty(t, state.Solution)

	solution, err := p.Reveal()
	require.NoError(t, err)
	assert.Equal(t, "/Turn/", solution)
	assert.Equal(t, "/Turn/", p.State().Solution)
}

func TestPracticeFailuresDoNotCountAttempts(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	l := testLesson(true)
	store.data[cursorKey(l)] = `{"step":"practice","cardIndex":0}`

	p, err := Open(ctx, store, userID, l, nil)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := p.Run(ctx, "nope")
		require.NoError(t, err)
	}
	assert.Equal(t, 0, p.State().Attempts)
}

func TestContinueInvokesCallbackOnce(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	l := testLesson(false)
	store.data[cursorKey(l)] = `{"step":"practice","cardIndex":0}`

	calls := 0
	p, err := Open(ctx, store, userID, l, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	assert.ErrorIs(t, p.Continue(ctx), ErrInvalidTransition)

	_, err = p.Run(ctx, "Move 10 Steps")
	require.NoError(t, err)

	require.NoError(t, p.Continue(ctx))
	require.NoError(t, p.Continue(ctx))
	assert.Equal(t, 1, calls)
	assert.True(t, p.State().Completed)
}

func TestContinueRetriesAfterCallbackFailure(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	l := testLesson(false)
	store.data[cursorKey(l)] = `{"step":"practice","cardIndex":0}`

	failures := 1
	calls := 0
	p, err := Open(ctx, store, userID, l, func(context.Context) error {
		calls++
		if failures > 0 {
			failures--
			return errors.New("store unavailable")
		}
		return nil
	})
	require.NoError(t, err)
	_, err = p.Run(ctx, "Move 10 Steps")
	require.NoError(t, err)

	assert.Error(t, p.Continue(ctx))
	assert.False(t, p.State().Completed)
	require.NoError(t, p.Continue(ctx))
	require.NoError(t, p.Continue(ctx))
	assert.Equal(t, 2, calls)
}

func TestInvalidTransitions(t *testing.T) {
	ctx := context.Background()
	p, err := Open(ctx, newMapStore(), userID, testLesson(true), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, p.NextCard(ctx), ErrInvalidTransition)
	assert.ErrorIs(t, p.PrevCard(ctx), ErrInvalidTransition)
	_, err = p.Run(ctx, "Move 10 Steps")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, p.Start(ctx))
	assert.ErrorIs(t, p.Start(ctx), ErrInvalidTransition)
}

func TestCursorSaveFailureIsReported(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	store.setErr = errors.New("disk full")

	p, err := Open(ctx, store, userID, testLesson(true), nil)
	require.NoError(t, err)
	assert.ErrorContains(t, p.Start(ctx), "disk full")
}
