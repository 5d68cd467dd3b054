package lessons

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codesathi/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	all := c.All()
	require.Len(t, all, 6)

	for _, track := range models.Tracks {
		assert.Len(t, c.ByTrack(track), 2, "track %s", track)
	}

	l, ok := c.Get("scratch-101")
	require.True(t, ok)
	assert.Equal(t, 50, l.XPReward)
	assert.Len(t, l.TheoryCards, 3)
	require.NotNil(t, l.Challenge)
	assert.True(t, l.Challenge.Pattern.Match("Turn 15 Degrees then Move 10 Steps"))

	js, ok := c.Get("js-102")
	require.True(t, ok)
	assert.Equal(t, PatternLiteral, js.Pattern.Kind())

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCatalogSolutions(t *testing.T) {
	c := Default()

	tests := []struct {
		lesson    string
		practice  string
		challenge string
	}{
		{"scratch-101", "Move 10 Steps", "Move 10 Steps Turn 15 Degrees"},
		{"scratch-102", "Repeat 10 times", "Forever Turn 15 Degrees"},
		{"py-101", `print("Hello World")`, `print("Aarav")`},
		{"py-102", `hero_name = "Batman"`, "age = 10"},
		{"js-101", `alert("I am a coder!");`, `alert('hello world')`},
		{"js-102", `console.log("Secret")`, `console.log("pizza")`},
	}
	for _, tt := range tests {
		t.Run(tt.lesson, func(t *testing.T) {
			l, ok := c.Get(tt.lesson)
			require.True(t, ok)
			assert.True(t, l.Pattern.Match(tt.practice))
			assert.False(t, l.Pattern.Match(""))
			require.NotNil(t, l.Challenge)
			assert.True(t, l.Challenge.Pattern.Match(tt.challenge))
		})
	}
}

func TestUnlocked(t *testing.T) {
	c := Default()
	done := map[string]bool{}
	completed := func(id string) bool { return done[id] }

	assert.True(t, c.Unlocked("scratch-101", completed))
	assert.True(t, c.Unlocked("py-101", completed))
	assert.False(t, c.Unlocked("scratch-102", completed))
	assert.False(t, c.Unlocked("nope", completed))

	done["scratch-101"] = true
	assert.True(t, c.Unlocked("scratch-102", completed))
	assert.False(t, c.Unlocked("py-102", completed))
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "lessons: ["},
		{"missing pattern", "lessons:\n  - {id: a, track: PYTHON, xpReward: 5}"},
		{"both pattern kinds", "lessons:\n  - {id: a, track: PYTHON, xpReward: 5, solutionPattern: {literal: x, regex: y}}"},
		{"bad regex", "lessons:\n  - {id: a, track: PYTHON, xpReward: 5, solutionPattern: {regex: \"(\"}}"},
		{"unknown track", "lessons:\n  - {id: a, track: RUST, xpReward: 5, solutionPattern: {literal: x}}"},
		{"zero xp", "lessons:\n  - {id: a, track: PYTHON, xpReward: 0, solutionPattern: {literal: x}}"},
		{"duplicate", "lessons:\n  - {id: a, track: PYTHON, xpReward: 5, solutionPattern: {literal: x}}\n  - {id: a, track: PYTHON, xpReward: 5, solutionPattern: {literal: x}}"},
		{"challenge without pattern", "lessons:\n  - {id: a, track: PYTHON, xpReward: 5, solutionPattern: {literal: x}, challenge: {description: d}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestPatternJSON(t *testing.T) {
	l, ok := Default().Get("scratch-101")
	require.True(t, ok)

	data, err := json.Marshal(l.Pattern)
	require.NoError(t, err)
	assert.JSONEq(t, `{"regex":"Move.*Steps","flags":"i"}`, string(data))

	var back Pattern
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Match("move 3 steps"))
}
