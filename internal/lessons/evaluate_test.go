package lessons

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codesathi/internal/models"
)

func TestRegexPatternMatchesAnywhere(t *testing.T) {
	p := MustRegex("Move.*Steps", "i")

	tests := []struct {
		code string
		want bool
	}{
		{"Move 10 Steps", true},
		{"move 99 steps", true},
		{"when clicked\nMove 10 Steps\n", true},
		{"Turn 15 Degrees", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.code, p, models.TrackScratch).Success)
		})
	}
}

func TestRegexCaseSensitivityIsPatternDefined(t *testing.T) {
	p := MustRegex("hero_name\\s*=\\s*[\"'].*[\"']", "")

	assert.True(t, p.Match(`hero_name = "Batman"`))
	assert.False(t, p.Match(`HERO_NAME = "Batman"`))
}

func TestLiteralPatternIsCaseSensitiveSubstring(t *testing.T) {
	p := Literal("print")

	tests := []struct {
		code string
		want bool
	}{
		{"print('hi')", true},
		{"x = 1\nprint(x)", true},
		{"blueprint", true},
		{"Print('hi')", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Match(tt.code))
		})
	}
}

func TestZeroPatternNeverMatches(t *testing.T) {
	var p Pattern
	assert.True(t, p.IsZero())
	assert.False(t, p.Match("anything"))
}

func TestRegexRejectsBadInput(t *testing.T) {
	_, err := Regex("(", "")
	assert.Error(t, err)

	_, err = Regex("a", "x")
	assert.Error(t, err)

	p, err := Regex("a", "gi")
	assert.NoError(t, err)
	assert.True(t, p.Match("A"))
}

func TestPatternString(t *testing.T) {
	assert.Equal(t, "/Move.*Steps/i", MustRegex("Move.*Steps", "i").String())
	assert.Equal(t, "console.log", Literal("console.log").String())
}

func TestSimulatedOutput(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		track models.Track
		want  string
	}{
		{"python print quoted", `print("Hello World")`, models.TrackPython, "Hello World"},
		{"python print single quotes", `print('Aarav')`, models.TrackPython, "Aarav"},
		{"python print no string", `print(age)`, models.TrackPython, "Output"},
		{"python print empty string", `print("")`, models.TrackPython, "Output"},
		{"python no print", `age = 10`, models.TrackPython, "Running..."},
		{"javascript alert", `alert("hi");`, models.TrackJavaScript, "Browser Alert Triggered!"},
		{"javascript console", `console.log("x")`, models.TrackJavaScript, "Console Logged"},
		{"scratch", `Move 10 Steps`, models.TrackScratch, "Sprite moved 10 steps!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SimulatedOutput(tt.code, tt.track))
		})
	}
}

func TestEvaluateReportsOutputOnFailure(t *testing.T) {
	lesson, ok := Default().Get("py-101")
	assert.True(t, ok)

	res := Evaluate(`print("Goodbye")`, lesson.Pattern, lesson.Track)
	assert.False(t, res.Success)
	assert.Equal(t, "Goodbye", res.Output)
}
