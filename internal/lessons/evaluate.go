package lessons

import (
	"regexp"
	"strings"

	"codesathi/internal/models"
)

// Result is the outcome of checking submitted code.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
}

var firstQuoted = regexp.MustCompile(`["'](.*?)["']`)

// Evaluate tests code against pattern. Nothing is executed: the output is a
// canned simulation chosen by track and a glance at the text.
func Evaluate(code string, pattern Pattern, track models.Track) Result {
	return Result{
		Success: pattern.Match(code),
		Output:  SimulatedOutput(code, track),
	}
}

// SimulatedOutput returns what the pretend runtime shows for code.
func SimulatedOutput(code string, track models.Track) string {
	switch track {
	case models.TrackPython:
		if !strings.Contains(code, "print") {
			return "Running..."
		}
		if m := firstQuoted.FindStringSubmatch(code); m != nil && m[1] != "" {
			return m[1]
		}
		return "Output"
	case models.TrackJavaScript:
		if strings.Contains(code, "alert") {
			return "Browser Alert Triggered!"
		}
		return "Console Logged"
	default:
		return "Sprite moved 10 steps!"
	}
}
