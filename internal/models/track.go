package models

// Track is one of the three learning curricula.
type Track string

const (
	// TrackScratch is the visual, block-based track.
	TrackScratch Track = "SCRATCH"
	// TrackPython is the text/logic track.
	TrackPython Track = "PYTHON"
	// TrackJavaScript is the web/scripting track.
	TrackJavaScript Track = "JAVASCRIPT"
)

// DefaultTrack is assigned to accounts before they choose one.
const DefaultTrack = TrackScratch

// Tracks lists every track in display order.
var Tracks = []Track{TrackScratch, TrackPython, TrackJavaScript}

// Valid reports whether t is one of the defined tracks.
func (t Track) Valid() bool {
	switch t {
	case TrackScratch, TrackPython, TrackJavaScript:
		return true
	}
	return false
}

// Label is the name shown to learners.
func (t Track) Label() string {
	switch t {
	case TrackScratch:
		return "Scratch Visual Coding"
	case TrackPython:
		return "Python Logic"
	case TrackJavaScript:
		return "Web Magic (JavaScript)"
	}
	return string(t)
}

// ParseTrack maps a stored value to a Track, falling back to DefaultTrack.
func ParseTrack(s string) Track {
	if t := Track(s); t.Valid() {
		return t
	}
	return DefaultTrack
}

// Difficulty grades lessons and projects.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)
