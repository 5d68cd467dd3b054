// Package lessons holds the immutable lesson catalog and the completion
// evaluator that checks submitted code against a lesson's pattern.
package lessons

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"codesathi/internal/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// TheoryCard is one slide of the theory stage
type TheoryCard struct {
	ID      string `yaml:"id" json:"id"`
	Title   string `yaml:"title" json:"title"`
	Content string `yaml:"content" json:"content"`
	Image   string `yaml:"image,omitempty" json:"image,omitempty"`
}

// Challenge is the optional harder exercise after practice
type Challenge struct {
	Description    string  `yaml:"description" json:"description"`
	InitialCode    string  `yaml:"initialCode" json:"initialCode"`
	Pattern        Pattern `yaml:"solutionPattern" json:"solutionPattern"`
	SuccessMessage string  `yaml:"successMessage" json:"successMessage"`
}

// Lesson is a static content unit
type Lesson struct {
	ID           string            `yaml:"id" json:"id"`
	Title        string            `yaml:"title" json:"title"`
	Description  string            `yaml:"description" json:"description"`
	Track        models.Track      `yaml:"track" json:"track"`
	Difficulty   models.Difficulty `yaml:"difficulty" json:"difficulty"`
	XPReward     int               `yaml:"xpReward" json:"xpReward"`
	IntroText    string            `yaml:"introText" json:"introText"`
	TheoryCards  []TheoryCard      `yaml:"theoryCards" json:"theoryCards"`
	InitialCode  string            `yaml:"initialCode" json:"initialCode"`
	Pattern      Pattern           `yaml:"solutionPattern" json:"solutionPattern"`
	Instructions []string          `yaml:"instructions" json:"instructions"`
	Hints        []string          `yaml:"hints" json:"hints"`
	Challenge    *Challenge        `yaml:"challenge,omitempty" json:"challenge,omitempty"`
}

// Catalog is an ordered, read-only set of lessons
type Catalog struct {
	lessons []Lesson
	byID    map[string]int
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Lessons []Lesson `yaml:"lessons"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse lesson catalog: %w", err)
	}

	c := &Catalog{lessons: doc.Lessons, byID: make(map[string]int, len(doc.Lessons))}
	for i, l := range doc.Lessons {
		if err := validateLesson(l); err != nil {
			return nil, err
		}
		if _, dup := c.byID[l.ID]; dup {
			return nil, fmt.Errorf("duplicate lesson id %q", l.ID)
		}
		c.byID[l.ID] = i
	}
	return c, nil
}

func validateLesson(l Lesson) error {
	switch {
	case l.ID == "":
		return fmt.Errorf("lesson without id")
	case !l.Track.Valid():
		return fmt.Errorf("lesson %s: unknown track %q", l.ID, l.Track)
	case l.XPReward <= 0:
		return fmt.Errorf("lesson %s: xpReward must be positive", l.ID)
	case l.Pattern.IsZero():
		return fmt.Errorf("lesson %s: missing solutionPattern", l.ID)
	case l.Challenge != nil && l.Challenge.Pattern.IsZero():
		return fmt.Errorf("lesson %s: challenge missing solutionPattern", l.ID)
	}
	return nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is
// invalid, which the package tests rule out.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalog)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// Get looks a lesson up by id.
func (c *Catalog) Get(id string) (*Lesson, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.lessons[i], true
}

// All returns every lesson in catalog order.
func (c *Catalog) All() []Lesson {
	out := make([]Lesson, len(c.lessons))
	copy(out, c.lessons)
	return out
}

// ByTrack returns the lessons of one track in unlock order.
func (c *Catalog) ByTrack(track models.Track) []Lesson {
	var out []Lesson
	for _, l := range c.lessons {
		if l.Track == track {
			out = append(out, l)
		}
	}
	return out
}

// Unlocked reports whether lessonID may be opened given the completed set:
// the first lesson of a track always, later ones once their predecessor is done.
func (c *Catalog) Unlocked(lessonID string, completed func(id string) bool) bool {
	lesson, ok := c.Get(lessonID)
	if !ok {
		return false
	}
	var prev string
	for _, l := range c.lessons {
		if l.Track != lesson.Track {
			continue
		}
		if l.ID == lessonID {
			return prev == "" || completed(prev)
		}
		prev = l.ID
	}
	return false
}
