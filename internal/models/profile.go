package models

// Learner types
const (
	LearnerMyself = "myself"
	LearnerChild  = "child"
)

// Age bands
const (
	Age7to9   = "7-9"
	Age10to12 = "10-12"
	Age13to14 = "13-14"
)

// Experience levels
const (
	ExperienceNone    = "none"
	ExperienceScratch = "scratch"
	ExperienceCode    = "code"
)

// Learning styles
const (
	StyleVisual     = "visual"
	StyleChallenges = "challenges"
	StyleStep       = "step"
)

// Goals with special meaning for recommendations
const (
	GoalGames = "games"
	GoalWeb   = "web"
)

// Profile is the onboarding questionnaire result for an account
type Profile struct {
	Name             string   `json:"name"`
	LearnerType      string   `json:"learnerType"`
	AgeGroup         string   `json:"ageGroup"`
	Goals            []string `json:"goals"`
	Experience       string   `json:"experience"`
	LearningStyle    string   `json:"learningStyle"`
	Devices          []string `json:"devices"`
	TimePerDay       int      `json:"timePerDay"`
	ParentReport     bool     `json:"parentReport"`
	PhoneNumber      string   `json:"phoneNumber,omitempty"`
	Address          string   `json:"address,omitempty"`
	RecommendedTrack Track    `json:"recommendedTrack,omitempty"`
}

// HasGoal reports whether goal is among the profile's goals.
func (p Profile) HasGoal(goal string) bool {
	for _, g := range p.Goals {
		if g == goal {
			return true
		}
	}
	return false
}
