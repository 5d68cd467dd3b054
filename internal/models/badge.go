package models

// Badge is an unlockable achievement
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Condition   string `json:"condition"`
}

// Badge identifiers
const (
	BadgeFirstCode      = "b1"
	BadgeBugHunter      = "b2"
	BadgeStreakMaster   = "b3"
	BadgePythonCharmer  = "b4"
	StreakMasterMinDays = 7
)

// Badges is the badge catalog
var Badges = []Badge{
	{ID: BadgeFirstCode, Name: "First Code", Description: "Completed your first lesson", Icon: "🐣", Condition: "1_lesson"},
	{ID: BadgeBugHunter, Name: "Bug Hunter", Description: "Fixed 5 errors without hints", Icon: "🐛", Condition: "debug_5"},
	{ID: BadgeStreakMaster, Name: "Streak Master", Description: "Coded for 7 days in a row", Icon: "🔥", Condition: "streak_7"},
	{ID: BadgePythonCharmer, Name: "Python Charmer", Description: "Finished Python Unit 1", Icon: "🐍", Condition: "track_python"},
}

// FindBadge looks up a badge by id.
func FindBadge(id string) (Badge, bool) {
	for _, b := range Badges {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}
