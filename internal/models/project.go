package models

// Project is a showcase build unlocked as learners progress
type Project struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Track       Track      `json:"track"`
	Difficulty  Difficulty `json:"difficulty"`
	XPReward    int        `json:"xpReward"`
	Image       string     `json:"image"`
	Locked      bool       `json:"locked"`
}

// Projects is the project catalog
var Projects = []Project{
	{ID: "p1", Title: "Space Dodger", Description: "Build a game where a spaceship avoids asteroids.", Track: TrackScratch, Difficulty: Intermediate, XPReward: 500, Image: "🚀"},
	{ID: "p2", Title: "Digital Pet", Description: "Create a pet that needs food and sleep.", Track: TrackPython, Difficulty: Advanced, XPReward: 800, Image: "👾", Locked: true},
	{ID: "p3", Title: "Joke Generator", Description: "A button that tells random dad jokes.", Track: TrackJavaScript, Difficulty: Beginner, XPReward: 300, Image: "😂"},
}
