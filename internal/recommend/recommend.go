// Package recommend picks a starting track from an onboarding profile.
package recommend

import "codesathi/internal/models"

// Track returns the recommended track for a completed profile. First match
// wins; the visual-beginner override applies last. Age bands outside the
// known set follow the 13-14 rules.
func Track(p models.Profile) models.Track {
	var track models.Track

	switch p.AgeGroup {
	case models.Age7to9:
		return models.TrackScratch
	case models.Age10to12:
		switch {
		case p.HasGoal(models.GoalWeb) && p.Experience != models.ExperienceNone:
			track = models.TrackJavaScript
		case p.HasGoal(models.GoalGames) && p.Experience == models.ExperienceNone:
			track = models.TrackScratch
		default:
			track = models.TrackPython
		}
	default:
		if p.HasGoal(models.GoalWeb) {
			track = models.TrackJavaScript
		} else {
			track = models.TrackPython
		}
	}

	if p.Experience == models.ExperienceNone && p.LearningStyle == models.StyleVisual {
		track = models.TrackScratch
	}
	return track
}

// Reason is a one-line explanation shown next to the recommendation.
func Reason(track models.Track) string {
	switch track {
	case models.TrackScratch:
		return "Perfect for visual learners! You will drag and drop blocks to make games and stories."
	case models.TrackJavaScript:
		return "Build real websites and interactive apps. The language of the internet."
	default:
		return "The best language for beginners who want to type real code. Used by NASA and Google!"
	}
}
