package recommend

import (
	"testing"

	"codesathi/internal/models"
)

func TestTrack(t *testing.T) {
	tests := []struct {
		name    string
		profile models.Profile
		want    models.Track
	}{
		{
			name:    "7-9 always visual",
			profile: models.Profile{AgeGroup: models.Age7to9, Goals: []string{models.GoalWeb}, Experience: models.ExperienceCode, LearningStyle: models.StyleStep},
			want:    models.TrackScratch,
		},
		{
			name:    "10-12 web with experience",
			profile: models.Profile{AgeGroup: models.Age10to12, Goals: []string{models.GoalWeb}, Experience: models.ExperienceCode},
			want:    models.TrackJavaScript,
		},
		{
			name:    "10-12 web without experience falls to logic",
			profile: models.Profile{AgeGroup: models.Age10to12, Goals: []string{models.GoalWeb}, Experience: models.ExperienceNone, LearningStyle: models.StyleStep},
			want:    models.TrackPython,
		},
		{
			name:    "10-12 games beginner",
			profile: models.Profile{AgeGroup: models.Age10to12, Goals: []string{models.GoalGames}, Experience: models.ExperienceNone, LearningStyle: models.StyleChallenges},
			want:    models.TrackScratch,
		},
		{
			name:    "10-12 games with scratch experience",
			profile: models.Profile{AgeGroup: models.Age10to12, Goals: []string{models.GoalGames}, Experience: models.ExperienceScratch},
			want:    models.TrackPython,
		},
		{
			name:    "13-14 web",
			profile: models.Profile{AgeGroup: models.Age13to14, Goals: []string{"apps", models.GoalWeb}, Experience: models.ExperienceNone, LearningStyle: models.StyleStep},
			want:    models.TrackJavaScript,
		},
		{
			name:    "13-14 other goals",
			profile: models.Profile{AgeGroup: models.Age13to14, Goals: []string{models.GoalGames}, Experience: models.ExperienceCode},
			want:    models.TrackPython,
		},
		{
			name:    "override 10-12 visual beginner with web goal",
			profile: models.Profile{AgeGroup: models.Age10to12, Goals: []string{models.GoalWeb}, Experience: models.ExperienceNone, LearningStyle: models.StyleVisual},
			want:    models.TrackScratch,
		},
		{
			name:    "override 13-14 visual beginner with web goal",
			profile: models.Profile{AgeGroup: models.Age13to14, Goals: []string{models.GoalWeb}, Experience: models.ExperienceNone, LearningStyle: models.StyleVisual},
			want:    models.TrackScratch,
		},
		{
			name:    "unknown age band follows 13-14",
			profile: models.Profile{AgeGroup: "15-18", Goals: []string{models.GoalWeb}, Experience: models.ExperienceCode},
			want:    models.TrackJavaScript,
		},
		{
			name:    "empty profile",
			profile: models.Profile{},
			want:    models.TrackPython,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Track(tt.profile); got != tt.want {
				t.Errorf("Track() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrackIsDeterministic(t *testing.T) {
	p := models.Profile{AgeGroup: models.Age10to12, Goals: []string{models.GoalWeb}, Experience: models.ExperienceCode}
	first := Track(p)
	for i := 0; i < 10; i++ {
		if got := Track(p); got != first {
			t.Fatalf("Track() run %d = %v, want %v", i, got, first)
		}
	}
}

func TestTrackAlwaysValid(t *testing.T) {
	ages := []string{models.Age7to9, models.Age10to12, models.Age13to14, ""}
	experiences := []string{models.ExperienceNone, models.ExperienceScratch, models.ExperienceCode}
	styles := []string{models.StyleVisual, models.StyleChallenges, models.StyleStep}
	goals := [][]string{nil, {models.GoalWeb}, {models.GoalGames}, {models.GoalWeb, models.GoalGames}}

	for _, age := range ages {
		for _, exp := range experiences {
			for _, style := range styles {
				for _, g := range goals {
					p := models.Profile{AgeGroup: age, Experience: exp, LearningStyle: style, Goals: g}
					got := Track(p)
					if !got.Valid() {
						t.Errorf("Track(%+v) = %q, not a valid track", p, got)
					}
					if age == models.Age7to9 && got != models.TrackScratch {
						t.Errorf("Track(%+v) = %v, 7-9 must be visual", p, got)
					}
				}
			}
		}
	}
}

func TestReason(t *testing.T) {
	for _, track := range models.Tracks {
		if Reason(track) == "" {
			t.Errorf("Reason(%v) is empty", track)
		}
	}
}
