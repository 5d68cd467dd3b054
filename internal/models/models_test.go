package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        "test-session",
				UserID:    "user-1",
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			if got := session.IsExpired(); got != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTrack(t *testing.T) {
	tests := []struct {
		in   string
		want Track
	}{
		{"SCRATCH", TrackScratch},
		{"PYTHON", TrackPython},
		{"JAVASCRIPT", TrackJavaScript},
		{"", TrackScratch},
		{"python", TrackScratch},
		{"RUST", TrackScratch},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseTrack(tt.in); got != tt.want {
				t.Errorf("ParseTrack(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewProgress(t *testing.T) {
	p := NewProgress()
	if p.XP != 0 || p.Streak != 0 {
		t.Errorf("NewProgress() xp/streak = %d/%d, want 0/0", p.XP, p.Streak)
	}
	if p.CompletedLessons == nil || p.Badges == nil {
		t.Error("NewProgress() should return empty, non-nil sets")
	}
	if p.CurrentTrack != TrackScratch {
		t.Errorf("NewProgress().CurrentTrack = %v, want %v", p.CurrentTrack, TrackScratch)
	}
}

func TestAwardBadge(t *testing.T) {
	p := NewProgress()
	if !p.AwardBadge(BadgeFirstCode) {
		t.Error("first AwardBadge() should report a new badge")
	}
	if p.AwardBadge(BadgeFirstCode) {
		t.Error("second AwardBadge() should report an existing badge")
	}
	if len(p.Badges) != 1 {
		t.Errorf("len(Badges) = %d, want 1", len(p.Badges))
	}
}

func TestProfileHasGoal(t *testing.T) {
	p := Profile{Goals: []string{GoalGames, "apps"}}
	if !p.HasGoal(GoalGames) {
		t.Error("HasGoal(games) = false, want true")
	}
	if p.HasGoal(GoalWeb) {
		t.Error("HasGoal(web) = true, want false")
	}
}

func TestFindBadge(t *testing.T) {
	b, ok := FindBadge(BadgeStreakMaster)
	if !ok || b.Condition != "streak_7" {
		t.Errorf("FindBadge(b3) = %+v, %v", b, ok)
	}
	if _, ok := FindBadge("b99"); ok {
		t.Error("FindBadge(b99) should not be found")
	}
}
