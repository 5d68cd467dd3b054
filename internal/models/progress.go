package models

import "time"

// Progress is the gamification state of an account
type Progress struct {
	XP               int        `json:"xp"`
	Streak           int        `json:"streak"`
	CompletedLessons []string   `json:"completedLessons"`
	Badges           []string   `json:"badges"`
	CurrentTrack     Track      `json:"currentTrack"`
	LastCompletedAt  *time.Time `json:"lastCompletedAt,omitempty"`
}

// NewProgress returns the zero record every account starts from.
func NewProgress() Progress {
	return Progress{
		CompletedLessons: []string{},
		Badges:           []string{},
		CurrentTrack:     DefaultTrack,
	}
}

// HasCompleted reports whether lessonID is in the completed set.
func (p Progress) HasCompleted(lessonID string) bool {
	return contains(p.CompletedLessons, lessonID)
}

// HasBadge reports whether badgeID has been earned.
func (p Progress) HasBadge(badgeID string) bool {
	return contains(p.Badges, badgeID)
}

// AwardBadge adds badgeID once. It reports whether the badge is new.
func (p *Progress) AwardBadge(badgeID string) bool {
	if p.HasBadge(badgeID) {
		return false
	}
	p.Badges = append(p.Badges, badgeID)
	return true
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
