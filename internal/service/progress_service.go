package service

import (
	"context"
	"time"

	"codesathi/internal/apperr"
	"codesathi/internal/lessons"
	"codesathi/internal/logger"
	"codesathi/internal/models"
	"codesathi/internal/repository"
)

// User-facing messages for progress write failures
const (
	MsgSaveLessonFailed  = "Could not save lesson progress. Please retry."
	MsgUpdateTrackFailed = "Unable to update your track right now."
)

// CompletionResult describes what a lesson completion changed
type CompletionResult struct {
	Progress  *models.Progress `json:"progress"`
	Credited  bool             `json:"credited"`
	XPAwarded int              `json:"xpAwarded"`
	NewBadges []models.Badge   `json:"newBadges"`
}

// LessonStatus is a catalog entry annotated for one learner
type LessonStatus struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Track       models.Track      `json:"track"`
	Difficulty  models.Difficulty `json:"difficulty"`
	XPReward    int               `json:"xpReward"`
	Completed   bool              `json:"completed"`
	Locked      bool              `json:"locked"`
}

// ProgressService applies the gamification rules on top of the progress repository
type ProgressService struct {
	progress *repository.ProgressRepository
	catalog  *lessons.Catalog
	log      *logger.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(progress *repository.ProgressRepository, catalog *lessons.Catalog, log *logger.Logger) *ProgressService {
	return &ProgressService{
		progress: progress,
		catalog:  catalog,
		log:      log.With("component", "progress"),
	}
}

// Get returns the account's progress (the zero record when none is stored).
func (s *ProgressService) Get(ctx context.Context, userID string) (*models.Progress, error) {
	return s.progress.FetchProgress(ctx, userID)
}

// RecordCompletion credits a finished lesson once and applies streak and
// badge rules on the first credit.
func (s *ProgressService) RecordCompletion(ctx context.Context, userID, lessonID string) (*CompletionResult, error) {
	lesson, ok := s.catalog.Get(lessonID)
	if !ok {
		return nil, apperr.Validation("recordCompletion", "lessonId", "unknown lesson")
	}

	var before []string
	credit := func(p *models.Progress, now time.Time) {
		before = append([]string(nil), p.Badges...)
		ApplyStreak(p, now)
		AwardBadges(p, lesson)
	}

	p, credited, err := s.progress.RecordCompletion(ctx, userID, lessonID, lesson.XPReward, credit)
	if err != nil {
		s.log.Error("lesson completion failed", "userId", userID, "lessonId", lessonID, "error", err)
		return nil, err
	}

	res := &CompletionResult{Progress: p, Credited: credited, NewBadges: []models.Badge{}}
	if credited {
		res.XPAwarded = lesson.XPReward
		for _, id := range p.Badges {
			if contains(before, id) {
				continue
			}
			if b, ok := models.FindBadge(id); ok {
				res.NewBadges = append(res.NewBadges, b)
			}
		}
		s.log.Info("lesson completed", "userId", userID, "lessonId", lessonID, "xp", p.XP, "streak", p.Streak)
	}
	return res, nil
}

// UpdateTrack switches the account's current track
func (s *ProgressService) UpdateTrack(ctx context.Context, userID string, track models.Track) error {
	if err := s.progress.UpdateTrack(ctx, userID, track); err != nil {
		s.log.Error("track update failed", "userId", userID, "track", track, "error", err)
		return err
	}
	return nil
}

// Badges lists the earned badge definitions in catalog order
func (s *ProgressService) Badges(p *models.Progress) []models.Badge {
	earned := []models.Badge{}
	for _, b := range models.Badges {
		if p.HasBadge(b.ID) {
			earned = append(earned, b)
		}
	}
	return earned
}

// LessonStatus annotates one track's lessons with completion and lock state
func (s *ProgressService) LessonStatus(p *models.Progress, track models.Track) []LessonStatus {
	out := []LessonStatus{}
	for _, l := range s.catalog.ByTrack(track) {
		out = append(out, LessonStatus{
			ID:          l.ID,
			Title:       l.Title,
			Description: l.Description,
			Track:       l.Track,
			Difficulty:  l.Difficulty,
			XPReward:    l.XPReward,
			Completed:   p.HasCompleted(l.ID),
			Locked:      !s.catalog.Unlocked(l.ID, p.HasCompleted),
		})
	}
	return out
}

// ApplyStreak updates the day streak for a completion at now. Days are
// compared as UTC calendar dates.
func ApplyStreak(p *models.Progress, now time.Time) {
	if p.LastCompletedAt == nil {
		p.Streak = 1
		return
	}
	switch days := daysBetween(*p.LastCompletedAt, now); {
	case days == 0:
		if p.Streak == 0 {
			p.Streak = 1
		}
	case days == 1:
		p.Streak++
	default:
		p.Streak = 1
	}
}

// AwardBadges grants the badges a completion of lesson can unlock
func AwardBadges(p *models.Progress, lesson *lessons.Lesson) {
	if len(p.CompletedLessons) >= 1 {
		p.AwardBadge(models.BadgeFirstCode)
	}
	if p.Streak >= models.StreakMasterMinDays {
		p.AwardBadge(models.BadgeStreakMaster)
	}
	if lesson.Track == models.TrackPython {
		p.AwardBadge(models.BadgePythonCharmer)
	}
}

func daysBetween(from, to time.Time) int {
	y1, m1, d1 := from.UTC().Date()
	y2, m2, d2 := to.UTC().Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
