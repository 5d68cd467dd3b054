package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codesathi/internal/apperr"
	"codesathi/internal/lessons"
	"codesathi/internal/logger"
	"codesathi/internal/models"
	"codesathi/internal/repository"
)

func TestApplyStreak(t *testing.T) {
	day := func(d, h int) *time.Time {
		t := time.Date(2026, 5, d, h, 0, 0, 0, time.UTC)
		return &t
	}

	tests := []struct {
		name   string
		last   *time.Time
		streak int
		now    time.Time
		want   int
	}{
		{"first completion", nil, 0, *day(10, 9), 1},
		{"same day", day(10, 9), 3, *day(10, 23), 3},
		{"same day from zero", day(10, 9), 0, *day(10, 10), 1},
		{"next day", day(10, 23), 3, *day(11, 0), 4},
		{"gap", day(10, 9), 6, *day(12, 9), 1},
		{"clock went back", day(12, 9), 6, *day(10, 9), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.NewProgress()
			p.LastCompletedAt = tt.last
			p.Streak = tt.streak
			ApplyStreak(&p, tt.now)
			assert.Equal(t, tt.want, p.Streak)
		})
	}
}

func TestAwardBadges(t *testing.T) {
	scratch := &lessons.Lesson{ID: "s", Track: models.TrackScratch}
	python := &lessons.Lesson{ID: "p", Track: models.TrackPython}

	p := models.NewProgress()
	p.CompletedLessons = []string{"s"}
	p.Streak = 1
	AwardBadges(&p, scratch)
	assert.Equal(t, []string{models.BadgeFirstCode}, p.Badges)

	p.Streak = models.StreakMasterMinDays
	p.CompletedLessons = append(p.CompletedLessons, "p")
	AwardBadges(&p, python)
	assert.ElementsMatch(t, []string{models.BadgeFirstCode, models.BadgeStreakMaster, models.BadgePythonCharmer}, p.Badges)

	// Awarding again does not duplicate
	AwardBadges(&p, python)
	assert.Len(t, p.Badges, 3)
}

func newTestProgressService(t *testing.T) (*ProgressService, string) {
	t.Helper()
	db := openTestDB(t)
	user, err := repository.NewUserRepository(db).CreateUser(context.Background(), "kid@example.com", "x", true)
	require.NoError(t, err)
	return NewProgressService(repository.NewProgressRepository(db), lessons.Default(), logger.Nop()), user.ID
}

func TestProgressServiceRecordCompletion(t *testing.T) {
	svc, userID := newTestProgressService(t)
	ctx := context.Background()

	res, err := svc.RecordCompletion(ctx, userID, "py-101")
	require.NoError(t, err)
	assert.True(t, res.Credited)
	assert.Equal(t, 75, res.XPAwarded)
	assert.Equal(t, 1, res.Progress.Streak)

	var ids []string
	for _, b := range res.NewBadges {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{models.BadgeFirstCode, models.BadgePythonCharmer}, ids)

	res, err = svc.RecordCompletion(ctx, userID, "py-101")
	require.NoError(t, err)
	assert.False(t, res.Credited)
	assert.Zero(t, res.XPAwarded)
	assert.Empty(t, res.NewBadges)
	assert.Equal(t, 75, res.Progress.XP)

	_, err = svc.RecordCompletion(ctx, userID, "no-such-lesson")
	assert.True(t, apperr.IsValidation(err))
}

func TestProgressServiceTrackAndStatus(t *testing.T) {
	svc, userID := newTestProgressService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpdateTrack(ctx, userID, models.TrackJavaScript))
	p, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.TrackJavaScript, p.CurrentTrack)

	status := svc.LessonStatus(p, models.TrackJavaScript)
	require.Len(t, status, 2)
	assert.Equal(t, "js-101", status[0].ID)
	assert.False(t, status[0].Locked)
	assert.True(t, status[1].Locked)

	_, err = svc.RecordCompletion(ctx, userID, "js-101")
	require.NoError(t, err)
	p, err = svc.Get(ctx, userID)
	require.NoError(t, err)
	status = svc.LessonStatus(p, models.TrackJavaScript)
	assert.True(t, status[0].Completed)
	assert.False(t, status[1].Locked)

	badges := svc.Badges(p)
	require.Len(t, badges, 1)
	assert.Equal(t, models.BadgeFirstCode, badges[0].ID)

	assert.True(t, apperr.IsValidation(svc.UpdateTrack(ctx, userID, "RUST")))
}
