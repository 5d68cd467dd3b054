package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"codesathi/internal/apperr"
	"codesathi/internal/database"
	"codesathi/internal/models"
)

// CreditFunc adjusts progress when a lesson is credited for the first time.
// It sees the progress after XP and the lesson id were added and before
// LastCompletedAt moves to now.
type CreditFunc func(p *models.Progress, now time.Time)

var progressCols = []string{
	"user_id", "current_track", "xp", "streak", "completed_lessons", "badges",
	"last_completed_at", "updated_at",
}

// ProgressRepository persists gamification progress and completion markers
type ProgressRepository struct {
	db  *database.DB
	now func() time.Time
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// FetchProgress returns the stored progress or the zero record. It never
// returns nil without an error.
func (r *ProgressRepository) FetchProgress(ctx context.Context, userID string) (*models.Progress, error) {
	const op = "fetchProgress"
	if userID == "" {
		return nil, apperr.Validation(op, "userId", "user id is required")
	}
	p, err := readProgress(ctx, r.db, userID)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	return p, nil
}

// SaveProgress inserts or replaces the full progress record. XP may not go
// down and completed lessons may not be dropped.
func (r *ProgressRepository) SaveProgress(ctx context.Context, userID string, p models.Progress) (*models.Progress, error) {
	const op = "saveProgress"
	if userID == "" {
		return nil, apperr.Validation(op, "userId", "user id is required")
	}
	if !p.CurrentTrack.Valid() {
		return nil, apperr.Validation(op, "currentTrack", "unknown track")
	}
	if p.XP < 0 {
		return nil, apperr.Validation(op, "xp", "xp cannot be negative")
	}
	now := r.now()
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		current, err := lockProgress(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		if p.XP < current.XP {
			return apperr.Validation(op, "xp", "xp cannot decrease")
		}
		for _, id := range current.CompletedLessons {
			if !p.HasCompleted(id) {
				return apperr.Validation(op, "completedLessons", "completed lessons cannot be removed")
			}
		}
		return writeProgress(ctx, tx, userID, &p, now)
	})
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	return &p, nil
}

// RecordCompletion credits xpReward for lessonID at most once per account.
// The completion marker and the progress update are written in one
// transaction. credited reports whether this call granted the XP.
func (r *ProgressRepository) RecordCompletion(ctx context.Context, userID, lessonID string, xpReward int, credit CreditFunc) (p *models.Progress, credited bool, err error) {
	const op = "recordCompletion"
	if userID == "" {
		return nil, false, apperr.Validation(op, "userId", "user id is required")
	}
	if lessonID == "" {
		return nil, false, apperr.Validation(op, "lessonId", "lesson id is required")
	}
	if xpReward < 0 {
		return nil, false, apperr.Validation(op, "xpReward", "xp reward cannot be negative")
	}

	now := r.now()
	err = r.db.WithTx(ctx, func(tx *database.Tx) error {
		marker := tx.GetDialect().InsertIgnoreQuery("lesson_completions",
			[]string{"user_id", "lesson_id", "completed_at"},
			[]string{"user_id", "lesson_id"},
		)
		if _, err := tx.ExecContext(ctx, marker, userID, lessonID, now); err != nil {
			return fmt.Errorf("failed to write completion marker: %w", err)
		}

		current, err := lockProgress(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		p = current
		if current.HasCompleted(lessonID) {
			return nil
		}

		current.XP += xpReward
		current.CompletedLessons = append(current.CompletedLessons, lessonID)
		if credit != nil {
			credit(current, now)
		}
		current.LastCompletedAt = &now
		if err := writeProgress(ctx, tx, userID, current, now); err != nil {
			return err
		}
		credited = true
		return nil
	})
	if err != nil {
		return nil, false, apperr.Wrap(op, err)
	}
	return p, credited, nil
}

// UpdateTrack persists only the current track.
func (r *ProgressRepository) UpdateTrack(ctx context.Context, userID string, track models.Track) error {
	const op = "updateTrack"
	if userID == "" {
		return apperr.Validation(op, "userId", "user id is required")
	}
	if !track.Valid() {
		return apperr.Validation(op, "track", "unknown track")
	}

	query := r.db.GetDialect().UpsertQuery("progress", progressCols,
		[]string{"user_id"}, []string{"current_track", "updated_at"})
	_, err := r.db.ExecContext(ctx, query,
		userID, string(track), 0, 0, "[]", "[]", nil, r.now())
	if err != nil {
		return apperr.Wrap(op, fmt.Errorf("failed to update track: %w", err))
	}
	return nil
}

// CompletedAt returns when the lesson completion marker was written, or nil.
func (r *ProgressRepository) CompletedAt(ctx context.Context, userID, lessonID string) (*time.Time, error) {
	var at time.Time
	err := r.db.QueryRowContext(ctx,
		"SELECT completed_at FROM lesson_completions WHERE user_id = ? AND lesson_id = ?",
		userID, lessonID).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap("completedAt", fmt.Errorf("failed to get completion marker: %w", err))
	}
	return &at, nil
}

// lockProgress makes sure the account has a progress row and reads it with
// a row lock, so concurrent read-modify-write cycles inside tx serialize.
func lockProgress(ctx context.Context, tx *database.Tx, userID string, now time.Time) (*models.Progress, error) {
	seed := tx.GetDialect().InsertIgnoreQuery("progress", progressCols, []string{"user_id"})
	if _, err := tx.ExecContext(ctx, seed,
		userID, string(models.DefaultTrack), 0, 0, "[]", "[]", nil, now); err != nil {
		return nil, fmt.Errorf("failed to seed progress: %w", err)
	}
	return queryProgress(ctx, tx, tx.GetDialect().LockRows(progressSelect), userID)
}

const progressSelect = `
	SELECT current_track, xp, streak, completed_lessons, badges, last_completed_at
	FROM progress
	WHERE user_id = ?
`

func readProgress(ctx context.Context, db database.DBTX, userID string) (*models.Progress, error) {
	return queryProgress(ctx, db, progressSelect, userID)
}

func queryProgress(ctx context.Context, db database.DBTX, query, userID string) (*models.Progress, error) {
	var (
		track           sql.NullString
		xp, streak      sql.NullInt64
		lessons, badges sql.NullString
		lastCompleted   sql.NullTime
	)
	err := db.QueryRowContext(ctx, query, userID).Scan(&track, &xp, &streak, &lessons, &badges, &lastCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		p := models.NewProgress()
		return &p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	completed, err := decodeList("completed_lessons", lessons)
	if err != nil {
		return nil, err
	}
	earned, err := decodeList("badges", badges)
	if err != nil {
		return nil, err
	}

	p := &models.Progress{
		XP:               max(int(xp.Int64), 0),
		Streak:           max(int(streak.Int64), 0),
		CompletedLessons: completed,
		Badges:           earned,
		CurrentTrack:     models.ParseTrack(track.String),
	}
	if lastCompleted.Valid {
		t := lastCompleted.Time.UTC()
		p.LastCompletedAt = &t
	}
	return p, nil
}

func writeProgress(ctx context.Context, db database.DBTX, userID string, p *models.Progress, now time.Time) error {
	if p.CompletedLessons == nil {
		p.CompletedLessons = []string{}
	}
	if p.Badges == nil {
		p.Badges = []string{}
	}
	lessons, err := encodeList(p.CompletedLessons)
	if err != nil {
		return fmt.Errorf("failed to encode completed lessons: %w", err)
	}
	badges, err := encodeList(p.Badges)
	if err != nil {
		return fmt.Errorf("failed to encode badges: %w", err)
	}

	var lastCompleted interface{}
	if p.LastCompletedAt != nil {
		lastCompleted = p.LastCompletedAt.UTC()
	}

	query := db.GetDialect().UpsertQuery("progress", progressCols, []string{"user_id"}, progressCols[1:])
	_, err = db.ExecContext(ctx, query,
		userID, string(p.CurrentTrack), p.XP, p.Streak, lessons, badges, lastCompleted, now)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// UpsertProgress writes a full progress record through db, which may be a
// transaction. Used by restores.
func UpsertProgress(ctx context.Context, db database.DBTX, userID string, p models.Progress) error {
	return writeProgress(ctx, db, userID, &p, time.Now().UTC())
}
