package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"codesathi/internal/apperr"
	"codesathi/internal/database"
	"codesathi/internal/models"
)

// ProfileRepository persists onboarding profiles
type ProfileRepository struct {
	db database.DBTX
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FetchProfile returns the stored profile, or nil when the account has none.
func (r *ProfileRepository) FetchProfile(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "fetchProfile"
	if userID == "" {
		return nil, apperr.Validation(op, "userId", "user id is required")
	}

	query := `
		SELECT display_name, learner_type, age_group, goals, experience, learning_style,
		       devices, time_per_day, parent_report, phone_number, address
		FROM profiles
		WHERE user_id = ?
	`
	var (
		name                            string
		learner, age, experience, style sql.NullString
		goals, devices, phone, address  sql.NullString
		timePerDay                      sql.NullInt64
		parentReport                    sql.NullBool
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&name, &learner, &age, &goals, &experience, &style,
		&devices, &timePerDay, &parentReport, &phone, &address,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(op, fmt.Errorf("failed to get profile: %w", err))
	}

	goalList, err := decodeList("goals", goals)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	deviceList, err := decodeList("devices", devices)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}

	return &models.Profile{
		Name:          name,
		LearnerType:   oneOf(learner.String, models.LearnerMyself, models.LearnerChild),
		AgeGroup:      oneOf(age.String, models.Age7to9, models.Age10to12, models.Age13to14),
		Goals:         goalList,
		Experience:    oneOf(experience.String, models.ExperienceNone, models.ExperienceScratch, models.ExperienceCode),
		LearningStyle: oneOf(style.String, models.StyleVisual, models.StyleChallenges, models.StyleStep),
		Devices:       deviceList,
		TimePerDay:    int(timePerDay.Int64),
		ParentReport:  parentReport.Bool,
		PhoneNumber:   phone.String,
		Address:       address.String,
	}, nil
}

// SaveProfile inserts or replaces the account's profile and returns what was stored.
func (r *ProfileRepository) SaveProfile(ctx context.Context, userID string, p models.Profile) (*models.Profile, error) {
	const op = "saveProfile"
	if userID == "" {
		return nil, apperr.Validation(op, "userId", "user id is required")
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, apperr.Validation(op, "name", "display name is required")
	}

	goals, err := encodeList(p.Goals)
	if err != nil {
		return nil, apperr.Wrap(op, fmt.Errorf("failed to encode goals: %w", err))
	}
	devices, err := encodeList(p.Devices)
	if err != nil {
		return nil, apperr.Wrap(op, fmt.Errorf("failed to encode devices: %w", err))
	}

	cols := []string{
		"user_id", "display_name", "learner_type", "age_group", "goals", "experience",
		"learning_style", "devices", "time_per_day", "parent_report", "phone_number",
		"address", "updated_at",
	}
	query := r.db.GetDialect().UpsertQuery("profiles", cols, []string{"user_id"}, cols[1:])
	_, err = r.db.ExecContext(ctx, query,
		userID, p.Name, nullString(p.LearnerType), nullString(p.AgeGroup), goals,
		nullString(p.Experience), nullString(p.LearningStyle), devices, p.TimePerDay,
		p.ParentReport, nullString(p.PhoneNumber), nullString(p.Address), time.Now().UTC(),
	)
	if err != nil {
		return nil, apperr.Wrap(op, fmt.Errorf("failed to save profile: %w", err))
	}

	if p.Goals == nil {
		p.Goals = []string{}
	}
	if p.Devices == nil {
		p.Devices = []string{}
	}
	p.RecommendedTrack = ""
	return &p, nil
}
