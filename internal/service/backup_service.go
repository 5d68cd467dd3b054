package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"codesathi/internal/database"
	"codesathi/internal/logger"
	"codesathi/internal/models"
	"codesathi/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exported_at"`
	Users       []UserBackup       `json:"users"`
	Profiles    []ProfileBackup    `json:"profiles"`
	Progress    []ProgressBackup   `json:"progress"`
	Completions []CompletionBackup `json:"lesson_completions"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	EmailVerified bool      `json:"email_verified"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProfileBackup is one account's onboarding profile
type ProfileBackup struct {
	UserID  string         `json:"user_id"`
	Profile models.Profile `json:"profile"`
}

// ProgressBackup is one account's progress record
type ProgressBackup struct {
	UserID   string          `json:"user_id"`
	Progress models.Progress `json:"progress"`
}

// CompletionBackup is one lesson completion marker
type CompletionBackup struct {
	UserID      string    `json:"user_id"`
	LessonID    string    `json:"lesson_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db  *database.DB
	log *logger.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, log *logger.Logger) *BackupService {
	return &BackupService{db: db, log: log.With("component", "backup")}
}

// Export writes a JSON backup of every account to w
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	s.log.Info("starting database export")

	backup := &BackupData{
		Version:     BackupVersion,
		ExportedAt:  time.Now().UTC(),
		Users:       []UserBackup{},
		Profiles:    []ProfileBackup{},
		Progress:    []ProgressBackup{},
		Completions: []CompletionBackup{},
	}

	users, err := repository.NewUserRepository(s.db).GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}

	profiles := repository.NewProfileRepository(s.db)
	progress := repository.NewProgressRepository(s.db)
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{
			ID:            u.ID,
			Email:         u.Email,
			PasswordHash:  u.PasswordHash,
			EmailVerified: u.EmailVerified,
			OAuthProvider: u.OAuthProvider,
			OAuthSubject:  u.OAuthSubject,
			CreatedAt:     u.CreatedAt,
			UpdatedAt:     u.UpdatedAt,
		})

		p, err := profiles.FetchProfile(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export profile for %s: %w", u.ID, err)
		}
		if p != nil {
			backup.Profiles = append(backup.Profiles, ProfileBackup{UserID: u.ID, Profile: *p})
		}

		pr, err := progress.FetchProgress(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export progress for %s: %w", u.ID, err)
		}
		backup.Progress = append(backup.Progress, ProgressBackup{UserID: u.ID, Progress: *pr})
	}

	if err := s.exportCompletions(ctx, backup); err != nil {
		return nil, fmt.Errorf("failed to export lesson completions: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.log.Info("database exported",
		"users", len(backup.Users), "profiles", len(backup.Profiles),
		"progress", len(backup.Progress), "completions", len(backup.Completions))
	return backup, nil
}

func (s *BackupService) exportCompletions(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT user_id, lesson_id, completed_at FROM lesson_completions ORDER BY user_id, completed_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CompletionBackup
		if err := rows.Scan(&c.UserID, &c.LessonID, &c.CompletedAt); err != nil {
			return err
		}
		backup.Completions = append(backup.Completions, c)
	}
	return rows.Err()
}

// Import restores a backup read from r in one transaction. Users and
// completion markers that already exist are kept; profiles and progress
// are overwritten.
func (s *BackupService) Import(ctx context.Context, r io.Reader) (*BackupData, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}
	s.log.Info("starting database import", "version", backup.Version, "exportedAt", backup.ExportedAt)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := importUsers(ctx, tx, backup.Users); err != nil {
			return fmt.Errorf("failed to import users: %w", err)
		}

		profiles := repository.NewProfileRepository(tx)
		for _, p := range backup.Profiles {
			if _, err := profiles.SaveProfile(ctx, p.UserID, p.Profile); err != nil {
				return fmt.Errorf("failed to import profile for %s: %w", p.UserID, err)
			}
		}

		for _, p := range backup.Progress {
			p.Progress.CurrentTrack = models.ParseTrack(string(p.Progress.CurrentTrack))
			if err := repository.UpsertProgress(ctx, tx, p.UserID, p.Progress); err != nil {
				return fmt.Errorf("failed to import progress for %s: %w", p.UserID, err)
			}
		}

		if err := importCompletions(ctx, tx, backup.Completions); err != nil {
			return fmt.Errorf("failed to import lesson completions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("database import completed", "users", len(backup.Users))
	return &backup, nil
}

func importUsers(ctx context.Context, tx *database.Tx, users []UserBackup) error {
	query := tx.GetDialect().InsertIgnoreQuery("users",
		[]string{"id", "email", "password_hash", "email_verified", "oauth_provider", "oauth_subject", "created_at", "updated_at"},
		[]string{"id"},
	)
	for _, u := range users {
		var provider, subject interface{}
		if u.OAuthProvider != "" {
			provider, subject = u.OAuthProvider, u.OAuthSubject
		}
		if _, err := tx.ExecContext(ctx, query,
			u.ID, u.Email, u.PasswordHash, u.EmailVerified, provider, subject,
			u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("user %s: %w", u.ID, err)
		}
	}
	return nil
}

func importCompletions(ctx context.Context, tx *database.Tx, completions []CompletionBackup) error {
	query := tx.GetDialect().InsertIgnoreQuery("lesson_completions",
		[]string{"user_id", "lesson_id", "completed_at"},
		[]string{"user_id", "lesson_id"},
	)
	for _, c := range completions {
		if _, err := tx.ExecContext(ctx, query, c.UserID, c.LessonID, c.CompletedAt.UTC()); err != nil {
			return fmt.Errorf("completion %s/%s: %w", c.UserID, c.LessonID, err)
		}
	}
	return nil
}
