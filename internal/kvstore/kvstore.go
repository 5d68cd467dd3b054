// Package kvstore is the durable per-account key-value storage used for
// staged onboarding profiles and lesson cursors.
package kvstore

import (
	"context"
	"errors"
	"fmt"

	"codesathi/internal/config"
	"codesathi/internal/database"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// PendingProfileKey is where a profile waits between sign-up and verification.
func PendingProfileKey(userID string) string {
	return "pending_profile:" + userID
}

// LessonCursorKey is where the lesson player keeps its place.
func LessonCursorKey(userID, lessonID string) string {
	return "lesson_progress:" + userID + ":" + lessonID
}

// New builds the backend selected by cfg.KVBackend.
func New(ctx context.Context, cfg *config.Config, db *database.DB) (Store, error) {
	switch cfg.KVBackend {
	case "redis":
		return NewRedisStore(ctx, cfg.RedisAddr, "codesathi:")
	case "sql", "":
		return NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported kv backend: %s", cfg.KVBackend)
	}
}
