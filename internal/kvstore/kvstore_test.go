package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codesathi/internal/database"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	key := LessonCursorKey("user-1", "py-101")

	_, err := store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, key, `{"step":"theory","cardIndex":1}`))
	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"step":"theory","cardIndex":1}`, got)

	require.NoError(t, store.Set(ctx, key, `{"step":"practice","cardIndex":1}`))
	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"step":"practice","cardIndex":1}`, got)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error
	assert.NoError(t, store.Delete(ctx, key))
}

func TestSQLStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db, err := database.Initialize(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer db.Close()

	exerciseStore(t, NewSQLStore(db))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	store, err := NewRedisStore(context.Background(), addr, "codesathi-test:")
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "pending_profile:u1", PendingProfileKey("u1"))
	assert.Equal(t, "lesson_progress:u1:js-101", LessonCursorKey("u1", "js-101"))
}
