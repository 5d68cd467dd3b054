package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"codesathi/internal/database"
)

// SQLStore keeps entries in the kv_store table.
type SQLStore struct {
	db database.DBTX
}

// NewSQLStore creates a store backed by db.
func NewSQLStore(db database.DBTX) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT kv_value FROM kv_store WHERE kv_key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	query := s.db.GetDialect().UpsertQuery("kv_store",
		[]string{"kv_key", "kv_value", "updated_at"},
		[]string{"kv_key"},
		[]string{"kv_value", "updated_at"},
	)
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_store WHERE kv_key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
