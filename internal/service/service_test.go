package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"codesathi/internal/database"
	"codesathi/internal/logger"
	"codesathi/internal/repository"
	"codesathi/internal/security"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeMailer records what would have been sent
type fakeMailer struct {
	mu       sync.Mutex
	enabled  bool
	codes    map[string]string
	welcomed []string
	sendErr  error
}

func newFakeMailer(enabled bool) *fakeMailer {
	return &fakeMailer{enabled: enabled, codes: map[string]string{}}
}

func (m *fakeMailer) IsEnabled() bool { return m.enabled }

func (m *fakeMailer) SendVerificationEmail(_ context.Context, toEmail, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.codes[toEmail] = code
	return nil
}

func (m *fakeMailer) SendWelcomeEmail(_ context.Context, toEmail, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomed = append(m.welcomed, toEmail)
	return nil
}

func newTestAuthService(t *testing.T, db *database.DB, mailer Mailer, requireVerification bool) *AuthService {
	t.Helper()
	return NewAuthService(
		repository.NewUserRepository(db),
		mailer,
		security.NewVerificationSigner("test-secret", 24*time.Hour),
		time.Hour,
		requireVerification,
		logger.Nop(),
	)
}
