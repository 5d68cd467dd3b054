package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codesathi/internal/apperr"
	"codesathi/internal/models"
	"codesathi/internal/repository"
)

func TestSignUpWithoutVerification(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	auth := newTestAuthService(t, db, newFakeMailer(false), true)

	var events []SessionEvent
	auth.Subscribe(func(_ context.Context, ev SessionEvent) { events = append(events, ev) })

	created := ""
	res, err := auth.SignUp(ctx, " Kid@Example.com ", "secret1", func(_ context.Context, u *models.User) error {
		created = u.ID
		assert.Empty(t, events, "onCreated runs before the session starts")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, res.VerificationPending, "a disabled mailer cannot require verification")
	require.NotNil(t, res.Session)
	assert.Equal(t, "kid@example.com", res.User.Email)
	assert.Equal(t, res.User.ID, created)

	require.Len(t, events, 1)
	assert.Equal(t, SessionEvent{Type: EventSignedIn, UserID: res.User.ID, SessionID: res.Session.ID}, events[0])
}

func TestSignUpVerificationFlow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mailer := newFakeMailer(true)
	auth := newTestAuthService(t, db, mailer, true)

	var events []SessionEvent
	auth.Subscribe(func(_ context.Context, ev SessionEvent) { events = append(events, ev) })

	res, err := auth.SignUp(ctx, "kid@example.com", "secret1", nil)
	require.NoError(t, err)
	assert.True(t, res.VerificationPending)
	assert.Nil(t, res.Session)
	assert.Empty(t, events)

	_, _, err = auth.SignIn(ctx, "kid@example.com", "secret1")
	assert.Equal(t, apperr.CodeEmailNotConfirmed, apperr.AuthCode(err))

	_, _, err = auth.ExchangeVerificationCode(ctx, "bogus")
	assert.Equal(t, apperr.CodeInvalidVerificationCode, apperr.AuthCode(err))

	code := mailer.codes["kid@example.com"]
	require.NotEmpty(t, code)
	session, user, err := auth.ExchangeVerificationCode(ctx, code)
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)
	assert.Equal(t, []string{"kid@example.com"}, mailer.welcomed)
	require.Len(t, events, 1)
	assert.Equal(t, session.ID, events[0].SessionID)

	_, _, err = auth.SignIn(ctx, "kid@example.com", "secret1")
	require.NoError(t, err)
}

func TestSignUpRollsBackWhenVerificationMailFails(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mailer := newFakeMailer(true)
	mailer.sendErr = errors.New("ses down")
	auth := newTestAuthService(t, db, mailer, true)
	users := repository.NewUserRepository(db)

	_, err := auth.SignUp(ctx, "kid@example.com", "secret1", nil)
	require.Error(t, err)

	user, err := users.GetUserByEmail(ctx, "kid@example.com")
	require.NoError(t, err)
	assert.Nil(t, user, "a failed sign-up leaves no account behind")

	mailer.sendErr = nil
	res, err := auth.SignUp(ctx, "kid@example.com", "secret1", nil)
	require.NoError(t, err)
	assert.True(t, res.VerificationPending)
	assert.NotEmpty(t, mailer.codes["kid@example.com"])
}

func TestSignUpRollsBackWhenOnCreatedFails(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	auth := newTestAuthService(t, db, nil, false)
	users := repository.NewUserRepository(db)

	_, err := auth.SignUp(ctx, "kid@example.com", "secret1", func(context.Context, *models.User) error {
		return errors.New("kv unavailable")
	})
	require.Error(t, err)

	user, err := users.GetUserByEmail(ctx, "kid@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = auth.SignUp(ctx, "kid@example.com", "secret1", nil)
	require.NoError(t, err)
}

func TestSignUpAgainBeforeConfirming(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mailer := newFakeMailer(true)
	auth := newTestAuthService(t, db, mailer, true)

	first, err := auth.SignUp(ctx, "kid@example.com", "secret1", nil)
	require.NoError(t, err)
	firstCode := mailer.codes["kid@example.com"]

	staged := ""
	second, err := auth.SignUp(ctx, "kid@example.com", "secret2", func(_ context.Context, u *models.User) error {
		staged = u.ID
		return nil
	})
	require.NoError(t, err)
	assert.True(t, second.VerificationPending)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, first.User.ID, staged)
	require.NotEmpty(t, mailer.codes["kid@example.com"])

	// the first code still names the same user, so either link confirms
	_, _, err = auth.ExchangeVerificationCode(ctx, firstCode)
	require.NoError(t, err)

	_, _, err = auth.SignIn(ctx, "kid@example.com", "secret1")
	assert.Equal(t, apperr.CodeInvalidCredentials, apperr.AuthCode(err))
	_, _, err = auth.SignIn(ctx, "kid@example.com", "secret2")
	require.NoError(t, err)

	_, err = auth.SignUp(ctx, "kid@example.com", "secret3", nil)
	assert.Equal(t, apperr.CodeEmailTaken, apperr.AuthCode(err), "confirmed accounts cannot be signed up again")
}

func TestSignInErrors(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	auth := newTestAuthService(t, db, nil, false)

	_, err := auth.SignUp(ctx, "kid@example.com", "secret1", nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantCode string
	}{
		{"wrong password", "kid@example.com", "nope123", apperr.CodeInvalidCredentials},
		{"unknown email", "ghost@example.com", "secret1", apperr.CodeInvalidCredentials},
		{"correct", "KID@example.com", "secret1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, _, err := auth.SignIn(ctx, tt.email, tt.password)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.NotNil(t, session)
				return
			}
			assert.Equal(t, tt.wantCode, apperr.AuthCode(err))
		})
	}
}

func TestSignUpRejectsDuplicatesAndBadInput(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	auth := newTestAuthService(t, db, nil, false)

	_, err := auth.SignUp(ctx, "kid@example.com", "secret1", nil)
	require.NoError(t, err)

	_, err = auth.SignUp(ctx, "kid@example.com", "secret2", nil)
	assert.Equal(t, apperr.CodeEmailTaken, apperr.AuthCode(err))

	_, err = auth.SignUp(ctx, "not-an-email", "secret1", nil)
	assert.True(t, apperr.IsValidation(err))

	_, err = auth.SignUp(ctx, "other@example.com", "abc", nil)
	assert.True(t, apperr.IsValidation(err))
}

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	auth := newTestAuthService(t, db, nil, false)

	var events []SessionEventType
	unsubscribe := auth.Subscribe(func(_ context.Context, ev SessionEvent) { events = append(events, ev.Type) })

	res, err := auth.SignUp(ctx, "kid@example.com", "secret1", nil)
	require.NoError(t, err)

	session, user, err := auth.CurrentSession(ctx, res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, session.ID)
	assert.Equal(t, res.User.ID, user.ID)

	require.NoError(t, auth.SignOut(ctx, res.Session.ID))
	_, _, err = auth.CurrentSession(ctx, res.Session.ID)
	assert.Equal(t, apperr.CodeSessionNotFound, apperr.AuthCode(err))

	// Signing out twice is harmless and emits nothing
	require.NoError(t, auth.SignOut(ctx, res.Session.ID))
	assert.Equal(t, []SessionEventType{EventSignedIn, EventSignedOut}, events)

	unsubscribe()
	_, _, err = auth.SignIn(ctx, "kid@example.com", "secret1")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestExpiredSession(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	auth := newTestAuthService(t, db, nil, false)
	users := repository.NewUserRepository(db)

	user, err := users.CreateUser(ctx, "kid@example.com", "x", true)
	require.NoError(t, err)
	_, err = users.CreateSession(ctx, "old", user.ID, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, _, err = auth.CurrentSession(ctx, "old")
	assert.Equal(t, apperr.CodeSessionExpired, apperr.AuthCode(err))

	n, err := auth.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "expired session was already removed on lookup")
}

func TestListenersRunInSubscriptionOrder(t *testing.T) {
	db := openTestDB(t)
	auth := newTestAuthService(t, db, nil, false)

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		auth.Subscribe(func(context.Context, SessionEvent) { order = append(order, i) })
	}
	_, err := auth.SignUp(context.Background(), "kid@example.com", "secret1", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestOAuthLogin(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	auth := newTestAuthService(t, db, nil, false)

	session, user, err := auth.OAuthLogin(ctx, "google", "g-1", "Kid@Example.com")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.True(t, user.EmailVerified)
	assert.Equal(t, "google", user.OAuthProvider)

	_, again, err := auth.OAuthLogin(ctx, "google", "g-1", "kid@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	_, _, err = auth.OAuthLogin(ctx, "facebook", "f-1", "kid@example.com")
	assert.Equal(t, apperr.CodeEmailTaken, apperr.AuthCode(err))

	_, _, err = auth.OAuthLogin(ctx, "", "", "kid@example.com")
	assert.True(t, apperr.IsValidation(err))
}
