package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"codesathi/internal/apperr"
	"codesathi/internal/logger"
	"codesathi/internal/models"
	"codesathi/internal/repository"
	"codesathi/internal/security"
	"codesathi/internal/validation"
)

// SessionEventType names a session change
type SessionEventType string

const (
	EventSignedIn  SessionEventType = "SIGNED_IN"
	EventSignedOut SessionEventType = "SIGNED_OUT"
)

// SessionEvent is delivered to subscribers when a session starts or ends
type SessionEvent struct {
	Type      SessionEventType
	UserID    string
	SessionID string
}

// SessionListener receives session events synchronously, in emission order.
type SessionListener func(ctx context.Context, ev SessionEvent)

// SignUpResult is either a live session or a pending email verification
type SignUpResult struct {
	User                *models.User
	Session             *models.Session
	VerificationPending bool
}

// AuthService is the identity and session provider
type AuthService struct {
	users               *repository.UserRepository
	mailer              Mailer
	verifier            *security.VerificationSigner
	sessionDuration     time.Duration
	requireVerification bool
	log                 *logger.Logger

	mu        sync.Mutex
	listeners map[int]SessionListener
	nextID    int
}

// NewAuthService creates a new auth service. Email verification is only
// required when it is requested and the mailer can actually deliver.
func NewAuthService(users *repository.UserRepository, mailer Mailer, verifier *security.VerificationSigner, sessionDuration time.Duration, requireVerification bool, log *logger.Logger) *AuthService {
	return &AuthService{
		users:               users,
		mailer:              mailer,
		verifier:            verifier,
		sessionDuration:     sessionDuration,
		requireVerification: requireVerification && mailer != nil && mailer.IsEnabled(),
		log:                 log.With("component", "auth"),
		listeners:           make(map[int]SessionListener),
	}
}

// Subscribe registers fn for session events and returns a function that
// removes it.
func (s *AuthService) Subscribe(fn SessionListener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *AuthService) emit(ctx context.Context, ev SessionEvent) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]SessionListener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ctx, ev)
	}
}

// SignUp creates an account. onCreated, when set, runs after the user row
// exists and before any session is started. A failure after the row is
// written removes it again so the same email can retry. Signing up again
// with an email that was never confirmed replaces the password and sends a
// fresh code.
func (s *AuthService) SignUp(ctx context.Context, email, password string, onCreated func(context.Context, *models.User) error) (*SignUpResult, error) {
	const op = "signUp"
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	if existing != nil && !s.awaitingVerification(existing) {
		return nil, apperr.Auth(op, apperr.CodeEmailTaken, "An account with this email already exists.")
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}

	user := existing
	created := false
	if user != nil {
		if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
			return nil, apperr.Wrap(op, err)
		}
		user.PasswordHash = passwordHash
		s.log.Info("unconfirmed user signed up again", "userId", user.ID)
	} else {
		user, err = s.users.CreateUser(ctx, email, passwordHash, !s.requireVerification)
		if err != nil {
			return nil, apperr.Wrap(op, err)
		}
		created = true
		s.log.Info("user signed up", "userId", user.ID, "verificationPending", s.requireVerification)
	}

	result, err := s.finishSignUp(ctx, op, user, onCreated)
	if err != nil {
		if created {
			s.discardUser(ctx, user.ID)
		}
		return nil, err
	}
	return result, nil
}

func (s *AuthService) finishSignUp(ctx context.Context, op string, user *models.User, onCreated func(context.Context, *models.User) error) (*SignUpResult, error) {
	if onCreated != nil {
		if err := onCreated(ctx, user); err != nil {
			return nil, err
		}
	}

	if s.requireVerification {
		code, err := s.verifier.Issue(user.ID, user.Email)
		if err != nil {
			return nil, apperr.Wrap(op, err)
		}
		if err := s.mailer.SendVerificationEmail(ctx, user.Email, code); err != nil {
			return nil, apperr.Wrap(op, err)
		}
		return &SignUpResult{User: user, VerificationPending: true}, nil
	}

	session, err := s.startSession(ctx, op, user)
	if err != nil {
		return nil, err
	}
	return &SignUpResult{User: user, Session: session}, nil
}

// awaitingVerification reports whether u is a password account that never
// confirmed its email.
func (s *AuthService) awaitingVerification(u *models.User) bool {
	return s.requireVerification && !u.EmailVerified && u.OAuthProvider == ""
}

func (s *AuthService) discardUser(ctx context.Context, userID string) {
	if err := s.users.DeleteUser(context.WithoutCancel(ctx), userID); err != nil {
		s.log.Error("failed to remove half-created user", "userId", userID, "error", err)
		return
	}
	s.log.Warn("sign-up rolled back", "userId", userID)
}

// SignIn authenticates with email and password and starts a session
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	const op = "signIn"
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, nil, apperr.Wrap(op, err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, apperr.Auth(op, apperr.CodeInvalidCredentials, "Invalid login credentials")
	}
	if !user.EmailVerified {
		return nil, nil, apperr.Auth(op, apperr.CodeEmailNotConfirmed, "Email not confirmed")
	}

	session, err := s.startSession(ctx, op, user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// SignOut ends a session. Unknown sessions are ignored.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	const op = "signOut"
	session, err := s.users.GetSession(ctx, sessionID)
	if err != nil {
		return apperr.Wrap(op, err)
	}
	if session == nil {
		return nil
	}
	if err := s.users.DeleteSession(ctx, sessionID); err != nil {
		return apperr.Wrap(op, err)
	}
	s.emit(ctx, SessionEvent{Type: EventSignedOut, UserID: session.UserID, SessionID: sessionID})
	return nil
}

// CurrentSession returns the live session and its user
func (s *AuthService) CurrentSession(ctx context.Context, sessionID string) (*models.Session, *models.User, error) {
	const op = "getSession"
	if sessionID == "" {
		return nil, nil, apperr.Auth(op, apperr.CodeSessionNotFound, "Not signed in")
	}
	session, err := s.users.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, apperr.Wrap(op, err)
	}
	if session == nil {
		return nil, nil, apperr.Auth(op, apperr.CodeSessionNotFound, "Not signed in")
	}
	if session.IsExpired() {
		if err := s.users.DeleteSession(ctx, sessionID); err != nil {
			s.log.Warn("failed to delete expired session", "error", err)
		}
		return nil, nil, apperr.Auth(op, apperr.CodeSessionExpired, "Your session has expired. Please sign in again.")
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, apperr.Wrap(op, err)
	}
	if user == nil {
		return nil, nil, apperr.Auth(op, apperr.CodeSessionNotFound, "Not signed in")
	}
	return session, user, nil
}

// ExchangeVerificationCode confirms the email behind code and starts a session
func (s *AuthService) ExchangeVerificationCode(ctx context.Context, code string) (*models.Session, *models.User, error) {
	const op = "exchangeCode"
	userID, _, err := s.verifier.Verify(code)
	if err != nil {
		return nil, nil, apperr.Auth(op, apperr.CodeInvalidVerificationCode, "This confirmation link is invalid or has expired.")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, apperr.Wrap(op, err)
	}
	if user == nil {
		return nil, nil, apperr.Auth(op, apperr.CodeInvalidVerificationCode, "This confirmation link is invalid or has expired.")
	}

	if !user.EmailVerified {
		if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
			return nil, nil, apperr.Wrap(op, err)
		}
		user.EmailVerified = true
		if s.mailer != nil {
			if err := s.mailer.SendWelcomeEmail(ctx, user.Email, displayNameFromEmail(user.Email)); err != nil {
				s.log.Warn("welcome email failed", "userId", user.ID, "error", err)
			}
		}
	}

	session, err := s.startSession(ctx, op, user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// OAuthLogin authenticates or creates a user using an OAuth provider
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email string) (*models.Session, *models.User, error) {
	const op = "oauthLogin"
	if provider == "" || subject == "" {
		return nil, nil, apperr.Validation(op, "provider", "missing oauth provider information")
	}
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetUserByOAuth(ctx, provider, subject)
	if err != nil {
		return nil, nil, apperr.Wrap(op, err)
	}

	if user == nil {
		existing, err := s.users.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, nil, apperr.Wrap(op, err)
		}
		if existing != nil {
			if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
				return nil, nil, apperr.Auth(op, apperr.CodeEmailTaken, "This email is linked to another sign-in method.")
			}
			user = existing
		} else {
			// OAuth-only accounts get an unusable password
			randomHash, err := security.HashPassword(security.GenerateSessionID())
			if err != nil {
				return nil, nil, apperr.Wrap(op, err)
			}
			user, err = s.users.CreateUser(ctx, email, randomHash, true)
			if err != nil {
				return nil, nil, apperr.Wrap(op, err)
			}
		}
		if err := s.users.LinkOAuthProvider(ctx, user.ID, provider, subject); err != nil {
			return nil, nil, apperr.Wrap(op, err)
		}
		user.OAuthProvider = provider
		user.OAuthSubject = subject
		user.EmailVerified = true
	}

	session, err := s.startSession(ctx, op, user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.users.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, apperr.Wrap("cleanupSessions", err)
	}
	return n, nil
}

func (s *AuthService) startSession(ctx context.Context, op string, user *models.User) (*models.Session, error) {
	session, err := s.users.CreateSession(ctx, security.GenerateSessionID(), user.ID, time.Now().Add(s.sessionDuration))
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	s.emit(ctx, SessionEvent{Type: EventSignedIn, UserID: user.ID, SessionID: session.ID})
	return session, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func displayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
