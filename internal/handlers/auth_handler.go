package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"codesathi/internal/logger"
	"codesathi/internal/models"
	"codesathi/internal/security"
	"codesathi/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	profiles             *service.ProfileService
	csrf                 *security.CSRFGenerator
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	appBaseURL           string
	log                  *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, profiles *service.ProfileService, csrf *security.CSRFGenerator, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL, appBaseURL string, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		profiles:             profiles,
		csrf:                 csrf,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		appBaseURL:           strings.TrimRight(appBaseURL, "/"),
		log:                  log.With("component", "auth-handler"),
	}
}

type credentialsRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Profile  *models.Profile `json:"profile,omitempty"`
}

// sessionResponse is returned whenever a session is live. Token is the
// session ID for clients that authenticate with a bearer header.
type sessionResponse struct {
	User                *models.User `json:"user"`
	Token               string       `json:"token,omitempty"`
	ExpiresAt           *time.Time   `json:"expiresAt,omitempty"`
	CSRFToken           string       `json:"csrfToken,omitempty"`
	VerificationPending bool         `json:"verificationPending"`
}

// SignUp creates an account. An onboarding profile sent along is checked
// up front and staged until the first sign-in.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	var onCreated func(context.Context, *models.User) error
	if req.Profile != nil {
		if err := h.profiles.Validate(r.Context(), *req.Profile); err != nil {
			respondWithAppError(w, h.log, err, ErrInternalServerError)
			return
		}
		profile := *req.Profile
		onCreated = func(ctx context.Context, u *models.User) error {
			return h.profiles.StagePending(ctx, u.ID, profile)
		}
	}

	res, err := h.authService.SignUp(r.Context(), req.Email, req.Password, onCreated)
	if err != nil {
		respondWithAppError(w, h.log, err, ErrInternalServerError)
		return
	}

	if res.VerificationPending {
		respondJSON(w, http.StatusCreated, sessionResponse{User: res.User, VerificationPending: true})
		return
	}
	h.respondWithSession(w, r, http.StatusCreated, res.Session, res.User)
}

// SignIn authenticates with email and password
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	session, user, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithAppError(w, h.log, err, ErrInternalServerError)
		return
	}
	h.respondWithSession(w, r, http.StatusOK, session, user)
}

// SignOut ends the current session, if any, and clears the cookie
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if sessionID, bearer := security.SessionFromRequest(r); sessionID != "" {
		if !bearer && !h.csrf.ValidateToken(sessionID, r.Header.Get(security.CSRFHeader)) {
			respondWithError(w, h.log, http.StatusForbidden, ErrForbiddenCSRF, "", nil)
			return
		}
		if err := h.authService.SignOut(r.Context(), sessionID); err != nil {
			respondWithAppError(w, h.log, err, ErrInternalServerError)
			return
		}
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	w.WriteHeader(http.StatusNoContent)
}

// Session returns the signed-in user and a fresh CSRF token
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	user := GetUserFromContext(r.Context())
	if session == nil || user == nil {
		respondWithError(w, h.log, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	token, err := h.csrf.GenerateToken(session.ID)
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "failed to generate csrf token", err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{User: user, ExpiresAt: &session.ExpiresAt, CSRFToken: token})
}

// Verify exchanges an emailed verification code for a session and sends
// the browser back to the app.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, h.log, http.StatusBadRequest, "Missing verification code", "", nil)
		return
	}

	session, _, err := h.authService.ExchangeVerificationCode(r.Context(), code)
	if err != nil {
		respondWithAppError(w, h.log, err, ErrInternalServerError)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, session.ID, session.ExpiresAt))
	http.Redirect(w, r, h.appBaseURL+"/", http.StatusSeeOther)
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, r *http.Request, status int, session *models.Session, user *models.User) {
	token, err := h.csrf.GenerateToken(session.ID)
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "failed to generate csrf token", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, session.ID, session.ExpiresAt))
	respondJSON(w, status, sessionResponse{
		User:      user,
		Token:     session.ID,
		ExpiresAt: &session.ExpiresAt,
		CSRFToken: token,
	})
}
