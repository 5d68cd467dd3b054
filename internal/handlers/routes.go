package handlers

import (
	"net/http"

	"codesathi/internal/security"
)

// Routes bundles the handlers served by the API
type Routes struct {
	Middleware   *Middleware
	Auth         *AuthHandler
	API          *APIHandler
	Player       *PlayerHandler
	Tutor        *TutorHandler
	Health       *HealthHandler
	AuthLimiter  *security.RateLimiter
	TutorLimiter *security.RateLimiter
}

// Mux registers every route on a new ServeMux
func (rt Routes) Mux() *http.ServeMux {
	m := rt.Middleware
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.Health.Health)

	// Public auth routes
	mux.HandleFunc("POST /auth/signup", m.RateLimit(rt.AuthLimiter, ClientIPKey, rt.Auth.SignUp))
	mux.HandleFunc("POST /auth/signin", m.RateLimit(rt.AuthLimiter, ClientIPKey, rt.Auth.SignIn))
	mux.HandleFunc("POST /auth/signout", rt.Auth.SignOut)
	mux.HandleFunc("GET /auth/session", m.RequireAuth(rt.Auth.Session))
	mux.HandleFunc("GET /auth/verify", rt.Auth.Verify)
	mux.HandleFunc("GET /auth/providers", rt.Auth.Providers)
	mux.HandleFunc("GET /auth/{provider}/start", rt.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", rt.Auth.OAuthCallback)

	// Learner state
	mux.HandleFunc("GET /api/state", m.RequireAuth(rt.API.State))
	mux.HandleFunc("GET /api/profile", m.RequireAuth(rt.API.GetProfile))
	mux.HandleFunc("PUT /api/profile", m.RequireAuth(rt.API.PutProfile))
	mux.HandleFunc("GET /api/recommendation", m.RequireAuth(rt.API.Recommendation))
	mux.HandleFunc("GET /api/progress", m.RequireAuth(rt.API.Progress))
	mux.HandleFunc("PUT /api/progress/track", m.RequireAuth(rt.API.UpdateTrack))
	mux.HandleFunc("GET /api/badges", m.RequireAuth(rt.API.Badges))
	mux.HandleFunc("GET /api/projects", rt.API.Projects)

	// Lessons
	mux.HandleFunc("GET /api/lessons", m.RequireAuth(rt.API.Lessons))
	mux.HandleFunc("GET /api/lessons/{id}", m.RequireAuth(rt.API.Lesson))
	mux.HandleFunc("POST /api/lessons/{id}/open", m.RequireAuth(rt.Player.Open))
	mux.HandleFunc("POST /api/lessons/{id}/start", m.RequireAuth(rt.Player.Start))
	mux.HandleFunc("POST /api/lessons/{id}/next", m.RequireAuth(rt.Player.Next))
	mux.HandleFunc("POST /api/lessons/{id}/back", m.RequireAuth(rt.Player.Back))
	mux.HandleFunc("POST /api/lessons/{id}/run", m.RequireAuth(rt.Player.Run))
	mux.HandleFunc("POST /api/lessons/{id}/reveal", m.RequireAuth(rt.Player.Reveal))
	mux.HandleFunc("POST /api/lessons/{id}/continue", m.RequireAuth(rt.Player.Continue))

	// Tutor, limited per account
	mux.HandleFunc("POST /api/tutor/chat", m.RequireAuth(m.RateLimit(rt.TutorLimiter, UserKey, rt.Tutor.Chat)))
	mux.HandleFunc("POST /api/tutor/hint", m.RequireAuth(m.RateLimit(rt.TutorLimiter, UserKey, rt.Tutor.Hint)))
	mux.HandleFunc("POST /api/tutor/welcome", m.RequireAuth(m.RateLimit(rt.TutorLimiter, UserKey, rt.Tutor.Welcome)))

	return mux
}
