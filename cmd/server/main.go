package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"codesathi/internal/appstate"
	"codesathi/internal/config"
	"codesathi/internal/database"
	"codesathi/internal/handlers"
	"codesathi/internal/kvstore"
	"codesathi/internal/lessons"
	"codesathi/internal/llm"
	"codesathi/internal/logger"
	"codesathi/internal/repository"
	"codesathi/internal/security"
	"codesathi/internal/service"
	"codesathi/internal/tutor"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logr, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logr.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *logger.Logger) error {
	status := handlers.NewStartupStatus(
		handlers.StepDatabase,
		handlers.StepMigrations,
		handlers.StepBlocklist,
		handlers.StepServices,
		handlers.StepReady,
	)

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logr.Info("database connection established", "type", cfg.DatabaseType)
	status.CompleteStep(handlers.StepDatabase)

	if err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logr.Info("migrations completed")
	status.CompleteStep(handlers.StepMigrations)

	blockedURL := cfg.BlockedWordsURL
	if blockedURL == "" {
		blockedURL = database.DefaultBlockedWordsURL
	}
	if n, err := db.SeedBlockedWords(ctx, blockedURL); err != nil {
		logr.Warn("failed to seed blocked words", "error", err)
	} else if n > 0 {
		logr.Info("blocked words seeded", "count", n)
	}
	status.CompleteStep(handlers.StepBlocklist)

	kv, err := kvstore.New(ctx, cfg, db)
	if err != nil {
		return fmt.Errorf("failed to initialize kv store: %w", err)
	}
	if c, ok := kv.(io.Closer); ok {
		defer c.Close()
	}

	emailService, err := service.NewEmailService(ctx, logr, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.EmailDebug)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}

	// Initialize repositories and services
	catalog := lessons.Default()
	userRepo := repository.NewUserRepository(db)
	verifier := security.NewVerificationSigner(cfg.VerificationSecret, 24*time.Hour)
	authService := service.NewAuthService(userRepo, emailService, verifier, cfg.SessionDuration, cfg.RequireEmailVerification, logr)
	profileService := service.NewProfileService(repository.NewProfileRepository(db), kv, db, logr)
	progressService := service.NewProgressService(repository.NewProgressRepository(db), catalog, logr)

	container := appstate.New(profileService, progressService, kv, logr)
	detach := container.Attach(authService)
	defer detach()

	provider, err := llm.NewProvider(ctx, llm.ConfigFromEnv(), logr)
	if err != nil {
		logr.Warn("tutor model provider unavailable, using fallbacks", "error", err)
		provider = nil
	}
	sathi := tutor.New(provider, logr)
	if !sathi.Available() {
		logr.Info("tutor running without a model provider")
	}
	status.CompleteStep(handlers.StepServices)

	csrf := security.NewCSRFGenerator(cfg.CSRFSecret)
	authLimiter := security.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	tutorLimiter := security.NewRateLimiter(cfg.TutorRateLimit, cfg.TutorRateWindow)
	go authLimiter.RunCleanup(ctx, 5*time.Minute)
	go tutorLimiter.RunCleanup(ctx, 5*time.Minute)

	playerHandler := handlers.NewPlayerHandler(catalog, kv, progressService, container, logr)
	detachPlayers := playerHandler.Attach(authService)
	defer detachPlayers()
	go playerHandler.RunCleanup(ctx, 10*time.Minute, 30*time.Minute)

	routes := handlers.Routes{
		Middleware:   handlers.NewMiddleware(authService, csrf, logr),
		Auth:         handlers.NewAuthHandler(authService, profileService, csrf, handlers.NewOAuthProviders(cfg), cfg.OAuthRedirectBaseURL, cfg.AppBaseURL, logr),
		API:          handlers.NewAPIHandler(profileService, progressService, container, catalog, logr),
		Player:       playerHandler,
		Tutor:        handlers.NewTutorHandler(sathi, container, logr),
		Health:       handlers.NewHealthHandler(status, db),
		AuthLimiter:  authLimiter,
		TutorLimiter: tutorLimiter,
	}

	// Wrap with logging and panic recovery
	handler := handlers.Logging(logr)(handlers.Recover(logr)(routes.Mux()))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(ctx, authService, logr)

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	status.MarkReady()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(ctx context.Context, authService *service.AuthService, logr *logger.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authService.CleanupExpiredSessions(ctx)
			if err != nil {
				logr.Error("failed to clean up expired sessions", "error", err)
				continue
			}
			logr.Info("expired sessions cleaned up", "count", n)
		}
	}
}
