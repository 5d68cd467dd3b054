package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabaseURL     string
	DatabasePath    string
	SessionDuration time.Duration
	LogMode         string

	// Word list for display-name filtering; empty uses the built-in default
	BlockedWordsURL string

	// Secrets
	CSRFSecret         string
	VerificationSecret string

	// Public URL used in emails and OAuth redirects
	AppBaseURL               string
	RequireEmailVerification bool

	// Key-value storage backend: "sql" or "redis"
	KVBackend string
	RedisAddr string

	// Amazon SES
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	EmailDebug   bool

	// OAuth
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	OAuthRedirectBaseURL string

	// Rate limiting for sign-in and sign-up
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// Rate limiting for tutor requests, per account
	TutorRateLimit  int
	TutorRateWindow time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:               getEnv("PORT", "8080"),
		DatabaseType:             strings.ToLower(getEnv("DATABASE_TYPE", "sqlite")),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		DatabasePath:             getEnv("DB_PATH", "./codesathi.db"),
		SessionDuration:          getEnvDuration("SESSION_DURATION", 7*24*time.Hour),
		LogMode:                  getEnv("LOG_MODE", "dev"),
		BlockedWordsURL:          getEnv("BLOCKED_WORDS_URL", ""),
		CSRFSecret:               getEnv("CSRF_SECRET", "change-me-csrf"),
		VerificationSecret:       getEnv("VERIFICATION_SECRET", "change-me-verification"),
		AppBaseURL:               strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),
		RequireEmailVerification: getEnvBool("REQUIRE_EMAIL_VERIFICATION", true),
		KVBackend:                strings.ToLower(getEnv("KV_BACKEND", "sql")),
		RedisAddr:                getEnv("REDIS_ADDR", "localhost:6379"),
		AWSRegion:                getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:             getEnv("SES_FROM_EMAIL", ""),
		SESFromName:              getEnv("SES_FROM_NAME", "CodeSathi"),
		EmailDebug:               getEnvBool("EMAIL_DEBUG", false),
		GoogleClientID:           getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:       getEnv("GOOGLE_CLIENT_SECRET", ""),
		FacebookClientID:         getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret:     getEnv("FACEBOOK_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL:     getEnv("OAUTH_REDIRECT_BASE_URL", ""),
		AuthRateLimit:            getEnvInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow:           getEnvDuration("AUTH_RATE_WINDOW", time.Minute),
		TutorRateLimit:           getEnvInt("TUTOR_RATE_LIMIT", 20),
		TutorRateWindow:          getEnvDuration("TUTOR_RATE_WINDOW", time.Minute),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
