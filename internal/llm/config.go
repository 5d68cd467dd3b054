package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// backends lists the supported providers in auto-detect order.
var backends = []string{"gemini", "openai", "anthropic", "openrouter"}

// ProviderConfig is what every backend needs to be reached.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

func (c ProviderConfig) require(name string) error {
	if c.APIKey == "" {
		return fmt.Errorf("%s: %s is required", name, envKey(name, "API_KEY"))
	}
	if c.Model == "" {
		return fmt.Errorf("%s: %s is required", name, envKey(name, "MODEL"))
	}
	return nil
}

// Config selects and configures the tutor's model backend.
type Config struct {
	// Provider is one of gemini, openai, anthropic, openrouter or mock.
	// Empty disables the tutor's model and it answers with fallbacks.
	Provider string

	Backends map[string]ProviderConfig

	// Timeout bounds a single request.
	Timeout time.Duration
}

// DefaultConfig returns small, fast models suited to short tutoring turns.
func DefaultConfig() Config {
	return Config{
		Backends: map[string]ProviderConfig{
			"gemini":     {Model: "gemini-2.0-flash"},
			"openai":     {Model: "gpt-4o-mini"},
			"anthropic":  {Model: "claude-haiku-4-5"},
			"openrouter": {Model: "google/gemini-2.0-flash-001", BaseURL: openRouterBaseURL},
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv reads SATHI_LLM_<BACKEND>_API_KEY, _MODEL and _BASE_URL for
// every backend, plus SATHI_LLM_PROVIDER and SATHI_LLM_TIMEOUT. Without
// SATHI_LLM_PROVIDER the first backend with a key wins.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for _, name := range backends {
		b := cfg.Backends[name]
		setFromEnv(&b.APIKey, envKey(name, "API_KEY"))
		setFromEnv(&b.Model, envKey(name, "MODEL"))
		setFromEnv(&b.BaseURL, envKey(name, "BASE_URL"))
		cfg.Backends[name] = b
	}

	if t := os.Getenv("SATHI_LLM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if p := os.Getenv("SATHI_LLM_PROVIDER"); p != "" {
		cfg.Provider = strings.ToLower(p)
		return cfg
	}
	for _, name := range backends {
		if cfg.Backends[name].APIKey != "" {
			cfg.Provider = name
			break
		}
	}
	return cfg
}

// Validate checks that the selected backend is known and has credentials.
func (c Config) Validate() error {
	switch c.Provider {
	case "", "mock":
		return nil
	}
	for _, name := range backends {
		if name == c.Provider {
			return c.Backends[name].require(name)
		}
	}
	return fmt.Errorf("unknown model provider %q", c.Provider)
}

func envKey(backend, field string) string {
	return "SATHI_LLM_" + strings.ToUpper(backend) + "_" + field
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
