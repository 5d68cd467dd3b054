package llm

import (
	"context"
	"fmt"

	"codesathi/internal/logger"
)

// NewProvider builds the configured backend wrapped by Instrument. An empty
// provider returns (nil, nil) and the tutor runs on fallbacks.
func NewProvider(ctx context.Context, cfg Config, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend := cfg.Backends[cfg.Provider]
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case "":
		return nil, nil
	case "mock":
		p = NewMockProvider()
	case "gemini":
		p, err = NewGemini(ctx, backend)
	case "openai":
		p, err = NewOpenAI(backend)
	case "anthropic":
		p, err = NewAnthropic(backend)
	case "openrouter":
		p, err = NewOpenRouter(backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s provider: %w", cfg.Provider, err)
	}
	return Instrument(p, log, cfg.Timeout), nil
}
