package llm

import (
	"context"
	"time"

	"codesathi/internal/logger"
)

// instrumented bounds each request with a deadline and logs its outcome.
// Message contents never reach the log.
type instrumented struct {
	inner   Provider
	log     *logger.Logger
	timeout time.Duration
}

// Instrument wraps p with request logging and, for a positive timeout, a
// per-request deadline.
func Instrument(p Provider, log *logger.Logger, timeout time.Duration) Provider {
	return &instrumented{inner: p, log: log.With("component", "llm", "provider", p.Name()), timeout: timeout}
}

func (i *instrumented) Name() string { return i.inner.Name() }

func (i *instrumented) Generate(ctx context.Context, req Request) (*Response, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := i.inner.Generate(ctx, req)
	purpose := req.Purpose
	if purpose == "" {
		purpose = "unknown"
	}
	fields := []interface{}{
		"purpose", purpose,
		"turns", len(req.Messages),
		"latencyMs", time.Since(start).Milliseconds(),
	}
	if err != nil {
		i.log.Warn("model request failed", append(fields, "kind", KindOf(err).String(), "error", err)...)
		return nil, err
	}
	i.log.Debug("model request",
		append(fields, "inputTokens", resp.InputTokens, "outputTokens", resp.OutputTokens, "truncated", resp.Truncated)...)
	return resp, nil
}
