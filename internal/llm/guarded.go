package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// GuardedClient wraps a provider client with a per-call timeout and a shared
// request rate limit. Provider SDKs guarantee neither.
type GuardedClient struct {
	inner   Client
	timeout time.Duration
	limiter *rate.Limiter
}

// NewGuardedClient wraps inner. A zero timeout leaves calls bounded only by the
// caller's context; a zero rate disables throttling.
func NewGuardedClient(inner Client, timeout time.Duration, requestsPerSecond float64, burst int) *GuardedClient {
	g := &GuardedClient{inner: inner, timeout: timeout}
	if requestsPerSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
	return g
}

// GenerateContent implements Client
func (g *GuardedClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier, maxOutputTokens int) (string, error) {
	ctx, cancel, err := g.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()
	return g.inner.GenerateContent(ctx, prompt, tier, maxOutputTokens)
}

// GenerateJSON implements Client
func (g *GuardedClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier, maxOutputTokens int) (string, error) {
	ctx, cancel, err := g.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()
	return g.inner.GenerateJSON(ctx, prompt, tier, maxOutputTokens)
}

// GetModel implements Client
func (g *GuardedClient) GetModel(tier ModelTier) string {
	return g.inner.GetModel(tier)
}

// Close implements Client
func (g *GuardedClient) Close() error {
	return g.inner.Close()
}

// acquire applies the timeout first so that waiting for a rate token counts
// against the call's budget.
func (g *GuardedClient) acquire(ctx context.Context) (context.Context, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if g.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			cancel()
			return nil, nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	return ctx, cancel, nil
}
