package autolocale

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures a RateLimiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Sustained rate; 600 when unset
	BurstSize         int // Requests allowed at once; RequestsPerMinute when unset
}

// RateLimiter paces calls to the translation service.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter that starts with a full burst.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 600
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = rpm
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60), burst)}
}

// Wait blocks until a request may proceed. It fails early when ctx's
// deadline comes before the next slot.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// TryAcquire takes a slot if one is free right now.
func (r *RateLimiter) TryAcquire() bool {
	return r.limiter.Allow()
}

// Available returns the slots currently free.
func (r *RateLimiter) Available() float64 {
	return r.limiter.Tokens()
}

// RateLimitedProvider paces a Provider.
type RateLimitedProvider struct {
	provider Provider
	limiter  *RateLimiter
}

// NewRateLimitedProvider wraps provider with a limiter built from cfg.
func NewRateLimitedProvider(provider Provider, cfg RateLimitConfig) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  NewRateLimiter(cfg),
	}
}

// Translate implements Provider. Running out of patience while waiting for
// a slot is not retryable.
func (p *RateLimitedProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", &ProviderError{
			Message: "rate limit wait cancelled",
			Cause:   err,
		}
	}
	return p.provider.Translate(ctx, req)
}

// Limiter returns the underlying limiter.
func (p *RateLimitedProvider) Limiter() *RateLimiter {
	return p.limiter
}
