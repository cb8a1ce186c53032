package autolocale

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Attempts after the first one
	BaseDelay  time.Duration // Delay before the first retry
	MaxDelay   time.Duration // Upper bound for any single delay
}

// DefaultRetryConfig keeps retries short: a visitor is waiting on the page,
// and the original text is an acceptable answer.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   2 * time.Second,
	}
}

func (cfg RetryConfig) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if cfg.BaseDelay > 0 {
		b.InitialInterval = cfg.BaseDelay
	}
	if cfg.MaxDelay > 0 {
		b.MaxInterval = cfg.MaxDelay
	}
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	return b
}

// WithRetry runs fn until it succeeds, fails with an error IsRetryable
// rejects, runs out of attempts, or ctx is done.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	tries := cfg.MaxRetries + 1
	if tries < 1 {
		tries = 1
	}

	return backoff.Retry(ctx, func() (T, error) {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, backoff.Permanent(err)
		}
		result, err := fn()
		if err != nil && !IsRetryable(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	},
		backoff.WithBackOff(cfg.backOff()),
		backoff.WithMaxTries(uint(tries)),
		backoff.WithMaxElapsedTime(0),
	)
}

// IsRetryable reports whether err is a ProviderError marked retryable.
// Malformed responses and context errors are never retried.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	return false
}

// RetryableProvider retries transient provider failures.
type RetryableProvider struct {
	provider Provider
	config   RetryConfig
}

// NewRetryableProvider wraps provider with cfg.
func NewRetryableProvider(provider Provider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{
		provider: provider,
		config:   cfg,
	}
}

// Translate implements Provider.
func (p *RetryableProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	return WithRetry(ctx, p.config, func() (string, error) {
		return p.provider.Translate(ctx, req)
	})
}
