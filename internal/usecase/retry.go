package usecase

import (
	"context"
	"time"
)

// RetryOption configures Retry's attempt count and starting backoff delay.
type RetryOption func(*retryConfig)

type retryConfig struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// WithMaxAttempts overrides the default of 3 attempts.
func WithMaxAttempts(n int) RetryOption {
	return func(c *retryConfig) { c.maxAttempts = n }
}

// WithBaseDelay overrides the default 200ms starting backoff.
func WithBaseDelay(d time.Duration) RetryOption {
	return func(c *retryConfig) { c.baseDelay = d }
}

// Retry re-invokes fn up to maxAttempts times with exponential backoff
// capped at 5s, per spec.md §4.4.3. It does not bypass the lock or the
// atomic predicate inside fn; it only re-drives the same call on failure.
// A non-nil ctx.Err() aborts the retry loop immediately.
func Retry(ctx context.Context, fn func(ctx context.Context) error, opts ...RetryOption) error {
	cfg := retryConfig{
		maxAttempts: 3,
		baseDelay:   200 * time.Millisecond,
		maxDelay:    5 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var lastErr error
	delay := cfg.baseDelay
	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > cfg.maxDelay {
			delay = cfg.maxDelay
		}
	}
	return lastErr
}
