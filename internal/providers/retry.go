package providers

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"clinicrag/internal/coreerr"
)

// retryConfig mirrors §4.1's fixed policy: 3 attempts, base 1s, cap 10s,
// exponential backoff with jitter, applied only to RateLimited and
// ProviderUnavailable errors.
type retryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func defaultRetryConfig() retryConfig {
	return retryConfig{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}
}

// withRetry runs fn, retrying on transient errors per retryConfig. Jitter
// comes from math/rand's package-level source rather than a crypto RNG.
func withRetry(ctx context.Context, fn func(context.Context) error) error {
	cfg := defaultRetryConfig()
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}
		delay := cfg.BaseDelay * (1 << attempt)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
		jitter := time.Duration(rand.Int63n(int64(delay) / 4))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay + jitter):
		}
	}
	return lastErr
}

func isTransient(err error) bool {
	kind := coreerr.KindOf(err)
	if kind == coreerr.RateLimited {
		return true
	}
	if kind == coreerr.ProviderUnavailable {
		var ce *coreerr.Error
		if errors.As(err, &ce) {
			return true
		}
	}
	return false
}
