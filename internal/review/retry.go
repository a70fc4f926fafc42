package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// MaxAttempts bounds every AI review: the first call plus one retry.
const MaxAttempts = 2

// RetryPolicy controls Retry.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy waits two seconds before the single retry.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: MaxAttempts, Backoff: 2 * time.Second}

// Retry calls fn until it succeeds or the policy's attempts run out, and
// reports how many attempts were made. Every call sees the same input; only
// the attempt number changes.
func Retry[T any](ctx context.Context, p RetryPolicy, logger *slog.Logger, fn func(ctx context.Context, attempt int) (T, error)) (T, int, error) {
	var zero T
	if logger == nil {
		logger = slog.Default()
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && p.Backoff > 0 {
			timer := time.NewTimer(p.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, attempt - 1, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-timer.C:
			}
		}

		v, err := fn(ctx, attempt)
		if err == nil {
			return v, attempt, nil
		}
		lastErr = err
		if attempt < attempts {
			logger.Warn("Attempt failed, retrying", "attempt", attempt, "maxAttempts", attempts, "error", err)
		}
		if ctx.Err() != nil {
			return zero, attempt, fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}
	return zero, attempts, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
