package orchestrator

import (
	"context"
	"math/rand"
	"time"

	"github.com/flowgentic/agentloop/core"
)

// RetryPolicy bounds retries of transient failures with exponential backoff.
// MaxAttempts counts the total attempts including the first.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      bool

	// OnRetry, if set, is called before each wait with the upcoming attempt
	// number (2-based) and the error that triggered the retry.
	OnRetry func(attempt int, err error)
}

// DefaultRetryPolicy returns the baseline policy: 3 total attempts, 200ms
// base delay doubling up to 10s, with jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Multiplier:  2.0,
		Jitter:      true,
	}
}

// Delay computes the backoff before the given attempt (2-based). Jitter
// spreads the delay uniformly over [50%, 150%] of the computed value.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 2; i < attempt; i++ {
		delay = time.Duration(float64(delay) * p.Multiplier)
		if delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.Jitter && delay > 0 {
		delay = delay/2 + time.Duration(rand.Int63n(int64(delay)))
	}
	return delay
}

// Retry runs fn up to p.MaxAttempts times, backing off between attempts.
// Only errors core.IsRetryable accepts are retried; terminal errors and
// context cancellation return immediately. The attempt count made is
// returned alongside the final result.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, int, error) {
	var zero T
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if p.OnRetry != nil {
				p.OnRetry(attempt, lastErr)
			}
			select {
			case <-ctx.Done():
				return zero, attempt - 1, ctx.Err()
			case <-time.After(p.Delay(attempt)):
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, attempt, nil
		}
		lastErr = err

		if !core.IsRetryable(err) || ctx.Err() != nil {
			return zero, attempt, err
		}
	}
	return zero, maxAttempts, lastErr
}
