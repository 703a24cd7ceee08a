package channel

import (
	"context"
	"time"
)

// RetryPolicy retries a failing operation with linear backoff: after failed
// attempt n the next attempt waits n × BaseDelay.
//
// Every failure is retried regardless of cause; a 4xx rejection is retried
// the same way as a dropped connection.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Do runs fn until it succeeds, the attempts are exhausted, or ctx is done.
// The last failure is returned unchanged. onRetry, if non-nil, is called
// before each wait.
func (p RetryPolicy) Do(
	ctx context.Context,
	fn func(ctx context.Context, attempt int) error,
	onRetry func(attempt int, delay time.Duration, err error),
) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultRetryPolicy().MaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts || ctx.Err() != nil {
			break
		}

		delay := time.Duration(attempt) * p.BaseDelay
		if onRetry != nil {
			onRetry(attempt, delay, lastErr)
		}
		if delay <= 0 {
			continue
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}
