package bridge

import (
	"context"
	"time"

	"github.com/mcpmux/mcpmux/internal/mcperrors"
)

// RetryPolicy is the exponential-backoff policy applied to Retriable
// error kinds only (spec.md §4.6, §7): ConnectionError, Timeout, and
// IpcError. Everything else (ToolNotFound, InvalidArguments, ...) fails
// fast, since retrying a request the server has already rejected as
// malformed cannot succeed.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// NewRetryPolicy builds a policy from the Configuration record's
// retry_max/retry_delay_ms fields.
func NewRetryPolicy(maxAttempts int, baseDelay time.Duration) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: baseDelay}
}

// Do runs fn, retrying with exponential backoff while the returned error
// classifies as Retriable and attempts remain. It returns the last
// error if every attempt fails.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := p.BaseDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		classified, ok := mcperrors.As(lastErr)
		if !ok || !classified.Kind.Retriable() || attempt == p.MaxAttempts {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return lastErr
}
