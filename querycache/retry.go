package querycache

import (
	"context"
	"errors"
	"time"

	"signal-dashboard/observability"
)

type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries:     3,
	InitialBackoff: 200 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
}

// temporary is implemented by errors that know whether a retry can help
type temporary interface {
	Temporary() bool
}

// IsTemporary reports whether any error in the chain declares itself temporary
func IsTemporary(err error) bool {
	var t temporary
	return errors.As(err, &t) && t.Temporary()
}

// WithRetry calls fn until it succeeds, fails permanently or retries run out.
// The last error is returned as-is so callers can still classify it.
func WithRetry(ctx context.Context, config RetryConfig, fn func(attempt int) error) error {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(backoff):
			}

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}

		lastErr = err
		if !IsTemporary(err) {
			return err
		}
		if attempt < config.MaxRetries {
			observability.Debug("retrying temporary failure",
				"attempt", attempt+1,
				"max_retries", config.MaxRetries,
				"error", err)
		}
	}

	return lastErr
}
