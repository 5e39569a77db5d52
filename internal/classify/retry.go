package classify

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Retry re-runs fn with exponential backoff until it succeeds, maxRetries is
// exhausted, or ctx is canceled. Context errors are terminal.
func Retry(ctx context.Context, maxRetries int, backoff time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt >= maxRetries {
			return fmt.Errorf("exceeded %d retries: %w", maxRetries, lastErr)
		}

		sleep := backoff * (1 << attempt)
		slog.Warn("Retrying classifier call after error", "err", lastErr, "sleep", sleep)

		timer := time.NewTimer(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
