package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// retryPolicy retries an operation a fixed number of times with a constant
// pause. Each call site configures its own attempt count and pause; the
// sleep function is injectable so tests run without waiting.
type retryPolicy struct {
	attempts int
	pause    time.Duration
	sleep    func(time.Duration)
	logger   *slog.Logger
}

// do runs fn until it succeeds or the attempts are exhausted. The returned
// error wraps the last failure. Context cancellation stops retrying early.
func (p retryPolicy) do(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", op, ctx.Err())
		}
		if attempt < p.attempts {
			p.logger.Warn("operation failed, retrying",
				"op", op,
				"attempt", attempt,
				"max_attempts", p.attempts,
				"error", err)
			p.sleep(p.pause)
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, p.attempts, err)
}
