package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"ticketing/pkg/logger"
)

// Policy bounds a retried startup step.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Do runs op until it succeeds, the attempts are exhausted or ctx is done.
// The last error is returned when every attempt failed.
func Do[T any](ctx context.Context, log *logger.Logger, dependency string, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	attempts := max(p.MaxAttempts, 1)
	attempt := 0

	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		return op(ctx)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("Dependency not ready, retrying",
				"dependency", dependency,
				"attempt", attempt,
				"max_attempts", attempts,
				"retry_in", next,
				"error", err,
			)
		}),
	)
}
