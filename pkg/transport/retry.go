package transport

import (
	"context"
	"encoding/json"

	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
	"github.com/linkforty/go-linkforty/pkg/retry"
)

// WithRetry returns a middleware that retries Retryable failures up to
// maxRetries extra times. maxRetries <= 0 returns next unchanged.
func WithRetry(backoff retry.Backoff, maxRetries int, lgr logger.Logger) Middleware {
	if backoff == nil {
		backoff = retry.DefaultBackoff()
	}
	lgr = logger.Component(lgr, "transport.retry")
	return func(next RequestFunc) RequestFunc {
		if maxRetries <= 0 {
			return next
		}
		return func(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
			var lastErr error
			for attempt := 0; attempt <= maxRetries; attempt++ {
				if attempt > 0 {
					delay := backoff.Next(attempt)
					lgr.Debug("retrying api call",
						logger.Field{Key: "path", Value: path},
						logger.Field{Key: "attempt", Value: attempt},
						logger.Field{Key: "delay", Value: delay.String()},
						logger.Field{Key: "error", Value: lastErr},
					)
					if err := retry.Sleep(ctx, delay); err != nil {
						return nil, lastErr
					}
				}
				raw, err := next(ctx, path, opts)
				if err == nil {
					return raw, nil
				}
				lastErr = err
				if !Retryable(err) {
					return nil, err
				}
			}
			return nil, lastErr
		}
	}
}
