package internal

import (
	"context"
	"time"
)

// WithTimeout returns a context with timeout, defaulting to 30 seconds if
// duration is zero or negative. Gateway round trips over the certificate
// channel can legitimately take tens of seconds.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 30 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
