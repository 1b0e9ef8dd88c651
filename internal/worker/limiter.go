package worker

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces requests against the chat service so polling for replies
// does not hammer the history endpoint.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a pacer allowing requestsPerSecond with the given burst.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until the next request is allowed or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// WaitWithDelay waits for rate clearance and then an additional fixed delay,
// used between history-endpoint retries while a reply is still pending.
func (l *Limiter) WaitWithDelay(ctx context.Context, delay time.Duration) error {
	if err := l.Wait(ctx); err != nil {
		return err
	}
	if delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
