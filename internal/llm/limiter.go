package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles outgoing completion calls. Validation runs are
// sequential, so a single limiter per provider is enough; there is no
// per-host bookkeeping to do.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter from a requests-per-second budget.
// A non-positive rate disables throttling.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return &Limiter{}
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until the next call is allowed or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
