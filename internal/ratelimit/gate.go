package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate is the process-wide token bucket every outbound network request
// passes through: registry page fetches, DNS queries and HTTP probes
// alike. It is shared by handle, safe for concurrent use, and never
// admits bursts beyond its configured ceiling.
type Gate struct {
	limiter *rate.Limiter
}

// NewGate builds a gate enforcing a minimum spacing between requests.
// A non-positive interval disables throttling.
func NewGate(interval time.Duration, burst int) *Gate {
	if burst < 1 {
		burst = 1
	}
	if interval <= 0 {
		return &Gate{limiter: rate.NewLimiter(rate.Inf, burst)}
	}
	return &Gate{limiter: rate.NewLimiter(rate.Every(interval), burst)}
}

// Wait blocks until a request may proceed or the context is done.
func (g *Gate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed immediately.
func (g *Gate) Allow() bool {
	return g.limiter.Allow()
}
