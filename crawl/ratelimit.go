package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/scrapedoc"
	"golang.org/x/time/rate"
)

var _ scrapedoc.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter enforces a politeness delay between consecutive requests to
// the same domain. Each domain gets its own token bucket with a burst of 1,
// so the first request passes immediately and later ones wait out the delay.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewDomainLimiter creates a DomainLimiter spacing requests by delay.
// A delay of zero or less disables pacing.
func NewDomainLimiter(delay time.Duration) *DomainLimiter {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
	}
}

// Wait blocks until the politeness delay allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(d.limit, 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
