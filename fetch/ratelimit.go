package fetch

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/searchqa"
	"golang.org/x/time/rate"
)

var _ searchqa.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces out requests to the same host. Result pages of one
// search usually live on different hosts and are not slowed down by each
// other; concurrent questions hitting one popular site are.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewDomainLimiter returns a limiter allowing rps requests per second and
// the given burst per domain. A burst below 1 is treated as 1 and an rps
// of zero or less means no limit.
func NewDomainLimiter(rps float64, burst int) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    max(burst, 1),
	}
}

// Wait blocks until a request to domain is allowed or ctx is done.
// "www.example.com" and "Example.com" share a bucket.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	key := strings.TrimPrefix(strings.ToLower(domain), "www.")

	d.mu.Lock()
	limiter, ok := d.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(d.limit, d.burst)
		d.limiters[key] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
