package rate

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// PerProvider hands out one token-bucket limiter per provider name so a
// burst of lookups cannot hammer a single upstream API. The set of names is
// small and fixed, so entries are never evicted.
type PerProvider struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	perSecond float64
	burst     int
}

func NewPerProvider(perSecond float64, burst int) *PerProvider {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &PerProvider{
		limiters:  make(map[string]*rate.Limiter),
		perSecond: perSecond,
		burst:     burst,
	}
}

func (p *PerProvider) limiter(name string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.limiters[name]
	if !ok {
		l = rate.NewLimiter(rate.Limit(p.perSecond), p.burst)
		p.limiters[name] = l
	}
	return l
}

// Wait blocks until the named provider may be called or the context ends.
func (p *PerProvider) Wait(ctx context.Context, name string) error {
	return p.limiter(name).Wait(ctx)
}
