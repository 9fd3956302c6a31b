package checker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gustycube/repuhub/internal/analytics"
	"github.com/gustycube/repuhub/internal/cache"
	"github.com/gustycube/repuhub/internal/indicator"
	"github.com/gustycube/repuhub/internal/logging"
	"github.com/gustycube/repuhub/internal/metrics"
	"github.com/gustycube/repuhub/internal/provider"
	"github.com/gustycube/repuhub/internal/rate"
	"github.com/gustycube/repuhub/internal/telemetry"
)

var (
	// ErrEmptyTarget is returned when no indicator value was supplied.
	ErrEmptyTarget = errors.New("missing required field: target")
	// ErrUnknownKind is returned when the indicator matches no known class.
	ErrUnknownKind = errors.New("invalid input: unable to detect type (IP, domain, or hash)")
	// ErrNoEligibleProviders is returned when no provider can serve the
	// detected kind with the supplied credentials.
	ErrNoEligibleProviders = errors.New("no providers configured for this input type")
)

// Result is the aggregated answer for one indicator.
type Result struct {
	Target       string                      `json:"target"`
	Kind         indicator.Kind              `json:"type"`
	Filtered     bool                        `json:"filtered,omitempty"`
	FilterReason string                      `json:"filterReason,omitempty"`
	Timestamp    time.Time                   `json:"timestamp"`
	Results      map[string]provider.Verdict `json:"results"`
	Summary      Summary                     `json:"summary"`
}

// BulkResult is the answer for a batch of indicators.
type BulkResult struct {
	TotalTargets int       `json:"totalTargets"`
	Processed    int       `json:"processed"`
	Filtered     int       `json:"filtered"`
	Timestamp    time.Time `json:"timestamp"`
	Results      []Result  `json:"results"`
}

// Options configures a Checker.
type Options struct {
	Namespace       string
	CacheTTL        time.Duration
	ProviderTimeout time.Duration
	ProviderRate    float64
	ProviderBurst   int
}

// Checker runs the full lookup pipeline: classify, filter, select eligible
// providers, fan out with cache-aside lookups, then synthesize a risk
// summary.
type Checker struct {
	registry        *provider.Registry
	cache           cache.Store
	stats           analytics.Store
	limiter         *rate.PerProvider
	log             *logging.Logger
	namespace       string
	cacheTTL        time.Duration
	providerTimeout time.Duration
}

func New(reg *provider.Registry, store cache.Store, stats analytics.Store, log *logging.Logger, opts Options) *Checker {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.DefaultTTL
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = 10 * time.Second
	}
	if opts.Namespace == "" {
		opts.Namespace = "reputation-hub"
	}
	return &Checker{
		registry:        reg,
		cache:           store,
		stats:           stats,
		limiter:         rate.NewPerProvider(opts.ProviderRate, opts.ProviderBurst),
		log:             log,
		namespace:       opts.Namespace,
		cacheTTL:        opts.CacheTTL,
		providerTimeout: opts.ProviderTimeout,
	}
}

// Check runs one indicator through the pipeline. kindOverride, when not
// empty, skips detection. Credentials are keyed by provider name and must
// already have shared family credentials expanded.
func (c *Checker) Check(ctx context.Context, target string, kindOverride indicator.Kind, credentials map[string]string) (Result, error) {
	if strings.TrimSpace(target) == "" {
		return Result{}, ErrEmptyTarget
	}
	normalized := indicator.Normalize(target)
	kind := kindOverride
	if kind == "" {
		kind = indicator.Classify(normalized)
	}
	if kind == indicator.KindUnknown {
		return Result{}, ErrUnknownKind
	}
	metrics.QueriesTotal.WithLabelValues(string(kind)).Inc()

	if f := indicator.ShouldFilter(normalized, kind); f.Filtered {
		metrics.FilteredTotal.Inc()
		c.stats.TrackFiltered(ctx, kind)
		return Result{
			Target:       normalized,
			Kind:         kind,
			Filtered:     true,
			FilterReason: f.Reason,
			Timestamp:    time.Now().UTC(),
			Results:      map[string]provider.Verdict{},
			Summary:      Synthesize(nil),
		}, nil
	}

	eligible := c.registry.Select(kind, credentials)
	if len(eligible) == 0 {
		return Result{}, ErrNoEligibleProviders
	}

	results := c.dispatch(ctx, normalized, kind, eligible, credentials)
	c.stats.TrackQuery(ctx, normalized, kind, eligible)

	return Result{
		Target:    normalized,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
		Results:   results,
		Summary:   Synthesize(results),
	}, nil
}

// CheckBulk runs every target through Check. Targets that fail validation
// or have no eligible provider are dropped from the output; filtered
// targets are counted and kept.
func (c *Checker) CheckBulk(ctx context.Context, targets []string, credentials map[string]string) BulkResult {
	out := BulkResult{
		TotalTargets: len(targets),
		Timestamp:    time.Now().UTC(),
		Results:      []Result{},
	}
	for _, t := range targets {
		res, err := c.Check(ctx, t, "", credentials)
		if err != nil {
			continue
		}
		if res.Filtered {
			out.Filtered++
		}
		out.Results = append(out.Results, res)
	}
	out.Processed = len(out.Results)
	return out
}

// dispatch queries every eligible provider concurrently. Each goroutine
// writes into its own preallocated slot, so results carry no ordering or
// locking dependency between providers.
func (c *Checker) dispatch(ctx context.Context, target string, kind indicator.Kind, eligible []string, credentials map[string]string) map[string]provider.Verdict {
	ctx, span := telemetry.Tracer().Start(ctx, "checker.dispatch", trace.WithAttributes(
		attribute.String("indicator.kind", string(kind)),
		attribute.Int("providers.eligible", len(eligible)),
	))
	defer span.End()

	slots := make([]*provider.Verdict, len(eligible))
	var wg sync.WaitGroup
	for i, name := range eligible {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			if v, ok := c.lookup(ctx, name, target, kind, credentials[name]); ok {
				slots[i] = &v
			}
		}(i, name)
	}
	wg.Wait()

	results := make(map[string]provider.Verdict, len(eligible))
	for i, name := range eligible {
		if slots[i] != nil {
			results[name] = *slots[i]
		}
	}
	return results
}

// lookup resolves one (provider, indicator) pair: cache first, then the
// live adapter. Only successful verdicts are written back to the cache. The
// second return is false when the provider has no method for the kind; such
// providers are left out of the result map entirely.
func (c *Checker) lookup(ctx context.Context, name, target string, kind indicator.Kind, credential string) (provider.Verdict, bool) {
	key := cache.Key(c.namespace, name, kind, target)
	if v, ok := c.cache.Get(ctx, key); ok {
		v.Cached = true
		metrics.CacheOps.WithLabelValues("hit").Inc()
		c.stats.TrackCacheHit(ctx, true)
		return v, true
	}
	metrics.CacheOps.WithLabelValues("miss").Inc()
	c.stats.TrackCacheHit(ctx, false)

	callCtx, cancel := context.WithTimeout(ctx, c.providerTimeout)
	defer cancel()

	v, ok := c.invoke(callCtx, name, target, kind, credential)
	if !ok {
		return provider.Verdict{}, false
	}
	metrics.ProviderLookups.WithLabelValues(name, string(v.Status)).Inc()
	if v.Status == provider.StatusSuccess {
		c.cache.Set(ctx, key, v, c.cacheTTL)
	}
	return v, true
}

// invoke calls the adapter method matching the indicator kind. A provider
// whose capability record admits the kind but whose implementation lacks
// the method is skipped, not reported.
func (c *Checker) invoke(ctx context.Context, name, target string, kind indicator.Kind, credential string) (provider.Verdict, bool) {
	entry, ok := c.registry.Lookup(name)
	if !ok {
		return provider.Verdict{}, false
	}

	if err := c.limiter.Wait(ctx, name); err != nil {
		c.log.Warnw("rate limit wait aborted", "provider", name, "err", err)
		return provider.Verdict{Provider: name, Status: provider.StatusError, Error: err.Error()}, true
	}

	var v provider.Verdict
	var err error
	switch {
	case kind.IsIP():
		impl, ok := entry.Impl.(provider.IPChecker)
		if !ok {
			return provider.Verdict{}, false
		}
		v, err = impl.CheckIP(ctx, target, credential)
	case kind == indicator.KindDomain:
		impl, ok := entry.Impl.(provider.DomainChecker)
		if !ok {
			return provider.Verdict{}, false
		}
		v, err = impl.CheckDomain(ctx, target, credential)
	case kind.IsHash():
		impl, ok := entry.Impl.(provider.HashChecker)
		if !ok {
			return provider.Verdict{}, false
		}
		v, err = impl.CheckHash(ctx, target, kind, credential)
	default:
		return provider.Verdict{}, false
	}
	if err != nil {
		c.log.Warnw("provider lookup failed", "provider", name, "kind", kind, "err", err)
		return provider.Verdict{Provider: name, Status: provider.StatusError, Error: err.Error()}, true
	}
	if v.Provider == "" {
		v.Provider = name
	}
	return v, true
}
