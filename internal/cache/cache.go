package cache

import (
	"context"
	"strings"
	"time"

	"github.com/gustycube/repuhub/internal/indicator"
	"github.com/gustycube/repuhub/internal/provider"
)

// DefaultTTL is how long a successful verdict stays valid.
const DefaultTTL = 24 * time.Hour

// Store is a content-addressed verdict cache. Implementations must treat
// read failures as misses and write failures as no-ops; the lookup pipeline
// never sees a cache error.
type Store interface {
	Get(ctx context.Context, key string) (provider.Verdict, bool)
	Set(ctx context.Context, key string, v provider.Verdict, ttl time.Duration)
	Ping(ctx context.Context) error
}

// Key builds the cache key for one (provider, kind, indicator) triple.
func Key(namespace, providerName string, kind indicator.Kind, target string) string {
	return namespace + ":" + providerName + ":" + string(kind) + ":" + strings.ToLower(target)
}

// stamp returns a copy of the verdict annotated with cache timestamps, as it
// should be stored.
func stamp(v provider.Verdict, ttl time.Duration) provider.Verdict {
	now := time.Now().UTC()
	expires := now.Add(ttl)
	v.CachedAt = &now
	v.ExpiresAt = &expires
	return v
}

// live reports whether a stored verdict is still within its TTL. Entries
// without an expiry stamp are treated as absent.
func live(v provider.Verdict) bool {
	return v.ExpiresAt != nil && time.Now().Before(*v.ExpiresAt)
}
