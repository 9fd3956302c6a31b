package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gustycube/repuhub/internal/provider"
)

// Redis is a verdict cache shared across processes. Runtime failures are
// logged and degrade to misses; only startup connectivity is fatal.
type Redis struct {
	cli *redis.Client
	log *zap.SugaredLogger

	errorCount atomic.Int64
}

// NewRedis connects to redis, retrying the initial ping with exponential
// backoff for up to 30 seconds.
func NewRedis(addr string, log *zap.SugaredLogger) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{Addr: addr})
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	err := backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return cli.Ping(ctx).Err()
	}, bo)
	if err != nil {
		return nil, err
	}
	return &Redis{cli: cli, log: log}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (provider.Verdict, bool) {
	raw, err := r.cli.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logError("cache get failed", err)
		}
		return provider.Verdict{}, false
	}
	var v provider.Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		r.logError("cache entry decode failed", err)
		return provider.Verdict{}, false
	}
	if !live(v) {
		return provider.Verdict{}, false
	}
	return v, true
}

func (r *Redis) Set(ctx context.Context, key string, v provider.Verdict, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	raw, err := json.Marshal(stamp(v, ttl))
	if err != nil {
		r.logError("cache entry encode failed", err)
		return
	}
	if err := r.cli.Set(ctx, key, raw, ttl).Err(); err != nil {
		r.logError("cache set failed", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.cli.Ping(ctx).Err()
}

// Client exposes the underlying connection so other redis-backed stores can
// share it.
func (r *Redis) Client() *redis.Client { return r.cli }

// logError rate-limits cache error logging so a redis outage does not flood
// the log. Lookups for one request run on concurrent goroutines, so the
// counter is atomic.
func (r *Redis) logError(msg string, err error) {
	n := r.errorCount.Add(1)
	if n%100 == 1 {
		r.log.Warnw(msg, "err", err, "count", n)
	}
}
