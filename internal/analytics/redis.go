package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gustycube/repuhub/internal/indicator"
)

// Redis persists counters as JSON blobs under two keys. Updates are
// read-modify-write without locking: concurrent writers can lose an
// increment, which is acceptable for best-effort accounting.
type Redis struct {
	cli       *redis.Client
	namespace string
	log       *zap.SugaredLogger
}

func NewRedis(cli *redis.Client, namespace string, log *zap.SugaredLogger) *Redis {
	return &Redis{cli: cli, namespace: namespace, log: log}
}

func (r *Redis) countersKey() string { return r.namespace + ":analytics" }
func (r *Redis) hitsKey() string     { return r.namespace + ":cache_stats" }

type counterBlob struct {
	TotalQueries      int64                    `json:"totalQueries"`
	QueriesByKind     map[indicator.Kind]int64 `json:"queriesByType"`
	QueriesByProvider map[string]int64         `json:"queriesByProvider"`
	TopQueried        []TopEntry               `json:"topQueriedTargets"`
	LastUpdated       time.Time                `json:"lastUpdated"`
}

type hitBlob struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

func (r *Redis) TrackQuery(ctx context.Context, target string, kind indicator.Kind, providers []string) {
	blob := r.loadCounters(ctx)
	blob.TotalQueries++
	blob.QueriesByKind[kind]++
	for _, p := range providers {
		blob.QueriesByProvider[p]++
	}
	blob.TopQueried = bumpTop(blob.TopQueried, target, kind)
	blob.LastUpdated = time.Now().UTC()
	r.storeCounters(ctx, blob)
}

func (r *Redis) TrackFiltered(ctx context.Context, kind indicator.Kind) {
	blob := r.loadCounters(ctx)
	blob.TotalQueries++
	blob.LastUpdated = time.Now().UTC()
	r.storeCounters(ctx, blob)
}

func (r *Redis) TrackCacheHit(ctx context.Context, hit bool) {
	var blob hitBlob
	raw, err := r.cli.Get(ctx, r.hitsKey()).Bytes()
	if err == nil {
		_ = json.Unmarshal(raw, &blob)
	} else if err != redis.Nil {
		r.log.Warnw("cache stats read failed", "err", err)
	}
	if hit {
		blob.Hits++
	} else {
		blob.Misses++
	}
	out, _ := json.Marshal(blob)
	if err := r.cli.Set(ctx, r.hitsKey(), out, 0).Err(); err != nil {
		r.log.Warnw("cache stats write failed", "err", err)
	}
}

func (r *Redis) Snapshot(ctx context.Context) Snapshot {
	blob := r.loadCounters(ctx)
	var hits hitBlob
	if raw, err := r.cli.Get(ctx, r.hitsKey()).Bytes(); err == nil {
		_ = json.Unmarshal(raw, &hits)
	}
	return Snapshot{
		TotalQueries:      blob.TotalQueries,
		QueriesByKind:     blob.QueriesByKind,
		QueriesByProvider: blob.QueriesByProvider,
		CacheHitRatio:     ratio(hits.Hits, hits.Misses),
		TopQueried:        blob.TopQueried,
		LastUpdated:       blob.LastUpdated,
	}
}

func (r *Redis) loadCounters(ctx context.Context) counterBlob {
	blob := counterBlob{
		QueriesByKind:     make(map[indicator.Kind]int64),
		QueriesByProvider: make(map[string]int64),
	}
	raw, err := r.cli.Get(ctx, r.countersKey()).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warnw("analytics read failed", "err", err)
		}
		return blob
	}
	if err := json.Unmarshal(raw, &blob); err != nil {
		r.log.Warnw("analytics decode failed", "err", err)
	}
	if blob.QueriesByKind == nil {
		blob.QueriesByKind = make(map[indicator.Kind]int64)
	}
	if blob.QueriesByProvider == nil {
		blob.QueriesByProvider = make(map[string]int64)
	}
	return blob
}

func (r *Redis) storeCounters(ctx context.Context, blob counterBlob) {
	out, err := json.Marshal(blob)
	if err != nil {
		r.log.Warnw("analytics encode failed", "err", err)
		return
	}
	if err := r.cli.Set(ctx, r.countersKey(), out, 0).Err(); err != nil {
		r.log.Warnw("analytics write failed", "err", err)
	}
}
