package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/gustycube/repuhub/internal/indicator"
)

// TopEntry is one row of the most-queried indicator list.
type TopEntry struct {
	Target string         `json:"target"`
	Count  int64          `json:"count"`
	Kind   indicator.Kind `json:"type"`
}

// Snapshot is the externally visible counter state.
type Snapshot struct {
	TotalQueries      int64                    `json:"totalQueries"`
	QueriesByKind     map[indicator.Kind]int64 `json:"queriesByType"`
	QueriesByProvider map[string]int64         `json:"queriesByProvider"`
	CacheHitRatio     float64                  `json:"cacheHitRatio"`
	TopQueried        []TopEntry               `json:"topQueriedTargets"`
	LastUpdated       time.Time                `json:"lastUpdated"`
}

// Store records usage counters. All writes are best-effort: implementations
// swallow storage failures so accounting can never break a lookup.
type Store interface {
	// TrackQuery records a completed non-filtered lookup and the providers
	// dispatched for it.
	TrackQuery(ctx context.Context, target string, kind indicator.Kind, providers []string)
	// TrackFiltered records a query that was answered without dispatch.
	TrackFiltered(ctx context.Context, kind indicator.Kind)
	TrackCacheHit(ctx context.Context, hit bool)
	Snapshot(ctx context.Context) Snapshot
}

const topListSize = 10

// bumpTop increments or inserts (target, kind) and re-establishes the list
// invariant: unique entries, sorted by count descending, at most ten rows.
func bumpTop(list []TopEntry, target string, kind indicator.Kind) []TopEntry {
	found := false
	for i := range list {
		if list[i].Target == target && list[i].Kind == kind {
			list[i].Count++
			found = true
			break
		}
	}
	if !found {
		list = append(list, TopEntry{Target: target, Count: 1, Kind: kind})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Count > list[j].Count })
	if len(list) > topListSize {
		list = list[:topListSize]
	}
	return list
}

// ratio computes hits/(hits+misses), zero when there has been no traffic.
func ratio(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}
