package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/gustycube/repuhub/internal/indicator"
)

// Memory keeps counters in process memory. Used when no redis address is
// configured, and as the test double.
type Memory struct {
	mu          sync.Mutex
	total       int64
	byKind      map[indicator.Kind]int64
	byProvider  map[string]int64
	hits        int64
	misses      int64
	top         []TopEntry
	lastUpdated time.Time
}

func NewMemory() *Memory {
	return &Memory{
		byKind:     make(map[indicator.Kind]int64),
		byProvider: make(map[string]int64),
	}
}

func (m *Memory) TrackQuery(ctx context.Context, target string, kind indicator.Kind, providers []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total++
	m.byKind[kind]++
	for _, p := range providers {
		m.byProvider[p]++
	}
	m.top = bumpTop(m.top, target, kind)
	m.lastUpdated = time.Now().UTC()
}

func (m *Memory) TrackFiltered(ctx context.Context, kind indicator.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total++
	m.lastUpdated = time.Now().UTC()
}

func (m *Memory) TrackCacheHit(ctx context.Context, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *Memory) Snapshot(ctx context.Context) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		TotalQueries:      m.total,
		QueriesByKind:     make(map[indicator.Kind]int64, len(m.byKind)),
		QueriesByProvider: make(map[string]int64, len(m.byProvider)),
		CacheHitRatio:     ratio(m.hits, m.misses),
		TopQueried:        append([]TopEntry(nil), m.top...),
		LastUpdated:       m.lastUpdated,
	}
	for k, v := range m.byKind {
		snap.QueriesByKind[k] = v
	}
	for k, v := range m.byProvider {
		snap.QueriesByProvider[k] = v
	}
	return snap
}
