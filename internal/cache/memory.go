package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/gustycube/repuhub/internal/provider"
)

// Memory is an in-process verdict cache backed by an expirable LRU. Used
// when no redis address is configured.
type Memory struct {
	lru *expirable.LRU[string, provider.Verdict]
}

func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 8192
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{lru: expirable.NewLRU[string, provider.Verdict](size, nil, ttl)}
}

func (m *Memory) Get(ctx context.Context, key string) (provider.Verdict, bool) {
	v, ok := m.lru.Get(key)
	if !ok || !live(v) {
		return provider.Verdict{}, false
	}
	return v, true
}

func (m *Memory) Set(ctx context.Context, key string, v provider.Verdict, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m.lru.Add(key, stamp(v, ttl))
}

func (m *Memory) Ping(ctx context.Context) error { return nil }
