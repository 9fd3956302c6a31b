package cache

import (
	"context"
	"testing"
	"time"

	"github.com/gustycube/repuhub/internal/indicator"
	"github.com/gustycube/repuhub/internal/provider"
)

func TestKey(t *testing.T) {
	got := Key("reputation-hub", "virustotal", indicator.KindIPv4, "8.8.8.8")
	want := "reputation-hub:virustotal:ipv4:8.8.8.8"
	if got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}

	// The indicator part is lowercased so equivalent hashes share an entry.
	upper := Key("ns", "otx", indicator.KindMD5, "D41D8CD98F00B204E9800998ECF8427E")
	lower := Key("ns", "otx", indicator.KindMD5, "d41d8cd98f00b204e9800998ecf8427e")
	if upper != lower {
		t.Errorf("keys differ by case: %q vs %q", upper, lower)
	}
}

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory(16, time.Minute)
	ctx := context.Background()

	key := Key("ns", "virustotal", indicator.KindDomain, "example.com")

	if _, ok := m.Get(ctx, key); ok {
		t.Fatal("expected miss before set")
	}

	score := 0.25
	v := provider.Verdict{
		Provider:   "virustotal",
		Status:     provider.StatusSuccess,
		Reputation: provider.ReputationClean,
		Score:      &score,
	}
	m.Set(ctx, key, v, time.Minute)

	got, ok := m.Get(ctx, key)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if got.Provider != "virustotal" || got.Reputation != provider.ReputationClean {
		t.Errorf("unexpected verdict: %+v", got)
	}
	if got.CachedAt == nil || got.ExpiresAt == nil {
		t.Error("cached verdict must carry cache timestamps")
	}
	if got.ExpiresAt != nil && !got.ExpiresAt.After(time.Now()) {
		t.Error("expiry must be in the future")
	}
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(16, time.Minute)
	ctx := context.Background()

	key := Key("ns", "otx", indicator.KindIPv4, "1.2.3.4")
	m.Set(ctx, key, provider.Verdict{Provider: "otx", Status: provider.StatusSuccess}, 20*time.Millisecond)

	if _, ok := m.Get(ctx, key); !ok {
		t.Fatal("expected hit inside TTL")
	}

	time.Sleep(40 * time.Millisecond)

	if _, ok := m.Get(ctx, key); ok {
		t.Error("expected miss after TTL")
	}
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	m := NewMemory(16, time.Minute)
	ctx := context.Background()

	a := Key("ns", "virustotal", indicator.KindIPv4, "8.8.8.8")
	b := Key("ns", "abuseipdb", indicator.KindIPv4, "8.8.8.8")

	m.Set(ctx, a, provider.Verdict{Provider: "virustotal", Status: provider.StatusSuccess}, time.Minute)

	if _, ok := m.Get(ctx, b); ok {
		t.Error("verdict for one provider must not serve another")
	}
}

func TestMemory_PingAlwaysHealthy(t *testing.T) {
	m := NewMemory(4, time.Minute)
	if err := m.Ping(context.Background()); err != nil {
		t.Errorf("memory cache ping should never fail: %v", err)
	}
}
