package breaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Allow while a host's circuit is open.
var ErrOpen = errors.New("upstream circuit open")

// State is the lifecycle position of one host's circuit.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config tunes when a host trips and how it recovers.
type Config struct {
	// Window bounds closed-state failure counting; counts reset when it
	// elapses.
	Window time.Duration
	// Cooldown is how long an open circuit rejects before probing again.
	Cooldown time.Duration
	// MinRequests is the sample size below which the ratio is not evaluated.
	MinRequests uint32
	// FailureRatio trips the circuit once reached at MinRequests samples.
	FailureRatio float64
	// MaxProbes caps in-flight requests while half-open.
	MaxProbes uint32
}

// DefaultConfig matches the cadence of the upstream reputation APIs: a dead
// API should stop burning the per-call timeout within a minute and be probed
// again half a minute later.
func DefaultConfig() Config {
	return Config{
		Window:       60 * time.Second,
		Cooldown:     30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
		MaxProbes:    3,
	}
}

type host struct {
	state    State
	total    uint32
	failures uint32
	probes   uint32
	deadline time.Time // window end while closed, cooldown end while open
}

// HostBreaker keeps an independent circuit per upstream host, so one dead
// provider API cannot block lookups against the others.
type HostBreaker struct {
	mu    sync.Mutex
	cfg   Config
	hosts map[string]*host
}

func NewHostBreaker(cfg Config) *HostBreaker {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = def.MinRequests
	}
	if cfg.FailureRatio <= 0 || cfg.FailureRatio > 1 {
		cfg.FailureRatio = def.FailureRatio
	}
	if cfg.MaxProbes == 0 {
		cfg.MaxProbes = def.MaxProbes
	}
	return &HostBreaker{cfg: cfg, hosts: make(map[string]*host)}
}

// Allow reports whether a request to name may proceed. Every allowed
// request must be followed by exactly one Record call.
func (b *HostBreaker) Allow(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.host(name)
	now := time.Now()
	switch h.state {
	case StateOpen:
		if now.Before(h.deadline) {
			return ErrOpen
		}
		h.state = StateHalfOpen
		h.probes = 0
		fallthrough
	case StateHalfOpen:
		if h.probes >= b.cfg.MaxProbes {
			return ErrOpen
		}
		h.probes++
	default:
		if now.After(h.deadline) {
			h.total, h.failures = 0, 0
			h.deadline = now.Add(b.cfg.Window)
		}
	}
	return nil
}

// Record feeds the outcome of an allowed request back into the circuit. A
// successful half-open probe closes it again; a failed one re-trips.
func (b *HostBreaker) Record(name string, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.host(name)
	switch h.state {
	case StateHalfOpen:
		if h.probes > 0 {
			h.probes--
		}
		if success {
			h.state = StateClosed
			h.total, h.failures = 0, 0
			h.deadline = time.Now().Add(b.cfg.Window)
		} else {
			b.trip(h)
		}
	case StateClosed:
		h.total++
		if !success {
			h.failures++
		}
		if h.total >= b.cfg.MinRequests && float64(h.failures)/float64(h.total) >= b.cfg.FailureRatio {
			b.trip(h)
		}
	}
}

// State reports the circuit state for a host. Unknown hosts are closed.
func (b *HostBreaker) State(name string) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	h, ok := b.hosts[name]
	if !ok {
		return StateClosed
	}
	return h.state
}

func (b *HostBreaker) trip(h *host) {
	h.state = StateOpen
	h.deadline = time.Now().Add(b.cfg.Cooldown)
	h.total, h.failures, h.probes = 0, 0, 0
}

func (b *HostBreaker) host(name string) *host {
	h, ok := b.hosts[name]
	if !ok {
		h = &host{deadline: time.Now().Add(b.cfg.Window)}
		b.hosts[name] = h
	}
	return h
}
