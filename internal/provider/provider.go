package provider

import (
	"context"
	"time"

	"github.com/gustycube/repuhub/internal/indicator"
)

// Status is the outcome class of one provider lookup.
type Status string

const (
	StatusSuccess      Status = "success"
	StatusError        Status = "error"
	StatusUnsupported  Status = "unsupported"
	StatusNoCredential Status = "no_credential"
)

// Reputation is a provider's coarse classification of an indicator.
type Reputation string

const (
	ReputationClean      Reputation = "clean"
	ReputationSuspicious Reputation = "suspicious"
	ReputationMalicious  Reputation = "malicious"
	ReputationUnknown    Reputation = "unknown"
)

// Verdict is one provider's answer about one indicator. A verdict is
// immutable once returned; the cache annotates copies with the cached flag
// and timestamps.
type Verdict struct {
	Provider   string         `json:"provider"`
	Status     Status         `json:"status"`
	Cached     bool           `json:"cached,omitempty"`
	CachedAt   *time.Time     `json:"cachedAt,omitempty"`
	ExpiresAt  *time.Time     `json:"expiresAt,omitempty"`
	Reputation Reputation     `json:"reputation,omitempty"`
	Score      *float64       `json:"score,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	URL        string         `json:"url,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Capability describes what a provider can be asked about. Capability
// records are static registry data and are never mutated at runtime.
type Capability struct {
	IP                 bool             `json:"ip"`
	Domain             bool             `json:"domain"`
	Hash               bool             `json:"hash"`
	HashKinds          []indicator.Kind `json:"hashTypes,omitempty"`
	RequiresCredential bool             `json:"requiresKey"`
	Description        string           `json:"description"`
	RegistrationURL    string           `json:"registrationUrl,omitempty"`
	FreeTier           string           `json:"freeTier,omitempty"`
}

// SupportsKind reports whether the capability covers the given indicator
// kind. An empty HashKinds list means every hash kind is accepted.
func (c Capability) SupportsKind(kind indicator.Kind) bool {
	switch {
	case kind.IsIP():
		return c.IP
	case kind == indicator.KindDomain:
		return c.Domain
	case kind.IsHash():
		if !c.Hash {
			return false
		}
		if len(c.HashKinds) == 0 {
			return true
		}
		for _, hk := range c.HashKinds {
			if hk == kind {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Provider is the minimal surface every adapter implements. Lookup
// operations are optional per indicator category; the dispatcher discovers
// them through the IPChecker, DomainChecker and HashChecker interfaces.
type Provider interface {
	Name() string
}

// IPChecker looks up an IPv4 or IPv6 address.
type IPChecker interface {
	CheckIP(ctx context.Context, ip, credential string) (Verdict, error)
}

// DomainChecker looks up a domain.
type DomainChecker interface {
	CheckDomain(ctx context.Context, domain, credential string) (Verdict, error)
}

// HashChecker looks up a file hash. The kind hint tells the adapter which
// hash algorithm produced the value.
type HashChecker interface {
	CheckHash(ctx context.Context, hash string, kind indicator.Kind, credential string) (Verdict, error)
}
