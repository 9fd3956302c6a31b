package provider

import (
	"net/http"

	"github.com/gustycube/repuhub/internal/indicator"
)

// Entry binds a provider name to its static capability record and its
// implementation.
type Entry struct {
	Name string
	Caps Capability
	Impl Provider
}

// Registry is the ordered table of known providers. Iteration order is the
// registration order and determines the order eligible providers are
// returned in.
type Registry struct {
	entries []Entry
	byName  map[string]int
}

func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{byName: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, dup := r.byName[e.Name]; dup {
			continue
		}
		r.byName[e.Name] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r
}

func (r *Registry) Entries() []Entry { return r.entries }

func (r *Registry) Lookup(name string) (Entry, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Select returns the names of providers that may be queried for the given
// kind with the given credentials, in registry order. Zero matches is not
// an error at this layer.
func (r *Registry) Select(kind indicator.Kind, credentials map[string]string) []string {
	var eligible []string
	for _, e := range r.entries {
		if e.Caps.RequiresCredential && credentials[e.Name] == "" {
			continue
		}
		if !e.Caps.SupportsKind(kind) {
			continue
		}
		eligible = append(eligible, e.Name)
	}
	return eligible
}

// abuse.ch publishes one auth key for its whole platform. The shared
// "abusech" credential fills in these three providers when they have no
// key of their own.
var abusechFamily = []string{"urlhaus", "malwarebazaar", "threatfox"}

// ApplySharedCredentials expands family-shared credentials in place. An
// explicitly supplied per-provider credential is never overwritten. Call
// once per request, before Select.
func ApplySharedCredentials(credentials map[string]string) {
	shared := credentials["abusech"]
	if shared == "" {
		return
	}
	for _, name := range abusechFamily {
		if credentials[name] == "" {
			credentials[name] = shared
		}
	}
}

// Default builds the registry of the ten supported providers. The shared
// http.Client is used by every adapter.
func Default(hc *http.Client) *Registry {
	allHashes := []indicator.Kind{indicator.KindMD5, indicator.KindSHA1, indicator.KindSHA256}
	return NewRegistry(
		Entry{
			Name: "virustotal",
			Caps: Capability{
				IP: true, Domain: true, Hash: true, HashKinds: allHashes,
				RequiresCredential: true,
				Description:        "Multi-engine malware scanner with 70+ antivirus engines",
				RegistrationURL:    "https://www.virustotal.com/gui/join-us",
				FreeTier:           "500 requests/day",
			},
			Impl: NewVirusTotal(hc),
		},
		Entry{
			Name: "abuseipdb",
			Caps: Capability{
				IP:                 true,
				RequiresCredential: true,
				Description:        "Community-driven IP abuse reports database",
				RegistrationURL:    "https://www.abuseipdb.com/api",
				FreeTier:           "1000 requests/day",
			},
			Impl: NewAbuseIPDB(hc),
		},
		Entry{
			Name: "otx",
			Caps: Capability{
				IP: true, Domain: true, Hash: true, HashKinds: allHashes,
				RequiresCredential: true,
				Description:        "AlienVault Open Threat Exchange community threat intelligence",
				RegistrationURL:    "https://otx.alienvault.com/api",
				FreeTier:           "Unlimited",
			},
			Impl: NewOTX(hc),
		},
		Entry{
			Name: "ipqs",
			Caps: Capability{
				IP: true, Domain: true,
				RequiresCredential: true,
				Description:        "IP Quality Score - Fraud detection and proxy/VPN detection",
				RegistrationURL:    "https://www.ipqualityscore.com/create-account",
				FreeTier:           "5000 requests/month",
			},
			Impl: NewIPQS(hc),
		},
		Entry{
			Name: "greynoise",
			Caps: Capability{
				IP:                 true,
				RequiresCredential: true,
				Description:        "Internet scanner classification - distinguish noise from threats",
				RegistrationURL:    "https://www.greynoise.io/viz/account/api-key",
				FreeTier:           "Community API",
			},
			Impl: NewGreyNoise(hc),
		},
		Entry{
			Name: "urlhaus",
			Caps: Capability{
				Domain: true, Hash: true,
				HashKinds:          []indicator.Kind{indicator.KindMD5, indicator.KindSHA256},
				RequiresCredential: true,
				Description:        "Abuse.ch URLhaus - Malware URL and payload database",
				RegistrationURL:    "https://urlhaus.abuse.ch/api/",
				FreeTier:           "Standard (requires free API key)",
			},
			Impl: NewURLhaus(hc),
		},
		Entry{
			Name: "malwarebazaar",
			Caps: Capability{
				Hash: true, HashKinds: allHashes,
				RequiresCredential: true,
				Description:        "Abuse.ch MalwareBazaar - Malware sample database",
				RegistrationURL:    "https://bazaar.abuse.ch/api/",
				FreeTier:           "Standard (requires free API key)",
			},
			Impl: NewMalwareBazaar(hc),
		},
		Entry{
			Name: "threatfox",
			Caps: Capability{
				IP: true, Domain: true, Hash: true, HashKinds: allHashes,
				RequiresCredential: true,
				Description:        "Abuse.ch ThreatFox - Indicator of Compromise (IOC) database",
				RegistrationURL:    "https://threatfox.abuse.ch/api/",
				FreeTier:           "Standard (requires free API key)",
			},
			Impl: NewThreatFox(hc),
		},
		Entry{
			Name: "shodan",
			Caps: Capability{
				IP: true, Domain: true,
				RequiresCredential: true,
				Description:        "Internet-wide port scanning and device information",
				RegistrationURL:    "https://account.shodan.io/register",
				FreeTier:           "Limited (1 query/sec)",
			},
			Impl: NewShodan(hc),
		},
		Entry{
			Name: "censys",
			Caps: Capability{
				IP: true, Domain: true,
				RequiresCredential: true,
				Description:        "Internet-wide scanning and certificate search",
				RegistrationURL:    "https://search.censys.io/register",
				FreeTier:           "250 queries/month",
			},
			Impl: NewCensys(hc),
		},
	)
}
