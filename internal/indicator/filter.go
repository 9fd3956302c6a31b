package indicator

import (
	"net/netip"
	"strings"
)

// FilterResult says whether an indicator is private/internal and should not
// be sent to any upstream provider.
type FilterResult struct {
	Filtered bool
	Reason   string
}

var privateV4Ranges = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("0.0.0.0/8"),
}

var privateV6Prefixes = []string{"::1", "fc00::", "fe80::"}

var localDomainSuffixes = []string{".local", ".localhost", ".internal", ".lan", ".home", ".corp"}

// IsPrivateIPv4 reports whether a dotted-quad address falls in a private,
// loopback, link-local or this-network range.
func IsPrivateIPv4(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		return false
	}
	for _, p := range privateV4Ranges {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// IsPrivateIPv6 reports whether the address starts with a loopback, ULA or
// link-local prefix. The check is a textual prefix match on the lowercased
// form, matching how indicators arrive after Normalize.
func IsPrivateIPv6(ip string) bool {
	lower := strings.ToLower(ip)
	for _, prefix := range privateV6Prefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// IsLocalDomain reports whether the domain is localhost or carries an
// internal-only suffix.
func IsLocalDomain(domain string) bool {
	lower := strings.ToLower(domain)
	if lower == "localhost" {
		return true
	}
	for _, suffix := range localDomainSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// ShouldFilter decides whether a normalized indicator is out of scope for
// upstream lookups. Hash kinds are never filtered.
func ShouldFilter(value string, kind Kind) FilterResult {
	switch kind {
	case KindIPv4:
		if IsPrivateIPv4(value) {
			return FilterResult{Filtered: true, Reason: "Private/local IPv4 address - skipped to save API costs"}
		}
	case KindIPv6:
		if IsPrivateIPv6(value) {
			return FilterResult{Filtered: true, Reason: "Private/local IPv6 address - skipped to save API costs"}
		}
	case KindDomain:
		if IsLocalDomain(value) {
			return FilterResult{Filtered: true, Reason: "Local/internal domain - skipped to save API costs"}
		}
	}
	return FilterResult{}
}
