package indicator

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// Kind is the detected class of an indicator.
type Kind string

const (
	KindIPv4    Kind = "ipv4"
	KindIPv6    Kind = "ipv6"
	KindDomain  Kind = "domain"
	KindMD5     Kind = "md5"
	KindSHA1    Kind = "sha1"
	KindSHA256  Kind = "sha256"
	KindUnknown Kind = "unknown"
)

// IsHash reports whether the kind is one of the file-hash kinds.
func (k Kind) IsHash() bool {
	return k == KindMD5 || k == KindSHA1 || k == KindSHA256
}

// IsIP reports whether the kind is an IP address kind.
func (k Kind) IsIP() bool {
	return k == KindIPv4 || k == KindIPv6
}

var (
	reIPv4   = regexp.MustCompile(`^(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)
	reIPv6   = regexp.MustCompile(`(?i)^(?:[a-f0-9]{1,4}:){7}[a-f0-9]{1,4}$`)
	reMD5    = regexp.MustCompile(`^[a-fA-F0-9]{32}$`)
	reSHA1   = regexp.MustCompile(`^[a-fA-F0-9]{40}$`)
	reSHA256 = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)
	reDomain = regexp.MustCompile(`(?i)^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z0-9][a-z0-9-]{0,61}[a-z0-9]$`)
)

// Normalize trims and lowercases a raw indicator. Non-ASCII domains are
// mapped to their punycode form so the rest of the pipeline only ever sees
// ASCII. Normalize is idempotent.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if !isASCII(s) {
		if ascii, err := idna.Lookup.ToASCII(s); err == nil {
			s = ascii
		}
	}
	return s
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// Classify detects the kind of a normalized indicator. Precedence is fixed:
// IPv4, IPv6, MD5, SHA1, SHA256, domain; anything else is unknown. Classify
// never fails and classifies the empty string as unknown.
func Classify(s string) Kind {
	switch {
	case reIPv4.MatchString(s):
		return KindIPv4
	case reIPv6.MatchString(s):
		return KindIPv6
	case reMD5.MatchString(s):
		return KindMD5
	case reSHA1.MatchString(s):
		return KindSHA1
	case reSHA256.MatchString(s):
		return KindSHA256
	case reDomain.MatchString(s):
		return KindDomain
	default:
		return KindUnknown
	}
}
