package indicator

import "testing"

func TestIsPrivateIPv4(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"172.32.0.1", false},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"169.254.10.10", true},
		{"0.1.2.3", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
		{"not-an-ip", false},
	}

	for _, tt := range tests {
		if got := IsPrivateIPv4(tt.ip); got != tt.want {
			t.Errorf("IsPrivateIPv4(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestIsPrivateIPv6(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"::1", true},
		{"fc00::1", true},
		{"fe80::1", true},
		{"FE80::abcd", true},
		{"2001:4860:4860::8888", false},
	}

	for _, tt := range tests {
		if got := IsPrivateIPv6(tt.ip); got != tt.want {
			t.Errorf("IsPrivateIPv6(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestIsLocalDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   bool
	}{
		{"localhost", true},
		{"printer.local", true},
		{"db.internal", true},
		{"nas.lan", true},
		{"router.home", true},
		{"fileserver.corp", true},
		{"example.com", false},
		{"internal.example.com", false},
	}

	for _, tt := range tests {
		if got := IsLocalDomain(tt.domain); got != tt.want {
			t.Errorf("IsLocalDomain(%q) = %v, want %v", tt.domain, got, tt.want)
		}
	}
}

func TestShouldFilter(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		kind     Kind
		filtered bool
	}{
		{"private ipv4", "192.168.1.1", KindIPv4, true},
		{"public ipv4", "8.8.8.8", KindIPv4, false},
		{"loopback ipv6", "::1", KindIPv6, true},
		{"public ipv6", "2001:4860:4860::8888", KindIPv6, false},
		{"local domain", "printer.local", KindDomain, true},
		{"public domain", "example.com", KindDomain, false},
		{"md5 never filtered", "d41d8cd98f00b204e9800998ecf8427e", KindMD5, false},
		{"sha256 never filtered", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", KindSHA256, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ShouldFilter(tt.value, tt.kind)
			if res.Filtered != tt.filtered {
				t.Errorf("ShouldFilter(%q, %v).Filtered = %v, want %v", tt.value, tt.kind, res.Filtered, tt.filtered)
			}
			if res.Filtered && res.Reason == "" {
				t.Error("filtered result must carry a reason")
			}
			if !res.Filtered && res.Reason != "" {
				t.Errorf("unfiltered result must not carry a reason, got %q", res.Reason)
			}
		})
	}
}
