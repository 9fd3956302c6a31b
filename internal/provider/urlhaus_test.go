package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gustycube/repuhub/internal/indicator"
)

func TestURLhaus_SHA1Unsupported(t *testing.T) {
	p := NewURLhaus(nil)

	v, err := p.CheckHash(context.Background(), "da39a3ee5e6b4b0d3255bfef95601890afd80709", indicator.KindSHA1, "key")
	if err != nil {
		t.Fatal(err)
	}
	if v.Status != StatusUnsupported {
		t.Errorf("expected unsupported for sha1, got %+v", v)
	}
}

func TestURLhaus_CheckDomain(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Auth-Key") != "abuse-key" {
			t.Errorf("missing auth header")
		}
		if got := r.FormValue("host"); got != "evil.example.com" {
			t.Errorf("host = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query_status":"ok","url_count":"12","urls":[{"url":"http://evil.example.com/a"}]}`))
	}))
	defer ts.Close()

	p := NewURLhaus(ts.Client())
	p.baseURL = ts.URL

	v, err := p.CheckDomain(context.Background(), "evil.example.com", "abuse-key")
	if err != nil {
		t.Fatal(err)
	}
	if v.Status != StatusSuccess || v.Reputation != ReputationMalicious {
		t.Errorf("listed domain must be malicious, got %+v", v)
	}
}

func TestURLhaus_NoResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query_status":"no_results"}`))
	}))
	defer ts.Close()

	p := NewURLhaus(ts.Client())
	p.baseURL = ts.URL

	domain, err := p.CheckDomain(context.Background(), "example.com", "abuse-key")
	if err != nil {
		t.Fatal(err)
	}
	if domain.Reputation != ReputationClean {
		t.Errorf("absent domain is clean, got %v", domain.Reputation)
	}

	hash, err := p.CheckHash(context.Background(), "d41d8cd98f00b204e9800998ecf8427e", indicator.KindMD5, "abuse-key")
	if err != nil {
		t.Fatal(err)
	}
	if hash.Reputation != ReputationUnknown {
		t.Errorf("absent hash is unknown, got %v", hash.Reputation)
	}
}
