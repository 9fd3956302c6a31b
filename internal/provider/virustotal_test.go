package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gustycube/repuhub/internal/indicator"
)

func TestVTReputation(t *testing.T) {
	tests := []struct {
		name  string
		stats vtAnalysisStats
		want  Reputation
	}{
		{"clean", vtAnalysisStats{Harmless: 70}, ReputationClean},
		{"single detection is suspicious", vtAnalysisStats{Malicious: 1}, ReputationSuspicious},
		{"boundary stays suspicious", vtAnalysisStats{Malicious: 5}, ReputationSuspicious},
		{"six detections is malicious", vtAnalysisStats{Malicious: 6}, ReputationMalicious},
		{"many suspicious engines", vtAnalysisStats{Suspicious: 4}, ReputationSuspicious},
		{"few suspicious engines stay clean", vtAnalysisStats{Suspicious: 3}, ReputationClean},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vtReputation(tt.stats); got != tt.want {
				t.Errorf("vtReputation(%+v) = %v, want %v", tt.stats, got, tt.want)
			}
		})
	}
}

func TestVirusTotal_CheckIP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-apikey") != "vt-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/ip_addresses/8.8.8.8" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"attributes":{"last_analysis_stats":{"malicious":7,"harmless":60},"country":"US","as_owner":"GOOGLE"}}}`))
	}))
	defer ts.Close()

	p := NewVirusTotal(ts.Client())
	p.baseURL = ts.URL

	v, err := p.CheckIP(context.Background(), "8.8.8.8", "vt-key")
	if err != nil {
		t.Fatal(err)
	}
	if v.Status != StatusSuccess {
		t.Fatalf("status = %v: %s", v.Status, v.Error)
	}
	if v.Reputation != ReputationMalicious {
		t.Errorf("reputation = %v, want malicious", v.Reputation)
	}
	if v.Details["country"] != "US" {
		t.Errorf("details = %v", v.Details)
	}
	if v.URL == "" {
		t.Error("expected a reference URL")
	}
}

func TestVirusTotal_InvalidKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	p := NewVirusTotal(ts.Client())
	p.baseURL = ts.URL

	v, err := p.CheckIP(context.Background(), "8.8.8.8", "wrong")
	if err != nil {
		t.Fatal(err)
	}
	if v.Status != StatusError || v.Error != "Invalid API key" {
		t.Errorf("expected invalid-key error verdict, got %+v", v)
	}
}

func TestVirusTotal_HashNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	p := NewVirusTotal(ts.Client())
	p.baseURL = ts.URL

	v, err := p.CheckHash(context.Background(), "d41d8cd98f00b204e9800998ecf8427e", indicator.KindMD5, "vt-key")
	if err != nil {
		t.Fatal(err)
	}
	// An unseen hash is an answer, not a failure.
	if v.Status != StatusSuccess || v.Reputation != ReputationUnknown {
		t.Errorf("expected success/unknown for unseen hash, got %+v", v)
	}
}
