package httpclient

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/gustycube/repuhub/internal/breaker"
)

// Default returns the shared client used for all provider API calls. The
// transport allows a healthy amount of connection reuse against the ten
// upstream APIs; the overall timeout is the hard per-call budget backstop.
// Each upstream host sits behind its own circuit, so a dead API fails fast
// instead of holding every lookup for the full timeout.
func Default() *http.Client {
	return WithBreaker(breaker.DefaultConfig())
}

// WithBreaker builds a client whose transport consults a per-host circuit
// before dialing.
func WithBreaker(cfg breaker.Config) *http.Client {
	tr := &http.Transport{
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: false},
		MaxIdleConns:          256,
		MaxConnsPerHost:       32,
		MaxIdleConnsPerHost:   16,
		ResponseHeaderTimeout: 10 * time.Second,
		IdleConnTimeout:       30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: &guarded{base: tr, hosts: breaker.NewHostBreaker(cfg)},
		Timeout:   15 * time.Second,
	}
}

type guarded struct {
	base  http.RoundTripper
	hosts *breaker.HostBreaker
}

// RoundTrip rejects with breaker.ErrOpen while the host circuit is open.
// A 5xx counts as a failure but the response is still handed back; the
// provider adapter decides how to surface it.
func (g *guarded) RoundTrip(req *http.Request) (*http.Response, error) {
	host := req.URL.Host
	if err := g.hosts.Allow(host); err != nil {
		return nil, err
	}
	resp, err := g.base.RoundTrip(req)
	g.hosts.Record(host, err == nil && resp.StatusCode < http.StatusInternalServerError)
	return resp, err
}
