package httpclient

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gustycube/repuhub/internal/breaker"
)

func drain(t *testing.T, resp *http.Response) {
	t.Helper()
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func TestTransportFailsFastAfterServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cli := WithBreaker(breaker.Config{
		Window:       time.Minute,
		Cooldown:     time.Minute,
		MinRequests:  2,
		FailureRatio: 0.5,
		MaxProbes:    1,
	})

	for i := 0; i < 2; i++ {
		resp, err := cli.Get(srv.URL)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("request %d: status %d", i, resp.StatusCode)
		}
		drain(t, resp)
	}

	// Circuit tripped: the next call must not reach the server.
	if _, err := cli.Get(srv.URL); !errors.Is(err, breaker.ErrOpen) {
		t.Errorf("expected circuit-open error, got %v", err)
	}
}

func TestTransportPassesHealthyResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cli := Default()
	for i := 0; i < 10; i++ {
		resp, err := cli.Get(srv.URL)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status %d", i, resp.StatusCode)
		}
		drain(t, resp)
	}
}
