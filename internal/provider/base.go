package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const userAgent = "RepuHub/1.0"

func errorVerdict(name, msg string) Verdict {
	return Verdict{Provider: name, Status: StatusError, Error: msg}
}

func scoreOf(v float64) *float64 { return &v }

// getJSON performs a GET and decodes a 2xx body into out. The returned
// status code lets adapters map provider-specific 401/404/429 handling.
func getJSON(ctx context.Context, hc *http.Client, rawURL string, headers map[string]string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	return doJSON(hc, req, headers, out)
}

// postForm performs a form-encoded POST and decodes a 2xx body into out.
func postForm(ctx context.Context, hc *http.Client, rawURL string, form url.Values, headers map[string]string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return doJSON(hc, req, headers, out)
}

func doJSON(hc *http.Client, req *http.Request, headers map[string]string, out any) (int, error) {
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("network error: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, nil
	}
	if out != nil {
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("invalid JSON response from provider: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func apiError(status int) string {
	return fmt.Sprintf("API error: %d", status)
}
