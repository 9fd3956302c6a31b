package provider

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gustycube/repuhub/internal/indicator"
)

// URLhaus queries the abuse.ch URLhaus database for domains and payload
// hashes. SHA1 is not supported upstream.
type URLhaus struct {
	hc      *http.Client
	baseURL string
}

func NewURLhaus(hc *http.Client) *URLhaus {
	return &URLhaus{hc: hc, baseURL: "https://urlhaus-api.abuse.ch/v1"}
}

func (p *URLhaus) Name() string { return "urlhaus" }

type urlhausResponse struct {
	QueryStatus string           `json:"query_status"`
	URLCount    any              `json:"url_count"`
	Blacklists  map[string]any   `json:"blacklists"`
	FirstSeen   string           `json:"firstseen"`
	LastSeen    string           `json:"lastseen"`
	FileType    string           `json:"file_type"`
	FileSize    any              `json:"file_size"`
	Signature   string           `json:"signature"`
	VirusTotal  map[string]any   `json:"virustotal"`
	URLs        []map[string]any `json:"urls"`
}

func (p *URLhaus) CheckDomain(ctx context.Context, domain, credential string) (Verdict, error) {
	form := url.Values{"host": {domain}}
	var data urlhausResponse
	status, err := postForm(ctx, p.hc, p.baseURL+"/host/", form, map[string]string{"Auth-Key": credential}, &data)
	if err != nil {
		return Verdict{}, err
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	browse := "https://urlhaus.abuse.ch/browse.php?search=" + url.QueryEscape(domain)
	if data.QueryStatus == "no_results" {
		return Verdict{
			Provider:   p.Name(),
			Status:     StatusSuccess,
			Reputation: ReputationClean,
			Details: map[string]any{
				"message":     "Domain not found in URLhaus database",
				"queryStatus": data.QueryStatus,
			},
			URL: browse,
		}, nil
	}
	urls := data.URLs
	if len(urls) > 5 {
		urls = urls[:5]
	}
	return Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: ReputationMalicious,
		Details: map[string]any{
			"urlCount":   data.URLCount,
			"blacklists": data.Blacklists,
			"firstSeen":  data.FirstSeen,
			"urls":       urls,
		},
		URL: browse,
	}, nil
}

func (p *URLhaus) CheckHash(ctx context.Context, hash string, kind indicator.Kind, credential string) (Verdict, error) {
	if kind == indicator.KindSHA1 {
		return Verdict{
			Provider: p.Name(),
			Status:   StatusUnsupported,
			Error:    "urlhaus does not support SHA1 hash lookups",
		}, nil
	}
	form := url.Values{string(kind) + "_hash": {hash}}
	var data urlhausResponse
	status, err := postForm(ctx, p.hc, p.baseURL+"/payload/", form, map[string]string{"Auth-Key": credential}, &data)
	if err != nil {
		return Verdict{}, err
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	browse := "https://urlhaus.abuse.ch/browse.php?search=" + url.QueryEscape(hash)
	if data.QueryStatus == "no_results" {
		return Verdict{
			Provider:   p.Name(),
			Status:     StatusSuccess,
			Reputation: ReputationUnknown,
			Details: map[string]any{
				"message":     "Hash not found in URLhaus database",
				"queryStatus": data.QueryStatus,
			},
			URL: browse,
		}, nil
	}
	urls := data.URLs
	if len(urls) > 3 {
		urls = urls[:3]
	}
	return Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: ReputationMalicious,
		Details: map[string]any{
			"fileType":   data.FileType,
			"fileSize":   data.FileSize,
			"signature":  data.Signature,
			"firstSeen":  data.FirstSeen,
			"lastSeen":   data.LastSeen,
			"urlCount":   data.URLCount,
			"virustotal": data.VirusTotal,
			"urls":       urls,
		},
		URL: browse,
	}, nil
}
