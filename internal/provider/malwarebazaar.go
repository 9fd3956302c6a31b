package provider

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gustycube/repuhub/internal/indicator"
)

// MalwareBazaar queries the abuse.ch MalwareBazaar sample database. File
// hashes only.
type MalwareBazaar struct {
	hc      *http.Client
	baseURL string
}

func NewMalwareBazaar(hc *http.Client) *MalwareBazaar {
	return &MalwareBazaar{hc: hc, baseURL: "https://mb-api.abuse.ch/api/v1"}
}

func (p *MalwareBazaar) Name() string { return "malwarebazaar" }

type malwareBazaarResponse struct {
	QueryStatus string `json:"query_status"`
	Data        []struct {
		FileName  string   `json:"file_name"`
		FileType  string   `json:"file_type"`
		FileSize  any      `json:"file_size"`
		Signature string   `json:"signature"`
		FirstSeen string   `json:"first_seen"`
		LastSeen  string   `json:"last_seen"`
		Tags      []string `json:"tags"`
		SHA256    string   `json:"sha256_hash"`
	} `json:"data"`
}

func (p *MalwareBazaar) CheckHash(ctx context.Context, hash string, kind indicator.Kind, credential string) (Verdict, error) {
	form := url.Values{"query": {"get_info"}, "hash": {hash}}
	var data malwareBazaarResponse
	status, err := postForm(ctx, p.hc, p.baseURL+"/", form, map[string]string{"Auth-Key": credential}, &data)
	if err != nil {
		return Verdict{}, err
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	browse := "https://bazaar.abuse.ch/browse.php?search=" + url.QueryEscape(hash)
	if data.QueryStatus == "hash_not_found" || data.QueryStatus == "no_results" {
		return Verdict{
			Provider:   p.Name(),
			Status:     StatusSuccess,
			Reputation: ReputationUnknown,
			Details: map[string]any{
				"message":     "Hash not found in MalwareBazaar database",
				"queryStatus": data.QueryStatus,
			},
			URL: browse,
		}, nil
	}
	if data.QueryStatus != "ok" {
		return errorVerdict(p.Name(), "API query status: "+data.QueryStatus), nil
	}
	v := Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: ReputationMalicious,
		Details:    map[string]any{"recordCount": len(data.Data)},
		URL:        browse,
	}
	if len(data.Data) > 0 {
		sample := data.Data[0]
		v.Details["fileName"] = sample.FileName
		v.Details["fileType"] = sample.FileType
		v.Details["fileSize"] = sample.FileSize
		v.Details["signature"] = sample.Signature
		v.Details["firstSeen"] = sample.FirstSeen
		v.Details["lastSeen"] = sample.LastSeen
		v.Details["tags"] = sample.Tags
		v.Details["sha256"] = sample.SHA256
	}
	return v, nil
}
