package provider

import (
	"context"
	"net/http"

	"github.com/gustycube/repuhub/internal/indicator"
)

// VirusTotal queries the VirusTotal v3 API for IPs, domains and file
// hashes.
type VirusTotal struct {
	hc      *http.Client
	baseURL string
}

func NewVirusTotal(hc *http.Client) *VirusTotal {
	return &VirusTotal{hc: hc, baseURL: "https://www.virustotal.com/api/v3"}
}

func (p *VirusTotal) Name() string { return "virustotal" }

type vtAnalysisStats struct {
	Malicious  float64 `json:"malicious"`
	Suspicious float64 `json:"suspicious"`
	Harmless   float64 `json:"harmless"`
	Undetected float64 `json:"undetected"`
	Timeout    float64 `json:"timeout"`
}

type vtResponse struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats vtAnalysisStats `json:"last_analysis_stats"`
			Country           string          `json:"country"`
			ASOwner           string          `json:"as_owner"`
			Categories        map[string]any  `json:"categories"`
			Reputation        float64         `json:"reputation"`
			TypeDescription   string          `json:"type_description"`
			Size              float64         `json:"size"`
			MD5               string          `json:"md5"`
			SHA1              string          `json:"sha1"`
			SHA256            string          `json:"sha256"`
			Names             []string        `json:"names"`
		} `json:"attributes"`
	} `json:"data"`
}

func (p *VirusTotal) CheckIP(ctx context.Context, ip, credential string) (Verdict, error) {
	var data vtResponse
	status, err := getJSON(ctx, p.hc, p.baseURL+"/ip_addresses/"+ip, map[string]string{"x-apikey": credential}, &data)
	if err != nil {
		return Verdict{}, err
	}
	if status == http.StatusUnauthorized {
		return errorVerdict(p.Name(), "Invalid API key"), nil
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	stats := data.Data.Attributes.LastAnalysisStats
	return Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: vtReputation(stats),
		Score:      scoreOf(stats.Malicious),
		Details: map[string]any{
			"malicious":  stats.Malicious,
			"suspicious": stats.Suspicious,
			"harmless":   stats.Harmless,
			"undetected": stats.Undetected,
			"timeout":    stats.Timeout,
			"country":    data.Data.Attributes.Country,
			"asOwner":    data.Data.Attributes.ASOwner,
		},
		URL: "https://www.virustotal.com/gui/ip-address/" + ip,
	}, nil
}

func (p *VirusTotal) CheckDomain(ctx context.Context, domain, credential string) (Verdict, error) {
	var data vtResponse
	status, err := getJSON(ctx, p.hc, p.baseURL+"/domains/"+domain, map[string]string{"x-apikey": credential}, &data)
	if err != nil {
		return Verdict{}, err
	}
	if status == http.StatusUnauthorized {
		return errorVerdict(p.Name(), "Invalid API key"), nil
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	stats := data.Data.Attributes.LastAnalysisStats
	return Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: vtReputation(stats),
		Score:      scoreOf(stats.Malicious),
		Details: map[string]any{
			"malicious":  stats.Malicious,
			"suspicious": stats.Suspicious,
			"harmless":   stats.Harmless,
			"undetected": stats.Undetected,
			"timeout":    stats.Timeout,
			"categories": data.Data.Attributes.Categories,
			"reputation": data.Data.Attributes.Reputation,
		},
		URL: "https://www.virustotal.com/gui/domain/" + domain,
	}, nil
}

func (p *VirusTotal) CheckHash(ctx context.Context, hash string, kind indicator.Kind, credential string) (Verdict, error) {
	var data vtResponse
	status, err := getJSON(ctx, p.hc, p.baseURL+"/files/"+hash, map[string]string{"x-apikey": credential}, &data)
	if err != nil {
		return Verdict{}, err
	}
	if status == http.StatusUnauthorized {
		return errorVerdict(p.Name(), "Invalid API key"), nil
	}
	if status == http.StatusNotFound {
		return Verdict{
			Provider:   p.Name(),
			Status:     StatusSuccess,
			Reputation: ReputationUnknown,
			Details:    map[string]any{"message": "Hash not found in VirusTotal database"},
			URL:        "https://www.virustotal.com/gui/file/" + hash,
		}, nil
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	attrs := data.Data.Attributes
	names := attrs.Names
	if len(names) > 3 {
		names = names[:3]
	}
	return Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: vtReputation(attrs.LastAnalysisStats),
		Score:      scoreOf(attrs.LastAnalysisStats.Malicious),
		Details: map[string]any{
			"malicious":  attrs.LastAnalysisStats.Malicious,
			"suspicious": attrs.LastAnalysisStats.Suspicious,
			"harmless":   attrs.LastAnalysisStats.Harmless,
			"undetected": attrs.LastAnalysisStats.Undetected,
			"fileType":   attrs.TypeDescription,
			"fileSize":   attrs.Size,
			"md5":        attrs.MD5,
			"sha1":       attrs.SHA1,
			"sha256":     attrs.SHA256,
			"names":      names,
		},
		URL: "https://www.virustotal.com/gui/file/" + hash,
	}, nil
}

func vtReputation(stats vtAnalysisStats) Reputation {
	if stats.Malicious > 5 {
		return ReputationMalicious
	}
	if stats.Malicious > 0 || stats.Suspicious > 3 {
		return ReputationSuspicious
	}
	return ReputationClean
}
