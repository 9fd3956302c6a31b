package provider

import (
	"context"
	"net/http"
)

// GreyNoise queries the GreyNoise community API. IP addresses only.
type GreyNoise struct {
	hc      *http.Client
	baseURL string
}

func NewGreyNoise(hc *http.Client) *GreyNoise {
	return &GreyNoise{hc: hc, baseURL: "https://api.greynoise.io/v3/community"}
}

func (p *GreyNoise) Name() string { return "greynoise" }

type greyNoiseResponse struct {
	Noise          bool   `json:"noise"`
	Riot           bool   `json:"riot"`
	Classification string `json:"classification"`
	ScannerName    string `json:"name"`
	Link           string `json:"link"`
	LastSeen       string `json:"last_seen"`
	Message        string `json:"message"`
}

func (p *GreyNoise) CheckIP(ctx context.Context, ip, credential string) (Verdict, error) {
	var data greyNoiseResponse
	status, err := getJSON(ctx, p.hc, p.baseURL+"/"+ip, map[string]string{"key": credential}, &data)
	if err != nil {
		return Verdict{}, err
	}
	switch status {
	case http.StatusUnauthorized:
		return errorVerdict(p.Name(), "Invalid API key"), nil
	case http.StatusTooManyRequests:
		return errorVerdict(p.Name(), "Rate limit exceeded"), nil
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	return Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: greyNoiseReputation(data),
		Details: map[string]any{
			"noise":          data.Noise,
			"riot":           data.Riot,
			"classification": data.Classification,
			"name":           data.ScannerName,
			"link":           data.Link,
			"lastSeen":       data.LastSeen,
			"message":        data.Message,
		},
		URL: "https://viz.greynoise.io/ip/" + ip,
	}, nil
}

func greyNoiseReputation(data greyNoiseResponse) Reputation {
	if data.Classification == "malicious" {
		return ReputationMalicious
	}
	if data.Noise && data.Classification != "benign" {
		return ReputationSuspicious
	}
	// RIOT marks common business services.
	if data.Riot {
		return ReputationClean
	}
	return ReputationUnknown
}
