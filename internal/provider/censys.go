package provider

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
)

// Censys queries the Censys search API. The credential is an
// "API_ID:API_SECRET" pair sent as HTTP basic auth.
type Censys struct {
	hc      *http.Client
	baseURL string
}

func NewCensys(hc *http.Client) *Censys {
	return &Censys{hc: hc, baseURL: "https://search.censys.io/api/v2"}
}

func (p *Censys) Name() string { return "censys" }

func (p *Censys) basicAuth(credential string) (string, bool) {
	id, secret, ok := strings.Cut(credential, ":")
	if !ok || secret == "" {
		return "", false
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(id+":"+secret)), true
}

type censysHostResponse struct {
	Result struct {
		Services []struct {
			Port              any    `json:"port"`
			ServiceName       string `json:"service_name"`
			TransportProtocol string `json:"transport_protocol"`
		} `json:"services"`
		Protocols        []string       `json:"protocols"`
		Location         map[string]any `json:"location"`
		AutonomousSystem map[string]any `json:"autonomous_system"`
		LastUpdatedAt    string         `json:"last_updated_at"`
	} `json:"result"`
}

type censysCertResponse struct {
	Result struct {
		Total float64          `json:"total"`
		Hits  []map[string]any `json:"hits"`
	} `json:"result"`
}

func (p *Censys) CheckIP(ctx context.Context, ip, credential string) (Verdict, error) {
	auth, ok := p.basicAuth(credential)
	if !ok {
		return errorVerdict(p.Name(), "Censys API key should be in format: API_ID:API_SECRET"), nil
	}
	var data censysHostResponse
	status, err := getJSON(ctx, p.hc, p.baseURL+"/hosts/"+ip, map[string]string{"Authorization": auth}, &data)
	if err != nil {
		return Verdict{}, err
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errorVerdict(p.Name(), "Invalid API credentials"), nil
	case http.StatusNotFound:
		return Verdict{
			Provider:   p.Name(),
			Status:     StatusSuccess,
			Reputation: ReputationUnknown,
			Details:    map[string]any{"message": "IP not found in Censys database"},
			URL:        "https://search.censys.io/hosts/" + ip,
		}, nil
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	services := make([]map[string]any, 0, 5)
	for i, s := range data.Result.Services {
		if i == 5 {
			break
		}
		services = append(services, map[string]any{
			"port":        s.Port,
			"serviceName": s.ServiceName,
			"transport":   s.TransportProtocol,
		})
	}
	return Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: ReputationUnknown,
		Details: map[string]any{
			"services":         services,
			"protocols":        data.Result.Protocols,
			"location":         data.Result.Location,
			"autonomousSystem": data.Result.AutonomousSystem,
			"lastUpdated":      data.Result.LastUpdatedAt,
		},
		URL: "https://search.censys.io/hosts/" + ip,
	}, nil
}

func (p *Censys) CheckDomain(ctx context.Context, domain, credential string) (Verdict, error) {
	auth, ok := p.basicAuth(credential)
	if !ok {
		return errorVerdict(p.Name(), "Censys API key should be in format: API_ID:API_SECRET"), nil
	}
	endpoint := p.baseURL + "/certificates/search?q=names:" + url.QueryEscape(domain) + "&per_page=5"
	var data censysCertResponse
	status, err := getJSON(ctx, p.hc, endpoint, map[string]string{"Authorization": auth}, &data)
	if err != nil {
		return Verdict{}, err
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errorVerdict(p.Name(), "Invalid API credentials"), nil
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	return Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: ReputationUnknown,
		Details: map[string]any{
			"certificateCount": data.Result.Total,
			"certificates":     data.Result.Hits,
		},
		URL: "https://search.censys.io/search?resource=certificates&q=" + url.QueryEscape(domain),
	}, nil
}
