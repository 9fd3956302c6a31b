package provider

import (
	"context"
	"net/http"
	"net/url"
)

// Shodan queries Shodan host and DNS endpoints. No reputation scoring
// upstream; vulnerability counts drive a weak suspicion signal.
type Shodan struct {
	hc      *http.Client
	baseURL string
}

func NewShodan(hc *http.Client) *Shodan {
	return &Shodan{hc: hc, baseURL: "https://api.shodan.io"}
}

func (p *Shodan) Name() string { return "shodan" }

type shodanHostResponse struct {
	Ports       []any    `json:"ports"`
	Hostnames   []string `json:"hostnames"`
	Org         string   `json:"org"`
	ISP         string   `json:"isp"`
	ASN         string   `json:"asn"`
	CountryCode string   `json:"country_code"`
	City        string   `json:"city"`
	Vulns       []string `json:"vulns"`
	Tags        []string `json:"tags"`
	Data        []struct {
		Port      any    `json:"port"`
		Transport string `json:"transport"`
		Product   string `json:"product"`
		Version   string `json:"version"`
	} `json:"data"`
}

type shodanDomainResponse struct {
	Subdomains []string         `json:"subdomains"`
	Tags       []string         `json:"tags"`
	Data       []map[string]any `json:"data"`
}

func (p *Shodan) CheckIP(ctx context.Context, ip, credential string) (Verdict, error) {
	var data shodanHostResponse
	status, err := getJSON(ctx, p.hc, p.baseURL+"/shodan/host/"+ip+"?key="+url.QueryEscape(credential), nil, &data)
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
			Details:    map[string]any{"message": "IP not found in Shodan database"},
			URL:        "https://www.shodan.io/host/" + ip,
		}, nil
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	services := make([]map[string]any, 0, 5)
	for i, s := range data.Data {
		if i == 5 {
			break
		}
		services = append(services, map[string]any{
			"port":      s.Port,
			"transport": s.Transport,
			"product":   s.Product,
			"version":   s.Version,
		})
	}
	return Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: shodanReputation(data),
		Details: map[string]any{
			"ports":        data.Ports,
			"hostnames":    data.Hostnames,
			"organization": data.Org,
			"isp":          data.ISP,
			"asn":          data.ASN,
			"country":      data.CountryCode,
			"city":         data.City,
			"vulns":        data.Vulns,
			"tags":         data.Tags,
			"services":     services,
		},
		URL: "https://www.shodan.io/host/" + ip,
	}, nil
}

func (p *Shodan) CheckDomain(ctx context.Context, domain, credential string) (Verdict, error) {
	var data shodanDomainResponse
	status, err := getJSON(ctx, p.hc, p.baseURL+"/dns/domain/"+domain+"?key="+url.QueryEscape(credential), nil, &data)
	if err != nil {
		return Verdict{}, err
	}
	if status == http.StatusUnauthorized {
		return errorVerdict(p.Name(), "Invalid API key"), nil
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	subdomains := data.Subdomains
	if len(subdomains) > 10 {
		subdomains = subdomains[:10]
	}
	records := data.Data
	if len(records) > 5 {
		records = records[:5]
	}
	return Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: ReputationUnknown,
		Details: map[string]any{
			"subdomains": subdomains,
			"tags":       data.Tags,
			"data":       records,
		},
		URL: "https://www.shodan.io/domain/" + domain,
	}, nil
}

func shodanReputation(data shodanHostResponse) Reputation {
	if len(data.Vulns) > 5 {
		return ReputationSuspicious
	}
	return ReputationUnknown
}
