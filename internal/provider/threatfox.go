package provider

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gustycube/repuhub/internal/indicator"
)

// ThreatFox queries the abuse.ch ThreatFox IOC database. All indicator
// categories share the same search endpoint.
type ThreatFox struct {
	hc      *http.Client
	baseURL string
}

func NewThreatFox(hc *http.Client) *ThreatFox {
	return &ThreatFox{hc: hc, baseURL: "https://threatfox-api.abuse.ch/api/v1"}
}

func (p *ThreatFox) Name() string { return "threatfox" }

type threatFoxResponse struct {
	QueryStatus string `json:"query_status"`
	Data        []struct {
		ConfidenceLevel  float64  `json:"confidence_level"`
		MalwarePrintable string   `json:"malware_printable"`
		IOCType          string   `json:"ioc_type"`
		FirstSeen        string   `json:"first_seen"`
		LastSeen         string   `json:"last_seen"`
		Reference        string   `json:"reference"`
		Reporter         string   `json:"reporter"`
		Tags             []string `json:"tags"`
	} `json:"data"`
}

func (p *ThreatFox) CheckIP(ctx context.Context, ip, credential string) (Verdict, error) {
	return p.search(ctx, ip, credential)
}

func (p *ThreatFox) CheckDomain(ctx context.Context, domain, credential string) (Verdict, error) {
	return p.search(ctx, domain, credential)
}

func (p *ThreatFox) CheckHash(ctx context.Context, hash string, kind indicator.Kind, credential string) (Verdict, error) {
	return p.search(ctx, hash, credential)
}

func (p *ThreatFox) search(ctx context.Context, ioc, credential string) (Verdict, error) {
	form := url.Values{"query": {"search_ioc"}, "search_term": {ioc}}
	var data threatFoxResponse
	status, err := postForm(ctx, p.hc, p.baseURL+"/", form, map[string]string{"API-KEY": credential}, &data)
	if err != nil {
		return Verdict{}, err
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	browse := "https://threatfox.abuse.ch/browse.php?search=" + url.QueryEscape(ioc)
	if data.QueryStatus == "no_result" {
		return Verdict{
			Provider:   p.Name(),
			Status:     StatusSuccess,
			Reputation: ReputationClean,
			Details: map[string]any{
				"message":     "IOC not found in ThreatFox database",
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
		first := data.Data[0]
		malware := first.MalwarePrintable
		if malware == "" {
			malware = "Unknown Malware"
		}
		iocType := first.IOCType
		if iocType == "" {
			iocType = "Unknown Type"
		}
		v.Score = scoreOf(first.ConfidenceLevel)
		v.Details["confidence"] = first.ConfidenceLevel
		v.Details["malware"] = malware
		v.Details["type"] = iocType
		v.Details["firstSeen"] = first.FirstSeen
		v.Details["lastSeen"] = first.LastSeen
		v.Details["reference"] = first.Reference
		v.Details["reporter"] = first.Reporter
		v.Details["tags"] = first.Tags
	}
	return v, nil
}
