package provider

import (
	"context"
	"net/http"
	"net/url"
)

// IPQS queries IPQualityScore fraud scoring for IPs and malicious-URL
// scanning for domains.
type IPQS struct {
	hc *http.Client
}

func NewIPQS(hc *http.Client) *IPQS { return &IPQS{hc: hc} }

func (p *IPQS) Name() string { return "ipqs" }

type ipqsResponse struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	FraudScore     float64 `json:"fraud_score"`
	Proxy          bool    `json:"proxy"`
	VPN            bool    `json:"vpn"`
	Tor            bool    `json:"tor"`
	Crawler        bool    `json:"crawler"`
	RecentAbuse    bool    `json:"recent_abuse"`
	BotStatus      bool    `json:"bot_status"`
	CountryCode    string  `json:"country_code"`
	City           string  `json:"city"`
	ISP            string  `json:"ISP"`
	ConnectionType string  `json:"connection_type"`
	RiskScore      float64 `json:"risk_score"`
	Malware        bool    `json:"malware"`
	Phishing       bool    `json:"phishing"`
	Spamming       bool    `json:"spamming"`
	Suspicious     bool    `json:"suspicious"`
	Adult          bool    `json:"adult"`
	DomainAge      any     `json:"domain_age"`
	DomainRank     float64 `json:"domain_rank"`
	ContentType    string  `json:"content_type"`
}

func (p *IPQS) CheckIP(ctx context.Context, ip, credential string) (Verdict, error) {
	endpoint := "https://ipqualityscore.com/api/json/ip/" + url.PathEscape(credential) + "/" + ip + "?strictness=0"
	var data ipqsResponse
	status, err := getJSON(ctx, p.hc, endpoint, nil, &data)
	if err != nil {
		return Verdict{}, err
	}
	if status == http.StatusForbidden {
		return errorVerdict(p.Name(), "Invalid API key"), nil
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	if !data.Success {
		msg := data.Message
		if msg == "" {
			msg = "API request failed"
		}
		return errorVerdict(p.Name(), msg), nil
	}
	return Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: ipqsIPReputation(data),
		Score:      scoreOf(data.FraudScore),
		Details: map[string]any{
			"fraudScore":     data.FraudScore,
			"proxy":          data.Proxy,
			"vpn":            data.VPN,
			"tor":            data.Tor,
			"crawler":        data.Crawler,
			"recentAbuse":    data.RecentAbuse,
			"botStatus":      data.BotStatus,
			"country":        data.CountryCode,
			"city":           data.City,
			"isp":            data.ISP,
			"connectionType": data.ConnectionType,
		},
		URL: "https://www.ipqualityscore.com/free-ip-lookup-proxy-vpn-test/lookup/" + ip,
	}, nil
}

func (p *IPQS) CheckDomain(ctx context.Context, domain, credential string) (Verdict, error) {
	endpoint := "https://ipqualityscore.com/api/json/url/" + url.PathEscape(credential) + "/" + url.QueryEscape(domain)
	var data ipqsResponse
	status, err := getJSON(ctx, p.hc, endpoint, nil, &data)
	if err != nil {
		return Verdict{}, err
	}
	if status == http.StatusForbidden {
		return errorVerdict(p.Name(), "Invalid API key"), nil
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	if !data.Success {
		msg := data.Message
		if msg == "" {
			msg = "API request failed"
		}
		return errorVerdict(p.Name(), msg), nil
	}
	return Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: ipqsDomainReputation(data),
		Score:      scoreOf(data.RiskScore),
		Details: map[string]any{
			"riskScore":   data.RiskScore,
			"malware":     data.Malware,
			"phishing":    data.Phishing,
			"spamming":    data.Spamming,
			"suspicious":  data.Suspicious,
			"adult":       data.Adult,
			"domainAge":   data.DomainAge,
			"domainRank":  data.DomainRank,
			"contentType": data.ContentType,
		},
		URL: "https://www.ipqualityscore.com/threat-feeds/malicious-url-scanner",
	}, nil
}

func ipqsIPReputation(data ipqsResponse) Reputation {
	if data.FraudScore >= 85 || data.RecentAbuse {
		return ReputationMalicious
	}
	if data.FraudScore >= 50 || data.Proxy || data.VPN {
		return ReputationSuspicious
	}
	return ReputationClean
}

func ipqsDomainReputation(data ipqsResponse) Reputation {
	if data.Malware || data.Phishing {
		return ReputationMalicious
	}
	if data.Suspicious || data.Spamming || data.RiskScore >= 70 {
		return ReputationSuspicious
	}
	return ReputationClean
}
