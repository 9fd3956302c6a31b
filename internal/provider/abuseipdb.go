package provider

import (
	"context"
	"net/http"
	"net/url"
)

// AbuseIPDB queries the AbuseIPDB v2 check endpoint. IP addresses only.
type AbuseIPDB struct {
	hc      *http.Client
	baseURL string
}

func NewAbuseIPDB(hc *http.Client) *AbuseIPDB {
	return &AbuseIPDB{hc: hc, baseURL: "https://api.abuseipdb.com/api/v2"}
}

func (p *AbuseIPDB) Name() string { return "abuseipdb" }

type abuseIPDBResponse struct {
	Data struct {
		AbuseConfidenceScore float64          `json:"abuseConfidenceScore"`
		TotalReports         float64          `json:"totalReports"`
		NumDistinctUsers     float64          `json:"numDistinctUsers"`
		LastReportedAt       string           `json:"lastReportedAt"`
		CountryCode          string           `json:"countryCode"`
		ISP                  string           `json:"isp"`
		UsageType            string           `json:"usageType"`
		Domain               string           `json:"domain"`
		IsWhitelisted        bool             `json:"isWhitelisted"`
		Reports              []map[string]any `json:"reports"`
	} `json:"data"`
}

func (p *AbuseIPDB) CheckIP(ctx context.Context, ip, credential string) (Verdict, error) {
	q := url.Values{}
	q.Set("ipAddress", ip)
	q.Set("maxAgeInDays", "90")
	q.Set("verbose", "")
	var data abuseIPDBResponse
	status, err := getJSON(ctx, p.hc, p.baseURL+"/check?"+q.Encode(), map[string]string{
		"Key":    credential,
		"Accept": "application/json",
	}, &data)
	if err != nil {
		return Verdict{}, err
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errorVerdict(p.Name(), "Invalid API key"), nil
	case http.StatusTooManyRequests:
		return errorVerdict(p.Name(), "Rate limit exceeded"), nil
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	d := data.Data
	reports := d.Reports
	if len(reports) > 5 {
		reports = reports[:5]
	}
	return Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: abuseIPDBReputation(d.AbuseConfidenceScore),
		Score:      scoreOf(d.AbuseConfidenceScore),
		Details: map[string]any{
			"abuseScore":       d.AbuseConfidenceScore,
			"totalReports":     d.TotalReports,
			"numDistinctUsers": d.NumDistinctUsers,
			"lastReportedAt":   d.LastReportedAt,
			"country":          d.CountryCode,
			"isp":              d.ISP,
			"usageType":        d.UsageType,
			"domain":           d.Domain,
			"isWhitelisted":    d.IsWhitelisted,
			"reports":          reports,
		},
		URL: "https://www.abuseipdb.com/check/" + ip,
	}, nil
}

func abuseIPDBReputation(score float64) Reputation {
	if score >= 75 {
		return ReputationMalicious
	}
	if score >= 25 {
		return ReputationSuspicious
	}
	return ReputationClean
}
