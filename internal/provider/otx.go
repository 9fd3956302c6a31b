package provider

import (
	"context"
	"net/http"

	"github.com/gustycube/repuhub/internal/indicator"
)

// OTX queries AlienVault Open Threat Exchange general indicator endpoints.
type OTX struct {
	hc      *http.Client
	baseURL string
}

func NewOTX(hc *http.Client) *OTX {
	return &OTX{hc: hc, baseURL: "https://otx.alienvault.com/api/v1"}
}

func (p *OTX) Name() string { return "otx" }

type otxPulse struct {
	Name    string   `json:"name"`
	Created string   `json:"created"`
	Tags    []string `json:"tags"`
}

type otxResponse struct {
	PulseInfo struct {
		Count  float64    `json:"count"`
		Pulses []otxPulse `json:"pulses"`
	} `json:"pulse_info"`
	Reputation      float64        `json:"reputation"`
	CountryName     string         `json:"country_name"`
	City            string         `json:"city"`
	ASN             string         `json:"asn"`
	Latitude        float64        `json:"latitude"`
	Longitude       float64        `json:"longitude"`
	Alexa           string         `json:"alexa"`
	Whois           string         `json:"whois"`
	MalwareFamilies []any          `json:"malware_families"`
	Analysis        map[string]any `json:"analysis"`
}

func (p *OTX) CheckIP(ctx context.Context, ip, credential string) (Verdict, error) {
	return p.check(ctx, p.baseURL+"/indicators/IPv4/"+ip+"/general", credential,
		"https://otx.alienvault.com/indicator/ip/"+ip, func(data otxResponse, v *Verdict) {
			v.Details["country"] = data.CountryName
			v.Details["city"] = data.City
			v.Details["asn"] = data.ASN
			v.Details["latitude"] = data.Latitude
			v.Details["longitude"] = data.Longitude
			v.Details["reputation"] = data.Reputation
		})
}

func (p *OTX) CheckDomain(ctx context.Context, domain, credential string) (Verdict, error) {
	return p.check(ctx, p.baseURL+"/indicators/domain/"+domain+"/general", credential,
		"https://otx.alienvault.com/indicator/domain/"+domain, func(data otxResponse, v *Verdict) {
			v.Details["alexa"] = data.Alexa
			v.Details["whois"] = data.Whois
		})
}

func (p *OTX) CheckHash(ctx context.Context, hash string, kind indicator.Kind, credential string) (Verdict, error) {
	return p.check(ctx, p.baseURL+"/indicators/file/"+hash+"/general", credential,
		"https://otx.alienvault.com/indicator/file/"+hash, func(data otxResponse, v *Verdict) {
			v.Details["malwareFamilies"] = data.MalwareFamilies
			v.Details["analysis"] = data.Analysis
		})
}

func (p *OTX) check(ctx context.Context, endpoint, credential, refURL string, extra func(otxResponse, *Verdict)) (Verdict, error) {
	var data otxResponse
	status, err := getJSON(ctx, p.hc, endpoint, map[string]string{"X-OTX-API-KEY": credential}, &data)
	if err != nil {
		return Verdict{}, err
	}
	if status == http.StatusForbidden {
		return errorVerdict(p.Name(), "Invalid API key"), nil
	}
	if status < 200 || status >= 300 {
		return errorVerdict(p.Name(), apiError(status)), nil
	}
	pulses := data.PulseInfo.Pulses
	if len(pulses) > 5 {
		pulses = pulses[:5]
	}
	v := Verdict{
		Provider:   p.Name(),
		Status:     StatusSuccess,
		Reputation: otxReputation(data),
		Score:      scoreOf(data.PulseInfo.Count),
		Details: map[string]any{
			"pulseCount":    data.PulseInfo.Count,
			"relatedPulses": pulses,
		},
		URL: refURL,
	}
	extra(data, &v)
	return v, nil
}

func otxReputation(data otxResponse) Reputation {
	if data.Reputation < 0 || data.PulseInfo.Count > 10 {
		return ReputationMalicious
	}
	if data.PulseInfo.Count > 0 {
		return ReputationSuspicious
	}
	return ReputationClean
}
