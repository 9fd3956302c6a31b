package checker

import (
	"fmt"

	"github.com/gustycube/repuhub/internal/provider"
)

// Risk is the synthesized classification across all provider verdicts.
type Risk string

const (
	RiskLow     Risk = "low"
	RiskMedium  Risk = "medium"
	RiskHigh    Risk = "high"
	RiskUnknown Risk = "unknown"
)

// Summary is the aggregated view over a verdict map.
type Summary struct {
	OverallRisk     Risk   `json:"overallRisk"`
	FlaggedBy       int    `json:"flaggedBy"`
	TotalProviders  int    `json:"totalProviders"`
	Recommendations string `json:"recommendations"`
}

// Synthesize computes the overall risk from per-provider verdicts. Only
// successful verdicts count. The rules apply in fixed order: any malicious
// verdict or two suspicious ones mean high, a single suspicious one means
// medium, otherwise low; no successful verdicts at all means unknown. The
// result does not depend on map iteration order.
func Synthesize(results map[string]provider.Verdict) Summary {
	var successes, malicious, suspicious, flagged int
	for _, v := range results {
		if v.Status != provider.StatusSuccess {
			continue
		}
		successes++
		switch v.Reputation {
		case provider.ReputationMalicious:
			malicious++
			flagged++
		case provider.ReputationSuspicious:
			suspicious++
			flagged++
		}
	}

	var overall Risk
	switch {
	case successes == 0:
		overall = RiskUnknown
	case malicious > 0:
		overall = RiskHigh
	case suspicious >= 2:
		overall = RiskHigh
	case suspicious == 1:
		overall = RiskMedium
	default:
		overall = RiskLow
	}

	return Summary{
		OverallRisk:     overall,
		FlaggedBy:       flagged,
		TotalProviders:  len(results),
		Recommendations: recommendation(overall, flagged, malicious > 0),
	}
}

func recommendation(overall Risk, flagged int, anyMalicious bool) string {
	switch overall {
	case RiskHigh:
		if anyMalicious {
			return fmt.Sprintf("⚠️ MALICIOUS: Flagged by %d provider(s). Block or investigate immediately.", flagged)
		}
		return "⚠️ HIGH RISK: Flagged as suspicious by multiple providers. Exercise extreme caution."
	case RiskMedium:
		return fmt.Sprintf("⚠️ SUSPICIOUS: Flagged by %d provider(s). Proceed with caution.", flagged)
	case RiskLow:
		return "✅ LOW RISK: No threats detected across all providers."
	default:
		return "ℹ️ UNKNOWN: Unable to determine reputation. No data available from providers."
	}
}
