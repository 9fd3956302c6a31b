package checker

import (
	"strings"
	"testing"

	"github.com/gustycube/repuhub/internal/provider"
)

func success(rep provider.Reputation) provider.Verdict {
	return provider.Verdict{Status: provider.StatusSuccess, Reputation: rep}
}

func TestSynthesize(t *testing.T) {
	tests := []struct {
		name        string
		results     map[string]provider.Verdict
		wantRisk    Risk
		wantFlagged int
	}{
		{
			name:     "no results",
			results:  map[string]provider.Verdict{},
			wantRisk: RiskUnknown,
		},
		{
			name: "only failures",
			results: map[string]provider.Verdict{
				"a": {Status: provider.StatusError, Error: "timeout"},
				"b": {Status: provider.StatusUnsupported},
			},
			wantRisk: RiskUnknown,
		},
		{
			name: "all clean",
			results: map[string]provider.Verdict{
				"a": success(provider.ReputationClean),
				"b": success(provider.ReputationClean),
			},
			wantRisk: RiskLow,
		},
		{
			name: "single suspicious",
			results: map[string]provider.Verdict{
				"a": success(provider.ReputationSuspicious),
				"b": success(provider.ReputationClean),
			},
			wantRisk:    RiskMedium,
			wantFlagged: 1,
		},
		{
			name: "two suspicious",
			results: map[string]provider.Verdict{
				"a": success(provider.ReputationSuspicious),
				"b": success(provider.ReputationSuspicious),
				"c": success(provider.ReputationClean),
			},
			wantRisk:    RiskHigh,
			wantFlagged: 2,
		},
		{
			name: "one malicious outranks everything",
			results: map[string]provider.Verdict{
				"a": success(provider.ReputationMalicious),
				"b": success(provider.ReputationClean),
				"c": success(provider.ReputationClean),
			},
			wantRisk:    RiskHigh,
			wantFlagged: 1,
		},
		{
			name: "malicious verdict from failed lookup is ignored",
			results: map[string]provider.Verdict{
				"a": {Status: provider.StatusError, Reputation: provider.ReputationMalicious},
				"b": success(provider.ReputationClean),
			},
			wantRisk: RiskLow,
		},
		{
			name: "unknown reputation on success is not a flag",
			results: map[string]provider.Verdict{
				"a": success(provider.ReputationUnknown),
			},
			wantRisk: RiskLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Synthesize(tt.results)
			if got.OverallRisk != tt.wantRisk {
				t.Errorf("OverallRisk = %v, want %v", got.OverallRisk, tt.wantRisk)
			}
			if got.FlaggedBy != tt.wantFlagged {
				t.Errorf("FlaggedBy = %d, want %d", got.FlaggedBy, tt.wantFlagged)
			}
			if got.TotalProviders != len(tt.results) {
				t.Errorf("TotalProviders = %d, want %d", got.TotalProviders, len(tt.results))
			}
			if got.Recommendations == "" {
				t.Error("every summary carries a recommendation")
			}
		})
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	results := map[string]provider.Verdict{
		"a": success(provider.ReputationMalicious),
		"b": success(provider.ReputationSuspicious),
		"c": success(provider.ReputationClean),
		"d": {Status: provider.StatusError},
	}

	first := Synthesize(results)
	for i := 0; i < 50; i++ {
		if got := Synthesize(results); got != first {
			t.Fatalf("summary varies across calls: %+v != %+v", got, first)
		}
	}
}

func TestRecommendation_Texts(t *testing.T) {
	malicious := Synthesize(map[string]provider.Verdict{"a": success(provider.ReputationMalicious)})
	if !strings.Contains(malicious.Recommendations, "MALICIOUS") {
		t.Errorf("unexpected recommendation: %q", malicious.Recommendations)
	}

	suspicious := Synthesize(map[string]provider.Verdict{
		"a": success(provider.ReputationSuspicious),
		"b": success(provider.ReputationSuspicious),
	})
	if !strings.Contains(suspicious.Recommendations, "HIGH RISK") {
		t.Errorf("unexpected recommendation: %q", suspicious.Recommendations)
	}

	unknown := Synthesize(nil)
	if !strings.Contains(unknown.Recommendations, "UNKNOWN") {
		t.Errorf("unexpected recommendation: %q", unknown.Recommendations)
	}
}
