package ranking

import "github.com/kailas-cloud/prodsearch/internal/domain"

// baseWeights is the default weight distribution across the ten factors.
// It sums to 1.0.
var baseWeights = map[domain.Factor]float64{
	domain.FactorSemanticRelevance:    0.25,
	domain.FactorExactMatchBonus:      0.15,
	domain.FactorCategoryRelevance:    0.12,
	domain.FactorSustainability:       0.15,
	domain.FactorPopularity:           0.10,
	domain.FactorPriceCompetitiveness: 0.08,
	domain.FactorAvailabilityBonus:    0.05,
	domain.FactorIntentAlignment:      0.05,
	domain.FactorUserPreferenceMatch:  0.03,
	domain.FactorFreshness:            0.02,
}

// intentOverrides replace only the named keys; every other factor keeps its
// base weight. The resulting vectors are intentionally not renormalized to
// sum to 1.0: the weighted sum is clamped into [0,1] downstream, and
// renormalizing would dilute the deliberate emphasis shifts.
var intentOverrides = map[domain.Intent]map[domain.Factor]float64{
	domain.IntentBuy: {
		domain.FactorExactMatchBonus:      0.20,
		domain.FactorAvailabilityBonus:    0.15,
		domain.FactorPriceCompetitiveness: 0.12,
	},
	domain.IntentCompare: {
		domain.FactorCategoryRelevance:    0.18,
		domain.FactorPriceCompetitiveness: 0.15,
		domain.FactorPopularity:           0.15,
	},
	domain.IntentLearn: {
		domain.FactorSemanticRelevance: 0.35,
		domain.FactorExactMatchBonus:   0.10,
	},
	domain.IntentRecommend: {
		domain.FactorPopularity:          0.20,
		domain.FactorSustainability:      0.20,
		domain.FactorUserPreferenceMatch: 0.10,
	},
	// browse keeps the base distribution.
}

// weightsFor returns the effective weight vector for an intent.
func weightsFor(intent domain.Intent) map[domain.Factor]float64 {
	overrides := intentOverrides[intent]
	weights := make(map[domain.Factor]float64, len(baseWeights))
	for f, w := range baseWeights {
		if ov, ok := overrides[f]; ok {
			weights[f] = ov
			continue
		}
		weights[f] = w
	}
	return weights
}
