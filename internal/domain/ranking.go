package domain

// Factor names the ten independent ranking signals. Each factor value is
// normalized to [0,1] before weighting.
type Factor string

const (
	FactorSemanticRelevance    Factor = "semantic_relevance"
	FactorExactMatchBonus      Factor = "exact_match_bonus"
	FactorCategoryRelevance    Factor = "category_relevance"
	FactorSustainability       Factor = "sustainability_score"
	FactorPopularity           Factor = "popularity_score"
	FactorPriceCompetitiveness Factor = "price_competitiveness"
	FactorAvailabilityBonus    Factor = "availability_bonus"
	FactorIntentAlignment      Factor = "intent_alignment"
	FactorUserPreferenceMatch  Factor = "user_preference_match"
	FactorFreshness            Factor = "freshness"
)

// AllFactors lists every factor in canonical order. Weight vectors and factor
// maps always carry exactly these keys.
var AllFactors = []Factor{
	FactorSemanticRelevance,
	FactorExactMatchBonus,
	FactorCategoryRelevance,
	FactorSustainability,
	FactorPopularity,
	FactorPriceCompetitiveness,
	FactorAvailabilityBonus,
	FactorIntentAlignment,
	FactorUserPreferenceMatch,
	FactorFreshness,
}

// RankingFactors holds the per-product factor scores.
type RankingFactors map[Factor]float64

// RankedProduct is a scored, positioned search hit.
type RankedProduct struct {
	Product     Product        `json:"product"`
	FinalScore  float64        `json:"final_score"` // [0,1]
	Factors     RankingFactors `json:"ranking_factors"`
	Explanation []string       `json:"explanation"`
	Position    int            `json:"position"` // 1-based
}

// SearchResult is the orchestrator's reply for one query.
type SearchResult struct {
	Query    ProcessedQuery  `json:"query"`
	Intent   UserIntent      `json:"intent"`
	Products []RankedProduct `json:"products"`
	Total    int             `json:"total"`
	Message  string          `json:"message,omitempty"` // set on zero-result outcomes
	Cached   bool            `json:"cached"`
}
