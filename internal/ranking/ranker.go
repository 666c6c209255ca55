// Package ranking scores candidate products on ten independent factors and
// orders them with intent-dependent weighting. Scoring is a pure function of
// its inputs: identical candidates, query, intent and preferences always
// produce byte-identical output.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/knowledge"
	"github.com/kailas-cloud/prodsearch/internal/retrieval"
)

// explanationThreshold is the minimum weighted contribution for a factor to
// appear in the explanation.
const explanationThreshold = 0.05

// maxExplanationFactors bounds how many factor contributions are rendered.
const maxExplanationFactors = 3

// Price-bracket ladder used when the user supplied no max-price preference.
var priceBrackets = []struct {
	below float64
	score float64
}{
	{50, 1.0},
	{100, 0.8},
	{200, 0.6},
	{500, 0.4},
}

// Ranker scores and orders retrieval candidates.
type Ranker struct {
	kb            *knowledge.Base
	maxKnownID    int
	exactMatchCap float64
}

// New creates a ranker. maxKnownID is the largest product id in the catalog
// snapshot, used as the freshness denominator. exactMatchCap <= 0 defaults
// to 1.0.
func New(kb *knowledge.Base, maxKnownID int, exactMatchCap float64) *Ranker {
	if exactMatchCap <= 0 {
		exactMatchCap = 1.0
	}
	return &Ranker{kb: kb, maxKnownID: maxKnownID, exactMatchCap: exactMatchCap}
}

// Rank scores every candidate, sorts descending by final score (ties broken
// by ascending product id), and assigns contiguous 1-based positions. An
// empty candidate set returns an empty list, never an error.
func (r *Ranker) Rank(
	candidates []retrieval.Candidate,
	pq domain.ProcessedQuery,
	ui domain.UserIntent,
	prefs *domain.UserPreferences,
) []domain.RankedProduct {
	weights := weightsFor(ui.PrimaryIntent)

	ranked := make([]domain.RankedProduct, 0, len(candidates))
	for _, cand := range candidates {
		factors := r.scoreFactors(cand, pq, ui, prefs)

		score := 0.0
		for _, f := range domain.AllFactors {
			score += factors[f] * weights[f]
		}
		score = clamp01(score)

		ranked = append(ranked, domain.RankedProduct{
			Product:     cand.Product,
			FinalScore:  score,
			Factors:     factors,
			Explanation: explain(factors, weights, score, cand.Product),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].FinalScore != ranked[j].FinalScore {
			return ranked[i].FinalScore > ranked[j].FinalScore
		}
		return ranked[i].Product.ID < ranked[j].Product.ID
	})
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}

// scoreFactors computes all ten factor values for one candidate.
func (r *Ranker) scoreFactors(
	cand retrieval.Candidate,
	pq domain.ProcessedQuery,
	ui domain.UserIntent,
	prefs *domain.UserPreferences,
) domain.RankingFactors {
	p := cand.Product
	name := strings.ToLower(p.Name)
	desc := strings.ToLower(p.Description)
	text := name + " " + desc + " " + strings.ToLower(p.Category+" "+
		strings.Join(p.Features, " ")+" "+strings.Join(p.Certifications, " "))

	return domain.RankingFactors{
		domain.FactorSemanticRelevance:    r.semanticRelevance(cand, pq, text),
		domain.FactorExactMatchBonus:      r.exactMatchBonus(pq, name, desc),
		domain.FactorCategoryRelevance:    r.categoryRelevance(p.Category, ui),
		domain.FactorSustainability:       float64(p.SustainabilityScore) / 100,
		domain.FactorPopularity:           popularityScore(p),
		domain.FactorPriceCompetitiveness: priceCompetitiveness(p.Price, prefs),
		domain.FactorAvailabilityBonus:    availabilityBonus(p.Active),
		domain.FactorIntentAlignment:      intentAlignment(p, ui.PrimaryIntent),
		domain.FactorUserPreferenceMatch:  preferenceMatch(p, prefs),
		domain.FactorFreshness:            r.freshness(p.ID),
	}
}

// semanticRelevance is the retrieval similarity when the semantic path
// produced the candidate, otherwise the fraction of query terms present in
// the product text.
func (r *Ranker) semanticRelevance(cand retrieval.Candidate, pq domain.ProcessedQuery, text string) float64 {
	if cand.Semantic {
		return clamp01(cand.Similarity)
	}
	return tokenCoverage(pq.ExtractedTerms, text)
}

// exactMatchBonus rewards whole-query hits in name (1.0) and description
// (0.8); otherwise a weighted blend of per-token coverage, capped.
func (r *Ranker) exactMatchBonus(pq domain.ProcessedQuery, name, desc string) float64 {
	q := pq.NormalizedQuery
	if q == "" {
		return 0
	}
	if strings.Contains(name, q) {
		return min(1.0, r.exactMatchCap)
	}
	if strings.Contains(desc, q) {
		return min(0.8, r.exactMatchCap)
	}
	blend := 0.6*tokenCoverage(pq.ExtractedTerms, name) + 0.3*tokenCoverage(pq.ExtractedTerms, desc)
	return min(clamp01(blend), r.exactMatchCap)
}

// categoryRelevance scores the candidate's category against the intent's
// extracted category: exact 1.0, statically related 0.7, otherwise the
// category's popularity prior.
func (r *Ranker) categoryRelevance(productCategory string, ui domain.UserIntent) float64 {
	wanted := ui.Entities.Category
	if wanted != "" {
		if strings.EqualFold(productCategory, wanted) {
			return 1.0
		}
		if r.kb.Related(productCategory, wanted) {
			return 0.7
		}
	}
	return r.kb.PopularityPrior(productCategory)
}

func popularityScore(p domain.Product) float64 {
	score := p.AverageRating / 5
	if len(p.Certifications) > 0 {
		score += 0.1
	}
	return min(score, 1.0)
}

// priceCompetitiveness scores against the user's max-price preference when
// present, otherwise against the static price-bracket ladder.
func priceCompetitiveness(price float64, prefs *domain.UserPreferences) float64 {
	if prefs != nil && prefs.MaxPrice != nil {
		maxPrice := *prefs.MaxPrice
		if maxPrice <= 0 {
			return 0
		}
		if price > maxPrice {
			return 0
		}
		return 1 - 0.5*(price/maxPrice)
	}
	for _, b := range priceBrackets {
		if price < b.below {
			return b.score
		}
	}
	return 0.2
}

func availabilityBonus(active bool) float64 {
	if active {
		return 1.0
	}
	return 0
}

// intentAlignment starts from a 0.5 baseline and adds intent-specific boosts.
func intentAlignment(p domain.Product, intent domain.Intent) float64 {
	score := 0.5
	switch intent {
	case domain.IntentBuy:
		if p.Active && p.Price > 0 {
			score += 0.3
		}
	case domain.IntentRecommend:
		if p.AverageRating >= 4.0 {
			score += 0.3
		}
		if p.SustainabilityScore >= 80 {
			score += 0.2
		}
	case domain.IntentCompare:
		if p.AverageRating > 0 {
			score += 0.2
		}
		if len(p.Features) > 0 {
			score += 0.1
		}
	case domain.IntentLearn:
		if len(p.Description) > 100 {
			score += 0.2
		}
	case domain.IntentBrowse:
		if p.Active {
			score += 0.1
		}
	}
	return min(score, 1.0)
}

// preferenceMatch averages up to three boolean preference checks; 0.5
// neutral when no preferences are supplied.
func preferenceMatch(p domain.Product, prefs *domain.UserPreferences) float64 {
	if prefs == nil {
		return 0.5
	}

	checks := 0
	matched := 0

	if len(prefs.PreferredCategories) > 0 {
		checks++
		for _, c := range prefs.PreferredCategories {
			if strings.EqualFold(p.Category, c) {
				matched++
				break
			}
		}
	}
	if prefs.SustainabilityFocus {
		checks++
		if p.SustainabilityScore >= 70 {
			matched++
		}
	}
	if prefs.PriceBracket != "" {
		checks++
		if bracketFor(p.Price) == strings.ToLower(prefs.PriceBracket) {
			matched++
		}
	}

	if checks == 0 {
		return 0.5
	}
	return float64(matched) / float64(checks)
}

func bracketFor(price float64) string {
	switch {
	case price < 50:
		return "budget"
	case price <= 200:
		return "mid"
	default:
		return "premium"
	}
}

// freshness proxies recency by id: newer products have higher ids. The
// catalog carries no creation timestamps, so this is an explicit,
// documented approximation.
func (r *Ranker) freshness(id int) float64 {
	if r.maxKnownID <= 0 {
		return 0
	}
	return min(float64(id)/float64(r.maxKnownID), 1.0)
}

// factorLabels render factor names for explanations.
var factorLabels = map[domain.Factor]string{
	domain.FactorSemanticRelevance:    "semantic relevance",
	domain.FactorExactMatchBonus:      "exact match",
	domain.FactorCategoryRelevance:    "category relevance",
	domain.FactorSustainability:       "sustainability",
	domain.FactorPopularity:           "popularity",
	domain.FactorPriceCompetitiveness: "price competitiveness",
	domain.FactorAvailabilityBonus:    "availability",
	domain.FactorIntentAlignment:      "intent alignment",
	domain.FactorUserPreferenceMatch:  "preference match",
	domain.FactorFreshness:            "freshness",
}

// explain renders the top weighted contributions above the significance
// threshold as percentage shares, plus qualifying highlight strings.
func explain(
	factors domain.RankingFactors,
	weights map[domain.Factor]float64,
	finalScore float64,
	p domain.Product,
) []string {
	type contribution struct {
		factor domain.Factor
		value  float64
	}
	contribs := make([]contribution, 0, len(domain.AllFactors))
	for _, f := range domain.AllFactors {
		contribs = append(contribs, contribution{f, factors[f] * weights[f]})
	}
	// Canonical factor order breaks value ties so output is deterministic.
	sort.SliceStable(contribs, func(i, j int) bool {
		return contribs[i].value > contribs[j].value
	})

	var out []string
	for _, c := range contribs {
		if len(out) >= maxExplanationFactors || c.value < explanationThreshold {
			break
		}
		share := 0.0
		if finalScore > 0 {
			share = c.value / finalScore * 100
		}
		out = append(out, fmt.Sprintf("%s: %.0f%% of score", factorLabels[c.factor], share))
	}

	if factors[domain.FactorSustainability] > 0.8 {
		out = append(out, fmt.Sprintf("High sustainability score (%d)", p.SustainabilityScore))
	}
	if p.AverageRating >= 4.5 {
		out = append(out, fmt.Sprintf("Top rated (%.1f/5.0)", p.AverageRating))
	}
	if factors[domain.FactorExactMatchBonus] >= 1.0 {
		out = append(out, "Exact name match")
	}
	return out
}

// tokenCoverage is the fraction of terms appearing as substrings of text.
func tokenCoverage(terms []string, text string) float64 {
	if len(terms) == 0 {
		return 0
	}
	hit := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			hit++
		}
	}
	return float64(hit) / float64(len(terms))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
