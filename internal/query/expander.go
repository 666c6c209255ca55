package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/knowledge"
)

// Expansion caps keep repeated expansion from growing a query without bound.
const (
	maxSynonymTerms  = 5
	maxCategoryTerms = 3
)

// Price filter patterns, checked in precedence order: under > over > between.
// The first pattern to match wins; only one filter is extracted per query.
var (
	priceUnderRe   = regexp.MustCompile(`(?:under|below|less than)\s*\$?(\d+(?:\.\d+)?)`)
	priceOverRe    = regexp.MustCompile(`(?:over|above|more than)\s*\$?(\d+(?:\.\d+)?)`)
	priceBetweenRe = regexp.MustCompile(`(?:between|from)\s*\$?(\d+(?:\.\d+)?)\s*(?:to|and|-)\s*\$?(\d+(?:\.\d+)?)`)
)

// Expander augments a normalized query with synonyms and category boost
// terms, and extracts category/feature/price filters. Fully deterministic:
// same query and dictionaries always produce identical output.
type Expander struct {
	kb *knowledge.Base
}

// NewExpander creates an expander over the given knowledge base.
func NewExpander(kb *knowledge.Base) *Expander {
	return &Expander{kb: kb}
}

// ExpandResult is the outcome of one expansion pass.
type ExpandResult struct {
	ExpandedQuery string
	Categories    []string
	Features      []string
	PriceFilter   domain.PriceFilter
	Synonyms      []string
	Steps         []string
}

// Expand processes the normalized query. rawQuery is the original user text,
// used only for price-filter extraction so "$50" survives stop-word removal.
func (e *Expander) Expand(normalized, rawQuery string) ExpandResult {
	var res ExpandResult
	res.ExpandedQuery = normalized

	present := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		present[tok] = struct{}{}
	}
	appendTerm := func(term string) bool {
		allPresent := true
		for _, tok := range strings.Fields(term) {
			if _, ok := present[tok]; !ok {
				allPresent = false
				break
			}
		}
		if allPresent {
			return false
		}
		res.ExpandedQuery += " " + term
		for _, tok := range strings.Fields(term) {
			present[tok] = struct{}{}
		}
		return true
	}

	// Synonym expansion: every dictionary term contained in the query
	// contributes its synonyms; at most maxSynonymTerms are appended.
	appendedSyn := 0
	for _, term := range e.kb.SynonymTerms() {
		if !strings.Contains(normalized, term) {
			continue
		}
		for _, syn := range e.kb.Synonyms(term) {
			res.Synonyms = appendUnique(res.Synonyms, syn)
			if appendedSyn < maxSynonymTerms && appendTerm(syn) {
				appendedSyn++
			}
		}
	}
	if len(res.Synonyms) > 0 {
		res.Steps = append(res.Steps, fmt.Sprintf("added %d synonym(s)", len(res.Synonyms)))
	}

	// Category detection plus bounded boost-term expansion.
	appendedCat := 0
	for _, name := range e.kb.MatchCategories(normalized) {
		res.Categories = appendUnique(res.Categories, name)
		cat, _ := e.kb.CategoryByName(name)
		for _, boost := range cat.BoostTerms {
			if appendedCat >= maxCategoryTerms {
				break
			}
			if appendTerm(boost) {
				appendedCat++
			}
		}
	}
	if len(res.Categories) > 0 {
		res.Steps = append(res.Steps,
			fmt.Sprintf("matched categories: %s", strings.Join(res.Categories, ", ")))
	}

	res.Features = e.kb.MatchFeatures(normalized)
	if len(res.Features) > 0 {
		res.Steps = append(res.Steps,
			fmt.Sprintf("matched features: %s", strings.Join(res.Features, ", ")))
	}

	res.PriceFilter = ExtractPriceFilter(strings.ToLower(rawQuery))
	if !res.PriceFilter.IsZero() {
		res.Steps = append(res.Steps, "extracted price filter")
	}

	return res
}

// ExtractPriceFilter matches the three price patterns in precedence order.
func ExtractPriceFilter(raw string) domain.PriceFilter {
	if m := priceUnderRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return domain.PriceFilter{Max: &v}
		}
	}
	if m := priceOverRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return domain.PriceFilter{Min: &v}
		}
	}
	if m := priceBetweenRe.FindStringSubmatch(raw); m != nil {
		lo, err1 := strconv.ParseFloat(m[1], 64)
		hi, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			return domain.PriceFilter{Min: &lo, Max: &hi}
		}
	}
	return domain.PriceFilter{}
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
