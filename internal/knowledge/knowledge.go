// Package knowledge holds the static dictionaries behind query processing:
// stop-words, typo corrections, synonyms, category definitions, feature and
// use-case vocabularies. The tables are injected via a Base value rather than
// package-level singletons so tests can supply trimmed fixtures.
package knowledge

import (
	"sort"
	"strings"
)

// Category describes one catalog category for query expansion and ranking.
type Category struct {
	Name       string   // canonical lowercase name
	Keywords   []string // query substrings indicating the category
	BoostTerms []string // terms appended to the expanded query
	Related    []string // statically related category names
	Popularity float64  // prior in [0.3, 0.9] used when no category matches
}

// Base is a read-only snapshot of the static dictionaries.
type Base struct {
	stopWords  map[string]struct{}
	typos      map[string]string
	synonyms   map[string][]string
	categories []Category
	byName     map[string]*Category
	features   []string
	useCases   map[string][]string // use case -> indicator substrings
	urgent     []string            // "immediate" urgency indicators
	research   []string            // "research" urgency indicators
}

// New builds a Base from explicit tables. Category names are canonicalized
// to lowercase.
func New(
	stopWords []string,
	typos map[string]string,
	synonyms map[string][]string,
	categories []Category,
	features []string,
	useCases map[string][]string,
	urgent, research []string,
) *Base {
	b := &Base{
		stopWords: make(map[string]struct{}, len(stopWords)),
		typos:     typos,
		synonyms:  synonyms,
		features:  features,
		useCases:  useCases,
		urgent:    urgent,
		research:  research,
		byName:    make(map[string]*Category, len(categories)),
	}
	for _, w := range stopWords {
		b.stopWords[w] = struct{}{}
	}
	b.categories = make([]Category, len(categories))
	copy(b.categories, categories)
	for i := range b.categories {
		b.categories[i].Name = strings.ToLower(b.categories[i].Name)
		b.byName[b.categories[i].Name] = &b.categories[i]
	}
	return b
}

// Default returns the built-in production dictionaries.
func Default() *Base {
	return New(
		defaultStopWords,
		defaultTypos,
		defaultSynonyms,
		defaultCategories,
		defaultFeatures,
		defaultUseCases,
		defaultUrgent,
		defaultResearch,
	)
}

// IsStopWord reports whether token is in the stop-word set.
func (b *Base) IsStopWord(token string) bool {
	_, ok := b.stopWords[token]
	return ok
}

// CorrectTypo returns the static correction for token, if one exists.
func (b *Base) CorrectTypo(token string) (string, bool) {
	corrected, ok := b.typos[token]
	return corrected, ok
}

// Synonyms returns the synonym list for term, or nil.
func (b *Base) Synonyms(term string) []string {
	return b.synonyms[term]
}

// SynonymTerms returns every dictionary term that has synonyms, sorted for
// deterministic iteration.
func (b *Base) SynonymTerms() []string {
	terms := make([]string, 0, len(b.synonyms))
	for t := range b.synonyms {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Categories returns the category definitions in declaration order.
func (b *Base) Categories() []Category {
	return b.categories
}

// CategoryByName looks up a category by canonical lowercase name.
func (b *Base) CategoryByName(name string) (Category, bool) {
	c, ok := b.byName[strings.ToLower(name)]
	if !ok {
		return Category{}, false
	}
	return *c, true
}

// Related reports whether categories a and b are statically related.
// The relationship is checked in both directions.
func (b *Base) Related(a, other string) bool {
	a = strings.ToLower(a)
	other = strings.ToLower(other)
	if c, ok := b.byName[a]; ok {
		for _, r := range c.Related {
			if r == other {
				return true
			}
		}
	}
	if c, ok := b.byName[other]; ok {
		for _, r := range c.Related {
			if r == a {
				return true
			}
		}
	}
	return false
}

// PopularityPrior returns the category's static popularity prior, or the
// neutral floor 0.3 for unknown categories.
func (b *Base) PopularityPrior(name string) float64 {
	if c, ok := b.byName[strings.ToLower(name)]; ok {
		return c.Popularity
	}
	return 0.3
}

// MatchCategories returns the names of every category whose keyword appears
// as a substring of query, in declaration order.
func (b *Base) MatchCategories(query string) []string {
	var matched []string
	for _, c := range b.categories {
		for _, kw := range c.Keywords {
			if strings.Contains(query, kw) {
				matched = append(matched, c.Name)
				break
			}
		}
	}
	return matched
}

// MatchFeatures returns every known feature term appearing in query, in
// dictionary order.
func (b *Base) MatchFeatures(query string) []string {
	var matched []string
	for _, f := range b.features {
		if strings.Contains(query, f) {
			matched = append(matched, f)
		}
	}
	return matched
}

// MatchUseCase returns the first use case whose indicator appears in query.
func (b *Base) MatchUseCase(query string) string {
	names := make([]string, 0, len(b.useCases))
	for name := range b.useCases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, ind := range b.useCases[name] {
			if strings.Contains(query, ind) {
				return name
			}
		}
	}
	return ""
}

// MatchUrgency classifies query urgency from indicator substrings.
// Returns "immediate", "research", or "" when no indicator matches.
func (b *Base) MatchUrgency(query string) string {
	for _, ind := range b.urgent {
		if strings.Contains(query, ind) {
			return "immediate"
		}
	}
	for _, ind := range b.research {
		if strings.Contains(query, ind) {
			return "research"
		}
	}
	return ""
}
