package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/query"
	"github.com/kailas-cloud/prodsearch/internal/retrieval"
)

// Normalizer cleans and typo-corrects raw queries.
type Normalizer interface {
	Normalize(ctx context.Context, raw string) query.NormalizeResult
}

// Expander augments the normalized query and extracts filters.
type Expander interface {
	Expand(normalized, rawQuery string) query.ExpandResult
}

// IntentClassifier detects the user's shopping intent. Never errors.
type IntentClassifier interface {
	Classify(ctx context.Context, q string) domain.UserIntent
}

// Retriever produces the unranked candidate set.
type Retriever interface {
	Retrieve(ctx context.Context, expandedQuery string, f retrieval.Filters) ([]retrieval.Candidate, error)
}

// Ranker scores and orders candidates.
type Ranker interface {
	Rank(
		candidates []retrieval.Candidate,
		pq domain.ProcessedQuery,
		ui domain.UserIntent,
		prefs *domain.UserPreferences,
	) []domain.RankedProduct
}

// ResultCache stores completed search results keyed by request fingerprint.
type ResultCache interface {
	Get(key string) (domain.SearchResult, bool)
	Set(key string, value domain.SearchResult, ttl time.Duration) error
}
