// Package retrieval selects candidate products for a query, either by cosine
// similarity over precomputed embeddings or by deterministic token-overlap
// matching when embeddings are unavailable. Retrieval is a pure scan over the
// injected catalog snapshot; there is no index to maintain.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/metrics"
)

// DefaultMinSimilarity is the cosine threshold below which a product is not
// considered a semantic candidate.
const DefaultMinSimilarity = 0.1

// significantTokenLen is the exclusive lower bound on token length for the
// token-overlap fallback; shorter tokens match too much.
const significantTokenLen = 2

// Filters are the hard constraints applied to candidates before returning.
type Filters struct {
	Categories      []string
	Price           domain.PriceFilter
	IncludeInactive bool
}

// Candidate is one retrieved product before ranking.
type Candidate struct {
	Product    domain.Product
	Similarity float64 // cosine similarity when the semantic path produced it
	Semantic   bool    // false when the token-overlap fallback produced it
}

// Retriever scans the catalog snapshot for candidates.
type Retriever struct {
	catalog       Catalog
	embedder      domain.Embedder // optional; nil forces the fallback path
	minSimilarity float64
	logger        *zap.Logger
}

// New creates a retriever. embedder may be nil. minSimilarity <= 0 falls
// back to DefaultMinSimilarity.
func New(catalog Catalog, embedder domain.Embedder, minSimilarity float64, logger *zap.Logger) *Retriever {
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	return &Retriever{
		catalog:       catalog,
		embedder:      embedder,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// Retrieve returns the deduplicated, filtered candidate set for the expanded
// query. Embedding provider failures degrade silently to the token-overlap
// path; an empty result is valid, not an error.
func (r *Retriever) Retrieve(ctx context.Context, expandedQuery string, f Filters) ([]Candidate, error) {
	products := r.catalog.Products()

	var candidates []Candidate
	if r.semanticAvailable(products) {
		semantic, err := r.retrieveSemantic(ctx, expandedQuery, products)
		if err != nil {
			r.logger.Warn("semantic retrieval failed, using token-overlap fallback", zap.Error(err))
			metrics.RetrievalFallbackTotal.Inc()
		} else {
			candidates = semantic
		}
	}
	if candidates == nil {
		candidates = r.retrieveByTokens(expandedQuery, products)
	}

	return r.applyFilters(candidates, f), nil
}

// semanticAvailable reports whether the embedding path can run at all.
func (r *Retriever) semanticAvailable(products []domain.Product) bool {
	if r.embedder == nil {
		return false
	}
	for i := range products {
		if len(products[i].Embedding) > 0 {
			return true
		}
	}
	return false
}

// retrieveSemantic embeds the query and keeps every product whose cosine
// similarity clears the threshold.
func (r *Retriever) retrieveSemantic(
	ctx context.Context, expandedQuery string, products []domain.Product,
) ([]Candidate, error) {
	embRes, err := r.embedder.Embed(ctx, expandedQuery)
	if err != nil {
		return nil, err
	}
	queryVec := embRes.Embedding
	if len(queryVec) == 0 {
		return nil, domain.ErrEmbeddingProviderError
	}

	candidates := make([]Candidate, 0, len(products))
	compared := 0
	for i := range products {
		p := &products[i]
		if len(p.Embedding) != len(queryVec) {
			continue
		}
		compared++
		sim := cosineSimilarity(queryVec, p.Embedding)
		if sim >= r.minSimilarity {
			candidates = append(candidates, Candidate{Product: *p, Similarity: sim, Semantic: true})
		}
	}
	if compared == 0 {
		// Query vector matched no catalog dimension; provider misconfig.
		return nil, fmt.Errorf("%w: query embedding dimension %d matches no product",
			domain.ErrEmbeddingProviderError, len(queryVec))
	}
	return candidates, nil
}

// retrieveByTokens is the deterministic fallback: a product matches when
// every significant query token appears as a substring of its indexed text,
// or the whole expanded query does.
func (r *Retriever) retrieveByTokens(expandedQuery string, products []domain.Product) []Candidate {
	queryLower := strings.ToLower(strings.TrimSpace(expandedQuery))
	tokens := significantTokens(queryLower)

	candidates := make([]Candidate, 0, len(products))
	for i := range products {
		p := &products[i]
		text := indexedText(p)
		if matchesTokens(text, queryLower, tokens) {
			candidates = append(candidates, Candidate{Product: *p})
		}
	}
	return candidates
}

func matchesTokens(text, fullQuery string, tokens []string) bool {
	if fullQuery != "" && strings.Contains(text, fullQuery) {
		return true
	}
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(text, tok) {
			return false
		}
	}
	return true
}

// applyFilters enforces category membership, price bounds, and the
// active-only default, then deduplicates by product id keeping first seen.
func (r *Retriever) applyFilters(candidates []Candidate, f Filters) []Candidate {
	wantCats := make(map[string]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		wantCats[strings.ToLower(c)] = struct{}{}
	}

	seen := make(map[int]struct{}, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if _, dup := seen[c.Product.ID]; dup {
			continue
		}
		if !f.IncludeInactive && !c.Product.Active {
			continue
		}
		if len(wantCats) > 0 {
			if _, ok := wantCats[strings.ToLower(c.Product.Category)]; !ok {
				continue
			}
		}
		if !f.Price.IsZero() && !f.Price.Allows(c.Product.Price) {
			continue
		}
		seen[c.Product.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// indexedText concatenates the searchable fields of a product.
func indexedText(p *domain.Product) string {
	parts := make([]string, 0, 4+len(p.Features)+len(p.Certifications))
	parts = append(parts, p.Name, p.Description, p.Category)
	parts = append(parts, p.Features...)
	parts = append(parts, p.Certifications...)
	return strings.ToLower(strings.Join(parts, " "))
}

// significantTokens returns the query tokens longer than the significance
// bound.
func significantTokens(query string) []string {
	var out []string
	for _, tok := range strings.Fields(query) {
		if len(tok) > significantTokenLen {
			out = append(out, tok)
		}
	}
	return out
}

// cosineSimilarity computes the cosine of the angle between two equal-length
// vectors. Zero vectors yield 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
