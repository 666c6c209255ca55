// Package intent assigns a primary intent and structured entities to a
// query. Pattern matching is the deterministic baseline; an optional LLM
// provider refines low-confidence results and is never allowed to fail the
// classification.
package intent

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/knowledge"
	"github.com/kailas-cloud/prodsearch/internal/query"
)

// DefaultLLMThreshold is the pattern confidence below which the external
// classifier is consulted.
const DefaultLLMThreshold = 0.7

// defaultConfidence applies when no pattern matches; browse is the catch-all.
const defaultConfidence = 0.5

type intentPattern struct {
	intent     domain.Intent
	re         *regexp.Regexp
	confidence float64
}

// Patterns are evaluated in this order; the first match wins. buy, compare
// and learn are deliberately narrower and checked before the broad browse
// catch-all so it cannot fire prematurely.
var intentPatterns = []intentPattern{
	{domain.IntentBuy, regexp.MustCompile(`\b(buy|purchase|order|need|want|shopping for|get me)\b`), 0.85},
	{domain.IntentCompare, regexp.MustCompile(`\b(compare|vs|versus|difference between|which is better|better than)\b`), 0.85},
	{domain.IntentLearn, regexp.MustCompile(`\b(what is|what are|how do|how does|how to|tell me about|explain|learn about)\b`), 0.8},
	{domain.IntentRecommend, regexp.MustCompile(`\b(recommend|suggest|best|top rated|ideal for|good for)\b`), 0.75},
	{domain.IntentBrowse, regexp.MustCompile(`\b(show|browse|list|see all|looking|explore)\b`), 0.6},
}

// Classifier assigns intent to queries. Stateless; safe for concurrent use.
type Classifier struct {
	kb        *knowledge.Base
	llm       domain.IntentProvider // optional
	threshold float64
	logger    *zap.Logger
}

// NewClassifier creates a classifier. llm may be nil; threshold <= 0 falls
// back to DefaultLLMThreshold.
func NewClassifier(kb *knowledge.Base, llm domain.IntentProvider, threshold float64, logger *zap.Logger) *Classifier {
	if threshold <= 0 {
		threshold = DefaultLLMThreshold
	}
	return &Classifier{kb: kb, llm: llm, threshold: threshold, logger: logger}
}

// Classify assigns an intent to q. q should be the cleaned query with stop
// words retained, since intent-bearing verbs ("need", "want") are stop words
// for retrieval purposes. Never returns an error: the pattern result is the
// guaranteed fallback for every external failure.
func (c *Classifier) Classify(ctx context.Context, q string) domain.UserIntent {
	q = strings.ToLower(strings.TrimSpace(q))

	chosen := domain.UserIntent{PrimaryIntent: domain.IntentBrowse, Confidence: defaultConfidence}
	for _, p := range intentPatterns {
		if p.re.MatchString(q) {
			chosen = domain.UserIntent{PrimaryIntent: p.intent, Confidence: p.confidence}
			break
		}
	}

	if chosen.Confidence < c.threshold && c.llm != nil {
		if ext, err := c.llm.ClassifyIntent(ctx, q); err != nil {
			c.logger.Warn("llm intent classification failed, keeping pattern result",
				zap.Error(err), zap.String("intent", string(chosen.PrimaryIntent)))
		} else if ext.PrimaryIntent.Valid() && ext.Confidence > chosen.Confidence {
			// Strictly greater: ties favor the deterministic, free pattern result.
			chosen = ext
		}
	}

	c.backfillEntities(q, &chosen)
	return chosen
}

// backfillEntities fills unset entity fields from the same static
// dictionaries the expander uses, so classification stays consistent with
// expansion even when the LLM path produced the result.
func (c *Classifier) backfillEntities(q string, ui *domain.UserIntent) {
	ents := &ui.Entities

	if ents.Category == "" {
		if cats := c.kb.MatchCategories(q); len(cats) > 0 {
			ents.Category = cats[0]
		}
	}
	if len(ents.Features) == 0 {
		ents.Features = c.kb.MatchFeatures(q)
	}
	if ents.PriceRange.IsZero() {
		ents.PriceRange = query.ExtractPriceFilter(q)
	}
	if ents.ProductType == "" {
		ents.ProductType = c.productType(q)
	}
	if ents.UseCase == "" {
		ents.UseCase = c.kb.MatchUseCase(q)
	}
	if ents.Urgency == "" {
		switch c.kb.MatchUrgency(q) {
		case "immediate":
			ents.Urgency = domain.UrgencyImmediate
		case "research":
			ents.Urgency = domain.UrgencyResearch
		default:
			if ui.PrimaryIntent == domain.IntentBuy {
				ents.Urgency = domain.UrgencyPlanned
			}
		}
	}
}

// productType picks the longest synonym-dictionary term contained in the
// query as the likely product noun.
func (c *Classifier) productType(q string) string {
	best := ""
	for _, term := range c.kb.SynonymTerms() {
		if len(term) > len(best) && strings.Contains(q, term) {
			best = term
		}
	}
	return best
}
