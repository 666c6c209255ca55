// Package search composes the pipeline: cache check, normalization,
// expansion, intent classification, retrieval, ranking, cache write. Steps
// always run in that order; the cache is written only after the whole
// pipeline has succeeded.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/metrics"
	"github.com/kailas-cloud/prodsearch/internal/retrieval"
)

// Default pipeline limits, overridable via Options.
const (
	DefaultMaxResults      = 10
	DefaultExternalTimeout = 5 * time.Second
)

// noResultsMessage is the human-readable zero-result reply.
const noResultsMessage = "No products matched your search. Try different keywords or remove filters."

// Request is one search call.
type Request struct {
	Query           string
	Preferences     *domain.UserPreferences
	Categories      []string // hard category filter, optional
	IncludeInactive bool
	Limit           int // 0 means the configured maximum
}

// Options tune the pipeline.
type Options struct {
	MaxResults      int           // 0 -> DefaultMaxResults
	ExternalTimeout time.Duration // 0 -> DefaultExternalTimeout
	ResultTTL       time.Duration // 0 -> cache default
}

// Service is the search orchestrator.
type Service struct {
	norm    Normalizer
	exp     Expander
	intents IntentClassifier
	retr    Retriever
	rank    Ranker
	cache   ResultCache
	logger  *zap.Logger
	opts    Options
}

// New creates the orchestrator. cache may be nil to disable result caching.
func New(
	norm Normalizer,
	exp Expander,
	intents IntentClassifier,
	retr Retriever,
	rank Ranker,
	cache ResultCache,
	logger *zap.Logger,
	opts Options,
) *Service {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.ExternalTimeout <= 0 {
		opts.ExternalTimeout = DefaultExternalTimeout
	}
	return &Service{
		norm:    norm,
		exp:     exp,
		intents: intents,
		retr:    retr,
		rank:    rank,
		cache:   cache,
		logger:  logger,
		opts:    opts,
	}
}

// Search runs the full pipeline for one request. Zero candidates is a valid
// outcome carried in the result message, not an error. Only invalid input and
// internal pipeline faults surface as errors.
func (s *Service) Search(ctx context.Context, req Request) (domain.SearchResult, error) {
	start := time.Now()

	raw := strings.TrimSpace(req.Query)
	if raw == "" {
		return domain.SearchResult{}, fmt.Errorf("%w: empty query", domain.ErrInvalidArgument)
	}
	limit := req.Limit
	if limit <= 0 || limit > s.opts.MaxResults {
		limit = s.opts.MaxResults
	}

	key := cacheKey(raw, req, limit)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			cached.Cached = true
			metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
			metrics.SearchDuration.WithLabelValues("true").Observe(time.Since(start).Seconds())
			metrics.SearchesTotal.WithLabelValues(string(cached.Intent.PrimaryIntent), "ok").Inc()
			return cached, nil
		}
		metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
	}

	result, err := s.runPipeline(ctx, raw, req, limit)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("unknown", "error").Inc()
		return domain.SearchResult{}, err
	}

	if s.cache != nil && ctx.Err() == nil {
		if err := s.cache.Set(key, result, s.opts.ResultTTL); err != nil {
			s.logger.Warn("result cache write failed", zap.Error(err))
		}
	}

	outcome := "ok"
	if result.Total == 0 {
		outcome = "empty"
	}
	metrics.SearchesTotal.WithLabelValues(string(result.Intent.PrimaryIntent), outcome).Inc()
	metrics.SearchDuration.WithLabelValues("false").Observe(time.Since(start).Seconds())

	s.logger.Info("search completed",
		zap.String("intent", string(result.Intent.PrimaryIntent)),
		zap.Int("results", result.Total),
		zap.Duration("took", time.Since(start)))
	return result, nil
}

// runPipeline executes NORMALIZE through RANK. External calls run under a
// bounded context; their failures degrade inside the respective component and
// never surface here. A panic in the deterministic steps is a programming
// defect and is reported as ErrPipelineFault.
func (s *Service) runPipeline(
	ctx context.Context, raw string, req Request, limit int,
) (result domain.SearchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("search pipeline panic", zap.Any("panic", r), zap.String("query", raw))
			err = fmt.Errorf("%w: %v", domain.ErrPipelineFault, r)
		}
	}()

	extCtx, cancel := context.WithTimeout(ctx, s.opts.ExternalTimeout)
	defer cancel()

	normRes := s.norm.Normalize(extCtx, raw)
	expRes := s.exp.Expand(normRes.Normalized, raw)

	pq := domain.ProcessedQuery{
		OriginalQuery:   raw,
		NormalizedQuery: normRes.Normalized,
		CorrectedQuery:  normRes.Corrected,
		ExpandedQuery:   expRes.ExpandedQuery,
		ExtractedTerms:  normRes.Terms,
		Categories:      expRes.Categories,
		Features:        expRes.Features,
		PriceFilter:     expRes.PriceFilter,
		ProcessingSteps: append(append([]string{}, normRes.Steps...), expRes.Steps...),
	}

	// Classification runs after expansion so entity backfill can rely on the
	// same dictionaries that produced the expansion. The corrected query keeps
	// intent-bearing stop-words like "need" and "want".
	ui := s.intents.Classify(extCtx, normRes.Corrected)
	pq.Confidence = ui.Confidence

	candidates, err := s.retr.Retrieve(extCtx, pq.ExpandedQuery, retrieval.Filters{
		Categories:      req.Categories,
		Price:           pq.PriceFilter,
		IncludeInactive: req.IncludeInactive,
	})
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("%w: retrieval: %w", domain.ErrPipelineFault, err)
	}
	metrics.CandidatesRetrieved.Observe(float64(len(candidates)))

	ranked := s.rank.Rank(candidates, pq, ui, req.Preferences)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	result = domain.SearchResult{
		Query:    pq,
		Intent:   ui,
		Products: ranked,
		Total:    len(ranked),
	}
	if result.Total == 0 {
		result.Message = noResultsMessage
		s.logger.Info("search produced no candidates", zap.String("query", raw))
	}
	return result, nil
}

// cacheKey fingerprints a request. Preferences participate because they
// change ranking; the raw query is case-folded so trivially different
// spellings share an entry.
func cacheKey(raw string, req Request, limit int) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(raw))
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(limit))
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatBool(req.IncludeInactive))
	if len(req.Categories) > 0 {
		sb.WriteByte('|')
		sb.WriteString(strings.ToLower(strings.Join(req.Categories, ",")))
	}
	if req.Preferences != nil {
		prefs, _ := json.Marshal(req.Preferences)
		sb.WriteByte('|')
		sb.Write(prefs)
	}
	return sb.String()
}
