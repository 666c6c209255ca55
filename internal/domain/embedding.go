package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain. Cache hits report zero tokens.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// SpellCorrector is the external spelling-correction contract. A failed or
// unchanged correction is not an error for the caller; the locally cleaned
// query always stands in.
type SpellCorrector interface {
	CorrectSpelling(ctx context.Context, query string) (string, error)
}

// IntentProvider is the external LLM-backed classification contract. The
// pattern-based classifier is the guaranteed fallback for every failure mode.
type IntentProvider interface {
	ClassifyIntent(ctx context.Context, query string) (UserIntent, error)
}
