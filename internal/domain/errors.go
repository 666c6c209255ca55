package domain

import "errors"

var (
	// ErrInvalidArgument signals caller misuse (negative TTL, zero product id).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstreamUnavailable signals a failed or timed-out external provider call.
	// Always recoverable by a local fallback; never surfaced as a search failure.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrNoCandidates signals a valid zero-result search outcome.
	ErrNoCandidates = errors.New("no candidates")
	// ErrPipelineFault signals an unexpected defect inside the pipeline itself.
	ErrPipelineFault = errors.New("pipeline fault")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLLMProviderError signals a chat/classification provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
)
