package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/llmtext"
	"github.com/kailas-cloud/prodsearch/internal/metrics"
)

const classifyPrompt = `Classify the shopping intent of this product search query.
Reply with a single JSON object, no prose:
{"intent": "buy|compare|learn|recommend|browse", "confidence": 0.0-1.0, "category": "product category or empty"}

Query: %s`

const spellingPrompt = `Correct any spelling mistakes in this product search query.
Reply with only the corrected query, nothing else. If the query is already correct, reply with it unchanged.

Query: %s`

// Chat is an LLM provider over the OpenAI-compatible chat API. It implements
// domain.IntentProvider and domain.SpellCorrector.
type Chat struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// ChatConfig holds the LLM provider settings.
type ChatConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	Logger   *zap.Logger
}

// NewChat creates an OpenAI-compatible chat provider.
func NewChat(cfg *ChatConfig) *Chat {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Chat{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// ClassifyIntent implements domain.IntentProvider. The reply streams in and
// is accumulated chunk by chunk; only a complete accumulation is parsed.
// Malformed output is an error here, never a panic; the caller's pattern
// classifier is the fallback.
func (c *Chat) ClassifyIntent(ctx context.Context, query string) (domain.UserIntent, error) {
	raw, err := c.complete(ctx, "classify_intent", fmt.Sprintf(classifyPrompt, query))
	if err != nil {
		return domain.UserIntent{}, err
	}

	parsed := llmtext.ParseClassification(raw)
	if !parsed.OK {
		return domain.UserIntent{}, fmt.Errorf("%w: unparseable classification: %s",
			domain.ErrLLMProviderError, parsed.Err)
	}

	return domain.UserIntent{
		PrimaryIntent: domain.Intent(parsed.Data.Intent),
		Confidence:    parsed.Data.Confidence,
		Entities:      domain.ExtractedEntities{Category: parsed.Data.Category},
	}, nil
}

// CorrectSpelling implements domain.SpellCorrector. Multi-line or empty
// replies are rejected so a chatty model can never replace the query with
// prose.
func (c *Chat) CorrectSpelling(ctx context.Context, query string) (string, error) {
	raw, err := c.complete(ctx, "correct_spelling", fmt.Sprintf(spellingPrompt, query))
	if err != nil {
		return "", err
	}

	corrected := strings.TrimSpace(raw)
	if corrected == "" || strings.ContainsRune(corrected, '\n') {
		return "", fmt.Errorf("%w: unusable spelling reply", domain.ErrLLMProviderError)
	}
	return corrected, nil
}

// complete sends one prompt and returns the fully accumulated streamed reply.
func (c *Chat) complete(ctx context.Context, operation, prompt string) (string, error) {
	start := time.Now()

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Stream: true,
	})
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.provider, c.model, operation, "error").Inc()
		return "", parseChatAPIError(err)
	}

	raw, err := collectStream(ctx, stream)
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.provider, c.model, operation, "error").Inc()
		return "", parseChatAPIError(err)
	}

	metrics.LLMRequestsTotal.WithLabelValues(c.provider, c.model, operation, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(c.provider, c.model, operation).Observe(time.Since(start).Seconds())
	return raw, nil
}

// chunkReceiver is the part of the chat stream collectStream consumes.
type chunkReceiver interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

// collectStream drains the stream into a single string. Chunks are appended
// strictly in arrival order. On cancellation or a mid-stream error the
// partial accumulation is discarded, never returned.
func collectStream(ctx context.Context, stream chunkReceiver) (string, error) {
	defer func() { _ = stream.Close() }()

	var sb strings.Builder
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		if len(resp.Choices) > 0 {
			sb.WriteString(resp.Choices[0].Delta.Content)
		}
	}
}

// parseChatAPIError wraps every failure with domain.ErrLLMProviderError so
// callers degrade to local heuristics.
func parseChatAPIError(err error) error {
	wrap := domain.ErrLLMProviderError

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	return fmt.Errorf("chat request failed: %v: %w", err, wrap)
}
