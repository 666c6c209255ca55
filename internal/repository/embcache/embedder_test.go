package embcache

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
)

func TestEmbed_MissCallsInnerAndStores(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 7,
	}}
	ce, ms := newTestCachedEmbedder(t, inner)

	var storedKey string
	var storedVal []byte
	ms.setFn = func(_ context.Context, key string, value []byte) error {
		storedKey = key
		storedVal = value
		return nil
	}

	res, err := ce.Embed(context.Background(), "dash cam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if res.TotalTokens != 7 {
		t.Errorf("miss must return the full inner result, tokens = %d", res.TotalTokens)
	}
	if !strings.HasPrefix(storedKey, cacheKeyPrefix) {
		t.Errorf("cache key %q missing prefix", storedKey)
	}
	if len(storedVal) != 12 {
		t.Errorf("stored %d bytes for a 3-float vector, want 12", len(storedVal))
	}
}

func TestEmbed_HitSkipsInnerAndZeroesTokens(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	cached := vectorToCacheBytes([]float32{0.5, -0.5, 1.5})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	res, err := ce.Embed(context.Background(), "dash cam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Error("hit must not call the inner embedder")
	}
	if !reflect.DeepEqual(res.Embedding, []float32{0.5, -0.5, 1.5}) {
		t.Errorf("embedding = %v", res.Embedding)
	}
	if res.TotalTokens != 0 {
		t.Errorf("cache hit consumes no tokens, got %d", res.TotalTokens)
	}
}

func TestEmbed_StoreFailureFallsThrough(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection refused")
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		return errors.New("connection refused")
	}

	res, err := ce.Embed(context.Background(), "dash cam")
	if err != nil {
		t.Fatalf("store failure must not fail the embed, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if len(res.Embedding) != 1 {
		t.Errorf("embedding = %v", res.Embedding)
	}
}

func TestEmbed_CorruptedCacheEntryTreatedAsMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte{1, 2, 3}, nil // not a multiple of 4
	}

	if _, err := ce.Embed(context.Background(), "dash cam"); err != nil {
		t.Fatalf("corrupted entry must degrade to miss, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
}

func TestEmbed_InnerErrorPropagates(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	ce, _ := newTestCachedEmbedder(t, inner)

	_, err := ce.Embed(context.Background(), "dash cam")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestEmbed_SameTextSameKey(t *testing.T) {
	ce, _ := newTestCachedEmbedder(t, &mockEmbedder{})
	if ce.cacheKey("dash cam") != ce.cacheKey("dash cam") {
		t.Error("cache key must be deterministic")
	}
	if ce.cacheKey("dash cam") == ce.cacheKey("dash cams") {
		t.Error("different text must produce different keys")
	}
}

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{0, -1.5, 3.25, 1e-7}
	got, err := bytesToVector(vectorToCacheBytes(vec))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, vec) {
		t.Errorf("round trip = %v, want %v", got, vec)
	}
}

func TestMemoryStore(t *testing.T) {
	ms := NewMemoryStore(4, time.Minute)
	ctx := context.Background()

	if _, err := ms.Get(ctx, "missing"); err == nil {
		t.Error("missing key must error")
	}
	if err := ms.Set(ctx, "k", []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := ms.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(data, []byte{1, 2, 3, 4}) {
		t.Errorf("got %v", data)
	}
}

func TestEmbed_MemoryStoreEndToEnd(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.25, 0.75}, TotalTokens: 3,
	}}
	ce := New(inner, NewMemoryStore(16, time.Minute), nil, zap.NewNop())

	first, err := ce.Embed(context.Background(), "dash cam")
	if err != nil {
		t.Fatal(err)
	}
	second, err := ce.Embed(context.Background(), "dash cam")
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if !reflect.DeepEqual(first.Embedding, second.Embedding) {
		t.Error("cached embedding differs from the original")
	}
	if second.TotalTokens != 0 {
		t.Errorf("second call tokens = %d, want 0", second.TotalTokens)
	}
}
