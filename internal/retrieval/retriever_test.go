package retrieval

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
)

type mockCatalog struct {
	products []domain.Product
}

func (m *mockCatalog) Products() []domain.Product { return m.products }

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

func testProducts() []domain.Product {
	return []domain.Product{
		{
			ID: 1, Name: "AutoMate Wireless Dash Cam", Category: "Automotive",
			Description: "1080p dashboard camera for your car", Price: 89.99, Active: true,
			Features: []string{"wireless", "hd"}, Embedding: []float32{1, 0, 0},
		},
		{
			ID: 2, Name: "EcoFlow Water Bottle", Category: "Sports & Outdoors",
			Description: "insulated recycled steel flask", Price: 24.99, Active: true,
			Certifications: []string{"recycled"}, Embedding: []float32{0, 1, 0},
		},
		{
			ID: 3, Name: "Discontinued Cam Mount", Category: "Automotive",
			Description: "dash cam mounting bracket for car", Price: 9.99, Active: false,
			Embedding: []float32{0.9, 0.1, 0},
		},
	}
}

func TestRetrieve_SemanticPath(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1, 0, 0}}
	r := New(&mockCatalog{products: testProducts()}, emb, 0.5, zap.NewNop())

	cands, err := r.Retrieve(context.Background(), "dash cam", Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !emb.called {
		t.Fatal("expected embedder to be called")
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate above threshold, got %d", len(cands))
	}
	if cands[0].Product.ID != 1 {
		t.Errorf("expected product 1, got %d", cands[0].Product.ID)
	}
	if !cands[0].Semantic {
		t.Error("candidate must be marked semantic")
	}
	if math.Abs(cands[0].Similarity-1.0) > 1e-9 {
		t.Errorf("expected similarity 1.0, got %f", cands[0].Similarity)
	}
}

func TestRetrieve_EmbedderFailureFallsBack(t *testing.T) {
	emb := &mockEmbedder{err: errors.New("provider down")}
	r := New(&mockCatalog{products: testProducts()}, emb, 0, zap.NewNop())

	cands, err := r.Retrieve(context.Background(), "dash cam car", Filters{})
	if err != nil {
		t.Fatalf("embedding failure must degrade silently, got %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected fallback to find active product 1, got %d candidates", len(cands))
	}
	if cands[0].Semantic {
		t.Error("fallback candidates must not be marked semantic")
	}
}

func TestRetrieve_NoEmbedderUsesTokenOverlap(t *testing.T) {
	r := New(&mockCatalog{products: testProducts()}, nil, 0, zap.NewNop())

	cands, err := r.Retrieve(context.Background(), "recycled flask", Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 1 || cands[0].Product.ID != 2 {
		t.Fatalf("expected product 2, got %+v", cands)
	}
}

func TestRetrieve_TokenOverlapRequiresAllTokens(t *testing.T) {
	r := New(&mockCatalog{products: testProducts()}, nil, 0, zap.NewNop())

	cands, _ := r.Retrieve(context.Background(), "recycled spaceship", Filters{})
	if len(cands) != 0 {
		t.Errorf("a missing significant token must exclude the product, got %+v", cands)
	}
}

func TestRetrieve_ShortTokensIgnored(t *testing.T) {
	r := New(&mockCatalog{products: testProducts()}, nil, 0, zap.NewNop())

	// "hd" is too short to be significant; "wireless" carries the match.
	cands, _ := r.Retrieve(context.Background(), "hd wireless", Filters{})
	if len(cands) != 1 || cands[0].Product.ID != 1 {
		t.Fatalf("expected product 1, got %+v", cands)
	}
}

func TestRetrieve_InactiveExcludedByDefault(t *testing.T) {
	r := New(&mockCatalog{products: testProducts()}, nil, 0, zap.NewNop())

	cands, _ := r.Retrieve(context.Background(), "dash cam car", Filters{})
	for _, c := range cands {
		if !c.Product.Active {
			t.Errorf("inactive product %d must be excluded by default", c.Product.ID)
		}
	}

	cands, _ = r.Retrieve(context.Background(), "dash cam car", Filters{IncludeInactive: true})
	found := false
	for _, c := range cands {
		if c.Product.ID == 3 {
			found = true
		}
	}
	if !found {
		t.Error("IncludeInactive must readmit inactive products")
	}
}

func TestRetrieve_PriceFilter(t *testing.T) {
	r := New(&mockCatalog{products: testProducts()}, nil, 0, zap.NewNop())

	maxPrice := 50.0
	cands, _ := r.Retrieve(context.Background(), "dash cam car",
		Filters{Price: domain.PriceFilter{Max: &maxPrice}})
	for _, c := range cands {
		if c.Product.Price > maxPrice {
			t.Errorf("product %d priced %.2f exceeds max %.2f",
				c.Product.ID, c.Product.Price, maxPrice)
		}
	}
}

func TestRetrieve_CategoryFilterCaseInsensitive(t *testing.T) {
	r := New(&mockCatalog{products: testProducts()}, nil, 0, zap.NewNop())

	cands, _ := r.Retrieve(context.Background(), "dash cam car",
		Filters{Categories: []string{"automotive"}})
	if len(cands) != 1 || cands[0].Product.ID != 1 {
		t.Fatalf("expected product 1 via case-insensitive category, got %+v", cands)
	}
}

func TestRetrieve_DeduplicatesByID(t *testing.T) {
	products := testProducts()
	products = append(products, products[0]) // duplicate id 1
	r := New(&mockCatalog{products: products}, nil, 0, zap.NewNop())

	cands, _ := r.Retrieve(context.Background(), "dash cam car", Filters{})
	seen := map[int]int{}
	for _, c := range cands {
		seen[c.Product.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("product %d appears %d times", id, n)
		}
	}
}

func TestRetrieve_EmptyCatalog(t *testing.T) {
	r := New(&mockCatalog{}, nil, 0, zap.NewNop())

	cands, err := r.Retrieve(context.Background(), "anything", Filters{})
	if err != nil {
		t.Fatalf("empty catalog is not an error, got %v", err)
	}
	if len(cands) != 0 {
		t.Errorf("expected no candidates, got %d", len(cands))
	}
}

func TestRetrieve_DimensionMismatchSkipsProduct(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1, 0}} // dim 2 vs catalog dim 3
	r := New(&mockCatalog{products: testProducts()}, emb, 0, zap.NewNop())

	cands, err := r.Retrieve(context.Background(), "dash cam", Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range cands {
		if c.Semantic {
			t.Errorf("mismatched dimensions must not produce semantic candidates: %+v", c)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		a, b []float32
		want float64
	}{
		{[]float32{1, 0}, []float32{1, 0}, 1},
		{[]float32{1, 0}, []float32{0, 1}, 0},
		{[]float32{1, 0}, []float32{-1, 0}, -1},
		{[]float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tc := range cases {
		if got := cosineSimilarity(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("cosine(%v,%v) = %f, want %f", tc.a, tc.b, got, tc.want)
		}
	}
}
