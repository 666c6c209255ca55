package search

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/query"
	"github.com/kailas-cloud/prodsearch/internal/retrieval"
)

type callRecorder struct {
	calls []string
}

type mockNormalizer struct {
	rec *callRecorder
	res query.NormalizeResult
}

func (m *mockNormalizer) Normalize(_ context.Context, raw string) query.NormalizeResult {
	m.rec.calls = append(m.rec.calls, "normalize")
	if m.res.Normalized == "" {
		return query.NormalizeResult{Normalized: raw, Corrected: raw, Terms: strings.Fields(raw)}
	}
	return m.res
}

type mockExpander struct {
	rec *callRecorder
	res query.ExpandResult
}

func (m *mockExpander) Expand(normalized, _ string) query.ExpandResult {
	m.rec.calls = append(m.rec.calls, "expand")
	if m.res.ExpandedQuery == "" {
		return query.ExpandResult{ExpandedQuery: normalized}
	}
	return m.res
}

type mockClassifier struct {
	rec     *callRecorder
	gotText string
	ui      domain.UserIntent
}

func (m *mockClassifier) Classify(_ context.Context, q string) domain.UserIntent {
	m.rec.calls = append(m.rec.calls, "classify")
	m.gotText = q
	if m.ui.PrimaryIntent == "" {
		return domain.UserIntent{PrimaryIntent: domain.IntentBrowse, Confidence: 0.5}
	}
	return m.ui
}

type mockRetriever struct {
	rec        *callRecorder
	gotFilters retrieval.Filters
	gotQuery   string
	candidates []retrieval.Candidate
	err        error
}

func (m *mockRetriever) Retrieve(
	_ context.Context, expandedQuery string, f retrieval.Filters,
) ([]retrieval.Candidate, error) {
	m.rec.calls = append(m.rec.calls, "retrieve")
	m.gotQuery = expandedQuery
	m.gotFilters = f
	return m.candidates, m.err
}

type mockRanker struct {
	rec    *callRecorder
	panics bool
}

func (m *mockRanker) Rank(
	candidates []retrieval.Candidate,
	_ domain.ProcessedQuery,
	_ domain.UserIntent,
	_ *domain.UserPreferences,
) []domain.RankedProduct {
	m.rec.calls = append(m.rec.calls, "rank")
	if m.panics {
		panic("ranker defect")
	}
	out := make([]domain.RankedProduct, len(candidates))
	for i, c := range candidates {
		out[i] = domain.RankedProduct{Product: c.Product, FinalScore: 0.5, Position: i + 1}
	}
	return out
}

type mockCache struct {
	store    map[string]domain.SearchResult
	setCalls int
}

func newMockCache() *mockCache {
	return &mockCache{store: map[string]domain.SearchResult{}}
}

func (m *mockCache) Get(key string) (domain.SearchResult, bool) {
	v, ok := m.store[key]
	return v, ok
}

func (m *mockCache) Set(key string, value domain.SearchResult, _ time.Duration) error {
	m.setCalls++
	m.store[key] = value
	return nil
}

type fixture struct {
	rec   *callRecorder
	norm  *mockNormalizer
	exp   *mockExpander
	class *mockClassifier
	retr  *mockRetriever
	rank  *mockRanker
	cache *mockCache
	svc   *Service
}

func newFixture(opts Options) *fixture {
	rec := &callRecorder{}
	f := &fixture{
		rec:   rec,
		norm:  &mockNormalizer{rec: rec},
		exp:   &mockExpander{rec: rec},
		class: &mockClassifier{rec: rec},
		retr:  &mockRetriever{rec: rec},
		rank:  &mockRanker{rec: rec},
		cache: newMockCache(),
	}
	f.retr.candidates = []retrieval.Candidate{
		{Product: domain.Product{ID: 1, Name: "Dash Cam", Price: 89.99, Active: true}},
	}
	f.svc = New(f.norm, f.exp, f.class, f.retr, f.rank, f.cache, zap.NewNop(), opts)
	return f
}

func TestSearch_StepsRunInOrder(t *testing.T) {
	f := newFixture(Options{})

	res, err := f.svc.Search(context.Background(), Request{Query: "dash cam"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"normalize", "expand", "classify", "retrieve", "rank"}
	if !reflect.DeepEqual(f.rec.calls, want) {
		t.Fatalf("step order = %v, want %v", f.rec.calls, want)
	}
	if res.Cached {
		t.Error("fresh result must not be marked cached")
	}
	if res.Total != 1 {
		t.Errorf("total = %d, want 1", res.Total)
	}
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	f := newFixture(Options{})

	_, err := f.svc.Search(context.Background(), Request{Query: "   "})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if len(f.rec.calls) != 0 {
		t.Errorf("no pipeline step may run for invalid input, got %v", f.rec.calls)
	}
}

func TestSearch_CacheHitShortCircuits(t *testing.T) {
	f := newFixture(Options{})

	first, err := f.svc.Search(context.Background(), Request{Query: "dash cam"})
	if err != nil {
		t.Fatal(err)
	}
	f.rec.calls = nil

	second, err := f.svc.Search(context.Background(), Request{Query: "dash cam"})
	if err != nil {
		t.Fatal(err)
	}
	if len(f.rec.calls) != 0 {
		t.Errorf("cache hit must skip the pipeline, ran %v", f.rec.calls)
	}
	if !second.Cached {
		t.Error("cached result must be flagged")
	}
	if second.Total != first.Total {
		t.Errorf("cached total = %d, want %d", second.Total, first.Total)
	}
}

func TestSearch_CacheKeyDependsOnPreferences(t *testing.T) {
	f := newFixture(Options{})

	if _, err := f.svc.Search(context.Background(), Request{Query: "dash cam"}); err != nil {
		t.Fatal(err)
	}
	f.rec.calls = nil

	maxPrice := 50.0
	res, err := f.svc.Search(context.Background(), Request{
		Query:       "dash cam",
		Preferences: &domain.UserPreferences{MaxPrice: &maxPrice},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(f.rec.calls) == 0 {
		t.Error("different preferences must not hit the same cache entry")
	}
	if res.Cached {
		t.Error("result computed fresh must not be flagged cached")
	}
}

func TestSearch_ClassifierSeesCorrectedQuery(t *testing.T) {
	f := newFixture(Options{})
	f.norm.res = query.NormalizeResult{
		Normalized: "dash cam car",
		Corrected:  "i need a dash cam for my car",
		Terms:      []string{"dash", "cam", "car"},
	}

	if _, err := f.svc.Search(context.Background(), Request{Query: "I need a dash cam for my car"}); err != nil {
		t.Fatal(err)
	}
	if f.class.gotText != "i need a dash cam for my car" {
		t.Errorf("classifier received %q, want the corrected query", f.class.gotText)
	}
}

func TestSearch_PriceFilterReachesRetrieval(t *testing.T) {
	f := newFixture(Options{})
	maxPrice := 50.0
	f.exp.res = query.ExpandResult{
		ExpandedQuery: "smart watch smartwatch",
		PriceFilter:   domain.PriceFilter{Max: &maxPrice},
	}

	if _, err := f.svc.Search(context.Background(), Request{Query: "smart watch under $50"}); err != nil {
		t.Fatal(err)
	}
	if f.retr.gotFilters.Price.Max == nil || *f.retr.gotFilters.Price.Max != 50 {
		t.Errorf("retrieval filters = %+v, want max price 50", f.retr.gotFilters)
	}
	if f.retr.gotQuery != "smart watch smartwatch" {
		t.Errorf("retrieval query = %q, want the expanded query", f.retr.gotQuery)
	}
}

func TestSearch_NoCandidatesIsNotAnError(t *testing.T) {
	f := newFixture(Options{})
	f.retr.candidates = nil

	res, err := f.svc.Search(context.Background(), Request{Query: "flying carpet"})
	if err != nil {
		t.Fatalf("zero candidates must not error, got %v", err)
	}
	if res.Total != 0 || len(res.Products) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
	if res.Message == "" {
		t.Error("zero-result outcome must carry a human-readable message")
	}
}

func TestSearch_RetrievalErrorIsPipelineFaultAndNotCached(t *testing.T) {
	f := newFixture(Options{})
	f.retr.err = errors.New("catalog corrupted")

	_, err := f.svc.Search(context.Background(), Request{Query: "dash cam"})
	if !errors.Is(err, domain.ErrPipelineFault) {
		t.Fatalf("expected ErrPipelineFault, got %v", err)
	}
	if f.cache.setCalls != 0 {
		t.Error("failed pipeline must not write to the cache")
	}
}

func TestSearch_PanicBecomesPipelineFault(t *testing.T) {
	f := newFixture(Options{})
	f.rank.panics = true

	_, err := f.svc.Search(context.Background(), Request{Query: "dash cam"})
	if !errors.Is(err, domain.ErrPipelineFault) {
		t.Fatalf("expected ErrPipelineFault from panic, got %v", err)
	}
	if f.cache.setCalls != 0 {
		t.Error("panicking pipeline must not write to the cache")
	}
}

func TestSearch_LimitApplied(t *testing.T) {
	f := newFixture(Options{MaxResults: 10})
	f.retr.candidates = nil
	for i := 1; i <= 25; i++ {
		f.retr.candidates = append(f.retr.candidates, retrieval.Candidate{
			Product: domain.Product{ID: i, Name: "P", Price: 1, Active: true},
		})
	}

	res, err := f.svc.Search(context.Background(), Request{Query: "p", Limit: 3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 3 {
		t.Errorf("explicit limit: total = %d, want 3", res.Total)
	}

	res, err = f.svc.Search(context.Background(), Request{Query: "p"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 10 {
		t.Errorf("default limit: total = %d, want 10", res.Total)
	}

	res, err = f.svc.Search(context.Background(), Request{Query: "p", Limit: 99})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 10 {
		t.Errorf("limit above maximum must clamp to 10, got %d", res.Total)
	}
}

func TestSearch_NilCacheDisablesCaching(t *testing.T) {
	rec := &callRecorder{}
	retr := &mockRetriever{rec: rec, candidates: []retrieval.Candidate{
		{Product: domain.Product{ID: 1, Name: "X", Price: 1, Active: true}},
	}}
	svc := New(
		&mockNormalizer{rec: rec}, &mockExpander{rec: rec}, &mockClassifier{rec: rec},
		retr, &mockRanker{rec: rec}, nil, zap.NewNop(), Options{})

	for i := 0; i < 2; i++ {
		res, err := svc.Search(context.Background(), Request{Query: "x"})
		if err != nil {
			t.Fatal(err)
		}
		if res.Cached {
			t.Error("no cache wired, nothing may be served as cached")
		}
	}
	retrieveCalls := 0
	for _, c := range rec.calls {
		if c == "retrieve" {
			retrieveCalls++
		}
	}
	if retrieveCalls != 2 {
		t.Errorf("expected 2 retrievals without a cache, got %d", retrieveCalls)
	}
}
