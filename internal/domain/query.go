package domain

// PriceFilter bounds candidate prices. Nil pointer means no bound on that side.
type PriceFilter struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// IsZero reports whether no bound is set.
func (f PriceFilter) IsZero() bool { return f.Min == nil && f.Max == nil }

// Allows reports whether price satisfies both bounds.
func (f PriceFilter) Allows(price float64) bool {
	if f.Min != nil && price < *f.Min {
		return false
	}
	if f.Max != nil && price > *f.Max {
		return false
	}
	return true
}

// ProcessedQuery is the per-request derived view of a raw query as it moves
// through normalization and expansion. ProcessingSteps is an ordered log of
// the transformations applied, kept for diagnostics and tests.
type ProcessedQuery struct {
	OriginalQuery   string      `json:"original_query"`
	NormalizedQuery string      `json:"normalized_query"`
	CorrectedQuery  string      `json:"corrected_query"`
	ExpandedQuery   string      `json:"expanded_query"`
	ExtractedTerms  []string    `json:"extracted_terms"` // ordered, deduplicated
	Categories      []string    `json:"categories"`
	Features        []string    `json:"features"`
	PriceFilter     PriceFilter `json:"price_filter"`
	Confidence      float64     `json:"confidence"`
	ProcessingSteps []string    `json:"processing_steps"`
}
