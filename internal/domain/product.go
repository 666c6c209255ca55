package domain

import "fmt"

// Product is a single catalog entry. The search core treats products as
// read-only input; the only derived state is the call-scoped RankedProduct.
type Product struct {
	ID                  int       `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	Category            string    `json:"category"`
	Price               float64   `json:"price"`
	SustainabilityScore int       `json:"sustainability_score"` // 0-100
	AverageRating       float64   `json:"average_rating"`       // 0.0-5.0
	Active              bool      `json:"active"`
	Features            []string  `json:"features,omitempty"`
	Certifications      []string  `json:"certifications,omitempty"`
	Embedding           []float32 `json:"embedding,omitempty"`
}

// Validate checks catalog-level invariants on load.
func (p *Product) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: product id must be positive, got %d", ErrInvalidArgument, p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: product %d has negative price %.2f", ErrInvalidArgument, p.ID, p.Price)
	}
	if p.SustainabilityScore < 0 || p.SustainabilityScore > 100 {
		return fmt.Errorf("%w: product %d sustainability score %d out of [0,100]",
			ErrInvalidArgument, p.ID, p.SustainabilityScore)
	}
	if p.AverageRating < 0 || p.AverageRating > 5 {
		return fmt.Errorf("%w: product %d rating %.1f out of [0,5]",
			ErrInvalidArgument, p.ID, p.AverageRating)
	}
	return nil
}

// UserPreferences are optional per-request ranking hints. All fields may be
// absent; absence must never fail ranking.
type UserPreferences struct {
	PreferredCategories []string `json:"preferred_categories,omitempty"`
	MaxPrice            *float64 `json:"max_price,omitempty"`
	SustainabilityFocus bool     `json:"sustainability_focus"`
	PriceBracket        string   `json:"price_bracket,omitempty"` // budget, mid, premium
}
