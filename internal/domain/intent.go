package domain

// Intent is the inferred purpose behind a search query.
type Intent string

// Canonical intents, in classifier precedence order (broadest last).
const (
	IntentBuy       Intent = "buy"
	IntentCompare   Intent = "compare"
	IntentLearn     Intent = "learn"
	IntentRecommend Intent = "recommend"
	IntentBrowse    Intent = "browse"
)

// Valid reports whether i is one of the five canonical intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentBuy, IntentCompare, IntentLearn, IntentRecommend, IntentBrowse:
		return true
	}
	return false
}

// Urgency qualifies how soon the user intends to act.
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencyPlanned   Urgency = "planned"
	UrgencyResearch  Urgency = "research"
)

// ExtractedEntities are structured fields pulled from the query during
// classification. All fields are optional.
type ExtractedEntities struct {
	ProductType string      `json:"product_type,omitempty"`
	Category    string      `json:"category,omitempty"`
	Features    []string    `json:"features,omitempty"`
	PriceRange  PriceFilter `json:"price_range"`
	UseCase     string      `json:"use_case,omitempty"`
	Urgency     Urgency     `json:"urgency,omitempty"`
}

// UserIntent is the classification result for one query.
type UserIntent struct {
	PrimaryIntent Intent            `json:"primary_intent"`
	Confidence    float64           `json:"confidence"` // 0-1
	Entities      ExtractedEntities `json:"entities"`
}
