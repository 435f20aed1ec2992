package intelligence

import (
	"time"
)

// ModelType identifies a recommended billing model.
type ModelType string

const (
	ModelUsageBased   ModelType = "usage_based"
	ModelSubscription ModelType = "subscription"
	ModelHybrid       ModelType = "hybrid"
	ModelPerSeat      ModelType = "per_seat"
)

// DisplayName returns a human-readable name for the model type.
func (m ModelType) DisplayName() string {
	switch m {
	case ModelUsageBased:
		return "Usage-Based"
	case ModelSubscription:
		return "Subscription"
	case ModelHybrid:
		return "Hybrid (base + overage)"
	case ModelPerSeat:
		return "Per-Seat / Custom"
	default:
		return "Unknown"
	}
}

// IsValid checks whether the model type is one the classifier can emit.
func (m ModelType) IsValid() bool {
	switch m {
	case ModelUsageBased, ModelSubscription, ModelHybrid, ModelPerSeat:
		return true
	default:
		return false
	}
}

// AllModelTypes returns every model type the classifier can recommend.
func AllModelTypes() []ModelType {
	return []ModelType{
		ModelUsageBased,
		ModelSubscription,
		ModelHybrid,
		ModelPerSeat,
	}
}

// TypeShares is the proportion of each item type within one batch. Values
// are in [0, 1] and sum to 1 for a non-empty batch.
type TypeShares struct {
	Metered   float64 `json:"metered"`
	Recurring float64 `json:"recurring"`
	OneTime   float64 `json:"one_time"`
}

// RevenueRange is a rough monthly revenue estimate for a model applied to
// the analyzed batch. Advisory output only, never authoritative.
type RevenueRange struct {
	LowMonthly  float64 `json:"low_monthly"`
	HighMonthly float64 `json:"high_monthly"`
	Currency    string  `json:"currency"`
	Basis       string  `json:"basis"`
}

// Recommendation is the classifier's advisory output for one batch of
// billing items.
type Recommendation struct {
	Model       ModelType    `json:"model"`
	Confidence  float64      `json:"confidence"`
	Rationale   []string     `json:"rationale"`
	Shares      TypeShares   `json:"shares"`
	Revenue     RevenueRange `json:"revenue"`
	ItemCount   int          `json:"item_count"`
	Method      string       `json:"method"`
	ProcessedAt time.Time    `json:"processed_at"`
}
