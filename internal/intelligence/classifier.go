// Package intelligence recommends a billing model for a batch of
// extracted items. The classifier is a pure function over its input: it
// reads type shares and prices, applies an ordered rule table and reports
// its reasoning alongside the pick.
package intelligence

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/parsebill/ratesheet/internal/billing"
)

// Classifier turns a batch of billing items into a model recommendation.
type Classifier struct {
	rules  []decisionRule
	logger *zap.Logger
}

// NewClassifier creates a classifier with the default rule table. A nil
// logger is replaced with a no-op one.
func NewClassifier(logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{rules: decisionRules(), logger: logger}
}

// Recommend evaluates the rule table against the batch's type shares and
// returns the first matching model with its rationale and revenue range.
func (c *Classifier) Recommend(items []billing.Item) Recommendation {
	shares := ComputeShares(items)

	chosen := c.rules[len(c.rules)-1]
	for _, rule := range c.rules[:len(c.rules)-1] {
		if rule.matches(shares) {
			chosen = rule
			break
		}
	}

	rec := Recommendation{
		Model:       chosen.model,
		Confidence:  chosen.confidence,
		Rationale:   chosen.rationale(shares),
		Shares:      shares,
		Revenue:     estimateRevenue(chosen.model, items),
		ItemCount:   len(items),
		Method:      "type_share_rules",
		ProcessedAt: time.Now(),
	}

	c.logger.Debug("billing model recommended",
		zap.String("model", string(rec.Model)),
		zap.Float64("confidence", rec.Confidence),
		zap.Int("items", rec.ItemCount))
	return rec
}

// ComputeShares returns the proportion of each item type in the batch.
// An empty batch yields all-zero shares.
func ComputeShares(items []billing.Item) TypeShares {
	if len(items) == 0 {
		return TypeShares{}
	}

	var metered, recurring, oneTime int
	for _, item := range items {
		switch item.Type {
		case billing.TypeMetered:
			metered++
		case billing.TypeRecurring:
			recurring++
		default:
			oneTime++
		}
	}

	total := float64(len(items))
	return TypeShares{
		Metered:   float64(metered) / total,
		Recurring: float64(recurring) / total,
		OneTime:   float64(oneTime) / total,
	}
}

// estimateRevenue scales the mean item price by the model's volume
// multipliers.
func estimateRevenue(model ModelType, items []billing.Item) RevenueRange {
	if len(items) == 0 {
		return RevenueRange{Currency: billing.DefaultCurrency, Basis: "no priced items to estimate from"}
	}

	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromFloat(item.Price))
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(items))))

	currency := items[0].Currency
	if currency == "" {
		currency = billing.DefaultCurrency
	}

	m := revenueMultipliers[model]
	return RevenueRange{
		LowMonthly:  mean.Mul(decimal.NewFromInt(m.Low)).Round(2).InexactFloat64(),
		HighMonthly: mean.Mul(decimal.NewFromInt(m.High)).Round(2).InexactFloat64(),
		Currency:    currency,
		Basis:       revenueBasis[model],
	}
}
