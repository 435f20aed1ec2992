package intelligence

import (
	"fmt"
	"testing"

	"github.com/parsebill/ratesheet/internal/billing"
)

func batch(metered, recurring, oneTime int) []billing.Item {
	var items []billing.Item
	for i := 0; i < metered; i++ {
		id := fmt.Sprintf("m-%d", i)
		items = append(items, billing.NewMeteredItem(id, "API Calls", billing.NewMoney(0.01, "usd")))
	}
	for i := 0; i < recurring; i++ {
		id := fmt.Sprintf("r-%d", i)
		items = append(items, billing.NewRecurringItem(id, "Pro Plan", billing.NewMoney(20, "usd"), billing.IntervalMonth))
	}
	for i := 0; i < oneTime; i++ {
		id := fmt.Sprintf("o-%d", i)
		items = append(items, billing.NewOneTimeItem(id, "Setup Fee", billing.NewMoney(100, "usd")))
	}
	return items
}

func TestNewClassifier(t *testing.T) {
	classifier := NewClassifier(nil)

	if classifier == nil {
		t.Fatal("Expected classifier to be created, got nil")
	}
	if len(classifier.rules) == 0 {
		t.Error("Expected classifier to have a rule table loaded")
	}
}

func TestRecommendDecisionTable(t *testing.T) {
	classifier := NewClassifier(nil)

	tests := []struct {
		name       string
		items      []billing.Item
		model      ModelType
		confidence float64
	}{
		{"dominant metered", batch(8, 1, 1), ModelUsageBased, 95},
		{"all metered", batch(5, 0, 0), ModelUsageBased, 95},
		{"dominant recurring", batch(0, 9, 1), ModelSubscription, 90},
		{"even mix is hybrid", batch(3, 3, 0), ModelHybrid, 85},
		{"light mix is hybrid", batch(1, 6, 3), ModelHybrid, 85},
		{"one-time only", batch(0, 0, 4), ModelPerSeat, 75},
		{"empty batch", nil, ModelPerSeat, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := classifier.Recommend(tt.items)

			if rec.Model != tt.model {
				t.Errorf("Expected model %s, got %s", tt.model, rec.Model)
			}
			if rec.Confidence != tt.confidence {
				t.Errorf("Expected confidence %v, got %v", tt.confidence, rec.Confidence)
			}
			if len(rec.Rationale) == 0 {
				t.Error("Expected at least one rationale line")
			}
			if rec.ItemCount != len(tt.items) {
				t.Errorf("Expected item count %d, got %d", len(tt.items), rec.ItemCount)
			}
			if !rec.Model.IsValid() {
				t.Errorf("Expected a valid model type, got %s", rec.Model)
			}
		})
	}
}

func TestRecommendMeteredBeatsRecurringAtThreshold(t *testing.T) {
	classifier := NewClassifier(nil)

	// 0.75 metered share passes the usage rule before the hybrid rule is
	// even considered.
	rec := classifier.Recommend(batch(6, 2, 0))

	if rec.Model != ModelUsageBased {
		t.Errorf("Expected usage_based for 75%% metered, got %s", rec.Model)
	}
}

func TestComputeShares(t *testing.T) {
	shares := ComputeShares(batch(1, 2, 1))

	if shares.Metered != 0.25 {
		t.Errorf("Expected metered share 0.25, got %v", shares.Metered)
	}
	if shares.Recurring != 0.5 {
		t.Errorf("Expected recurring share 0.5, got %v", shares.Recurring)
	}
	if shares.OneTime != 0.25 {
		t.Errorf("Expected one-time share 0.25, got %v", shares.OneTime)
	}

	empty := ComputeShares(nil)
	if empty.Metered != 0 || empty.Recurring != 0 || empty.OneTime != 0 {
		t.Errorf("Expected all-zero shares for empty batch, got %+v", empty)
	}
}

func TestRecommendRevenueRange(t *testing.T) {
	classifier := NewClassifier(nil)

	// Ten recurring items at 20 each: mean 20, subscription multipliers
	// 10x and 1000x.
	rec := classifier.Recommend(batch(0, 10, 0))

	if rec.Revenue.LowMonthly != 200 {
		t.Errorf("Expected low estimate 200, got %v", rec.Revenue.LowMonthly)
	}
	if rec.Revenue.HighMonthly != 20000 {
		t.Errorf("Expected high estimate 20000, got %v", rec.Revenue.HighMonthly)
	}
	if rec.Revenue.Currency != "usd" {
		t.Errorf("Expected currency usd, got %s", rec.Revenue.Currency)
	}
	if rec.Revenue.Basis == "" {
		t.Error("Expected a basis description")
	}
}

func TestRecommendEmptyBatchRevenue(t *testing.T) {
	classifier := NewClassifier(nil)

	rec := classifier.Recommend(nil)

	if rec.Revenue.LowMonthly != 0 || rec.Revenue.HighMonthly != 0 {
		t.Errorf("Expected zero revenue range for empty batch, got %+v", rec.Revenue)
	}
	if rec.Revenue.Currency != billing.DefaultCurrency {
		t.Errorf("Expected default currency, got %s", rec.Revenue.Currency)
	}
}

func TestModelTypeHelpers(t *testing.T) {
	for _, model := range AllModelTypes() {
		if !model.IsValid() {
			t.Errorf("Expected %s to be valid", model)
		}
		if model.DisplayName() == "Unknown" {
			t.Errorf("Expected display name for %s", model)
		}
	}

	if ModelType("flat_rate").IsValid() {
		t.Error("Expected unknown model type to be invalid")
	}
}
