package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeteredItem(t *testing.T) {
	it := NewMeteredItem("ocr-0", "API Requests", NewMoney(0.002, "usd"))

	assert.Equal(t, TypeMetered, it.Type)
	assert.Equal(t, "api_requests", it.EventName)
	assert.Equal(t, 0.002, it.Price)
	assert.Equal(t, int64(0), it.UnitAmount, "sub-cent amounts round to zero minor units")
	assert.Empty(t, it.Interval)
	require.NoError(t, it.Validate())
}

func TestNewRecurringItem(t *testing.T) {
	it := NewRecurringItem("csv-1", "Enterprise Plan", NewMoney(1200, "usd"), IntervalYear)

	assert.Equal(t, TypeRecurring, it.Type)
	assert.Equal(t, IntervalYear, it.Interval)
	assert.Equal(t, int64(120000), it.UnitAmount)
	assert.Empty(t, it.EventName)
	require.NoError(t, it.Validate())
}

func TestNewRecurringItemDefaultsToMonthly(t *testing.T) {
	it := NewRecurringItem("csv-2", "Starter", NewMoney(9.99, "usd"), "")

	assert.Equal(t, IntervalMonth, it.Interval)
	require.NoError(t, it.Validate())
}

func TestNewOneTimeItem(t *testing.T) {
	it := NewOneTimeItem("pdf-3", "Setup Fee", NewMoney(500, "usd"))

	assert.Equal(t, TypeOneTime, it.Type)
	assert.Empty(t, it.Interval)
	assert.Empty(t, it.EventName)
	assert.Equal(t, "one_time", it.Metadata[MetaAutoDetectedType])
	require.NoError(t, it.Validate())
}

func TestEventName(t *testing.T) {
	tests := []struct {
		product string
		want    string
	}{
		{"API Requests", "api_requests"},
		{"Pro Plan (v2)", "pro_plan_v2"},
		{"Storage", "storage"},
		{"", "usage"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EventName(tt.product), "EventName(%q)", tt.product)
	}
}

func TestItemValidateRejectsInconsistencies(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Item)
	}{
		{"missing id", func(it *Item) { it.ID = "" }},
		{"missing product", func(it *Item) { it.Product = "" }},
		{"stale unit amount", func(it *Item) { it.UnitAmount = 5 }},
		{"upper-case currency", func(it *Item) { it.Currency = "USD" }},
		{"metered with interval", func(it *Item) {
			it.Type = TypeMetered
			it.EventName = "x"
			it.Interval = IntervalMonth
		}},
		{"recurring without interval", func(it *Item) {
			it.Type = TypeRecurring
			it.Interval = ""
		}},
		{"recurring with event name", func(it *Item) {
			it.Type = TypeRecurring
			it.Interval = IntervalMonth
			it.EventName = "x"
		}},
		{"bad interval", func(it *Item) {
			it.Type = TypeRecurring
			it.Interval = "quarter"
		}},
		{"unknown type", func(it *Item) { it.Type = "gift" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := NewOneTimeItem("item-0", "Widget", NewMoney(19.99, "usd"))
			tt.mutate(&it)
			assert.Error(t, it.Validate())
		})
	}
}
