package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(pairs ...string) RawRecord {
	var rec RawRecord
	for i := 0; i+1 < len(pairs); i += 2 {
		rec.Set(pairs[i], pairs[i+1])
	}
	return rec
}

func TestNormalizeSubscriptionRow(t *testing.T) {
	n := NewNormalizer(nil)

	item := n.Normalize(
		record("name", "Starter Plan", "price", "$9.99", "billing", "monthly subscription"),
		0,
		Options{Source: "csv", Confidence: 98},
	)

	assert.Equal(t, "csv-0", item.ID)
	assert.Equal(t, "Starter Plan", item.Product)
	assert.Equal(t, 9.99, item.Price)
	assert.Equal(t, int64(999), item.UnitAmount)
	assert.Equal(t, "usd", item.Currency)
	assert.Equal(t, TypeRecurring, item.Type)
	assert.Equal(t, IntervalMonth, item.Interval)
	assert.Empty(t, item.EventName)
	assert.Equal(t, "recurring", item.Metadata[MetaAutoDetectedType])
	assert.Equal(t, 98.0, item.Metadata[MetaExtractionConfidence])
	require.NoError(t, item.Validate())
}

func TestNormalizeMeteredRow(t *testing.T) {
	n := NewNormalizer(nil)

	item := n.Normalize(
		record("product", "API Requests", "rate", "$0.002", "description", "per request"),
		0,
		Options{Source: "ocr", Confidence: 70},
	)

	assert.Equal(t, TypeMetered, item.Type)
	assert.Equal(t, "api_requests", item.EventName)
	assert.Equal(t, 0.002, item.Price)
	assert.Equal(t, int64(0), item.UnitAmount)
	assert.Equal(t, "per request", item.Metadata[MetaMatchedKeyword])
	require.NoError(t, item.Validate())
}

func TestNormalizeAnnualRow(t *testing.T) {
	n := NewNormalizer(nil)

	item := n.Normalize(
		record("plan", "Enterprise Plan", "amount", "$1200", "terms", "annual subscription"),
		0,
		Options{Source: "pdf", Confidence: 75},
	)

	assert.Equal(t, "Enterprise Plan", item.Product)
	assert.Equal(t, TypeRecurring, item.Type)
	assert.Equal(t, IntervalYear, item.Interval)
	assert.Equal(t, int64(120000), item.UnitAmount)
	require.NoError(t, item.Validate())
}

func TestNormalizePicksProductByPriority(t *testing.T) {
	n := NewNormalizer(nil)

	// "product" outranks "name" even when it appears later in the record.
	item := n.Normalize(
		record("name", "ignored", "product", "Winner", "price", "5"),
		0,
		Options{Source: "csv"},
	)

	assert.Equal(t, "Winner", item.Product)
}

func TestNormalizeFallbackProductName(t *testing.T) {
	n := NewNormalizer(nil)

	item := n.Normalize(
		record("column_1", "", "qty", "5"),
		2,
		Options{Source: "excel", Confidence: 95},
	)

	assert.Equal(t, "Product 3", item.Product)
	assert.Equal(t, TypeOneTime, item.Type)
	assert.Equal(t, 0.0, item.Price)
	assert.Equal(t, int64(0), item.UnitAmount)
	assert.Equal(t, "usd", item.Currency)
	require.NoError(t, item.Validate())
}

func TestNormalizeAlwaysRecomputesUnitAmount(t *testing.T) {
	n := NewNormalizer(nil)

	// A bogus unit_amount column in the source is ignored.
	item := n.Normalize(
		record("product", "X", "price", "19.99", "unit_amount", "5"),
		0,
		Options{Source: "csv"},
	)

	assert.Equal(t, int64(1999), item.UnitAmount)
}

func TestNormalizePriceKeyFallbacks(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name string
		rec  RawRecord
		want float64
	}{
		{"cost column", record("product", "A", "cost", "12.50"), 12.5},
		{"fee column", record("product", "B", "fee", "$3"), 3},
		{"key containing price", record("product", "C", "unit_price_usd", "$5"), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := n.Normalize(tt.rec, 0, Options{Source: "csv"})
			assert.Equal(t, tt.want, item.Price)
		})
	}
}

func TestNormalizeCurrencyFromSymbol(t *testing.T) {
	n := NewNormalizer(nil)

	item := n.Normalize(record("product", "EU Plan", "price", "€20"), 0, Options{Source: "csv"})

	assert.Equal(t, "eur", item.Currency)
	assert.Equal(t, int64(2000), item.UnitAmount)
}

func TestNormalizeDescriptionSkipsProductField(t *testing.T) {
	n := NewNormalizer(nil)

	// "description" supplied the product name, so it must not repeat as the
	// description.
	item := n.Normalize(record("description", "Only Field", "price", "1"), 0, Options{})

	assert.Equal(t, "Only Field", item.Product)
	assert.Empty(t, item.Description)

	item = n.Normalize(record("name", "Pro", "price", "$10", "details", "best plan"), 0, Options{})
	assert.Equal(t, "best plan", item.Description)
}

func TestNormalizeAll(t *testing.T) {
	n := NewNormalizer(nil)

	records := []RawRecord{
		record("product", "A", "price", "1"),
		record("product", "B", "price", "2"),
		record("product", "C", "price", "3"),
	}

	items := n.NormalizeAll(records, Options{Source: "excel", Confidence: 95})

	require.Len(t, items, 3)
	assert.Equal(t, "excel-0", items[0].ID)
	assert.Equal(t, "excel-1", items[1].ID)
	assert.Equal(t, "excel-2", items[2].ID)
	for _, it := range items {
		assert.Equal(t, 95.0, it.Metadata[MetaExtractionConfidence])
		require.NoError(t, it.Validate())
	}
}

func TestNormalizeInfersTypeFromColumnNames(t *testing.T) {
	n := NewNormalizer(nil)

	// The column name itself carries the usage signal.
	item := n.Normalize(record("product", "Calls", "per request fee", "0.01"), 0, Options{})

	assert.Equal(t, TypeMetered, item.Type)
}
