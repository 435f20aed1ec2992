package textparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine_TwoSpaceColumns(t *testing.T) {
	rec, ok := ParseLine("API Requests  per request  $0.002", 1)
	require.True(t, ok)

	product, _ := rec.Get("product")
	details, _ := rec.Get("details")
	price, _ := rec.Get("price")

	assert.Equal(t, "API Requests", product)
	assert.Equal(t, "per request $0.002", details)
	assert.Equal(t, "$0.002", price)
	assert.Equal(t, 1, rec.LineNumber)
	assert.Equal(t, "API Requests  per request  $0.002", rec.OriginalLine)
}

func TestParseLine_TabColumns(t *testing.T) {
	rec, ok := ParseLine("Enterprise Plan\tannual subscription\t$1200", 4)
	require.True(t, ok)

	product, _ := rec.Get("product")
	details, _ := rec.Get("details")
	price, _ := rec.Get("price")

	assert.Equal(t, "Enterprise Plan", product)
	assert.Equal(t, "annual subscription $1200", details)
	assert.Equal(t, "$1200", price)
}

func TestParseLine_PipeColumns(t *testing.T) {
	rec, ok := ParseLine("| Starter | $9.99 | monthly |", 1)
	require.True(t, ok)

	product, _ := rec.Get("product")
	assert.Equal(t, "Starter", product)

	price, _ := rec.Get("price")
	assert.Equal(t, "$9.99", price)
}

func TestParseLine_CommaColumns(t *testing.T) {
	rec, ok := ParseLine("Pro Plan, $49, per seat", 2)
	require.True(t, ok)

	product, _ := rec.Get("product")
	details, _ := rec.Get("details")

	assert.Equal(t, "Pro Plan", product)
	assert.Equal(t, "$49 per seat", details)
}

func TestParseLine_SingleWhitespaceFallback(t *testing.T) {
	rec, ok := ParseLine("Storage $5", 1)
	require.True(t, ok)

	product, _ := rec.Get("product")
	details, _ := rec.Get("details")

	assert.Equal(t, "Storage", product)
	assert.Equal(t, "$5", details)
}

func TestParseLine_UsesLastPrice(t *testing.T) {
	rec, ok := ParseLine("Basic $5 Premium $15", 1)
	require.True(t, ok)

	price, _ := rec.Get("price")
	assert.Equal(t, "$15", price)
}

func TestParseLine_PrefersMarkedCurrencyOverBareNumbers(t *testing.T) {
	// The trailing bare quantity must not displace the real price.
	rec, ok := ParseLine("Storage  $5 per 100 GB", 1)
	require.True(t, ok)

	price, _ := rec.Get("price")
	assert.Equal(t, "$5", price)
}

func TestParseLine_KeywordOnlyLine(t *testing.T) {
	rec, ok := ParseLine("subscription", 3)
	require.True(t, ok)

	product, _ := rec.Get("product")
	assert.Equal(t, "subscription", product)

	_, hasPrice := rec.Get("price")
	assert.False(t, hasPrice)
}

func TestParseLine_Skips(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"too short", "ok"},
		{"separator", "---"},
		{"single word without signal", "hello"},
		{"rule line", "=========="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseLine(tt.line, 1)
			assert.False(t, ok)
		})
	}
}

func TestParseText(t *testing.T) {
	text := "Pricing Sheet\n" +
		"--\n" +
		"API Requests  per request  $0.002\n" +
		"\n" +
		"Enterprise Plan  annual subscription  $1200\n" +
		"==\n"

	records := ParseText(text)
	require.Len(t, records, 3)

	// "Pricing Sheet" survives as a two-field record with no price.
	product, _ := records[0].Get("product")
	assert.Equal(t, "Pricing", product)
	assert.Equal(t, 1, records[0].LineNumber)

	product, _ = records[1].Get("product")
	assert.Equal(t, "API Requests", product)
	assert.Equal(t, 3, records[1].LineNumber)

	product, _ = records[2].Get("product")
	assert.Equal(t, "Enterprise Plan", product)
	assert.Equal(t, 5, records[2].LineNumber)
}

func TestParseText_NoSignal(t *testing.T) {
	assert.Empty(t, ParseText("--\n==\nok\n\n"))
}
