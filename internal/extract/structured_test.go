package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredReadTopLevelArray(t *testing.T) {
	data := []byte(`[
		{"product": "Starter", "price": "$9.99"},
		{"product": "Pro", "price": 49}
	]`)

	records, err := NewStructured().Read(data)
	require.NoError(t, err)
	require.Len(t, records, 2)

	v, _ := records[0].Get("product")
	assert.Equal(t, "Starter", v)
	v, _ = records[1].Get("price")
	assert.Equal(t, "49", v)
}

func TestStructuredReadWrappedCollection(t *testing.T) {
	data := []byte(`{"version": 2, "plans": [{"name": "Team", "amount": "$99"}]}`)

	records, err := NewStructured().Read(data)
	require.NoError(t, err)
	require.Len(t, records, 1)

	v, _ := records[0].Get("name")
	assert.Equal(t, "Team", v)
}

func TestStructuredReadUnknownWrapperKey(t *testing.T) {
	data := []byte(`{"meta": "x", "offerings": [{"product": "Addon", "price": 5}]}`)

	records, err := NewStructured().Read(data)
	require.NoError(t, err)
	require.Len(t, records, 1)

	v, _ := records[0].Get("product")
	assert.Equal(t, "Addon", v)
}

func TestStructuredReadSingleObject(t *testing.T) {
	data := []byte(`{"product": "One Shot", "price": "$500"}`)

	records, err := NewStructured().Read(data)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestStructuredReadStringElements(t *testing.T) {
	data := []byte(`["Basic Plan  $5/mo", "no"]`)

	records, err := NewStructured().Read(data)
	require.NoError(t, err)
	require.Len(t, records, 1, "too-short strings are dropped")

	v, _ := records[0].Get("product")
	assert.Equal(t, "Basic Plan", v)
}

func TestStructuredReadFailures(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"product": `},
		{"empty array", `[]`},
		{"empty wrapped array", `{"items": []}`},
		{"array of numbers", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStructured().Read([]byte(tt.data))
			assert.ErrorIs(t, err, ErrEmptyOrMalformedInput)
		})
	}
}
