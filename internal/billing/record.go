package billing

import "strings"

// Field is a single key/value pair inside a RawRecord.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RawRecord is the unnormalized output of an extractor: an ordered mapping
// of field names (possibly synthetic, such as "column_3") to best-effort
// string values, plus provenance for free-text sources.
type RawRecord struct {
	Fields       []Field `json:"fields"`
	LineNumber   int     `json:"line_number,omitempty"`
	OriginalLine string  `json:"original_line,omitempty"`
}

// Set appends a field, preserving insertion order. Existing keys are not
// replaced; Get returns the first match.
func (r *RawRecord) Set(key, value string) {
	r.Fields = append(r.Fields, Field{Key: key, Value: value})
}

// Get returns the first value whose key matches case-insensitively.
func (r RawRecord) Get(key string) (string, bool) {
	for _, f := range r.Fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value, true
		}
	}
	return "", false
}

// FirstNonEmpty returns the value of the first listed key that is present
// and non-blank.
func (r RawRecord) FirstNonEmpty(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := r.Get(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// IsEmpty reports whether the record has no non-blank value at all.
// Records for which this is true are dropped before normalization.
func (r RawRecord) IsEmpty() bool {
	for _, f := range r.Fields {
		if strings.TrimSpace(f.Value) != "" {
			return false
		}
	}
	return true
}
