package extract

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/parsebill/ratesheet/internal/billing"
	"github.com/parsebill/ratesheet/internal/textparse"
)

// collectionKeys are tried in order when the document root is an object
// wrapping the actual pricing array.
var collectionKeys = []string{
	"items", "products", "plans", "prices", "pricing", "tiers", "data", "rows", "records",
}

// Structured reads JSON documents: a top-level array of objects, an object
// wrapping such an array, or a single pricing object.
type Structured struct{}

// NewStructured creates a JSON reader.
func NewStructured() *Structured {
	return &Structured{}
}

// Read extracts raw records from a JSON payload.
func (s *Structured) Read(data []byte) ([]billing.RawRecord, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrEmptyOrMalformedInput)
	}

	elements := findCollection(gjson.ParseBytes(data))
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: no pricing entries in JSON document", ErrEmptyOrMalformedInput)
	}

	var records []billing.RawRecord
	for i, el := range elements {
		rec, ok := elementToRecord(el, i+1)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no usable entries in JSON document", ErrEmptyOrMalformedInput)
	}
	return records, nil
}

// findCollection locates the record array: the root itself, a well-known
// wrapper key, the first array-valued field, or the root object alone.
func findCollection(root gjson.Result) []gjson.Result {
	if root.IsArray() {
		return root.Array()
	}
	if !root.IsObject() {
		return nil
	}
	for _, key := range collectionKeys {
		if v := root.Get(key); v.IsArray() {
			return v.Array()
		}
	}
	var found []gjson.Result
	root.ForEach(func(_, v gjson.Result) bool {
		if v.IsArray() {
			found = v.Array()
			return false
		}
		return true
	})
	if found != nil {
		return found
	}
	return []gjson.Result{root}
}

// elementToRecord flattens one JSON element. Objects map field-for-field
// (nested values keep their raw JSON); bare strings go through the line
// reconstructor.
func elementToRecord(el gjson.Result, lineNumber int) (billing.RawRecord, bool) {
	if el.IsObject() {
		rec := billing.RawRecord{LineNumber: lineNumber}
		el.ForEach(func(k, v gjson.Result) bool {
			rec.Set(k.String(), v.String())
			return true
		})
		return rec, !rec.IsEmpty()
	}
	if el.Type == gjson.String {
		return textparse.ParseLine(el.String(), lineNumber)
	}
	return billing.RawRecord{}, false
}
