// Package textparse reconstructs tabular pricing records from unstructured
// text. PDF extractions, OCR output and plain text files all funnel through
// the same line reconstructor, which is pure string work with no I/O.
package textparse

import (
	"regexp"
	"strings"

	"github.com/parsebill/ratesheet/internal/billing"
)

// minLineLength is the shortest trimmed line worth reconstructing. Anything
// shorter is separator noise ("---", page numbers).
const minLineLength = 4

// Splitters are tried in order; the first that yields two or more fields
// wins. Single whitespace is the final fallback so "Basic $5" still splits.
var splitters = []*regexp.Regexp{
	regexp.MustCompile(`\t+`),
	regexp.MustCompile(` {2,}`),
	regexp.MustCompile(`\s*\|\s*`),
	regexp.MustCompile(`,\s+`),
}

var whitespace = regexp.MustCompile(`\s+`)

// lineKeywords accept a line that has no price and no columns but clearly
// talks about a sellable thing.
var lineKeywords = []string{
	"service", "product", "plan", "subscription", "api", "usage",
}

// ParseText reconstructs records from every line of a text blob. Lines that
// carry no pricing signal are dropped; the result may be empty.
func ParseText(text string) []billing.RawRecord {
	var records []billing.RawRecord
	for i, line := range strings.Split(text, "\n") {
		if rec, ok := ParseLine(line, i+1); ok {
			records = append(records, rec)
		}
	}
	return records
}

// ParseLine reconstructs a single line into a product/details/price record.
// The boolean is false when the line is too short or carries no signal: no
// monetary token, no bare number, fewer than two fields and no pricing
// keyword.
func ParseLine(line string, lineNumber int) (billing.RawRecord, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < minLineLength {
		return billing.RawRecord{}, false
	}

	fields := splitFields(trimmed)
	prices := billing.FindPrices(trimmed)
	if len(fields) < 2 && len(prices) == 0 && !hasKeyword(trimmed) {
		return billing.RawRecord{}, false
	}

	rec := billing.RawRecord{LineNumber: lineNumber, OriginalLine: trimmed}
	rec.Set("product", fields[0])
	if len(fields) > 1 {
		rec.Set("details", strings.Join(fields[1:], " "))
	}
	if match, ok := pickPrice(prices); ok {
		rec.Set("price", match.Raw)
	}
	return rec, true
}

func splitFields(line string) []string {
	for _, re := range splitters {
		if parts := cleanParts(re.Split(line, -1)); len(parts) >= 2 {
			return parts
		}
	}
	if parts := cleanParts(whitespace.Split(line, -1)); len(parts) > 0 {
		return parts
	}
	return []string{line}
}

// pickPrice chooses the line's price: the last token with an explicit
// currency marker, falling back to the last bare number.
func pickPrice(matches []billing.PriceMatch) (billing.PriceMatch, bool) {
	for i := len(matches) - 1; i >= 0; i-- {
		if matches[i].Marked {
			return matches[i], true
		}
	}
	if len(matches) > 0 {
		return matches[len(matches)-1], true
	}
	return billing.PriceMatch{}, false
}

func hasKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range lineKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func cleanParts(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
