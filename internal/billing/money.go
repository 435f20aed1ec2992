package billing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed when a price carries no currency marker.
const DefaultCurrency = "usd"

var currencySymbols = map[string]string{
	"$": "usd",
	"€": "eur",
	"£": "gbp",
}

var currencyCodes = map[string]string{
	"usd": "usd",
	"eur": "eur",
	"gbp": "gbp",
}

// priceToken matches a monetary amount inside free text: an optional
// currency symbol, digits with optional thousands separators, and an
// optional decimal fraction. "$1,200.50", "0.002" and "€99" all match.
// The comma-grouped alternative requires at least one group so that a
// plain "1200" is consumed whole rather than split at three digits.
var priceToken = regexp.MustCompile(`[$€£]?\s*(?:\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`)

// Money is a parsed monetary amount. The zero value is zero dollars.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney builds a Money from a major-unit amount and a lower-case
// ISO 4217 code. An empty currency falls back to DefaultCurrency.
func NewMoney(amount float64, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: decimal.NewFromFloat(amount), currency: currency}
}

// Major returns the amount in major units (dollars, euros).
func (m Money) Major() float64 {
	f, _ := m.amount.Float64()
	return f
}

// MinorUnits returns the amount in minor units, rounded half away from
// zero. Sub-cent amounts such as 0.002 round to 0.
func (m Money) MinorUnits() int64 {
	return m.amount.Shift(2).Round(0).IntPart()
}

// Currency returns the lower-case currency code, never empty.
func (m Money) Currency() string {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

func minorUnits(major float64) int64 {
	return decimal.NewFromFloat(major).Shift(2).Round(0).IntPart()
}

// ParsePrice extracts a monetary amount from a raw field value. It strips
// currency symbols, codes and thousands separators before parsing, so
// "$1,200", "1200.00 USD" and "0.002" all succeed. The boolean reports
// whether a number was found at all.
func ParsePrice(raw string) (Money, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Money{}, false
	}
	currency := ""
	for sym, code := range currencySymbols {
		if strings.Contains(s, sym) {
			currency = code
			s = strings.ReplaceAll(s, sym, "")
			break
		}
	}
	lower := strings.ToLower(s)
	for code, canon := range currencyCodes {
		if strings.Contains(lower, code) {
			if currency == "" {
				currency = canon
			}
			idx := strings.Index(lower, code)
			s = s[:idx] + s[idx+len(code):]
			break
		}
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	// Keep the leading number, dropping trailing units like "/mo" or "per user".
	s = leadingNumber(s)
	if s == "" {
		return Money{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, false
	}
	if d.IsNegative() {
		return Money{}, false
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: d, currency: currency}, true
}

// PriceMatch is one monetary token found in free text.
type PriceMatch struct {
	Money Money
	Raw   string
	// Marked reports that an explicit currency symbol or code accompanied
	// the number, as opposed to a bare "1200".
	Marked bool
}

// FindPrices returns every monetary token in a line of free text, in order
// of appearance. Callers pick the final marked match first, then the final
// bare number.
func FindPrices(line string) []PriceMatch {
	var out []PriceMatch
	for _, span := range priceToken.FindAllStringIndex(line, -1) {
		raw := line[span[0]:span[1]]
		m, ok := ParsePrice(raw)
		if !ok {
			continue
		}
		marked := strings.ContainsAny(raw, "$€£")
		if code := adjacentCode(line, span[0], span[1]); code != "" {
			if !marked {
				m.currency = code
			}
			marked = true
		}
		out = append(out, PriceMatch{Money: m, Raw: raw, Marked: marked})
	}
	return out
}

// adjacentCode looks just before and after a numeric token for a currency
// code, covering "USD 1200" and "1200 eur".
func adjacentCode(line string, start, end int) string {
	const window = 5
	lo := start - window
	if lo < 0 {
		lo = 0
	}
	hi := end + window
	if hi > len(line) {
		hi = len(line)
	}
	ctx := strings.ToLower(line[lo:start] + " " + line[end:hi])
	for code, canon := range currencyCodes {
		if containsWord(ctx, code) {
			return canon
		}
	}
	return ""
}

// HasCurrencyMarker reports whether the text contains an explicit currency
// symbol or code, as opposed to a bare number.
func HasCurrencyMarker(s string) bool {
	for sym := range currencySymbols {
		if strings.Contains(s, sym) {
			return true
		}
	}
	lower := strings.ToLower(s)
	for code := range currencyCodes {
		if containsWord(lower, code) {
			return true
		}
	}
	return false
}

func containsWord(s, word string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isAlnum(s[i-1])
		after := i+len(word) >= len(s) || !isAlnum(s[i+len(word)])
		if before && after {
			return true
		}
		idx = i + len(word)
	}
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func leadingNumber(s string) string {
	end := 0
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	// A bare "." is not a number.
	if end == 0 || (end == 1 && s[0] == '.') {
		return ""
	}
	return strings.TrimSuffix(s[:end], ".")
}
