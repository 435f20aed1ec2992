package billing

import "strings"

// TypeRule maps pricing vocabulary to an item type. Rules are evaluated in
// priority order (highest first), so usage vocabulary wins over subscription
// vocabulary when a line carries both, and both win over the one-time
// fallback.
type TypeRule struct {
	Type     ItemType
	Keywords []string
	Priority int
}

// typeRules holds the detection vocabulary. Keywords are matched
// case-insensitively as substrings of the combined product + details text.
// "per " and "per-" keep their separator so "super" and "percent" do not
// false-positive.
func typeRules() []TypeRule {
	return []TypeRule{
		{
			Type:     TypeMetered,
			Priority: 100,
			Keywords: []string{
				"per request",
				"per-request",
				"per call",
				"per-call",
				"per api",
				"per transaction",
				"per unit",
				"per gb",
				"per mb",
				"per token",
				"per message",
				"per minute",
				"per hour",
				"per record",
				"per query",
				"per event",
				"usage",
				"pay as you go",
				"pay-as-you-go",
				"metered",
				"metering",
				"/1k",
				"/1m",
				"per 1k",
				"per 1m",
				"per thousand",
				"per million",
			},
		},
		{
			Type:     TypeRecurring,
			Priority: 50,
			Keywords: []string{
				"per month",
				"per year",
				"per week",
				"per day",
				"monthly",
				"annually",
				"annual",
				"yearly",
				"weekly",
				"daily",
				"subscription",
				"recurring",
				"/mo",
				"/month",
				"/yr",
				"/year",
				"/wk",
				"/week",
				"per seat",
				"per user",
				"per member",
				"per license",
				"per licence",
			},
		},
	}
}

// yearKeywords is the annual evidence that promotes a recurring interval
// from the month default to year.
var yearKeywords = []string{
	"annual", "annually", "yearly", "per year", "/yr", "/year", "per annum",
}

var weekKeywords = []string{"weekly", "per week", "/wk", "/week"}

var dayKeywords = []string{"daily", "per day", "/day"}

// InferType scans text for pricing vocabulary and returns the detected item
// type plus the keyword that matched. Text with no matching vocabulary is a
// one-time charge and the keyword is empty.
func InferType(text string) (ItemType, string) {
	lower := strings.ToLower(text)
	rules := typeRules()
	best := TypeRule{}
	matched := ""
	for _, rule := range rules {
		if rule.Priority <= best.Priority {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				best = rule
				matched = kw
				break
			}
		}
	}
	if best.Type == "" {
		return TypeOneTime, ""
	}
	return best.Type, matched
}

// InferInterval picks the recurrence period for a recurring item. Month is
// the default; year, week and day need explicit evidence.
func InferInterval(text string) Interval {
	lower := strings.ToLower(text)
	for _, kw := range yearKeywords {
		if strings.Contains(lower, kw) {
			return IntervalYear
		}
	}
	for _, kw := range weekKeywords {
		if strings.Contains(lower, kw) {
			return IntervalWeek
		}
	}
	for _, kw := range dayKeywords {
		if strings.Contains(lower, kw) {
			return IntervalDay
		}
	}
	return IntervalMonth
}
