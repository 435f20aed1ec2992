package intelligence

import "fmt"

// decisionRule maps a type-share profile to a billing model. Rules are
// evaluated in order and the first match wins, so the more specific
// signals sit first.
type decisionRule struct {
	model      ModelType
	confidence float64
	matches    func(TypeShares) bool
	rationale  func(TypeShares) []string
}

// decisionRules returns the ordered rule table. The final rule is a
// catch-all.
func decisionRules() []decisionRule {
	return []decisionRule{
		{
			model:      ModelUsageBased,
			confidence: 95,
			matches:    func(s TypeShares) bool { return s.Metered > 0.7 },
			rationale: func(s TypeShares) []string {
				return []string{
					fmt.Sprintf("%.0f%% of the extracted items are metered", s.Metered*100),
					"per-unit pricing dominates, so revenue should track usage directly",
				}
			},
		},
		{
			model:      ModelSubscription,
			confidence: 90,
			matches:    func(s TypeShares) bool { return s.Recurring > 0.8 },
			rationale: func(s TypeShares) []string {
				return []string{
					fmt.Sprintf("%.0f%% of the extracted items recur on a fixed interval", s.Recurring*100),
					"flat recurring plans fit a straight subscription model",
				}
			},
		},
		{
			model:      ModelHybrid,
			confidence: 85,
			matches:    func(s TypeShares) bool { return s.Metered > 0 && s.Recurring > 0 },
			rationale: func(s TypeShares) []string {
				return []string{
					fmt.Sprintf("the batch mixes metered (%.0f%%) and recurring (%.0f%%) items", s.Metered*100, s.Recurring*100),
					"a base plan with usage overage covers both pricing styles",
				}
			},
		},
		{
			model:      ModelPerSeat,
			confidence: 75,
			matches:    func(TypeShares) bool { return true },
			rationale: func(s TypeShares) []string {
				return []string{
					"no dominant metered or recurring signal was found",
					"a per-seat or custom-negotiated model is the safest starting point",
				}
			},
		},
	}
}

// revenueMultipliers scales the mean item price into a monthly revenue
// range per model. The spreads reflect typical volume for each model, not
// a forecast.
var revenueMultipliers = map[ModelType]struct{ Low, High int64 }{
	ModelUsageBased:   {Low: 100, High: 10000},
	ModelSubscription: {Low: 10, High: 1000},
	ModelHybrid:       {Low: 10, High: 1000},
	ModelPerSeat:      {Low: 5, High: 500},
}

var revenueBasis = map[ModelType]string{
	ModelUsageBased:   "100-10000 billable events per month at the mean unit price",
	ModelSubscription: "10-1000 subscribers at the mean plan price",
	ModelHybrid:       "10-1000 customers on a base plan plus overage",
	ModelPerSeat:      "5-500 seats at the mean item price",
}
