package advisor

import (
	"fmt"
	"math"
)

// Action is the budget change recommended for a campaign.
type Action int

const (
	ActionDecrease Action = iota
	ActionSlightIncrease
	ActionIncrease
)

// String returns the plain label.
func (a Action) String() string {
	switch a {
	case ActionIncrease:
		return "Increase Budget"
	case ActionSlightIncrease:
		return "Slight Increase"
	default:
		return "Decrease Budget"
	}
}

// Glyph returns the colored square shown next to the label.
func (a Action) Glyph() string {
	switch a {
	case ActionIncrease:
		return "🟩"
	case ActionSlightIncrease:
		return "🟨"
	default:
		return "🟥"
	}
}

// Label renders the action for output tables.
func (a Action) Label(glyphs bool) string {
	if glyphs {
		return a.Glyph() + " " + a.String()
	}
	return a.String()
}

// MarshalText encodes the plain label.
func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText accepts the plain label.
func (a *Action) UnmarshalText(b []byte) error {
	for _, c := range []Action{ActionDecrease, ActionSlightIncrease, ActionIncrease} {
		if string(b) == c.String() {
			*a = c
			return nil
		}
	}
	return fmt.Errorf("unknown action %q", string(b))
}

// Reasons attached to recommendations.
const (
	ReasonUnderperforming        = "Underperforming on all key metrics"
	ReasonAvgHighCostLowCTR      = "Avg conversions, high cost, low CTR"
	ReasonAvgGoodCTR             = "Avg conversions, good CTR may drive gains"
	ReasonNearAverageInefficient = "Near-average performance with inefficiencies"
	ReasonHighPerformer          = "High conversions, low cost, high CTR"
	ReasonNotClearlyAbove        = "Performance not clearly above average"
)

// Recommendation is the classifier's verdict for one record.
type Recommendation struct {
	Action Action
	Reason string
	// ExpectedConversions is clicks times the benchmark conversion rate.
	ExpectedConversions float64
	SuggestedBudget     float64
}

// Classifier maps a record and a benchmark to a recommendation.
// It holds no state besides its rules and is safe for concurrent use.
type Classifier struct {
	Rules Rules
}

// NewClassifier returns a classifier using r.
func NewClassifier(r Rules) Classifier {
	return Classifier{Rules: r}
}

// Classify evaluates the decision tree top-down; the first matching branch wins.
func (c Classifier) Classify(rec Record, b Benchmark) Recommendation {
	clicks := rec.Clicks
	if math.IsNaN(clicks) {
		clicks = 0
	}
	action, reason := c.decide(rec, b)
	return Recommendation{
		Action:              action,
		Reason:              reason,
		ExpectedConversions: Round2(clicks * b.AvgConvRate),
		SuggestedBudget:     Round2(rec.Budget * c.factor(action)),
	}
}

func (c Classifier) decide(rec Record, b Benchmark) (Action, string) {
	conv, cpa, ctr := rec.Conversions, rec.CostPerConv, rec.CTR

	if conv < b.AvgConversions && cpa > b.AvgCPA && ctr < b.AvgCTR {
		return ActionDecrease, ReasonUnderperforming
	}

	dev, ok := relativeDeviation(conv, b.AvgConversions)
	if !ok {
		return ActionDecrease, ReasonNotClearlyAbove
	}
	if dev <= c.Rules.NearAverageBand {
		switch {
		case cpa > b.AvgCPA && ctr < b.AvgCTR:
			return ActionDecrease, ReasonAvgHighCostLowCTR
		case cpa > b.AvgCPA && ctr > b.AvgCTR:
			return ActionSlightIncrease, ReasonAvgGoodCTR
		default:
			return ActionDecrease, ReasonNearAverageInefficient
		}
	}

	if conv > b.AvgConversions && cpa < b.AvgCPA && ctr > b.AvgCTR {
		return ActionIncrease, ReasonHighPerformer
	}
	return ActionDecrease, ReasonNotClearlyAbove
}

// relativeDeviation is |x-avg|/avg. ok is false when avg is zero or not finite.
func relativeDeviation(x, avg float64) (float64, bool) {
	if avg == 0 || math.IsNaN(avg) || math.IsInf(avg, 0) {
		return 0, false
	}
	d := math.Abs(x-avg) / avg
	if math.IsNaN(d) {
		return 0, false
	}
	return d, true
}

func (c Classifier) factor(a Action) float64 {
	switch a {
	case ActionIncrease:
		return c.Rules.IncreaseFactor
	case ActionSlightIncrease:
		return c.Rules.SlightIncreaseFactor
	default:
		return c.Rules.DecreaseFactor
	}
}

// Round2 rounds to two decimals, halves away from zero. NaN stays NaN.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
