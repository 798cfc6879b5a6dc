package advisor

// Column names of the Google Ads campaign report.
const (
	ColCampaign    = "Campaign"
	ColConversions = "Conversions"
	ColCostPerConv = "Cost / conv."
	ColCTR         = "CTR"
	ColClicks      = "Clicks"
	ColConvRate    = "Conv. rate"
	ColBudget      = "Budget"
)

// CleanColumns are the metric columns stripped and coerced to numbers when present.
var CleanColumns = []string{ColConversions, ColCostPerConv, ColCTR, ColClicks, ColConvRate, ColBudget}

// MandatoryColumns must hold a value after cleaning or the row is dropped.
var MandatoryColumns = []string{ColConversions, ColCostPerConv, ColCTR, ColBudget}

// Options controls normalization and benchmark resolution.
type Options struct {
	// TotalMarker excludes rows whose campaign name contains it (case-sensitive).
	TotalMarker string
	// AccountRow is the exact campaign name of the account-wide total row.
	AccountRow string
	// Placeholder is the "no data" token removed before parsing numbers.
	Placeholder string
	Rules       Rules
	// Extended adds expected conversions to the output table.
	Extended bool
	// Glyphs prefixes action labels with colored squares.
	Glyphs bool
}

// DefaultOptions returns the markers used by Google Ads exports.
func DefaultOptions() Options {
	return Options{
		TotalMarker: "Total",
		AccountRow:  "Total: Account",
		Placeholder: "--",
		Rules:       DefaultRules(),
		Extended:    true,
	}
}

// Rules holds the classifier's thresholds and budget multipliers.
type Rules struct {
	// NearAverageBand is the max relative deviation from average conversions
	// for a campaign to count as near average.
	NearAverageBand      float64 `json:"near_average_band"`
	DecreaseFactor       float64 `json:"decrease_factor"`
	SlightIncreaseFactor float64 `json:"slight_increase_factor"`
	IncreaseFactor       float64 `json:"increase_factor"`
}

// DefaultRules returns the standard thresholds.
func DefaultRules() Rules {
	return Rules{
		NearAverageBand:      0.05,
		DecreaseFactor:       0.8,
		SlightIncreaseFactor: 1.1,
		IncreaseFactor:       1.2,
	}
}
