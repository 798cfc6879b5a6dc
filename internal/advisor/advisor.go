package advisor

import (
	"fmt"

	"github.com/KaramelBytes/adbudget-cli/internal/table"
)

// Row is a normalized record together with its recommendation.
type Row struct {
	Record
	Recommendation
}

// Diagnostics are per-run observations reported to the caller. None of them
// is an error.
type Diagnostics struct {
	// InputRows is the number of data rows in the raw table.
	InputRows int `json:"input_rows"`
	Excluded  int `json:"excluded"`
	Dropped   int `json:"dropped"`
	// FallbackBenchmark is set when no account-total row was found.
	FallbackBenchmark bool     `json:"fallback_benchmark"`
	Warnings          []string `json:"warnings,omitempty"`
}

// Result is the outcome of one run over one dataset.
type Result struct {
	Rows        []Row
	Benchmark   Benchmark
	Diagnostics Diagnostics
}

// Run normalizes raw, resolves the benchmark once and classifies every record.
// Only schema problems are returned as errors; there is no partial result.
func Run(raw *table.Table, opt Options) (*Result, error) {
	norm, err := Normalize(raw, opt)
	if err != nil {
		return nil, err
	}
	bench := ResolveBenchmark(raw, norm.Records, opt)
	clf := NewClassifier(opt.Rules)

	res := &Result{
		Rows:      make([]Row, 0, len(norm.Records)),
		Benchmark: bench,
		Diagnostics: Diagnostics{
			InputRows:         raw.Len(),
			Excluded:          norm.Excluded,
			Dropped:           norm.Dropped,
			FallbackBenchmark: bench.Fallback(),
		},
	}
	if norm.Dropped > 0 {
		res.Diagnostics.Warnings = append(res.Diagnostics.Warnings,
			fmt.Sprintf("Dropped %d incomplete rows (e.g., missing Conversions, CTR, CPA, or Budget).", norm.Dropped))
	}
	if bench.Fallback() {
		res.Diagnostics.Warnings = append(res.Diagnostics.Warnings,
			fmt.Sprintf("'%s' row not found; using overall campaign averages as benchmarks.", opt.AccountRow))
	}
	for _, rec := range norm.Records {
		res.Rows = append(res.Rows, Row{Record: rec, Recommendation: clf.Classify(rec, bench)})
	}
	return res, nil
}

// Counts tallies rows per action.
func (r *Result) Counts() map[Action]int {
	out := make(map[Action]int, 3)
	for _, row := range r.Rows {
		out[row.Action]++
	}
	return out
}
