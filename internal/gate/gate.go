package gate

import (
	"fmt"

	"github.com/bgricker/pixelgate/internal/report"
)

// Options tune the gate. Zero values mean "no bar": commands fill them from
// configuration before evaluating.
type Options struct {
	MinParity           float64
	RegressionThreshold float64
	Previous            *report.Report
}

// Regression is one case whose diff moved past the allowed delta.
type Regression struct {
	CaseID   string  `json:"case_id"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Delta    float64 `json:"delta"`
}

// Verdict is the gate outcome.
type Verdict struct {
	Pass        bool         `json:"pass"`
	Parity      float64      `json:"parity"`
	MinParity   float64      `json:"min_parity"`
	Reasons     []string     `json:"reasons,omitempty"`
	Regressions []Regression `json:"regressions,omitempty"`
}

// Evaluate checks a report against the minimum parity bar and, when a
// previous report is supplied, against per-case regressions. A case absent
// from the previous report defaults to diff 100, so a newly added or newly
// measurable case can never read as a regression.
func Evaluate(current *report.Report, opts Options) Verdict {
	v := Verdict{
		Pass:      true,
		Parity:    current.Metrics.ParityEstimate,
		MinParity: opts.MinParity,
	}

	if v.Parity < opts.MinParity {
		v.Pass = false
		v.Reasons = append(v.Reasons, fmt.Sprintf("parity estimate %.1f%% is below the minimum %.1f%%", v.Parity, opts.MinParity))
	}

	if opts.Previous != nil {
		prevDiffs := opts.Previous.CaseDiffs()
		for _, res := range current.Results {
			prev, ok := prevDiffs[res.CaseID]
			if !ok {
				prev = 100
			}
			delta := res.DiffPercent - prev
			if delta > opts.RegressionThreshold {
				v.Regressions = append(v.Regressions, Regression{
					CaseID:   res.CaseID,
					Previous: prev,
					Current:  res.DiffPercent,
					Delta:    delta,
				})
			}
		}
		if len(v.Regressions) > 0 {
			v.Pass = false
			v.Reasons = append(v.Reasons, fmt.Sprintf("%d case(s) regressed by more than %.1f points", len(v.Regressions), opts.RegressionThreshold))
		}
	}
	return v
}
