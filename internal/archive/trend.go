package archive

import (
	"math"
	"sort"
)

// TrendThreshold is the per-case movement, in percentage points, worth
// flagging between consecutive runs.
const TrendThreshold = 5.0

// CaseDelta is one case's movement between two archived runs.
type CaseDelta struct {
	CaseID   string  `json:"case_id"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Delta    float64 `json:"delta"`
}

// TrendReport compares a run to the one immediately before it.
type TrendReport struct {
	PreviousID   string      `json:"previous_id"`
	CurrentID    string      `json:"current_id"`
	ParityDelta  float64     `json:"parity_delta"`
	Improvements []CaseDelta `json:"improvements,omitempty"`
	Regressions  []CaseDelta `json:"regressions,omitempty"`
}

// Trend diffs two entries: the signed parity change plus every case whose
// diff moved by TrendThreshold or more in either direction. Cases present in
// only one of the two runs have no movement to measure and are skipped.
func Trend(prev, curr Entry) TrendReport {
	tr := TrendReport{
		PreviousID:  prev.ID,
		CurrentID:   curr.ID,
		ParityDelta: curr.ParityEstimate - prev.ParityEstimate,
	}

	ids := make([]string, 0, len(curr.CaseDiffs))
	for id := range curr.CaseDiffs {
		if _, ok := prev.CaseDiffs[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		delta := curr.CaseDiffs[id] - prev.CaseDiffs[id]
		if math.Abs(delta) < TrendThreshold {
			continue
		}
		cd := CaseDelta{CaseID: id, Previous: prev.CaseDiffs[id], Current: curr.CaseDiffs[id], Delta: delta}
		if delta < 0 {
			tr.Improvements = append(tr.Improvements, cd)
		} else {
			tr.Regressions = append(tr.Regressions, cd)
		}
	}
	return tr
}
