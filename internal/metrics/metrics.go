package metrics

import (
	"fmt"
	"sort"

	"github.com/bgricker/pixelgate/internal/report"
	"github.com/bgricker/pixelgate/internal/stability"
)

// Aggregate reduces per-case results into the two-tier scoring block.
//
// Tier A is the weighted pass rate: per group, the fraction of cases at or
// under the shared tier threshold, combined with the group weights. Tier B is
// the diff-magnitude view: group mean diffs combined with the same weights,
// plus an unweighted median across every case. Group weights let a small
// must-work set dominate the score while a larger exploratory suite still
// contributes signal.
//
// Every result's group must carry a weight; weights are validated by the
// suite loader and assumed to sum to 1.0.
func Aggregate(results []report.CaseResult, weights map[string]float64, tierThreshold float64) (report.Metrics, error) {
	byGroup := make(map[string][]report.CaseResult)
	for _, res := range results {
		if _, ok := weights[res.Group]; !ok {
			return report.Metrics{}, fmt.Errorf("case %q in group %q with no weight", res.CaseID, res.Group)
		}
		byGroup[res.Group] = append(byGroup[res.Group], res)
	}

	groups := make([]string, 0, len(weights))
	for group := range weights {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	m := report.Metrics{
		TierAThreshold: tierThreshold,
		GroupPassRates: make(map[string]float64, len(groups)),
		GroupMeanDiffs: make(map[string]float64, len(groups)),
	}

	for _, group := range groups {
		cases := byGroup[group]
		var passed int
		var total float64
		for _, res := range cases {
			if res.DiffPercent <= tierThreshold {
				passed++
			}
			total += res.DiffPercent
		}

		var passRate, meanDiff float64
		if len(cases) > 0 {
			passRate = float64(passed) / float64(len(cases))
			meanDiff = total / float64(len(cases))
		}
		m.GroupPassRates[group] = passRate
		m.GroupMeanDiffs[group] = meanDiff
		m.TierAPassRate += weights[group] * passRate
		m.TierBWeightedMean += weights[group] * meanDiff
	}

	diffs := make([]float64, 0, len(results))
	for _, res := range results {
		diffs = append(diffs, res.DiffPercent)
	}
	m.TierBMedianDiff = stability.Median(diffs)
	m.ParityEstimate = 100 - m.TierBWeightedMean
	m.WorstCases = worstCases(results, 3)

	return m, nil
}

// worstCases ranks cases descending by diff, ties broken by report order.
func worstCases(results []report.CaseResult, n int) []report.WorstCase {
	ranked := append([]report.CaseResult{}, results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DiffPercent > ranked[j].DiffPercent
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]report.WorstCase, 0, len(ranked))
	for _, res := range ranked {
		out = append(out, report.WorstCase{CaseID: res.CaseID, DiffPercent: res.DiffPercent})
	}
	return out
}
