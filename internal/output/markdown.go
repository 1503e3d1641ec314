package output

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/bgricker/pixelgate/internal/report"
)

// MarkdownRenderer emits a report as a markdown document suitable for CI
// summaries and tickets.
type MarkdownRenderer struct {
	out io.Writer
}

// NewMarkdown creates a markdown renderer writing to out.
func NewMarkdown(out io.Writer) *MarkdownRenderer {
	return &MarkdownRenderer{out: out}
}

// RenderMetrics writes the parity summary, per-group breakdown, worst cases,
// and per-category case tables.
func (m *MarkdownRenderer) RenderMetrics(rep *report.Report) error {
	var buffer bytes.Buffer
	metrics := rep.Metrics

	fmt.Fprintf(&buffer, "# Parity Report\n\n")
	if !rep.Timestamp.IsZero() {
		fmt.Fprintf(&buffer, "Generated: %s\n\n", rep.Timestamp.UTC().Format(time.RFC3339))
	}

	fmt.Fprintf(&buffer, "| Metric | Value |\n| --- | --- |\n")
	fmt.Fprintf(&buffer, "| Tier A pass rate | %.1f%% |\n", metrics.TierAPassRate*100)
	fmt.Fprintf(&buffer, "| Tier A threshold | %.0f%% |\n", metrics.TierAThreshold)
	fmt.Fprintf(&buffer, "| Tier B weighted mean diff | %.2f%% |\n", metrics.TierBWeightedMean)
	fmt.Fprintf(&buffer, "| Tier B median diff | %.2f%% |\n", metrics.TierBMedianDiff)
	fmt.Fprintf(&buffer, "| Parity estimate | %.1f%% |\n\n", metrics.ParityEstimate)

	if len(rep.Config.GroupWeights) > 0 {
		fmt.Fprintf(&buffer, "## Groups\n\n")
		fmt.Fprintf(&buffer, "| Group | Weight | Pass rate | Mean diff |\n| --- | --- | --- | --- |\n")
		for _, group := range sortedGroups(rep.Config.GroupWeights) {
			fmt.Fprintf(&buffer, "| %s | %.2f | %.1f%% | %.2f%% |\n",
				group, rep.Config.GroupWeights[group], metrics.GroupPassRates[group]*100, metrics.GroupMeanDiffs[group])
		}
		fmt.Fprintf(&buffer, "\n")
	}

	if len(metrics.WorstCases) > 0 {
		fmt.Fprintf(&buffer, "## Worst cases\n\n")
		for _, w := range metrics.WorstCases {
			fmt.Fprintf(&buffer, "- %s: %.1f%%\n", w.CaseID, w.DiffPercent)
		}
		fmt.Fprintf(&buffer, "\n")
	}

	if len(rep.Results) > 0 {
		fmt.Fprintf(&buffer, "## Cases\n\n")
		for _, category := range resultCategories(rep.Results) {
			fmt.Fprintf(&buffer, "### %s\n\n", category)
			fmt.Fprintf(&buffer, "| Case | Diff | Limit | Status |\n| --- | --- | --- | --- |\n")
			for _, res := range rep.Results {
				if res.Category != category {
					continue
				}
				status := "pass"
				if !res.Passed {
					status = "fail"
				}
				fmt.Fprintf(&buffer, "| %s | %.2f%% | %.0f%% | %s |\n", res.CaseID, res.DiffPercent, res.Threshold, status)
			}
			fmt.Fprintf(&buffer, "\n")
		}
	}

	if len(rep.IssueClusters) > 0 {
		fmt.Fprintf(&buffer, "## Issue clusters\n\n")
		fmt.Fprintf(&buffer, "| Category | Count |\n| --- | --- |\n")
		for _, category := range sortedCategories(rep.IssueClusters) {
			fmt.Fprintf(&buffer, "| %s | %d |\n", category, rep.IssueClusters[category])
		}
		fmt.Fprintf(&buffer, "\n")
	}

	_, err := buffer.WriteTo(m.out)
	return err
}

// resultCategories returns the distinct case categories in sorted order.
func resultCategories(results []report.CaseResult) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, res := range results {
		if !seen[res.Category] {
			seen[res.Category] = true
			categories = append(categories, res.Category)
		}
	}
	sort.Strings(categories)
	return categories
}
