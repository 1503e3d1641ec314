package output

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/bgricker/pixelgate/internal/archive"
	"github.com/bgricker/pixelgate/internal/gate"
	"github.com/bgricker/pixelgate/internal/report"
)

// PrettyRenderer renders pipeline results in a human-friendly format.
type PrettyRenderer struct {
	out io.Writer
}

// NewPretty creates a PrettyRenderer writing to the provided writer.
func NewPretty(out io.Writer) *PrettyRenderer {
	return &PrettyRenderer{out: out}
}

// RenderReport shows every case grouped by suite group, followed by the
// metrics block.
func (p *PrettyRenderer) RenderReport(rep *report.Report) error {
	var buffer bytes.Buffer

	width := 0
	for _, res := range rep.Results {
		if len(res.CaseID) > width {
			width = len(res.CaseID)
		}
	}

	byGroup := rep.ResultsByGroup()
	for _, group := range sortedGroups(rep.Config.GroupWeights) {
		results := byGroup[group]
		if len(results) == 0 {
			continue
		}
		fmt.Fprintf(&buffer, "Group %s (weight %.2f)\n", group, rep.Config.GroupWeights[group])
		for _, res := range results {
			writeCaseLine(&buffer, res, width)
		}
		if _, err := buffer.WriteTo(p.out); err != nil {
			return err
		}
		buffer.Reset()
	}

	if err := p.renderMetricsBlock(rep); err != nil {
		return err
	}

	passed, failed := 0, 0
	var total time.Duration
	for _, res := range rep.Results {
		if res.Passed {
			passed++
		} else {
			failed++
		}
		total += res.Duration
	}
	_, err := fmt.Fprintf(p.out, "SUMMARY: %d passed, %d failed (%d cases, %s)\n",
		passed, failed, len(rep.Results), formatDuration(total))
	return err
}

func writeCaseLine(buffer *bytes.Buffer, res report.CaseResult, width int) {
	glyph := statusGlyph(res.Passed)
	fmt.Fprintf(buffer, "  %s %-*s %7.2f%%  (limit %.0f%%, %s)\n",
		glyph, width, res.CaseID, res.DiffPercent, res.Threshold, formatDuration(res.Duration))
	if res.Error != "" {
		fmt.Fprintf(buffer, "%s\n", indent("error: "+res.Error, "      "))
	}
	if res.Style != nil && res.Style.Mismatched > 0 {
		fmt.Fprintf(buffer, "      styles: %d matched, %d mismatched\n", res.Style.Matched, res.Style.Mismatched)
	}
	if res.Rect != nil && res.Rect.Mismatched > 0 {
		fmt.Fprintf(buffer, "      rects: %d matched, %d mismatched\n", res.Rect.Matched, res.Rect.Mismatched)
	}
	if res.Stability != nil {
		note := ""
		if res.Stability.Stable != nil && !*res.Stability.Stable {
			note = " unstable"
		}
		fmt.Fprintf(buffer, "      stability: median %.2f spread %.2f over %d runs%s\n",
			res.Stability.Median, res.Stability.Spread, len(res.Stability.Samples), note)
	}
}

// RenderMetrics shows the metrics block alone.
func (p *PrettyRenderer) RenderMetrics(rep *report.Report) error {
	return p.renderMetricsBlock(rep)
}

func (p *PrettyRenderer) renderMetricsBlock(rep *report.Report) error {
	var buffer bytes.Buffer
	m := rep.Metrics

	fmt.Fprintf(&buffer, "TIER A pass rate: %.1f%% at threshold %.0f%%\n", m.TierAPassRate*100, m.TierAThreshold)
	for _, group := range sortedGroups(m.GroupPassRates) {
		fmt.Fprintf(&buffer, "  %s: %.1f%%\n", group, m.GroupPassRates[group]*100)
	}
	fmt.Fprintf(&buffer, "TIER B weighted mean diff: %.2f%%, median diff: %.2f%%\n", m.TierBWeightedMean, m.TierBMedianDiff)
	for _, group := range sortedGroups(m.GroupMeanDiffs) {
		fmt.Fprintf(&buffer, "  %s: %.2f%%\n", group, m.GroupMeanDiffs[group])
	}
	fmt.Fprintf(&buffer, "Parity estimate: %.1f%%\n", m.ParityEstimate)

	if len(m.WorstCases) > 0 {
		fmt.Fprintf(&buffer, "Worst cases:\n")
		for _, w := range m.WorstCases {
			fmt.Fprintf(&buffer, "  %s %.1f%%\n", w.CaseID, w.DiffPercent)
		}
	}
	if len(rep.IssueClusters) > 0 {
		fmt.Fprintf(&buffer, "Issue clusters:\n")
		for _, category := range sortedCategories(rep.IssueClusters) {
			fmt.Fprintf(&buffer, "  %s: %d\n", category, rep.IssueClusters[category])
		}
	}

	_, err := buffer.WriteTo(p.out)
	return err
}

// RenderVerdict shows the gate outcome. Verbose adds the per-case regression
// listing.
func (p *PrettyRenderer) RenderVerdict(v gate.Verdict, verbose bool) error {
	var buffer bytes.Buffer

	label := "PASS"
	if !v.Pass {
		label = "FAIL"
	}
	fmt.Fprintf(&buffer, "GATE %s: parity %.1f%% (minimum %.1f%%)\n", label, v.Parity, v.MinParity)
	for _, reason := range v.Reasons {
		fmt.Fprintf(&buffer, "  reason: %s\n", reason)
	}
	if verbose && len(v.Regressions) > 0 {
		fmt.Fprintf(&buffer, "  regressions:\n")
		for _, reg := range v.Regressions {
			fmt.Fprintf(&buffer, "    %s %.1f%% -> %.1f%% (+%.1f)\n", reg.CaseID, reg.Previous, reg.Current, reg.Delta)
		}
	}

	_, err := buffer.WriteTo(p.out)
	return err
}

// RenderTrend shows movement against the immediately preceding archived run.
func (p *PrettyRenderer) RenderTrend(tr archive.TrendReport) error {
	var buffer bytes.Buffer

	fmt.Fprintf(&buffer, "Trend vs %s: parity %+.1f\n", tr.PreviousID, tr.ParityDelta)
	for _, cd := range tr.Improvements {
		fmt.Fprintf(&buffer, "  improved: %s %.1f%% -> %.1f%% (%.1f)\n", cd.CaseID, cd.Previous, cd.Current, cd.Delta)
	}
	for _, cd := range tr.Regressions {
		fmt.Fprintf(&buffer, "  regressed: %s %.1f%% -> %.1f%% (+%.1f)\n", cd.CaseID, cd.Previous, cd.Current, cd.Delta)
	}

	_, err := buffer.WriteTo(p.out)
	return err
}

// RenderHistory lists archive entries newest first with parity deltas between
// consecutive runs.
func (p *PrettyRenderer) RenderHistory(entries []archive.Entry) error {
	var buffer bytes.Buffer

	if len(entries) == 0 {
		fmt.Fprintf(&buffer, "no archived runs\n")
		_, err := buffer.WriteTo(p.out)
		return err
	}

	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		delta := "      -"
		if i > 0 {
			delta = fmt.Sprintf("%+7.1f", entry.ParityEstimate-entries[i-1].ParityEstimate)
		}
		tag := ""
		if entry.Tag != "" {
			tag = "  " + entry.Tag
		}
		fmt.Fprintf(&buffer, "%s  parity %5.1f%%  tierA %5.1f%%  %s%s\n",
			entry.ID, entry.ParityEstimate, entry.TierAPassRate*100, delta, tag)
	}

	_, err := buffer.WriteTo(p.out)
	return err
}

func sortedGroups(m map[string]float64) []string {
	groups := make([]string, 0, len(m))
	for group := range m {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}

func sortedCategories(m map[string]int) []string {
	categories := make([]string, 0, len(m))
	for category := range m {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

func statusGlyph(passed bool) string {
	if passed {
		return "✓"
	}
	return "✗"
}

func indent(s, pad string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Truncate(time.Millisecond).String()
}
