package cluster

import (
	"sort"

	"github.com/bgricker/pixelgate/internal/artifact"
	"github.com/bgricker/pixelgate/internal/report"
)

// The fixed failure categories.
const (
	CategorySizing = "sizing_layout"
	CategoryPaint  = "paint"
	CategoryText   = "text"
	CategoryImages = "images"
)

// Categories returns the fixed category set in display order.
func Categories() []string {
	return []string{CategorySizing, CategoryPaint, CategoryText, CategoryImages}
}

// Issue is one structurally-flagged problem found in a layout tree.
type Issue struct {
	Kind    string `json:"kind"`
	BoxType string `json:"box_type"`
	Depth   int    `json:"depth"`
}

// Inspect walks a layout tree and flags zero-size boxes. A box counts as an
// issue when it sits below depth 1 (the root is depth 0), has zero rendered
// width or height, and is not a text or anonymous block box: those two types
// legitimately collapse to nothing.
func Inspect(dump *artifact.LayoutDump) []Issue {
	if dump == nil || dump.Root == nil {
		return nil
	}
	var issues []Issue
	var walk func(box artifact.Box, depth int)
	walk = func(box artifact.Box, depth int) {
		if depth > 1 && (box.Width <= 0 || box.Height <= 0) {
			if box.Type != "text" && box.Type != "anonymous_block" {
				issues = append(issues, Issue{Kind: "zero_size", BoxType: box.Type, Depth: depth})
			}
		}
		for _, child := range box.Children {
			walk(child, depth+1)
		}
	}
	walk(*dump.Root, 0)
	return issues
}

// Classify buckets a box type into a failure category. Sizing is the default
// bucket for anything unmatched.
func Classify(boxType string) string {
	switch boxType {
	case "form_control", "block":
		return CategorySizing
	case "text":
		return CategoryText
	case "image":
		return CategoryImages
	default:
		return CategorySizing
	}
}

// Counts buckets issues into category totals.
func Counts(issues []Issue) map[string]int {
	if len(issues) == 0 {
		return nil
	}
	out := make(map[string]int)
	for _, issue := range issues {
		out[Classify(issue.BoxType)]++
	}
	return out
}

// CaptureFailureCounts is the synthetic cluster recorded for a case whose
// capture produced nothing measurable.
func CaptureFailureCounts() map[string]int {
	return map[string]int{CategorySizing: 1}
}

// TotalCounts sums per-case issue counts across all results.
func TotalCounts(results []report.CaseResult) map[string]int {
	out := make(map[string]int)
	for _, res := range results {
		for category, count := range res.Issues {
			out[category] += count
		}
	}
	return out
}

// AffectedCases maps each category to the cases contributing issues to it,
// in report order.
func AffectedCases(results []report.CaseResult) map[string][]string {
	out := make(map[string][]string)
	for _, res := range results {
		categories := make([]string, 0, len(res.Issues))
		for category, count := range res.Issues {
			if count > 0 {
				categories = append(categories, category)
			}
		}
		sort.Strings(categories)
		for _, category := range categories {
			out[category] = append(out[category], res.CaseID)
		}
	}
	return out
}
