package cluster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bgricker/pixelgate/internal/report"
)

// Work order priorities.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
)

// HighPriorityCount is the issue count a category must exceed before its
// order is raised to high priority.
const HighPriorityCount = 10

// WorkOrder is an actionable follow-up generated from clustered failures.
type WorkOrder struct {
	ID                 string    `json:"id"`
	Category           string    `json:"category"`
	Priority           string    `json:"priority"`
	IssueCount         int       `json:"issue_count,omitempty"`
	AffectedCases      []string  `json:"affected_cases,omitempty"`
	AcceptanceCriteria []string  `json:"acceptance_criteria"`
	Created            time.Time `json:"created"`
}

// WorkOrders turns clustered issue counts and the worst-performing cases into
// prioritized orders. Category orders come out sorted by descending count,
// with the category name breaking ties. A category whose count exceeds
// HighPriorityCount is high priority, otherwise medium. When worst cases are
// known, one extra critical order covers them directly.
func WorkOrders(clusters map[string]int, worst []report.WorstCase, affected map[string][]string, tierThreshold float64, now time.Time) []WorkOrder {
	categories := make([]string, 0, len(clusters))
	for category, count := range clusters {
		if count > 0 {
			categories = append(categories, category)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		if clusters[categories[i]] != clusters[categories[j]] {
			return clusters[categories[i]] > clusters[categories[j]]
		}
		return categories[i] < categories[j]
	})

	date := now.UTC().Format("20060102")
	orders := make([]WorkOrder, 0, len(categories)+1)
	for _, category := range categories {
		count := clusters[category]
		priority := PriorityMedium
		if count > HighPriorityCount {
			priority = PriorityHigh
		}
		orders = append(orders, WorkOrder{
			ID:            fmt.Sprintf("parity-%s-%s", category, date),
			Category:      category,
			Priority:      priority,
			IssueCount:    count,
			AffectedCases: affected[category],
			AcceptanceCriteria: []string{
				fmt.Sprintf("Reduce %s issue count by at least 50%%", category),
				"No regression in other issue clusters",
				"Tier A pass rate improves or holds",
			},
			Created: now.UTC(),
		})
	}

	if len(worst) > 0 {
		cases := make([]string, len(worst))
		for i, w := range worst {
			cases[i] = w.CaseID
		}
		orders = append(orders, WorkOrder{
			ID:            fmt.Sprintf("parity-top-failures-%s", date),
			Category:      "top_failures",
			Priority:      PriorityCritical,
			AffectedCases: cases,
			AcceptanceCriteria: []string{
				fmt.Sprintf("Bring %s below %.0f%% diff", cases[0], tierThreshold),
				"All listed cases show measurable improvement",
			},
			Created: now.UTC(),
		})
	}
	return orders
}

// WriteOrders persists each order as <id>.json under dir.
func WriteOrders(dir string, orders []WorkOrder) ([]string, error) {
	if len(orders) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating work order dir: %w", err)
	}
	paths := make([]string, 0, len(orders))
	for _, order := range orders {
		data, err := json.MarshalIndent(order, "", "  ")
		if err != nil {
			return paths, fmt.Errorf("encoding work order %s: %w", order.ID, err)
		}
		path := filepath.Join(dir, order.ID+".json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return paths, fmt.Errorf("writing work order %s: %w", order.ID, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
