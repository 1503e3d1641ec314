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

// PacketManifest summarizes one failing case for handoff. The manifest sits
// next to the case's captured artifacts so a packet can be zipped and
// attached to a ticket without rerunning anything.
type PacketManifest struct {
	CaseID        string                `json:"case_id"`
	DiffPercent   float64               `json:"diff_percent"`
	Threshold     float64               `json:"threshold"`
	Category      string                `json:"category,omitempty"`
	DominantIssue string                `json:"dominant_issue,omitempty"`
	Error         string                `json:"error,omitempty"`
	Artifacts     *report.ArtifactPaths `json:"artifacts,omitempty"`
	Created       time.Time             `json:"created"`
}

// WritePackets builds a failure packet for each of the report's worst cases
// and returns the manifest paths written.
func WritePackets(dir string, rep *report.Report, now time.Time) ([]string, error) {
	if rep == nil || len(rep.Metrics.WorstCases) == 0 {
		return nil, nil
	}
	byID := make(map[string]report.CaseResult, len(rep.Results))
	for _, res := range rep.Results {
		byID[res.CaseID] = res
	}
	var paths []string
	for _, worst := range rep.Metrics.WorstCases {
		res, ok := byID[worst.CaseID]
		if !ok {
			continue
		}
		manifest := PacketManifest{
			CaseID:        res.CaseID,
			DiffPercent:   res.DiffPercent,
			Threshold:     res.Threshold,
			Category:      res.Category,
			DominantIssue: dominantIssue(res.Issues),
			Error:         res.Error,
			Artifacts:     res.Artifacts,
			Created:       now.UTC(),
		}
		caseDir := filepath.Join(dir, res.CaseID)
		if err := os.MkdirAll(caseDir, 0o755); err != nil {
			return paths, fmt.Errorf("creating packet dir for %s: %w", res.CaseID, err)
		}
		data, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			return paths, fmt.Errorf("encoding packet for %s: %w", res.CaseID, err)
		}
		path := filepath.Join(caseDir, "manifest.json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return paths, fmt.Errorf("writing packet for %s: %w", res.CaseID, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// dominantIssue picks the category with the highest issue count, breaking
// ties alphabetically.
func dominantIssue(issues map[string]int) string {
	if len(issues) == 0 {
		return ""
	}
	categories := make([]string, 0, len(issues))
	for category := range issues {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	best := categories[0]
	for _, category := range categories[1:] {
		if issues[category] > issues[best] {
			best = category
		}
	}
	return best
}
