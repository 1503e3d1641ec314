package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bgricker/pixelgate/internal/report"
)

// writeReportFile persists a minimal valid report with one result per entry
// of diffs. Group weights put 60% on builtins and 40% on websuite.
func writeReportFile(t *testing.T, path string, diffs map[string]float64) {
	t.Helper()
	rep := &report.Report{
		Timestamp: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Config: report.ConfigEcho{
			GroupWeights:   map[string]float64{"builtins": 0.6, "websuite": 0.4},
			TierAThreshold: 25,
			Runs:           1,
			Mode:           "headless",
		},
	}
	for id, diff := range diffs {
		group := "websuite"
		if strings.HasPrefix(id, "core-") {
			group = "builtins"
		}
		rep.Results = append(rep.Results, report.CaseResult{
			CaseID:      id,
			Group:       group,
			Source:      id + ".html",
			Width:       1280,
			Height:      800,
			DiffPercent: diff,
			Threshold:   15,
			Category:    "default",
			Passed:      diff <= 15,
			Runs:        1,
		})
	}
	var mean float64
	for _, res := range rep.Results {
		weight := rep.Config.GroupWeights[res.Group]
		mean += weight * res.DiffPercent / float64(countGroup(rep.Results, res.Group))
	}
	rep.Metrics.ParityEstimate = 100 - mean
	rep.Metrics.TierBWeightedMean = mean
	if err := report.Save(rep, path); err != nil {
		t.Fatalf("saving report: %v", err)
	}
}

func countGroup(results []report.CaseResult, group string) int {
	n := 0
	for _, res := range results {
		if res.Group == group {
			n++
		}
	}
	return n
}

func TestGatePassesAboveMinimum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	writeReportFile(t, path, map[string]float64{"core-new-tab": 10, "web-card-grid": 40})

	stdout, _, err := runCommand(t, "gate", "--root", dir, "--report", path,
		"--min-parity", "70", "--format", "pretty")
	if err != nil {
		t.Fatalf("gate: %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "GATE PASS") {
		t.Fatalf("output:\n%s", stdout)
	}
}

func TestGateFailsBelowMinimum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	writeReportFile(t, path, map[string]float64{"core-new-tab": 10, "web-card-grid": 40})

	stdout, _, err := runCommand(t, "gate", "--root", dir, "--report", path,
		"--min-parity", "90", "--format", "pretty")
	if err == nil {
		t.Fatal("gate must fail below the minimum")
	}
	if !strings.Contains(stdout, "GATE FAIL") || !strings.Contains(stdout, "below the minimum") {
		t.Fatalf("output:\n%s", stdout)
	}
}

func TestGateFlagsRegressions(t *testing.T) {
	dir := t.TempDir()
	current := filepath.Join(dir, "current.json")
	previous := filepath.Join(dir, "previous.json")
	writeReportFile(t, current, map[string]float64{"core-new-tab": 30})
	writeReportFile(t, previous, map[string]float64{"core-new-tab": 10})

	stdout, _, err := runCommand(t, "gate", "--root", dir,
		"--report", current, "--previous", previous,
		"--min-parity", "0", "--regression-threshold", "5", "--format", "pretty", "-v")
	if err == nil {
		t.Fatal("a 20 point regression must fail the gate")
	}
	if !strings.Contains(stdout, "1 case(s) regressed") {
		t.Fatalf("output:\n%s", stdout)
	}
	if !strings.Contains(stdout, "core-new-tab 10.0% -> 30.0%") {
		t.Fatalf("verbose regression listing missing:\n%s", stdout)
	}
}

func TestGateRejectsMalformedReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write report: %v", err)
	}

	_, _, err := runCommand(t, "gate", "--root", dir, "--report", path)
	if !errors.Is(err, report.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}
