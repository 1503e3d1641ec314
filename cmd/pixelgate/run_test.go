package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bgricker/pixelgate/internal/report"
)

// workspace is a project root holding a two-case suite and fake tools.
type workspace struct {
	root string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-based tool fixtures are not portable to windows")
	}
	w := &workspace{root: t.TempDir()}
	w.writeFile(t, "parity-suite.yml", `groups:
  builtins: 0.6
  websuite: 0.4
cases:
  - id: core-new-tab
    source: fixtures/new_tab.html
    width: 1280
    height: 800
    group: builtins
  - id: web-card-grid
    source: fixtures/card-grid.html
    width: 1280
    height: 800
    group: websuite
`)
	w.writeTool(t, "renderer", `while [ $# -gt 0 ]; do
  case "$1" in
    --dump-frame) frame="$2"; shift 2 ;;
    --dump-layout) layout="$2"; shift 2 ;;
    --dump-styles) styles="$2"; shift 2 ;;
    *) shift ;;
  esac
done
printf png > "$frame"
echo '{"root": {"type": "viewport", "width": 1280, "height": 800, "children": [{"type": "block", "width": 1280, "height": 400}]}, "elements": [{"selector": "body", "rect": {"x": 0, "y": 0, "width": 1280, "height": 800}}]}' > "$layout"
echo '{"elements": [{"selector": "body", "styles": {"display": "block"}}]}' > "$styles"
echo '{"status": "pass", "elapsed_ms": 5}'`)
	// Candidate paths carry the case id, so "$2" picks the diff per case.
	w.writeTool(t, "difftool", `case "$2" in
  *core-*) echo '{"diff_percent": 10.0}' ;;
  *) echo '{"diff_percent": 40.0}' ;;
esac`)
	return w
}

func (w *workspace) path(name string) string {
	return filepath.Join(w.root, name)
}

func (w *workspace) writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(w.path(name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func (w *workspace) writeTool(t *testing.T, name, script string) {
	t.Helper()
	if err := os.WriteFile(w.path(name), []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("writing tool %s: %v", name, err)
	}
}

// runCommand executes the CLI with captured output.
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestPipelineEndToEnd(t *testing.T) {
	w := newWorkspace(t)

	stdout, stderr, err := runCommand(t, "baseline",
		"--root", w.root, "--baseline-tool", w.path("renderer"))
	if err != nil {
		t.Fatalf("baseline: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "BASELINES: 2 generated, 0 failed") {
		t.Fatalf("baseline output:\n%s", stdout)
	}
	if _, err := os.Stat(filepath.Join(w.root, "baselines", "core-new-tab", "baseline.png")); err != nil {
		t.Fatalf("baseline frame missing: %v", err)
	}
	meta, err := os.ReadFile(filepath.Join(w.root, "baselines", "web-card-grid", "metadata.json"))
	if err != nil {
		t.Fatalf("metadata missing: %v", err)
	}
	if !strings.Contains(string(meta), `"reference": "chrome-120"`) {
		t.Fatalf("metadata content:\n%s", meta)
	}

	stdout, stderr, err = runCommand(t, "run",
		"--root", w.root,
		"--capture-tool", w.path("renderer"),
		"--diff-tool", w.path("difftool"),
		"--fail-packets",
		"--format", "json")
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr)
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(stdout), &rep); err != nil {
		t.Fatalf("decoding run output: %v\n%s", err, stdout)
	}
	if len(rep.Results) != 2 {
		t.Fatalf("results = %d", len(rep.Results))
	}
	if rep.Metrics.ParityEstimate != 78 {
		t.Fatalf("parity = %v, want 78", rep.Metrics.ParityEstimate)
	}

	if _, err := os.Stat(filepath.Join(w.root, "artifacts", "parity-report.json")); err != nil {
		t.Fatalf("report not persisted: %v", err)
	}
	orders, err := os.ReadDir(filepath.Join(w.root, "artifacts", "workorders"))
	if err != nil || len(orders) != 1 {
		t.Fatalf("work orders = %v (err %v), want the critical ticket only", orders, err)
	}
	if !strings.HasPrefix(orders[0].Name(), "parity-top-failures-") {
		t.Fatalf("order name = %s", orders[0].Name())
	}
	if _, err := os.Stat(filepath.Join(w.root, "artifacts", "failures", "web-card-grid", "manifest.json")); err != nil {
		t.Fatalf("failure packet missing: %v", err)
	}

	stdout, stderr, err = runCommand(t, "run",
		"--root", w.root,
		"--capture-tool", w.path("renderer"),
		"--diff-tool", w.path("difftool"),
		"--tag", "nightly",
		"--format", "pretty")
	if err != nil {
		t.Fatalf("second run: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "SUMMARY: 1 passed, 1 failed") {
		t.Fatalf("second run output:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Trend vs ") {
		t.Fatalf("expected a trend line against the first run:\n%s", stdout)
	}

	stdout, _, err = runCommand(t, "history", "--root", w.root, "--format", "pretty")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("history lines = %d:\n%s", len(lines), stdout)
	}
	if !strings.Contains(lines[0], "nightly") {
		t.Fatalf("newest entry must come first:\n%s", stdout)
	}
	if !strings.Contains(lines[1], " -") {
		t.Fatalf("oldest entry must show no delta:\n%s", stdout)
	}

	stdout, _, err = runCommand(t, "history", "--root", w.root, "--limit", "1", "--format", "pretty")
	if err != nil {
		t.Fatalf("history --limit: %v", err)
	}
	lines = strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "nightly") {
		t.Fatalf("limited history:\n%s", stdout)
	}
}

func TestRunNoMatchingCases(t *testing.T) {
	w := newWorkspace(t)
	stdout, _, err := runCommand(t, "run", "--root", w.root, "--filter", "zzz",
		"--capture-tool", w.path("renderer"), "--diff-tool", w.path("difftool"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout, "No matching cases") {
		t.Fatalf("output:\n%s", stdout)
	}
}

func TestRunNoArchiveSkipsHistory(t *testing.T) {
	w := newWorkspace(t)
	_, _, err := runCommand(t, "run", "--root", w.root,
		"--capture-tool", w.path("renderer"),
		"--diff-tool", w.path("difftool"),
		"--no-archive", "--format", "json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(w.root, "artifacts", "history")); !os.IsNotExist(err) {
		t.Fatalf("history dir should not exist, stat err = %v", err)
	}
}

func TestRunWarnsOnReferenceMismatch(t *testing.T) {
	w := newWorkspace(t)
	if _, stderr, err := runCommand(t, "baseline",
		"--root", w.root, "--baseline-tool", w.path("renderer")); err != nil {
		t.Fatalf("baseline: %v\nstderr: %s", err, stderr)
	}

	stale := filepath.Join(w.root, "baselines", "core-new-tab", "metadata.json")
	if err := os.WriteFile(stale, []byte(`{"reference": "chrome-119", "generated_at": "2025-01-01T00:00:00Z"}`), 0o644); err != nil {
		t.Fatalf("rewrite metadata: %v", err)
	}

	_, stderr, err := runCommand(t, "run", "--root", w.root,
		"--capture-tool", w.path("renderer"),
		"--diff-tool", w.path("difftool"),
		"--no-archive", "--format", "json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr, "generated against chrome-119") {
		t.Fatalf("expected a stale-baseline warning, stderr:\n%s", stderr)
	}
}

func TestBaselineRequiresTool(t *testing.T) {
	w := newWorkspace(t)
	_, _, err := runCommand(t, "baseline", "--root", w.root)
	if err == nil || !strings.Contains(err.Error(), "baseline tool") {
		t.Fatalf("err = %v", err)
	}
}
