package capture

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/bgricker/pixelgate/internal/report"
	"github.com/bgricker/pixelgate/internal/suite"
)

func writeRenderer(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-based renderer fixtures are not portable to windows")
	}
	path := filepath.Join(t.TempDir(), "renderer")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("writing renderer script: %v", err)
	}
	return path
}

// goodRenderer parses the dump flags and writes all three artifacts.
const goodRenderer = `while [ $# -gt 0 ]; do
  case "$1" in
    --dump-frame) frame="$2"; shift 2 ;;
    --dump-layout) layout="$2"; shift 2 ;;
    --dump-styles) styles="$2"; shift 2 ;;
    *) shift ;;
  esac
done
printf png > "$frame"
echo '{"root": {"type": "viewport", "width": 100, "height": 100}}' > "$layout"
echo '{"elements": []}' > "$styles"
echo "render complete"
echo '{"status": "pass", "elapsed_ms": 42}'`

func testCase() suite.Case {
	return suite.Case{ID: "new_tab", Source: "fixtures/builtins/new_tab.html", Width: 1280, Height: 800, Group: suite.GroupBuiltins}
}

func TestCaptureSuccess(t *testing.T) {
	tool := writeRenderer(t, goodRenderer)
	o := New(Options{Tool: tool, Headless: true})

	arts, err := o.Capture(context.Background(), Request{Case: testCase(), OutDir: filepath.Join(t.TempDir(), "run-0")})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	for _, path := range []string{arts.FramePath, arts.LayoutPath, arts.StylesPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing artifact %s: %v", path, err)
		}
	}
	if arts.Status == nil || arts.Status.Status != "pass" || arts.Status.ElapsedMS != 42 {
		t.Fatalf("status = %+v, want parsed pass record", arts.Status)
	}
}

func TestCapturePassesArguments(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	tool := writeRenderer(t, `echo "$@" > `+argsFile+`
`+goodRenderer)
	o := New(Options{Tool: tool, Headless: true})

	out := filepath.Join(dir, "out")
	if _, err := o.Capture(context.Background(), Request{Case: testCase(), OutDir: out}); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("reading args: %v", err)
	}
	got := strings.TrimSpace(string(data))
	for _, want := range []string{
		"--html-file fixtures/builtins/new_tab.html",
		"--width 1280",
		"--height 800",
		"--headless",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("args = %q, missing %q", got, want)
		}
	}
}

func TestCaptureDisplayModeOmitsHeadless(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	tool := writeRenderer(t, `echo "$@" > `+argsFile+`
`+goodRenderer)
	o := New(Options{Tool: tool, Headless: false})

	if _, err := o.Capture(context.Background(), Request{Case: testCase(), OutDir: filepath.Join(dir, "out")}); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	data, _ := os.ReadFile(argsFile)
	if strings.Contains(string(data), "--headless") {
		t.Fatalf("args = %q, --headless should be absent in display mode", data)
	}
}

func TestCaptureMissingArtifact(t *testing.T) {
	// Writes the frame only; layout and styles never appear.
	tool := writeRenderer(t, `while [ $# -gt 0 ]; do
  case "$1" in
    --dump-frame) frame="$2"; shift 2 ;;
    *) shift ;;
  esac
done
printf png > "$frame"`)
	o := New(Options{Tool: tool})

	_, err := o.Capture(context.Background(), Request{Case: testCase(), OutDir: filepath.Join(t.TempDir(), "out")})
	if err == nil {
		t.Fatal("expected an error")
	}
	if kind := report.KindOf(err); kind != report.KindCaptureFailed {
		t.Fatalf("kind = %q, want %q", kind, report.KindCaptureFailed)
	}
	if !strings.Contains(err.Error(), "produced no") {
		t.Fatalf("error = %v", err)
	}
}

func TestCaptureNonZeroExit(t *testing.T) {
	tool := writeRenderer(t, `echo "renderer panicked: layout overflow" >&2
exit 1`)
	o := New(Options{Tool: tool})

	_, err := o.Capture(context.Background(), Request{Case: testCase(), OutDir: filepath.Join(t.TempDir(), "out")})
	if err == nil {
		t.Fatal("expected an error")
	}
	if kind := report.KindOf(err); kind != report.KindCaptureFailed {
		t.Fatalf("kind = %q, want %q", kind, report.KindCaptureFailed)
	}
	if !strings.Contains(err.Error(), "layout overflow") {
		t.Fatalf("error lost diagnostics: %v", err)
	}
}

func TestCaptureTimeout(t *testing.T) {
	tool := writeRenderer(t, `sleep 5`)
	o := New(Options{Tool: tool, Timeout: 50 * time.Millisecond})

	_, err := o.Capture(context.Background(), Request{Case: testCase(), OutDir: filepath.Join(t.TempDir(), "out")})
	if err == nil {
		t.Fatal("expected a timeout")
	}
	if kind := report.KindOf(err); kind != report.KindCaptureTimeout {
		t.Fatalf("kind = %q, want %q", kind, report.KindCaptureTimeout)
	}
}

func TestCaptureSurvivesParentCancellation(t *testing.T) {
	tool := writeRenderer(t, goodRenderer)
	o := New(Options{Tool: tool})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := o.Capture(ctx, Request{Case: testCase(), OutDir: filepath.Join(t.TempDir(), "out")}); err != nil {
		t.Fatalf("a cancelled parent context must not kill an in-flight capture: %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   *Status
	}{
		{"status line", "warming up\n{\"status\": \"fail\", \"elapsed_ms\": 900}\n", &Status{Status: "fail", ElapsedMS: 900}},
		{"trailing blank lines", "{\"status\": \"pass\"}\n\n\n", &Status{Status: "pass"}},
		{"plain log output", "rendered 3 frames\n", nil},
		{"broken json", "{status: pass\n", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseStatus(tt.stdout)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("parseStatus = %+v, want nil", got)
				}
				return
			}
			if got == nil || got.Status != tt.want.Status || got.ElapsedMS != tt.want.ElapsedMS {
				t.Fatalf("parseStatus = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRunDir(t *testing.T) {
	got := RunDir("artifacts/captures", "card-grid", 2)
	want := filepath.Join("artifacts/captures", "card-grid", "run-2")
	if got != want {
		t.Fatalf("RunDir = %q, want %q", got, want)
	}
}
