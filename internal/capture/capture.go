package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bgricker/pixelgate/internal/artifact"
	"github.com/bgricker/pixelgate/internal/report"
	"github.com/bgricker/pixelgate/internal/suite"
	"github.com/bgricker/pixelgate/internal/toolrun"
)

// Options configure the orchestrator.
type Options struct {
	Tool      string        // renderer executable
	Headless  bool          // adds --headless to every invocation
	Timeout   time.Duration // wall clock per capture
	TailLines int
	Verbose   bool
	Stdout    io.Writer
	Stderr    io.Writer
}

// Orchestrator drives a renderer, one capture per call. The same type serves
// the renderer under test and the reference generator; only the tool differs.
type Orchestrator struct {
	opts Options
}

// New creates an orchestrator with the supplied options.
func New(opts Options) *Orchestrator {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.TailLines <= 0 {
		opts.TailLines = 20
	}
	return &Orchestrator{opts: opts}
}

// Request is one capture: a case rendered into an output directory. Empty
// file names default to the standard run artifacts.
type Request struct {
	Case   suite.Case
	OutDir string
	Frame  string
	Layout string
	Styles string
}

// Status is the renderer's optional final stdout record.
type Status struct {
	Status    string `json:"status"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// Artifacts points at the files a capture produced.
type Artifacts struct {
	FramePath  string
	LayoutPath string
	StylesPath string
	Status     *Status
	Duration   time.Duration
}

// RunDir returns the artifact directory for one stability repeat of a case.
func RunDir(workDir, caseID string, runIndex int) string {
	return filepath.Join(workDir, caseID, "run-"+strconv.Itoa(runIndex))
}

// Capture renders one case. The tool runs under its own deadline, detached
// from the caller's cancellation: killing a renderer mid-write leaves
// truncated artifacts, so an in-flight capture always runs to completion or
// to its timeout. Callers cancel between captures instead.
func (o *Orchestrator) Capture(ctx context.Context, req Request) (Artifacts, error) {
	frame := req.Frame
	if frame == "" {
		frame = artifact.FrameFile
	}
	layout := req.Layout
	if layout == "" {
		layout = artifact.LayoutFile
	}
	styles := req.Styles
	if styles == "" {
		styles = artifact.StylesFile
	}

	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return Artifacts{}, &report.CaseError{
			Kind:    report.KindCaptureFailed,
			Message: fmt.Sprintf("creating capture dir for %s", req.Case.ID),
			Detail:  err.Error(),
		}
	}

	arts := Artifacts{
		FramePath:  filepath.Join(req.OutDir, frame),
		LayoutPath: filepath.Join(req.OutDir, layout),
		StylesPath: filepath.Join(req.OutDir, styles),
	}

	args := []string{
		"--html-file", req.Case.Source,
		"--width", strconv.Itoa(req.Case.Width),
		"--height", strconv.Itoa(req.Case.Height),
		"--dump-frame", arts.FramePath,
		"--dump-layout", arts.LayoutPath,
		"--dump-styles", arts.StylesPath,
	}
	if o.opts.Headless {
		args = append(args, "--headless")
	}

	out, err := toolrun.Run(context.WithoutCancel(ctx), toolrun.Invocation{
		Tool:    o.opts.Tool,
		Args:    args,
		Timeout: o.opts.Timeout,
		Verbose: o.opts.Verbose,
		Stdout:  o.opts.Stdout,
		Stderr:  o.opts.Stderr,
	})
	arts.Duration = out.Duration
	arts.Status = parseStatus(out.Stdout)

	if err != nil {
		if out.TimedOut {
			return arts, &report.CaseError{
				Kind:    report.KindCaptureTimeout,
				Message: fmt.Sprintf("capture timed out after %s", o.opts.Timeout),
				Detail:  diagnostic(out, o.opts.TailLines),
			}
		}
		return arts, &report.CaseError{
			Kind:    report.KindCaptureFailed,
			Message: fmt.Sprintf("capture tool exited %d", out.ExitCode),
			Detail:  diagnostic(out, o.opts.TailLines),
		}
	}

	for _, path := range []string{arts.FramePath, arts.LayoutPath, arts.StylesPath} {
		if _, statErr := os.Stat(path); statErr != nil {
			return arts, &report.CaseError{
				Kind:    report.KindCaptureFailed,
				Message: fmt.Sprintf("capture produced no %s", filepath.Base(path)),
				Detail:  diagnostic(out, o.opts.TailLines),
			}
		}
	}
	return arts, nil
}

// parseStatus decodes the tool's final stdout line when it is a JSON record.
// Anything else is treated as plain logging and ignored.
func parseStatus(stdout string) *Status {
	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "{") {
			return nil
		}
		var st Status
		if json.Unmarshal([]byte(line), &st) != nil || st.Status == "" {
			return nil
		}
		return &st
	}
	return nil
}

// diagnostic prefers the stderr tail, falling back to stdout for tools that
// log everything to one stream.
func diagnostic(out toolrun.Outcome, tail int) string {
	if strings.TrimSpace(out.Stderr) != "" {
		return toolrun.Tail(out.Stderr, tail)
	}
	return toolrun.Tail(out.Stdout, tail)
}
