package compare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/bgricker/pixelgate/internal/artifact"
	"github.com/bgricker/pixelgate/internal/report"
	"github.com/bgricker/pixelgate/internal/toolrun"
)

// styleProps is the fixed property list checked on every matched element.
var styleProps = []string{"display", "width", "height", "margin-top", "padding-top", "position"}

// rectProps is the geometry checked on every matched element, in report order.
var rectProps = []string{"width", "height", "x", "y"}

// Options configure pixel comparison.
type Options struct {
	Tool      string
	Timeout   time.Duration
	TailLines int
	Verbose   bool
	Stdout    io.Writer
	Stderr    io.Writer
}

// Comparator drives the external pixel-diff tool. Style and rect comparison
// are pure functions and live alongside as package functions.
type Comparator struct {
	opts Options
}

// New creates a comparator with the supplied options.
func New(opts Options) *Comparator {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.TailLines <= 0 {
		opts.TailLines = 20
	}
	return &Comparator{opts: opts}
}

// PixelInput names the artifacts handed to the diff tool. Rects and Styles
// are optional attribution inputs; empty paths are left off the command line.
type PixelInput struct {
	Baseline  string
	Candidate string
	OutDir    string
	Rects     string
	Styles    string
}

// Pixel invokes the diff tool and returns the differing-pixel percentage,
// clamped to [0, 100]. The tool reports through a JSON object line on stdout;
// the first such line must carry diff_percent. Any tool failure comes back as
// a comparison error.
func (c *Comparator) Pixel(ctx context.Context, in PixelInput) (float64, error) {
	args := []string{in.Baseline, in.Candidate, "--out", in.OutDir}
	if in.Rects != "" {
		args = append(args, "--rects", in.Rects)
	}
	if in.Styles != "" {
		args = append(args, "--styles", in.Styles)
	}

	out, err := toolrun.Run(ctx, toolrun.Invocation{
		Tool:    c.opts.Tool,
		Args:    args,
		Timeout: c.opts.Timeout,
		Verbose: c.opts.Verbose,
		Stdout:  c.opts.Stdout,
		Stderr:  c.opts.Stderr,
	})
	if err != nil {
		msg := fmt.Sprintf("pixel diff tool exited %d", out.ExitCode)
		if out.TimedOut {
			msg = fmt.Sprintf("pixel diff tool timed out after %s", c.opts.Timeout)
		}
		return 0, &report.CaseError{
			Kind:    report.KindComparison,
			Message: msg,
			Detail:  toolrun.Tail(out.Stderr, c.opts.TailLines),
		}
	}

	percent, err := parseDiffPercent(out.Stdout)
	if err != nil {
		return 0, &report.CaseError{
			Kind:    report.KindComparison,
			Message: err.Error(),
			Detail:  toolrun.Tail(out.Stdout, c.opts.TailLines),
		}
	}
	return clampPercent(percent), nil
}

func parseDiffPercent(stdout string) (float64, error) {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var payload struct {
			DiffPercent *float64 `json:"diff_percent"`
		}
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			return 0, fmt.Errorf("pixel diff output is not valid JSON: %v", err)
		}
		if payload.DiffPercent == nil {
			return 0, fmt.Errorf("pixel diff output is missing diff_percent")
		}
		return *payload.DiffPercent, nil
	}
	return 0, fmt.Errorf("pixel diff tool produced no JSON result line")
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Styles compares computed-style snapshots element by element, keyed by
// selector. Baseline selectors missing from the candidate count as
// mismatches; matched pairs are checked over the fixed property list and any
// differing property flags the element. Counts stay exact; detail entries
// stop at report.MaxDifferences.
func Styles(baseline, candidate *artifact.StyleSnapshot) report.StyleComparison {
	var cmp report.StyleComparison
	if baseline == nil {
		return cmp
	}
	index := make(map[string]map[string]string)
	if candidate != nil {
		for _, el := range candidate.Elements {
			index[el.Selector] = el.Styles
		}
	}
	for _, el := range baseline.Elements {
		candStyles, ok := index[el.Selector]
		if !ok {
			cmp.Mismatched++
			if len(cmp.Differences) < report.MaxDifferences {
				cmp.Differences = append(cmp.Differences, report.StyleDifference{Selector: el.Selector, Missing: true})
			}
			continue
		}
		var props []report.PropDiff
		for _, prop := range styleProps {
			b, c := el.Styles[prop], candStyles[prop]
			if b != c {
				props = append(props, report.PropDiff{Property: prop, Baseline: b, Candidate: c})
			}
		}
		if len(props) == 0 {
			cmp.Matched++
			continue
		}
		cmp.Mismatched++
		if len(cmp.Differences) < report.MaxDifferences {
			cmp.Differences = append(cmp.Differences, report.StyleDifference{Selector: el.Selector, Props: props})
		}
	}
	return cmp
}

// Rects compares layout geometry the same way Styles compares properties. A
// dimension counts as a mismatch only when it moved by strictly more than the
// tolerance. Elements without a usable rect on the baseline side are skipped.
func Rects(baseline, candidate *artifact.LayoutDump, tolerance float64) report.RectComparison {
	var cmp report.RectComparison
	if baseline == nil {
		return cmp
	}
	index := make(map[string]*artifact.Rect)
	if candidate != nil {
		for _, el := range candidate.Elements {
			if r := el.Bounds(); r != nil {
				index[el.Selector] = r
			}
		}
	}
	for _, el := range baseline.Elements {
		base := el.Bounds()
		if base == nil {
			continue
		}
		cand, ok := index[el.Selector]
		if !ok {
			cmp.Mismatched++
			if len(cmp.Differences) < report.MaxDifferences {
				cmp.Differences = append(cmp.Differences, report.RectDifference{Selector: el.Selector, Missing: true})
			}
			continue
		}
		var props []report.RectPropDiff
		for _, prop := range rectProps {
			b, c := rectValue(base, prop), rectValue(cand, prop)
			if delta := c - b; math.Abs(delta) > tolerance {
				props = append(props, report.RectPropDiff{Property: prop, Baseline: b, Candidate: c, Delta: delta})
			}
		}
		if len(props) == 0 {
			cmp.Matched++
			continue
		}
		cmp.Mismatched++
		if len(cmp.Differences) < report.MaxDifferences {
			cmp.Differences = append(cmp.Differences, report.RectDifference{Selector: el.Selector, Props: props})
		}
	}
	return cmp
}

func rectValue(r *artifact.Rect, prop string) float64 {
	switch prop {
	case "width":
		return r.Width
	case "height":
		return r.Height
	case "x":
		return r.X
	case "y":
		return r.Y
	}
	return 0
}
