package runner

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bgricker/pixelgate/internal/artifact"
	"github.com/bgricker/pixelgate/internal/capture"
	"github.com/bgricker/pixelgate/internal/cluster"
	"github.com/bgricker/pixelgate/internal/compare"
	"github.com/bgricker/pixelgate/internal/config"
	"github.com/bgricker/pixelgate/internal/metrics"
	"github.com/bgricker/pixelgate/internal/report"
	"github.com/bgricker/pixelgate/internal/stability"
	"github.com/bgricker/pixelgate/internal/suite"
)

// Options configure a pipeline run.
type Options struct {
	Config *config.Config
	Suite  *suite.Suite
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time
}

// Runner executes capture and comparison for every suite case through a
// bounded worker pool, then reduces the outcomes into a report in a single
// aggregation pass.
type Runner struct {
	opts     Options
	capturer *capture.Orchestrator
	comparer *compare.Comparator
}

// New creates a runner wired to the configured external tools.
func New(opts Options) *Runner {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	cfg := opts.Config
	return &Runner{
		opts: opts,
		capturer: capture.New(capture.Options{
			Tool:     cfg.CaptureTool,
			Headless: cfg.Mode == config.ModeHeadless,
			Timeout:  cfg.CaptureTimeout(),
			Verbose:  cfg.Verbose,
			Stdout:   opts.Stdout,
			Stderr:   opts.Stderr,
		}),
		comparer: compare.New(compare.Options{
			Tool:    cfg.DiffTool,
			Timeout: cfg.DiffTimeout.Std(),
			Verbose: cfg.Verbose,
			Stdout:  opts.Stdout,
			Stderr:  opts.Stderr,
		}),
	}
}

// Run executes the pipeline over the suite. Case work is independent, so
// distinct cases run concurrently up to the worker limit; each case's
// stability repeats stay sequential inside its worker. Per-case failures are
// recorded on the results, never returned; only cancellation aborts the run.
func (r *Runner) Run(ctx context.Context) (*report.Report, error) {
	cfg := r.opts.Config
	cases := r.opts.Suite.Cases
	results := make([]report.CaseResult, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.runCase(gctx, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &report.Report{
		Timestamp: r.opts.Now().UTC(),
		Config: report.ConfigEcho{
			GroupWeights:   r.opts.Suite.Groups,
			TierAThreshold: cfg.TierAThreshold,
			Runs:           cfg.Runs,
			Mode:           cfg.Mode,
		},
		Results: results,
	}
	m, err := metrics.Aggregate(results, r.opts.Suite.Groups, cfg.TierAThreshold)
	if err != nil {
		return nil, err
	}
	rep.Metrics = m
	rep.IssueClusters = cluster.TotalCounts(results)
	return rep, nil
}

// runCase produces the complete result for one case: capture and pixel-diff
// once per configured repeat, style and rect comparison from the first
// successful capture, layout inspection for issue clustering.
func (r *Runner) runCase(ctx context.Context, c suite.Case) report.CaseResult {
	cfg := r.opts.Config
	start := r.opts.Now()
	category, threshold := cfg.Thresholds.ForCase(c.ID)
	res := report.CaseResult{
		CaseID:    c.ID,
		Group:     c.Group,
		Source:    c.Source,
		Width:     c.Width,
		Height:    c.Height,
		Threshold: threshold,
		Category:  category,
		Runs:      cfg.Runs,
	}
	finish := func() report.CaseResult {
		res.Duration = r.opts.Now().Sub(start)
		res.DurationMS = res.Duration.Milliseconds()
		res.Passed = res.DiffPercent <= res.Threshold
		return res
	}

	baseline := artifact.BaselineFor(cfg.BaselineRoot, c.ID)
	if _, err := os.Stat(baseline.Frame); err != nil {
		caseErr := &report.CaseError{Kind: report.KindNoBaseline, Message: "no baseline frame for " + c.ID}
		res.DiffPercent = 100
		res.Error = caseErr.Error()
		res.ErrorKind = report.KindNoBaseline
		return finish()
	}

	// Attribution inputs are optional; only hand the diff tool files that exist.
	var attrRects, attrStyles string
	if _, err := os.Stat(baseline.Rects); err == nil {
		attrRects = baseline.Rects
	}
	if _, err := os.Stat(baseline.Styles); err == nil {
		attrStyles = baseline.Styles
	}

	var samples []float64
	var firstErr error
	var repArts *capture.Artifacts
	for run := 0; run < cfg.Runs; run++ {
		if ctx.Err() != nil {
			break
		}
		dir := capture.RunDir(cfg.WorkDir, c.ID, run)
		arts, err := r.capturer.Capture(ctx, capture.Request{Case: c, OutDir: dir})
		if err != nil {
			samples = append(samples, 100)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if repArts == nil {
			repArts = &arts
		}

		diff, err := r.comparer.Pixel(ctx, compare.PixelInput{
			Baseline:  baseline.Frame,
			Candidate: arts.FramePath,
			OutDir:    filepath.Join(dir, "diff"),
			Rects:     attrRects,
			Styles:    attrStyles,
		})
		if err != nil {
			samples = append(samples, 100)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		samples = append(samples, diff)
	}

	if len(samples) == 0 {
		res.DiffPercent = 100
	} else {
		res.DiffPercent = stability.Median(samples)
	}
	if cfg.Runs > 1 && len(samples) > 0 {
		res.Stability = stability.Analyze(samples, cfg.StabilityCeiling)
	}
	if firstErr != nil {
		res.Error = firstErr.Error()
		res.ErrorKind = report.KindOf(firstErr)
	}

	if repArts == nil {
		// Nothing measurable came back from the renderer.
		res.Issues = cluster.CaptureFailureCounts()
		return finish()
	}

	res.Artifacts = &report.ArtifactPaths{
		Frame:  repArts.FramePath,
		Layout: repArts.LayoutPath,
		Styles: repArts.StylesPath,
	}
	if baseStyles, err := artifact.LoadStyles(baseline.Styles); err == nil {
		candStyles, err := artifact.LoadStyles(repArts.StylesPath)
		if err != nil {
			candStyles = nil
		}
		sc := compare.Styles(baseStyles, candStyles)
		res.Style = &sc
	}
	if baseRects, err := artifact.LoadLayout(baseline.Rects); err == nil {
		candLayout, err := artifact.LoadLayout(repArts.LayoutPath)
		if err != nil {
			candLayout = nil
		}
		rc := compare.Rects(baseRects, candLayout, cfg.RectTolerance)
		res.Rect = &rc
	}
	if layout, err := artifact.LoadLayout(repArts.LayoutPath); err == nil {
		res.Issues = cluster.Counts(cluster.Inspect(layout))
	}
	return finish()
}
