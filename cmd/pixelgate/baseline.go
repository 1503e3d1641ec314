package main

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/bgricker/pixelgate/internal/artifact"
	"github.com/bgricker/pixelgate/internal/capture"
	"github.com/bgricker/pixelgate/internal/config"
	"github.com/spf13/cobra"
)

func newBaselineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "baseline",
		Short: "Generate reference artifacts for every case",
		RunE:  runBaseline,
	}
}

func runBaseline(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.BaselineTool == "" {
		return errors.New("no baseline tool configured; set baseline_tool or --baseline-tool")
	}
	s, err := loadSuite(root, cfg)
	if err != nil {
		return err
	}
	if len(s.Cases) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching cases")
		return nil
	}

	generator := capture.New(capture.Options{
		Tool:     cfg.BaselineTool,
		Headless: cfg.Mode == config.ModeHeadless,
		Timeout:  cfg.CaptureTimeout(),
		Verbose:  cfg.Verbose,
		Stdout:   cmd.OutOrStdout(),
		Stderr:   cmd.ErrOrStderr(),
	})
	meta := artifact.Metadata{
		Reference:   cfg.Reference,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		GitCommit:   gitCommit(root),
	}

	failed := 0
	for _, c := range s.Cases {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		set := artifact.BaselineFor(cfg.BaselineRoot, c.ID)
		_, err := generator.Capture(cmd.Context(), capture.Request{
			Case:   c,
			OutDir: set.Dir,
			Frame:  artifact.BaselineFrameFile,
			Layout: artifact.BaselineRectsFile,
			Styles: artifact.BaselineStylesFile,
		})
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: baseline %s: %v\n", c.ID, err)
			continue
		}
		if err := artifact.WriteMetadata(set.Meta, meta); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  ✓ %s\n", c.ID)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "BASELINES: %d generated, %d failed (reference %s)\n",
		len(s.Cases)-failed, failed, cfg.Reference)
	if failed > 0 {
		return fmt.Errorf("%d baseline(s) failed", failed)
	}
	return nil
}

// gitCommit returns the repository HEAD when root is a git checkout. Baselines
// stay usable without one; the field is simply omitted.
func gitCommit(root string) string {
	git := exec.Command("git", "rev-parse", "HEAD")
	git.Dir = root
	out, err := git.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
