package main

import (
	"fmt"

	"github.com/bgricker/pixelgate/internal/archive"
	"github.com/bgricker/pixelgate/internal/cluster"
	"github.com/bgricker/pixelgate/internal/config"
	"github.com/bgricker/pixelgate/internal/output"
	"github.com/bgricker/pixelgate/internal/report"
	"github.com/bgricker/pixelgate/internal/runner"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Capture every case and compare against baselines",
		RunE:  runExecute,
	}
	cmd.Flags().String("tag", "", "label stored with the archived run")
	return cmd
}

// runDocument is the run command's JSON payload.
type runDocument struct {
	*report.Report
	Trend *archive.TrendReport `json:"trend,omitempty"`
}

func runExecute(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := loadSuite(root, cfg)
	if err != nil {
		return err
	}
	if len(s.Cases) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching cases")
		return nil
	}
	tag, err := cmd.Flags().GetString("tag")
	if err != nil {
		return fmt.Errorf("parse --tag: %w", err)
	}

	warnings := baselineWarnings(cfg, s)

	pipeline := runner.New(runner.Options{
		Config: &cfg,
		Suite:  &s,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	rep, err := pipeline.Run(cmd.Context())
	if err != nil {
		return err
	}

	if err := report.Save(rep, cfg.ReportPath); err != nil {
		return err
	}

	// Secondary outputs warn rather than fail; the report is already on disk.

	orders := cluster.WorkOrders(rep.IssueClusters, rep.Metrics.WorstCases,
		cluster.AffectedCases(rep.Results), cfg.TierAThreshold, rep.Timestamp)
	if _, err := cluster.WriteOrders(cfg.OrdersDir, orders); err != nil {
		warnings = append(warnings, err.Error())
	}
	if cfg.FailPackets {
		if _, err := cluster.WritePackets(cfg.FailuresDir, rep, rep.Timestamp); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	var trend *archive.TrendReport
	if !cfg.NoArchive {
		store := archive.NewStore(cfg.HistoryDir)
		entry, err := store.Archive(rep, tag)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("archive run: %v", err))
		} else {
			entries, archiveWarnings, err := store.Entries()
			if err != nil {
				warnings = append(warnings, err.Error())
			}
			warnings = append(warnings, archiveWarnings...)
			if prev, ok := archive.Previous(entries, entry.ID); ok {
				tr := archive.Trend(prev, entry)
				trend = &tr
			}
		}
	}

	switch resolveFormat(cfg.Format, cmd.OutOrStdout()) {
	case config.FormatPretty:
		renderer := output.NewPretty(cmd.OutOrStdout())
		if err := renderer.RenderReport(rep); err != nil {
			return err
		}
		if trend != nil {
			if err := renderer.RenderTrend(*trend); err != nil {
				return err
			}
		}
	case config.FormatJSON:
		renderer := output.NewJSON(cmd.OutOrStdout())
		if err := renderer.Render(runDocument{Report: rep, Trend: trend}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}

	for _, msg := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", msg)
	}
	return nil
}
