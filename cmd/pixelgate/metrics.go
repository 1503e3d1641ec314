package main

import (
	"fmt"
	"time"

	"github.com/bgricker/pixelgate/internal/cluster"
	"github.com/bgricker/pixelgate/internal/config"
	"github.com/bgricker/pixelgate/internal/metrics"
	"github.com/bgricker/pixelgate/internal/output"
	"github.com/bgricker/pixelgate/internal/report"
	"github.com/spf13/cobra"
)

func newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Recompute and render metrics from a stored report",
		RunE:  runMetrics,
	}
}

// metricsDocument is the metrics command's JSON payload.
type metricsDocument struct {
	Timestamp     time.Time      `json:"timestamp"`
	Metrics       report.Metrics `json:"metrics"`
	IssueClusters map[string]int `json:"issue_clusters,omitempty"`
}

func runMetrics(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rep, err := report.Load(cfg.ReportPath)
	if err != nil {
		return err
	}

	// Recompute from the stored results; the persisted metrics block is not
	// trusted after hand edits.
	m, err := metrics.Aggregate(rep.Results, rep.Config.GroupWeights, rep.Config.TierAThreshold)
	if err != nil {
		return err
	}
	rep.Metrics = m
	rep.IssueClusters = cluster.TotalCounts(rep.Results)

	switch resolveFormat(cfg.Format, cmd.OutOrStdout()) {
	case config.FormatPretty:
		return output.NewPretty(cmd.OutOrStdout()).RenderMetrics(rep)
	case config.FormatJSON:
		doc := metricsDocument{Timestamp: rep.Timestamp, Metrics: rep.Metrics, IssueClusters: rep.IssueClusters}
		return output.NewJSON(cmd.OutOrStdout()).Render(doc)
	case config.FormatMarkdown:
		return output.NewMarkdown(cmd.OutOrStdout()).RenderMetrics(rep)
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
}
