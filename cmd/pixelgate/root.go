package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pixelgate",
		Short:         "Pixelgate measures rendering parity against reference baselines",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.String("root", "", "project root (defaults to the working directory)")
	persistent.String("config", "", "config file (defaults to <root>/.pixelgate.yml)")
	persistent.StringArray("filter", nil, "case filter, substring or /regex/ (repeatable)")
	persistent.String("capture-tool", "", "renderer executable under test")
	persistent.String("baseline-tool", "", "reference renderer executable")
	persistent.String("diff-tool", "", "pixel diff executable")
	persistent.String("mode", "", "capture mode (headless|display)")
	persistent.Int("workers", 0, "concurrent case limit")
	persistent.Int("runs", 0, "stability repeats per case")
	persistent.Float64("tier-a-threshold", 0, "tier A pass threshold in diff percent")
	persistent.Float64("min-parity", 0, "minimum parity percent the gate accepts")
	persistent.Float64("regression-threshold", 0, "per-case regression allowance in points")
	persistent.String("report", "", "report file path")
	persistent.Bool("no-archive", false, "skip archiving the run")
	persistent.Bool("fail-packets", false, "write failure packets for the worst cases")
	persistent.String("format", "", "output format (pretty|json|auto)")
	persistent.BoolP("verbose", "v", false, "stream tool output in real time")

	cmd.AddCommand(newBaselineCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newMetricsCmd())
	cmd.AddCommand(newGateCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}
