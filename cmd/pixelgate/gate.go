package main

import (
	"errors"
	"fmt"

	"github.com/bgricker/pixelgate/internal/config"
	"github.com/bgricker/pixelgate/internal/gate"
	"github.com/bgricker/pixelgate/internal/output"
	"github.com/bgricker/pixelgate/internal/report"
	"github.com/spf13/cobra"
)

func newGateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Check a report against the parity gate",
		RunE:  runGate,
	}
	cmd.Flags().String("previous", "", "previous report for regression checks")
	return cmd
}

func runGate(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rep, err := report.Load(cfg.ReportPath)
	if err != nil {
		return err
	}

	opts := gate.Options{
		MinParity:           cfg.MinParity,
		RegressionThreshold: cfg.RegressionThreshold,
	}
	prevPath, err := cmd.Flags().GetString("previous")
	if err != nil {
		return fmt.Errorf("parse --previous: %w", err)
	}
	if prevPath != "" {
		prev, err := report.Load(prevPath)
		if err != nil {
			return err
		}
		opts.Previous = prev
	}

	verdict := gate.Evaluate(rep, opts)

	switch resolveFormat(cfg.Format, cmd.OutOrStdout()) {
	case config.FormatPretty:
		if err := output.NewPretty(cmd.OutOrStdout()).RenderVerdict(verdict, cfg.Verbose); err != nil {
			return err
		}
	case config.FormatJSON:
		if err := output.NewJSON(cmd.OutOrStdout()).Render(verdict); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}

	if !verdict.Pass {
		return errors.New("parity gate failed")
	}
	return nil
}
