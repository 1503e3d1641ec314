package main

import (
	"fmt"

	"github.com/bgricker/pixelgate/internal/config"
	"github.com/spf13/cobra"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	if flags.Changed("capture-tool") {
		v, err := flags.GetString("capture-tool")
		if err != nil {
			return values, fmt.Errorf("parse --capture-tool: %w", err)
		}
		values.CaptureTool = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("baseline-tool") {
		v, err := flags.GetString("baseline-tool")
		if err != nil {
			return values, fmt.Errorf("parse --baseline-tool: %w", err)
		}
		values.BaselineTool = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("diff-tool") {
		v, err := flags.GetString("diff-tool")
		if err != nil {
			return values, fmt.Errorf("parse --diff-tool: %w", err)
		}
		values.DiffTool = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("mode") {
		v, err := flags.GetString("mode")
		if err != nil {
			return values, fmt.Errorf("parse --mode: %w", err)
		}
		values.Mode = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("workers") {
		v, err := flags.GetInt("workers")
		if err != nil {
			return values, fmt.Errorf("parse --workers: %w", err)
		}
		values.Workers = config.IntFlag{Value: v, Set: true}
	}

	if flags.Changed("runs") {
		v, err := flags.GetInt("runs")
		if err != nil {
			return values, fmt.Errorf("parse --runs: %w", err)
		}
		values.Runs = config.IntFlag{Value: v, Set: true}
	}

	if flags.Changed("filter") {
		v, err := flags.GetStringArray("filter")
		if err != nil {
			return values, fmt.Errorf("parse --filter: %w", err)
		}
		values.Filter = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("tier-a-threshold") {
		v, err := flags.GetFloat64("tier-a-threshold")
		if err != nil {
			return values, fmt.Errorf("parse --tier-a-threshold: %w", err)
		}
		values.TierAThreshold = config.FloatFlag{Value: v, Set: true}
	}

	if flags.Changed("min-parity") {
		v, err := flags.GetFloat64("min-parity")
		if err != nil {
			return values, fmt.Errorf("parse --min-parity: %w", err)
		}
		values.MinParity = config.FloatFlag{Value: v, Set: true}
	}

	if flags.Changed("regression-threshold") {
		v, err := flags.GetFloat64("regression-threshold")
		if err != nil {
			return values, fmt.Errorf("parse --regression-threshold: %w", err)
		}
		values.RegressionThreshold = config.FloatFlag{Value: v, Set: true}
	}

	if flags.Changed("report") {
		v, err := flags.GetString("report")
		if err != nil {
			return values, fmt.Errorf("parse --report: %w", err)
		}
		values.Report = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("format") {
		v, err := flags.GetString("format")
		if err != nil {
			return values, fmt.Errorf("parse --format: %w", err)
		}
		values.Format = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("verbose") {
		v, err := flags.GetBool("verbose")
		if err != nil {
			return values, fmt.Errorf("parse --verbose: %w", err)
		}
		values.Verbose = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("no-archive") {
		v, err := flags.GetBool("no-archive")
		if err != nil {
			return values, fmt.Errorf("parse --no-archive: %w", err)
		}
		values.NoArchive = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("fail-packets") {
		v, err := flags.GetBool("fail-packets")
		if err != nil {
			return values, fmt.Errorf("parse --fail-packets: %w", err)
		}
		values.FailPackets = config.BoolFlag{Value: v, Set: true}
	}

	return values, nil
}
