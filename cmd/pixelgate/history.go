package main

import (
	"fmt"

	"github.com/bgricker/pixelgate/internal/archive"
	"github.com/bgricker/pixelgate/internal/config"
	"github.com/bgricker/pixelgate/internal/output"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs with parity trends",
		RunE:  runHistory,
	}
	cmd.Flags().Int("limit", 0, "show only the most recent N entries")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store := archive.NewStore(cfg.HistoryDir)
	entries, warnings, err := store.Entries()
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("parse --limit: %w", err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	switch resolveFormat(cfg.Format, cmd.OutOrStdout()) {
	case config.FormatPretty:
		if err := output.NewPretty(cmd.OutOrStdout()).RenderHistory(entries); err != nil {
			return err
		}
	case config.FormatJSON:
		if entries == nil {
			entries = []archive.Entry{}
		}
		if err := output.NewJSON(cmd.OutOrStdout()).Render(entries); err != nil {
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
