package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bgricker/pixelgate/internal/artifact"
	"github.com/bgricker/pixelgate/internal/config"
	"github.com/bgricker/pixelgate/internal/filter"
	"github.com/bgricker/pixelgate/internal/suite"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loadConfig resolves the project root, merges the config file with CLI
// flags, and validates the result.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	flags := cmd.Flags()

	root, err := flags.GetString("root")
	if err != nil {
		return config.Config{}, "", fmt.Errorf("parse --root: %w", err)
	}
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			return config.Config{}, "", fmt.Errorf("determine working directory: %w", err)
		}
	}

	var cfg config.Config
	if flags.Changed("config") {
		path, pathErr := flags.GetString("config")
		if pathErr != nil {
			return config.Config{}, "", fmt.Errorf("parse --config: %w", pathErr)
		}
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return config.Config{}, "", err
	}

	values, err := gatherFlags(cmd)
	if err != nil {
		return config.Config{}, "", err
	}
	config.ApplyFlags(&cfg, values)
	anchorPaths(&cfg, root)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", err
	}
	return cfg, root, nil
}

// loadSuite reads the corpus for root, applies the configured case filters,
// and anchors relative page sources at the root.
func loadSuite(root string, cfg config.Config) (suite.Suite, error) {
	s, err := suite.Load(root)
	if err != nil {
		return suite.Suite{}, err
	}
	patterns, err := filter.Compile(cfg.Filter)
	if err != nil {
		return suite.Suite{}, err
	}
	s = s.Filter(patterns)
	for i := range s.Cases {
		s.Cases[i].Source = anchor(root, s.Cases[i].Source)
	}
	return s, nil
}

// baselineWarnings flags baseline sets generated against a different
// reference build than the configured one.
func baselineWarnings(cfg config.Config, s suite.Suite) []string {
	var warnings []string
	for _, c := range s.Cases {
		meta, err := artifact.LoadMetadata(artifact.BaselineFor(cfg.BaselineRoot, c.ID).Meta)
		if err != nil {
			continue
		}
		if meta.Reference != "" && meta.Reference != cfg.Reference {
			warnings = append(warnings, fmt.Sprintf(
				"baseline for %s was generated against %s; config expects %s", c.ID, meta.Reference, cfg.Reference))
		}
	}
	return warnings
}

// anchorPaths resolves relative artifact locations against the project root.
func anchorPaths(cfg *config.Config, root string) {
	cfg.BaselineRoot = anchor(root, cfg.BaselineRoot)
	cfg.WorkDir = anchor(root, cfg.WorkDir)
	cfg.ReportPath = anchor(root, cfg.ReportPath)
	cfg.HistoryDir = anchor(root, cfg.HistoryDir)
	cfg.OrdersDir = anchor(root, cfg.OrdersDir)
	cfg.FailuresDir = anchor(root, cfg.FailuresDir)
}

func anchor(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// resolveFormat maps the configured format to a concrete renderer. Auto picks
// pretty on a terminal and json otherwise.
func resolveFormat(format string, out io.Writer) string {
	if format != config.FormatAuto {
		return format
	}
	if isTTYWriter(out) {
		return config.FormatPretty
	}
	return config.FormatJSON
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
