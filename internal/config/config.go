package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bgricker/pixelgate/internal/suite"
	"gopkg.in/yaml.v3"
)

// Config captures pipeline options sourced from the config file or flags.
type Config struct {
	CaptureTool  string `yaml:"capture_tool"`
	BaselineTool string `yaml:"baseline_tool"`
	DiffTool     string `yaml:"diff_tool"`

	Mode            string   `yaml:"mode"`
	HeadlessTimeout Duration `yaml:"headless_timeout"`
	DisplayTimeout  Duration `yaml:"display_timeout"`
	DiffTimeout     Duration `yaml:"diff_timeout"`

	Workers int      `yaml:"workers"`
	Runs    int      `yaml:"runs"`
	Filter  []string `yaml:"filter"`

	StabilityCeiling    float64 `yaml:"stability_ceiling"`
	RectTolerance       float64 `yaml:"rect_tolerance"`
	TierAThreshold      float64 `yaml:"tier_a_threshold"`
	MinParity           float64 `yaml:"min_parity"`
	RegressionThreshold float64 `yaml:"regression_threshold"`

	BaselineRoot string `yaml:"baseline_root"`
	Reference    string `yaml:"reference"`
	WorkDir      string `yaml:"work_dir"`
	ReportPath   string `yaml:"report_path"`
	HistoryDir   string `yaml:"history_dir"`
	OrdersDir    string `yaml:"orders_dir"`
	FailuresDir  string `yaml:"failures_dir"`

	Format      string `yaml:"format"`
	Verbose     bool   `yaml:"verbose"`
	NoArchive   bool   `yaml:"no_archive"`
	FailPackets bool   `yaml:"fail_packets"`

	Thresholds suite.Thresholds `yaml:"thresholds"`
}

const (
	// ModeHeadless captures without a display; faster, needs a software backend.
	ModeHeadless = "headless"
	// ModeDisplay captures through a live display; slower, closer to real use.
	ModeDisplay = "display"

	// FormatPretty renders human readable output.
	FormatPretty = "pretty"
	// FormatJSON renders machine readable output.
	FormatJSON = "json"
	// FormatMarkdown renders metrics as a markdown document.
	FormatMarkdown = "markdown"
	// FormatAuto picks pretty on a terminal and json otherwise.
	FormatAuto = "auto"
)

// Default returns the baseline configuration used when no flags or config
// file specify values.
func Default() Config {
	return Config{
		Mode:                ModeHeadless,
		HeadlessTimeout:     Duration(60 * time.Second),
		DisplayTimeout:      Duration(120 * time.Second),
		DiffTimeout:         Duration(30 * time.Second),
		Workers:             4,
		Runs:                1,
		StabilityCeiling:    0.10,
		RectTolerance:       5,
		TierAThreshold:      25,
		MinParity:           80,
		RegressionThreshold: 5,
		BaselineRoot:        "baselines",
		Reference:           "chrome-120",
		WorkDir:             "artifacts/captures",
		ReportPath:          "artifacts/parity-report.json",
		HistoryDir:          "artifacts/history",
		OrdersDir:           "artifacts/workorders",
		FailuresDir:         "artifacts/failures",
		Format:              FormatAuto,
		Thresholds:          suite.DefaultThresholds(),
	}
}

// Load reads .pixelgate.yml from the repository root when present. Missing
// files are ignored.
func Load(root string) (Config, error) {
	path := filepath.Join(root, ".pixelgate.yml")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads an explicit config file. Unlike Load, the file must exist.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	return merge(cfg, fileCfg), nil
}

func merge(base, override Config) Config {
	out := base

	if override.CaptureTool != "" {
		out.CaptureTool = override.CaptureTool
	}
	if override.BaselineTool != "" {
		out.BaselineTool = override.BaselineTool
	}
	if override.DiffTool != "" {
		out.DiffTool = override.DiffTool
	}
	if override.Mode != "" {
		out.Mode = override.Mode
	}
	if override.HeadlessTimeout > 0 {
		out.HeadlessTimeout = override.HeadlessTimeout
	}
	if override.DisplayTimeout > 0 {
		out.DisplayTimeout = override.DisplayTimeout
	}
	if override.DiffTimeout > 0 {
		out.DiffTimeout = override.DiffTimeout
	}
	if override.Workers > 0 {
		out.Workers = override.Workers
	}
	if override.Runs > 0 {
		out.Runs = override.Runs
	}
	if len(override.Filter) > 0 {
		out.Filter = append([]string{}, override.Filter...)
	}
	if override.StabilityCeiling > 0 {
		out.StabilityCeiling = override.StabilityCeiling
	}
	if override.RectTolerance > 0 {
		out.RectTolerance = override.RectTolerance
	}
	if override.TierAThreshold > 0 {
		out.TierAThreshold = override.TierAThreshold
	}
	if override.MinParity > 0 {
		out.MinParity = override.MinParity
	}
	if override.RegressionThreshold > 0 {
		out.RegressionThreshold = override.RegressionThreshold
	}
	if override.BaselineRoot != "" {
		out.BaselineRoot = override.BaselineRoot
	}
	if override.Reference != "" {
		out.Reference = override.Reference
	}
	if override.WorkDir != "" {
		out.WorkDir = override.WorkDir
	}
	if override.ReportPath != "" {
		out.ReportPath = override.ReportPath
	}
	if override.HistoryDir != "" {
		out.HistoryDir = override.HistoryDir
	}
	if override.OrdersDir != "" {
		out.OrdersDir = override.OrdersDir
	}
	if override.FailuresDir != "" {
		out.FailuresDir = override.FailuresDir
	}
	if override.Format != "" {
		out.Format = override.Format
	}
	if override.Verbose {
		out.Verbose = true
	}
	if override.NoArchive {
		out.NoArchive = true
	}
	if override.FailPackets {
		out.FailPackets = true
	}
	if len(override.Thresholds.Categories) > 0 {
		out.Thresholds.Categories = override.Thresholds.Categories
	}
	if len(override.Thresholds.Rules) > 0 {
		out.Thresholds.Rules = override.Thresholds.Rules
	}
	if override.Thresholds.Default > 0 {
		out.Thresholds.Default = override.Thresholds.Default
	}

	return out
}

// CaptureTimeout resolves the capture deadline for the configured mode.
func (c Config) CaptureTimeout() time.Duration {
	if c.Mode == ModeDisplay {
		return c.DisplayTimeout.Std()
	}
	return c.HeadlessTimeout.Std()
}

// Validate checks value ranges and enumerations after file and flag merging.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeHeadless, ModeDisplay:
	default:
		return fmt.Errorf("unsupported mode %q", c.Mode)
	}
	switch c.Format {
	case FormatPretty, FormatJSON, FormatMarkdown, FormatAuto:
	default:
		return fmt.Errorf("unsupported format %q", c.Format)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Runs < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", c.Runs)
	}
	if c.HeadlessTimeout <= 0 || c.DisplayTimeout <= 0 || c.DiffTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.TierAThreshold <= 0 || c.TierAThreshold > 100 {
		return fmt.Errorf("tier_a_threshold %.2f outside (0,100]", c.TierAThreshold)
	}
	if c.MinParity < 0 || c.MinParity > 100 {
		return fmt.Errorf("min_parity %.2f outside [0,100]", c.MinParity)
	}
	if c.RegressionThreshold < 0 {
		return fmt.Errorf("regression_threshold must not be negative")
	}
	if c.StabilityCeiling < 0 {
		return fmt.Errorf("stability_ceiling must not be negative")
	}
	if c.RectTolerance < 0 {
		return fmt.Errorf("rect_tolerance must not be negative")
	}
	return nil
}

// Duration wraps time.Duration so config files can use values like "90s".
type Duration time.Duration

// UnmarshalYAML decodes a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }
