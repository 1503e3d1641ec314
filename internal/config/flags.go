package config

// ApplyFlags mutates cfg by applying values from CLI flags when they were set
// explicitly.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.CaptureTool.Set {
		cfg.CaptureTool = flags.CaptureTool.Value
	}
	if flags.BaselineTool.Set {
		cfg.BaselineTool = flags.BaselineTool.Value
	}
	if flags.DiffTool.Set {
		cfg.DiffTool = flags.DiffTool.Value
	}
	if flags.Mode.Set {
		cfg.Mode = flags.Mode.Value
	}
	if flags.Workers.Set {
		cfg.Workers = flags.Workers.Value
	}
	if flags.Runs.Set {
		cfg.Runs = flags.Runs.Value
	}
	if len(flags.Filter.Values) > 0 {
		cfg.Filter = append([]string{}, flags.Filter.Values...)
	}
	if flags.TierAThreshold.Set {
		cfg.TierAThreshold = flags.TierAThreshold.Value
	}
	if flags.MinParity.Set {
		cfg.MinParity = flags.MinParity.Value
	}
	if flags.RegressionThreshold.Set {
		cfg.RegressionThreshold = flags.RegressionThreshold.Value
	}
	if flags.Report.Set {
		cfg.ReportPath = flags.Report.Value
	}
	if flags.Format.Set {
		cfg.Format = flags.Format.Value
	}
	if flags.Verbose.Set {
		cfg.Verbose = flags.Verbose.Value
	}
	if flags.NoArchive.Set {
		cfg.NoArchive = flags.NoArchive.Value
	}
	if flags.FailPackets.Set {
		cfg.FailPackets = flags.FailPackets.Value
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag was
// set explicitly.
type FlagValues struct {
	CaptureTool         StringFlag
	BaselineTool        StringFlag
	DiffTool            StringFlag
	Mode                StringFlag
	Workers             IntFlag
	Runs                IntFlag
	Filter              SliceFlag
	TierAThreshold      FloatFlag
	MinParity           FloatFlag
	RegressionThreshold FloatFlag
	Report              StringFlag
	Format              StringFlag
	Verbose             BoolFlag
	NoArchive           BoolFlag
	FailPackets         BoolFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// SliceFlag represents a slice flag and whether it captured values via CLI.
type SliceFlag struct {
	Values []string
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}

// IntFlag represents an int flag and whether it was set.
type IntFlag struct {
	Value int
	Set   bool
}

// FloatFlag represents a float flag and whether it was set.
type FloatFlag struct {
	Value float64
	Set   bool
}
