package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Load reads and validates a stored report. Parse and validation failures
// wrap ErrMalformed.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %q: %w", path, err)
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("%w: parse %q: %v", ErrMalformed, path, err)
	}
	if err := rep.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformed, path, err)
	}
	return &rep, nil
}

// Save writes the report as indented JSON, creating parent directories.
func Save(rep *Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir %q: %w", dir, err)
		}
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %q: %w", path, err)
	}
	return nil
}

// Validate checks the structural invariants a stored report must satisfy
// before the gate or archive may consume it.
func (r *Report) Validate() error {
	if r.Timestamp.IsZero() {
		return fmt.Errorf("missing timestamp")
	}
	if len(r.Config.GroupWeights) == 0 {
		return fmt.Errorf("missing group weights")
	}
	var sum float64
	for group, weight := range r.Config.GroupWeights {
		if weight < 0 {
			return fmt.Errorf("group %q has negative weight", group)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("group weights sum to %.4f, want 1.0", sum)
	}
	for i, res := range r.Results {
		if res.CaseID == "" {
			return fmt.Errorf("result %d has empty case id", i)
		}
		if res.DiffPercent < 0 || res.DiffPercent > 100 {
			return fmt.Errorf("case %q diff %.2f outside [0,100]", res.CaseID, res.DiffPercent)
		}
	}
	return nil
}
