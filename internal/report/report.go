package report

import "time"

// StyleComparison summarizes computed-style matching for one case. Counts are
// exact; Differences keeps at most MaxDifferences entries.
type StyleComparison struct {
	Matched     int               `json:"matched"`
	Mismatched  int               `json:"mismatched"`
	Differences []StyleDifference `json:"differences,omitempty"`
}

// StyleDifference records one mismatched element. Missing marks a baseline
// selector absent from the capture; otherwise Props lists the differing
// properties.
type StyleDifference struct {
	Selector string     `json:"selector"`
	Missing  bool       `json:"missing,omitempty"`
	Props    []PropDiff `json:"props,omitempty"`
}

// PropDiff is a single property value divergence.
type PropDiff struct {
	Property  string `json:"property"`
	Baseline  string `json:"baseline"`
	Candidate string `json:"candidate"`
}

// RectComparison summarizes layout-rect matching for one case.
type RectComparison struct {
	Matched     int              `json:"matched"`
	Mismatched  int              `json:"mismatched"`
	Differences []RectDifference `json:"differences,omitempty"`
}

// RectDifference records one element whose geometry diverged beyond tolerance.
type RectDifference struct {
	Selector string         `json:"selector"`
	Missing  bool           `json:"missing,omitempty"`
	Props    []RectPropDiff `json:"props,omitempty"`
}

// RectPropDiff is a single dimension divergence.
type RectPropDiff struct {
	Property  string  `json:"property"`
	Baseline  float64 `json:"baseline"`
	Candidate float64 `json:"candidate"`
	Delta     float64 `json:"delta"`
}

// MaxDifferences caps the retained detail entries per comparison.
const MaxDifferences = 10

// StabilitySeries holds repeated pixel-diff samples for one case. Stable is
// nil until at least three samples exist; below that the flag is undefined
// rather than false.
type StabilitySeries struct {
	Samples []float64 `json:"samples"`
	Median  float64   `json:"median"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Spread  float64   `json:"spread"`
	Stable  *bool     `json:"stable,omitempty"`
}

// ArtifactPaths records where a case's captured artifacts landed.
type ArtifactPaths struct {
	Frame  string `json:"frame,omitempty"`
	Layout string `json:"layout,omitempty"`
	Styles string `json:"styles,omitempty"`
}

// CaseResult is the full outcome for one test case.
type CaseResult struct {
	CaseID      string           `json:"case_id"`
	Group       string           `json:"group"`
	Source      string           `json:"source,omitempty"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	DiffPercent float64          `json:"diff_percent"`
	Threshold   float64          `json:"threshold"`
	Category    string           `json:"category"`
	Passed      bool             `json:"passed"`
	Runs        int              `json:"runs"`
	Error       string           `json:"error,omitempty"`
	ErrorKind   ErrorKind        `json:"error_kind,omitempty"`
	Style       *StyleComparison `json:"style,omitempty"`
	Rect        *RectComparison  `json:"rect,omitempty"`
	Stability   *StabilitySeries `json:"stability,omitempty"`
	Issues      map[string]int   `json:"issues,omitempty"`
	Artifacts   *ArtifactPaths   `json:"artifacts,omitempty"`
	Duration    time.Duration    `json:"-"`
	DurationMS  int64            `json:"duration_ms"`
}

// WorstCase is one entry of the worst-offender ranking.
type WorstCase struct {
	CaseID      string  `json:"case_id"`
	DiffPercent float64 `json:"diff_percent"`
}

// Metrics is the aggregate scoring block: Tier A is the weighted pass rate at
// the shared tier threshold, Tier B the diff-magnitude view. Both Tier B
// statistics are reported; the gate keys off the weighted mean.
type Metrics struct {
	TierAThreshold    float64            `json:"tier_a_threshold"`
	TierAPassRate     float64            `json:"tier_a_pass_rate"`
	GroupPassRates    map[string]float64 `json:"group_pass_rates"`
	TierBWeightedMean float64            `json:"tier_b_weighted_mean"`
	TierBMedianDiff   float64            `json:"tier_b_median_diff"`
	GroupMeanDiffs    map[string]float64 `json:"group_mean_diffs"`
	ParityEstimate    float64            `json:"parity_estimate"`
	WorstCases        []WorstCase        `json:"worst_cases"`
}

// ConfigEcho repeats the scoring configuration a report was built with so a
// stored report stays interpretable on its own.
type ConfigEcho struct {
	GroupWeights   map[string]float64 `json:"group_weights"`
	TierAThreshold float64            `json:"tier_a_threshold"`
	Runs           int                `json:"runs"`
	Mode           string             `json:"mode"`
}

// Report is the persisted pipeline output: the sole hand-off artifact between
// a run and the gate, archive, and formatting commands.
type Report struct {
	Timestamp     time.Time      `json:"timestamp"`
	Config        ConfigEcho     `json:"config"`
	Metrics       Metrics        `json:"metrics"`
	IssueClusters map[string]int `json:"issue_clusters"`
	Results       []CaseResult   `json:"results"`
}

// ResultsByGroup partitions results preserving their report order.
func (r *Report) ResultsByGroup() map[string][]CaseResult {
	out := make(map[string][]CaseResult)
	for _, res := range r.Results {
		out[res.Group] = append(out[res.Group], res)
	}
	return out
}

// CaseDiffs maps case identifiers to their representative diff percentages.
func (r *Report) CaseDiffs() map[string]float64 {
	out := make(map[string]float64, len(r.Results))
	for _, res := range r.Results {
		out[res.CaseID] = res.DiffPercent
	}
	return out
}
