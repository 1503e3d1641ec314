package stability

import (
	"sort"

	"github.com/bgricker/pixelgate/internal/report"
)

// MinSamples is the smallest series for which the stable flag is defined.
// Below it the flag stays nil: one or two samples cannot distinguish a noisy
// renderer from a quiet one.
const MinSamples = 3

// Analyze reduces a series of pixel-diff samples to its summary statistics.
// Returns nil for an empty series. The representative value is the median,
// which damps one-off renderer glitches such as a cold font cache.
func Analyze(samples []float64, ceiling float64) *report.StabilitySeries {
	if len(samples) == 0 {
		return nil
	}

	series := &report.StabilitySeries{
		Samples: append([]float64{}, samples...),
		Min:     samples[0],
		Max:     samples[0],
	}
	for _, s := range samples[1:] {
		if s < series.Min {
			series.Min = s
		}
		if s > series.Max {
			series.Max = s
		}
	}
	series.Median = Median(samples)
	series.Spread = series.Max - series.Min

	if len(samples) >= MinSamples {
		stable := series.Spread <= ceiling
		series.Stable = &stable
	}
	return series
}

// Median returns the upper-middle element of the sorted samples, 0 for an
// empty series. The upper-middle convention matches the tier-B median used
// in aggregate scoring.
func Median(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]float64{}, samples...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
