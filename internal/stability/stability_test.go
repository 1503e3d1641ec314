package stability

import "testing"

func TestAnalyzeEmpty(t *testing.T) {
	if series := Analyze(nil, 0.10); series != nil {
		t.Fatalf("expected nil series for no samples, got %+v", series)
	}
}

func TestAnalyzeSingleSample(t *testing.T) {
	series := Analyze([]float64{4.2}, 0.10)
	if series == nil {
		t.Fatalf("expected series")
	}
	if series.Median != 4.2 || series.Min != 4.2 || series.Max != 4.2 || series.Spread != 0 {
		t.Fatalf("unexpected stats: %+v", series)
	}
	if series.Stable != nil {
		t.Fatalf("stable must be undefined below %d samples", MinSamples)
	}
}

func TestAnalyzeTwoSamplesUndefined(t *testing.T) {
	series := Analyze([]float64{1.0, 3.0}, 0.10)
	if series.Stable != nil {
		t.Fatalf("stable must be undefined for 2 samples, got %v", *series.Stable)
	}
	if series.Median != 3.0 {
		t.Fatalf("expected upper-middle median 3.0, got %v", series.Median)
	}
	if series.Spread != 2.0 {
		t.Fatalf("expected spread 2.0, got %v", series.Spread)
	}
}

func TestAnalyzeStableSeries(t *testing.T) {
	series := Analyze([]float64{2.00, 2.05, 2.08}, 0.10)
	if series.Stable == nil || !*series.Stable {
		t.Fatalf("expected stable series, got %+v", series)
	}
	if series.Median != 2.05 {
		t.Fatalf("expected median 2.05, got %v", series.Median)
	}
}

func TestAnalyzeUnstableSeries(t *testing.T) {
	series := Analyze([]float64{2.0, 2.5, 2.1}, 0.10)
	if series.Stable == nil || *series.Stable {
		t.Fatalf("expected unstable series, got %+v", series)
	}
	if series.Min != 2.0 || series.Max != 2.5 {
		t.Fatalf("unexpected min/max: %+v", series)
	}
}

func TestAnalyzeSpreadAtCeiling(t *testing.T) {
	// Spread exactly at the ceiling still counts as stable.
	series := Analyze([]float64{5.0, 5.1, 5.05}, 0.10)
	if series.Stable == nil || !*series.Stable {
		t.Fatalf("spread equal to ceiling should be stable, got %+v", series)
	}
}

func TestAnalyzeDoesNotMutateInput(t *testing.T) {
	samples := []float64{9, 1, 5}
	Analyze(samples, 0.10)
	if samples[0] != 9 || samples[1] != 1 || samples[2] != 5 {
		t.Fatalf("input reordered: %v", samples)
	}
}

func TestMedianUpperMiddle(t *testing.T) {
	tests := []struct {
		samples []float64
		want    float64
	}{
		{nil, 0},
		{[]float64{7}, 7},
		{[]float64{1, 2}, 2},
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 3},
	}
	for _, tc := range tests {
		if got := Median(tc.samples); got != tc.want {
			t.Fatalf("median(%v) = %v, want %v", tc.samples, got, tc.want)
		}
	}
}
