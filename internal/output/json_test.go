package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/bgricker/pixelgate/internal/report"
)

func TestJSONRenderReport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSON(&buf).Render(sampleReport()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	var decoded report.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Metrics.ParityEstimate != 78 {
		t.Fatalf("parity = %v", decoded.Metrics.ParityEstimate)
	}
	if len(decoded.Results) != 3 {
		t.Fatalf("results = %d", len(decoded.Results))
	}
	if !strings.Contains(buf.String(), "  \"metrics\"") {
		t.Fatal("output is not indented")
	}
}

func TestJSONRenderArbitraryDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSON(&buf).Render(map[string]int{"entries": 2}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "{\n  \"entries\": 2\n}" {
		t.Fatalf("output = %q", buf.String())
	}
}
