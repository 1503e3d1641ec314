package suite

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/bgricker/pixelgate/internal/filter"
	"gopkg.in/yaml.v3"
)

// FileName is the optional corpus definition read from the repository root.
const FileName = "parity-suite.yml"

// Group names used by the built-in corpus.
const (
	GroupBuiltins = "builtins"
	GroupWebsuite = "websuite"
)

// Case is a single (source page, viewport) unit under test.
type Case struct {
	ID     string `yaml:"id" json:"id"`
	Source string `yaml:"source" json:"source"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	Group  string `yaml:"group" json:"group"`
}

// Suite is the test-case corpus plus the group weighting used for scoring.
// Weights must cover every referenced group and sum to 1.0.
type Suite struct {
	Cases  []Case             `yaml:"cases"`
	Groups map[string]float64 `yaml:"groups"`
}

// Default returns the built-in corpus: the five core pages weighted at 60%
// and the eight exploratory web pages weighted at 40%.
func Default() Suite {
	return Suite{
		Groups: map[string]float64{
			GroupBuiltins: 0.6,
			GroupWebsuite: 0.4,
		},
		Cases: []Case{
			{ID: "new_tab", Source: "fixtures/builtins/new_tab.html", Width: 1280, Height: 800, Group: GroupBuiltins},
			{ID: "about", Source: "fixtures/builtins/about.html", Width: 800, Height: 600, Group: GroupBuiltins},
			{ID: "settings", Source: "fixtures/builtins/settings.html", Width: 1024, Height: 768, Group: GroupBuiltins},
			{ID: "chrome_rustkit", Source: "fixtures/builtins/chrome_rustkit.html", Width: 1280, Height: 100, Group: GroupBuiltins},
			{ID: "shelf", Source: "fixtures/builtins/shelf.html", Width: 1280, Height: 120, Group: GroupBuiltins},

			{ID: "article-typography", Source: "fixtures/websuite/article-typography.html", Width: 1280, Height: 800, Group: GroupWebsuite},
			{ID: "card-grid", Source: "fixtures/websuite/card-grid.html", Width: 1280, Height: 800, Group: GroupWebsuite},
			{ID: "css-selectors", Source: "fixtures/websuite/css-selectors.html", Width: 1280, Height: 800, Group: GroupWebsuite},
			{ID: "flex-positioning", Source: "fixtures/websuite/flex-positioning.html", Width: 1280, Height: 800, Group: GroupWebsuite},
			{ID: "form-elements", Source: "fixtures/websuite/form-elements.html", Width: 1280, Height: 800, Group: GroupWebsuite},
			{ID: "gradient-backgrounds", Source: "fixtures/websuite/gradient-backgrounds.html", Width: 1280, Height: 800, Group: GroupWebsuite},
			{ID: "image-gallery", Source: "fixtures/websuite/image-gallery.html", Width: 1280, Height: 800, Group: GroupWebsuite},
			{ID: "sticky-scroll", Source: "fixtures/websuite/sticky-scroll.html", Width: 1280, Height: 800, Group: GroupWebsuite},
		},
	}
}

// Load reads parity-suite.yml from root when present, replacing the built-in
// corpus. A missing file is not an error.
func Load(root string) (Suite, error) {
	s := Default()
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("read suite %q: %w", path, err)
	}

	var fileSuite Suite
	if err := yaml.Unmarshal(data, &fileSuite); err != nil {
		return s, fmt.Errorf("parse suite %q: %w", path, err)
	}

	if len(fileSuite.Cases) > 0 {
		s.Cases = fileSuite.Cases
	}
	if len(fileSuite.Groups) > 0 {
		s.Groups = fileSuite.Groups
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("suite %q: %w", path, err)
	}
	return s, nil
}

// Validate checks case identifiers, viewports, and group weighting.
func (s Suite) Validate() error {
	if len(s.Cases) == 0 {
		return errors.New("no cases defined")
	}
	seen := make(map[string]struct{}, len(s.Cases))
	for _, c := range s.Cases {
		if c.ID == "" {
			return errors.New("case with empty id")
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate case id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.Source == "" {
			return fmt.Errorf("case %q has no source", c.ID)
		}
		if c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("case %q has invalid viewport %dx%d", c.ID, c.Width, c.Height)
		}
		if _, ok := s.Groups[c.Group]; !ok {
			return fmt.Errorf("case %q references group %q with no weight", c.ID, c.Group)
		}
	}

	var sum float64
	for group, weight := range s.Groups {
		if weight < 0 {
			return fmt.Errorf("group %q has negative weight", group)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("group weights sum to %.4f, want 1.0", sum)
	}
	return nil
}

// Filter returns a copy of the suite keeping only cases whose identifier
// matches any of the patterns. An empty pattern list keeps every case.
func (s Suite) Filter(patterns []filter.Pattern) Suite {
	if len(patterns) == 0 {
		return s
	}
	out := Suite{Groups: s.Groups}
	for _, c := range s.Cases {
		if filter.MatchAny(patterns, c.ID) {
			out.Cases = append(out.Cases, c)
		}
	}
	return out
}
