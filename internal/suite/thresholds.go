package suite

import "strings"

// Diff-percentage ceilings per failure category. A case's ceiling is picked
// by matching its identifier against the ordered rule list; identifiers that
// match no rule use the default ceiling.
type Thresholds struct {
	Categories map[string]float64 `yaml:"categories"`
	Rules      []ThresholdRule    `yaml:"rules"`
	Default    float64            `yaml:"default"`
}

// ThresholdRule maps identifier keywords to a threshold category. Rules are
// evaluated in order; the first rule with any matching keyword wins.
type ThresholdRule struct {
	Keywords []string `yaml:"keywords"`
	Category string   `yaml:"category"`
}

// DefaultThresholds returns the category ceilings tuned for the built-in
// corpus. Tight ceilings for structural layout, looser ones for text and
// scroll behavior where renderers legitimately diverge.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Categories: map[string]float64{
			"layout_structure":  5,
			"solid_backgrounds": 8,
			"images_replaced":   10,
			"gradients_effects": 15,
			"form_controls":     12,
			"text_rendering":    20,
			"sticky_scroll":     25,
		},
		Rules: []ThresholdRule{
			{Keywords: []string{"form"}, Category: "form_controls"},
			{Keywords: []string{"image", "gallery"}, Category: "images_replaced"},
			{Keywords: []string{"gradient"}, Category: "gradients_effects"},
			{Keywords: []string{"sticky", "scroll"}, Category: "sticky_scroll"},
			{Keywords: []string{"typography", "text"}, Category: "text_rendering"},
		},
		Default: 15,
	}
}

// ForCase resolves the threshold category and ceiling for a case identifier.
func (t Thresholds) ForCase(id string) (string, float64) {
	lower := strings.ToLower(id)
	for _, rule := range t.Rules {
		for _, keyword := range rule.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(lower, keyword) {
				if limit, ok := t.Categories[rule.Category]; ok {
					return rule.Category, limit
				}
				return rule.Category, t.Default
			}
		}
	}
	return "default", t.Default
}
