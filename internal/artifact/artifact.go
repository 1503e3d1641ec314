package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File names produced by the capture tool for a single run.
const (
	FrameFile  = "frame.png"
	LayoutFile = "layout.json"
	StylesFile = "styles.json"
)

// File names in a baseline directory, produced by the reference generator.
const (
	BaselineFrameFile  = "baseline.png"
	BaselineStylesFile = "computed-styles.json"
	BaselineRectsFile  = "layout-rects.json"
	MetadataFile       = "metadata.json"
)

// Rect is a rendered rectangle in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Box is one node of a renderer's layout tree.
type Box struct {
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Children []Box   `json:"children,omitempty"`
}

// ElementRect is a selector-keyed rectangle from a layout dump. Renderers
// report either a border rect or only a content rect; Bounds picks whichever
// is present.
type ElementRect struct {
	Selector    string `json:"selector"`
	Rect        *Rect  `json:"rect,omitempty"`
	ContentRect *Rect  `json:"content_rect,omitempty"`
}

// Bounds returns the element's rectangle, preferring the border rect. Nil
// when the dump carried neither.
func (e ElementRect) Bounds() *Rect {
	if e.Rect != nil {
		return e.Rect
	}
	return e.ContentRect
}

// LayoutDump is the layout artifact: a box tree rooted at the viewport plus a
// flat list of selector-keyed element rects. Baseline rect files carry only
// the element list.
type LayoutDump struct {
	Root     *Box          `json:"root,omitempty"`
	Elements []ElementRect `json:"elements,omitempty"`
}

// StyleEntry holds the computed styles captured for one selector.
type StyleEntry struct {
	Selector string            `json:"selector"`
	Styles   map[string]string `json:"styles"`
}

// StyleSnapshot is the computed-style artifact for a page.
type StyleSnapshot struct {
	Elements []StyleEntry `json:"elements"`
}

// Metadata records provenance for a generated baseline set.
type Metadata struct {
	Reference   string `json:"reference"`
	GeneratedAt string `json:"generated_at"`
	GitCommit   string `json:"git_commit,omitempty"`
}

// BaselineSet names the reference artifact paths for one case.
type BaselineSet struct {
	Dir    string
	Frame  string
	Styles string
	Rects  string
	Meta   string
}

// BaselineFor locates a case's reference artifacts under the baseline root.
func BaselineFor(root, caseID string) BaselineSet {
	dir := filepath.Join(root, caseID)
	return BaselineSet{
		Dir:    dir,
		Frame:  filepath.Join(dir, BaselineFrameFile),
		Styles: filepath.Join(dir, BaselineStylesFile),
		Rects:  filepath.Join(dir, BaselineRectsFile),
		Meta:   filepath.Join(dir, MetadataFile),
	}
}

// WriteMetadata records baseline provenance next to the reference artifacts.
func WriteMetadata(path string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write metadata %q: %w", path, err)
	}
	return nil
}

// LoadMetadata reads baseline provenance.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata %q: %w", path, err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata %q: %w", path, err)
	}
	return meta, nil
}

// LoadLayout reads and decodes a layout dump from disk.
func LoadLayout(path string) (*LayoutDump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout %q: %w", path, err)
	}
	var dump LayoutDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("parse layout %q: %w", path, err)
	}
	return &dump, nil
}

// LoadStyles reads and decodes a computed-style snapshot from disk.
func LoadStyles(path string) (*StyleSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read styles %q: %w", path, err)
	}
	var snap StyleSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse styles %q: %w", path, err)
	}
	return &snap, nil
}
