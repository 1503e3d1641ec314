package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bgricker/pixelgate/internal/report"
)

// SummaryFile is the single document stored per archived run.
const SummaryFile = "summary.json"

// Entry is one archived run summary.
type Entry struct {
	ID               string             `json:"id"`
	Timestamp        time.Time          `json:"timestamp"`
	Tag              string             `json:"tag,omitempty"`
	ParityEstimate   float64            `json:"parity_estimate"`
	TierAPassRate    float64            `json:"tier_a_pass_rate"`
	WeightedMeanDiff float64            `json:"weighted_mean_diff"`
	CaseDiffs        map[string]float64 `json:"case_diffs"`
}

// Store is an append-only run archive rooted at a directory. Entry IDs are
// UTC timestamps, so lexicographic order is creation order.
type Store struct {
	Root string
	Now  func() time.Time
}

// NewStore opens (or will lazily create) an archive at root.
func NewStore(root string) *Store {
	return &Store{Root: root, Now: time.Now}
}

// Archive appends a run summary, never overwriting an existing entry: an ID
// collision gets a numeric suffix. Returns the stored entry.
func (s *Store) Archive(rep *report.Report, tag string) (Entry, error) {
	now := s.Now().UTC()
	id := now.Format("20060102T150405Z")
	if tag != "" {
		id += "-" + sanitizeTag(tag)
	}

	dir := filepath.Join(s.Root, id)
	for n := 2; ; n++ {
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			break
		}
		dir = filepath.Join(s.Root, fmt.Sprintf("%s-%d", id, n))
	}
	id = filepath.Base(dir)

	timestamp := rep.Timestamp
	if timestamp.IsZero() {
		timestamp = now
	}
	entry := Entry{
		ID:               id,
		Timestamp:        timestamp,
		Tag:              tag,
		ParityEstimate:   rep.Metrics.ParityEstimate,
		TierAPassRate:    rep.Metrics.TierAPassRate,
		WeightedMeanDiff: rep.Metrics.TierBWeightedMean,
		CaseDiffs:        rep.CaseDiffs(),
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("creating archive entry %s: %w", id, err)
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return Entry{}, fmt.Errorf("encoding archive entry %s: %w", id, err)
	}
	if err := os.WriteFile(filepath.Join(dir, SummaryFile), append(data, '\n'), 0o644); err != nil {
		return Entry{}, fmt.Errorf("writing archive entry %s: %w", id, err)
	}
	return entry, nil
}

// Entries loads every archived summary in creation order. Unreadable entries
// are skipped and reported as warnings rather than failing the whole listing.
func (s *Store) Entries() ([]Entry, []string, error) {
	dirEntries, err := os.ReadDir(s.Root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading archive root: %w", err)
	}

	var entries []Entry
	var warnings []string
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		path := filepath.Join(s.Root, de.Name(), SummaryFile)
		data, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping archive entry %s: %v", de.Name(), err))
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping archive entry %s: %v", de.Name(), err))
			continue
		}
		if entry.ID == "" {
			entry.ID = de.Name()
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, warnings, nil
}

// Previous returns the entry immediately preceding currentID in creation
// order, if any.
func Previous(entries []Entry, currentID string) (Entry, bool) {
	for i, e := range entries {
		if e.ID == currentID {
			if i == 0 {
				return Entry{}, false
			}
			return entries[i-1], true
		}
	}
	return Entry{}, false
}

func sanitizeTag(tag string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, tag)
}
