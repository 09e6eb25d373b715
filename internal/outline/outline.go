// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline enriches page-stamped rows with heading labels taken
// from a document outline. Outlines load from a YAML sidecar file with
// one entry per bookmark range, since embedded PDF bookmarks rarely
// survive the Markdown conversion.
package outline

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/greenguard/docflow/pkg/types"
)

// Range is one outline entry spanning a contiguous run of pages.
// EndPage zero means the range is open-ended.
type Range struct {
	Level     int    `yaml:"level"`
	Title     string `yaml:"title"`
	StartPage int    `yaml:"start_page"`
	EndPage   int    `yaml:"end_page,omitempty"`
}

// Outline holds a document's ranges sorted by start page.
type Outline struct {
	ranges []Range
}

// LoadYAML reads an outline sidecar file. Entries with an empty title or
// a non-positive start page are rejected.
func LoadYAML(path string) (*Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading outline %s: %w", path, err)
	}

	var ranges []Range
	if err := yaml.Unmarshal(data, &ranges); err != nil {
		return nil, fmt.Errorf("parsing outline %s: %w", path, err)
	}

	for i, r := range ranges {
		if strings.TrimSpace(r.Title) == "" {
			return nil, fmt.Errorf("outline entry %d has no title", i)
		}
		if r.StartPage < 1 {
			return nil, fmt.Errorf("outline entry %q has invalid start page %d", r.Title, r.StartPage)
		}
		if r.EndPage != 0 && r.EndPage < r.StartPage {
			return nil, fmt.Errorf("outline entry %q ends before it starts", r.Title)
		}
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].StartPage < ranges[j].StartPage
	})
	return &Outline{ranges: ranges}, nil
}

// LabelForPage returns the outline entries covering page, outermost
// level first. Among overlapping ranges at the same level the latest
// starting one wins.
func (o *Outline) LabelForPage(page int) []Range {
	if page < 1 {
		return nil
	}
	byLevel := make(map[int]Range)
	for _, r := range o.ranges {
		if r.StartPage > page {
			break
		}
		if r.EndPage != 0 && r.EndPage < page {
			continue
		}
		// Later start at the same level supersedes; ranges is start-sorted.
		byLevel[r.Level] = r
	}

	levels := make([]int, 0, len(byLevel))
	for l := range byLevel {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	out := make([]Range, 0, len(levels))
	for _, l := range levels {
		out = append(out, byLevel[l])
	}
	return out
}

// Apply backfills heading columns on rows whose parse produced none,
// using each row's page number. Rows without a page, and rows that
// already carry headings, are left alone. It returns the number of rows
// changed.
func (o *Outline) Apply(rows []types.Row) int {
	changed := 0
	for i := range rows {
		r := &rows[i]
		if r.PageNo < 1 || r.SectionPath != "" {
			continue
		}
		labels := o.LabelForPage(r.PageNo)
		if len(labels) == 0 {
			continue
		}

		titles := make([]string, 0, len(labels))
		for _, l := range labels {
			titles = append(titles, l.Title)
			switch l.Level {
			case 1:
				r.H1 = l.Title
			case 2:
				r.H2 = l.Title
			case 3:
				r.H3 = l.Title
			}
		}
		r.SectionPath = strings.Join(titles, " > ")
		r.CurrentSection = titles[len(titles)-1]
		changed++
	}
	return changed
}
