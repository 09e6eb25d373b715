// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data and configuration types shared across
// docflow stages.
package types

// SectionType classifies the structural origin of a row.
type SectionType string

const (
	SectionHeading  SectionType = "heading"
	SectionBullet   SectionType = "bullet"
	SectionTable    SectionType = "table"
	SectionSentence SectionType = "sentence"
)

// Valid reports whether t is one of the four known section types.
func (t SectionType) Valid() bool {
	switch t {
	case SectionHeading, SectionBullet, SectionTable, SectionSentence:
		return true
	}
	return false
}

// Row is one structured output record: a heading, a bullet, a table line,
// or a sentence, stamped with the heading hierarchy active when it was
// emitted. Rows are immutable once produced by the parser.
type Row struct {
	// Source identifies the originating document (usually the file basename).
	Source string `json:"source" yaml:"source"`

	// PageNo is the 1-based originating page. Zero means the conversion
	// backend did not carry page boundaries.
	PageNo int `json:"page_no" yaml:"page_no"`

	// LineNo is the emission ordinal within the document, ascending and
	// unique per document.
	LineNo int `json:"line_no" yaml:"line_no"`

	// SectionType is the row's structural classification.
	SectionType SectionType `json:"section_type" yaml:"section_type"`

	// HeadingLevel is 1-6 for heading rows, zero otherwise.
	HeadingLevel int `json:"heading_level" yaml:"heading_level"`

	// IsBullet is true only for rows that originated from a bullet line.
	IsBullet bool `json:"is_bullet" yaml:"is_bullet"`

	// IsTable is true only for rows emitted from inside a table block.
	IsTable bool `json:"is_table" yaml:"is_table"`

	// H1, H2, H3 hold the most recent heading text at levels 1-3 when the
	// row was emitted. Empty when no heading at that level is open.
	H1 string `json:"h1" yaml:"h1"`
	H2 string `json:"h2" yaml:"h2"`
	H3 string `json:"h3" yaml:"h3"`

	// SectionPath joins the open heading texts from level 1 down to the
	// deepest open level, e.g. "Overview > Emissions > Scope 2".
	SectionPath string `json:"section_path" yaml:"section_path"`

	// CurrentSection is the deepest open heading text.
	CurrentSection string `json:"current_section" yaml:"current_section"`

	// Text is the cleaned sentence or line content. Never empty.
	Text string `json:"text" yaml:"text"`
}
