// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mdparse converts Markdown-like converter output into ordered,
// metadata-stamped rows. It is the stateful core of the pipeline: a single
// pass over the line stream that tracks heading hierarchy, table blocks,
// and paragraph boundaries, and emits one row per heading, bullet, table
// line, or sentence.
package mdparse

import (
	"regexp"
	"strings"
)

// LineKind is the structural classification of one raw input line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineHeading
	LineBullet
	LineTable
	LineText
)

// String returns the lower-case kind name, used in diagnostics output.
func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineHeading:
		return "heading"
	case LineBullet:
		return "bullet"
	case LineTable:
		return "table"
	default:
		return "text"
	}
}

// Classification is the result of classifying one line.
type Classification struct {
	Kind LineKind

	// Level is the raw heading marker count. It may exceed MaxHeadingLevel;
	// the row builder clamps it and records the degradation.
	Level int

	// Content is the line with the structural marker (hashes, bullet
	// token) removed. For table and text lines it is the trimmed line.
	Content string

	// Separator is true for table header-separator lines such as
	// "|---|---:|". They delimit a table block but carry no text.
	Separator bool
}

// MaxHeadingLevel is the deepest heading level the section tracker keeps.
const MaxHeadingLevel = 6

var (
	headingPattern = regexp.MustCompile(`^(#+)\s+(\S.*)$`)
	bulletPattern  = regexp.MustCompile(`^([-*+\x{2022}]|\d{1,3}[.)])\s+(\S.*)$`)
	tablePattern   = regexp.MustCompile(`^\|.*\|$`)
)

// Classify decides the structural type of one raw line. It is a pure
// function of the line content; table continuation, which needs adjacent
// lines, is resolved by the row builder.
func Classify(raw string) Classification {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Classification{Kind: LineBlank}
	}

	if m := headingPattern.FindStringSubmatch(trimmed); m != nil {
		return Classification{
			Kind:    LineHeading,
			Level:   len(m[1]),
			Content: strings.TrimSpace(m[2]),
		}
	}

	if isTableSeparator(trimmed) {
		return Classification{Kind: LineTable, Separator: true}
	}
	if tablePattern.MatchString(trimmed) {
		return Classification{Kind: LineTable, Content: trimmed}
	}

	if m := bulletPattern.FindStringSubmatch(trimmed); m != nil {
		return Classification{
			Kind:    LineBullet,
			Content: strings.TrimSpace(m[2]),
		}
	}

	// Anything unrecognized degrades to plain text, never an error.
	return Classification{Kind: LineText, Content: trimmed}
}

// isTableSeparator reports whether a line consists solely of the dash,
// pipe, colon, and space characters that make up a Markdown table
// header-separator. At least one dash is required so that a bare "|" or
// "::" is not mistaken for one.
func isTableSeparator(trimmed string) bool {
	dashes := 0
	for _, r := range trimmed {
		switch r {
		case '-':
			dashes++
		case '|', ':', ' ', '\t':
		default:
			return false
		}
	}
	return dashes >= 3
}
