// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdparse

import (
	"errors"
	"regexp"
	"strings"

	"github.com/greenguard/docflow/pkg/types"
)

// ErrInvalidInput is returned when the caller passes something that is
// not a line sequence (a nil document or nil lines). Malformed document
// content never produces an error; only contract violations do.
var ErrInvalidInput = errors.New("mdparse: input is not a line sequence")

// Page is one page worth of converter output. Number is 1-based; zero
// means the backend did not carry page boundaries.
type Page struct {
	Number int
	Lines  []string
}

// Document is the parser input: an ordered sequence of lines, optionally
// grouped by page.
type Document struct {
	// Source identifies the originating document and is stamped onto
	// every row.
	Source string

	Pages []Page
}

// Options tunes a parse. The zero value is usable but skips nothing;
// most callers start from DefaultOptions.
type Options struct {
	// Boundary overrides the sentence-boundary policy. Nil uses the
	// default heuristics.
	Boundary BoundaryFunc

	// ExtraAbbreviations extends the abbreviation guard list.
	ExtraAbbreviations []string

	// SkipBoilerplate drops table-of-contents and reference-list lines.
	SkipBoilerplate bool
}

// DefaultOptions returns the stock parse options.
func DefaultOptions() Options {
	return Options{SkipBoilerplate: true}
}

// Parse walks the document's lines in order and returns the emitted rows
// along with diagnostics describing any graceful degradations. A document
// with zero lines yields zero rows and no error. Parse holds all mutable
// state in a per-call builder, so documents may be parsed concurrently.
func Parse(doc *Document, opts Options) ([]types.Row, Diagnostics, error) {
	if doc == nil {
		return nil, Diagnostics{}, ErrInvalidInput
	}
	b := newBuilder(doc.Source, opts)
	for _, page := range doc.Pages {
		b.feedPage(page.Number, page.Lines)
	}
	return b.rows, b.diag, nil
}

// ParseLines parses a flat line list with no page information.
func ParseLines(source string, lines []string, opts Options) ([]types.Row, Diagnostics, error) {
	if lines == nil {
		return nil, Diagnostics{}, ErrInvalidInput
	}
	return Parse(&Document{
		Source: source,
		Pages:  []Page{{Lines: lines}},
	}, opts)
}

// ParseMarkdown splits whole-document Markdown text into lines and
// parses it. Convenient for backends that return one blob per document.
func ParseMarkdown(source, markdown string, opts Options) ([]types.Row, Diagnostics, error) {
	return ParseLines(source, splitLines(markdown), opts)
}

// splitLines splits on newlines, tolerating CRLF endings. An empty input
// produces an empty, non-nil slice so it parses as an empty document.
func splitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Boilerplate patterns carried over from production tuning: obvious
// table-of-contents and reference-section lines that add noise without
// content.
var (
	tocPattern  = regexp.MustCompile(`(?i)(table of contents|contents|index)$`)
	refsPattern = regexp.MustCompile(`(?i)^(references|bibliography|works cited)\b`)
)

// isBoilerplate reports whether a line is an obvious TOC or
// reference-list artifact.
func isBoilerplate(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	stripped := strings.TrimLeft(trimmed, "# ")
	return tocPattern.MatchString(stripped) || refsPattern.MatchString(stripped)
}
