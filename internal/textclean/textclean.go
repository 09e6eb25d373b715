// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textclean scrubs converter artifacts out of extracted text:
// HTML entities, odd Unicode widths, control characters, stray table
// pipes, and the duplicated bilingual phrases that OCR-heavy reports
// produce. It runs after parsing, on cell values headed for export.
package textclean

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	multiSpace   = regexp.MustCompile(`[ \t]{2,}`)
	ctrlChars    = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	leadingPipe  = regexp.MustCompile(`^\s*\|\s*`)
	trailingPipe = regexp.MustCompile(`\s*\|\s*$`)

	// A non-Latin run followed by punctuation/space and a Latin tail,
	// the shape of bilingual headings like "CEO 메시지 Message from the CEO".
	bilingualPrefix = regexp.MustCompile(`^([^\x00-\x7F]{2,}[\s:|\-/]+)([A-Za-z].+)$`)
)

// englishHints are tokens that mark the Latin tail of a bilingual line as
// the English rendering worth keeping. Tuned on sustainability reports.
var englishHints = []string{
	"message", "report", "sustainability", "ceo", "target", "governance",
}

// Clean normalizes one cell of extracted text. It is safe to run on
// already-clean text.
func Clean(s string) string {
	if s == "" {
		return ""
	}

	s = html.UnescapeString(s)
	s = norm.NFKC.String(s)

	s = ctrlChars.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "\u00a0", " ")

	// Pipes that leaked out of a table cell.
	s = leadingPipe.ReplaceAllString(s, "")
	s = trailingPipe.ReplaceAllString(s, "")

	s = strings.TrimSpace(s)
	s = multiSpace.ReplaceAllString(s, " ")

	s = stripBilingualPrefix(s)
	s = collapseDuplicatePhrase(s)

	return strings.TrimSpace(s)
}

// stripBilingualPrefix prefers the English rendering when a line opens
// with a non-Latin chunk followed by an equivalent English phrase.
func stripBilingualPrefix(s string) string {
	m := bilingualPrefix.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	latin := strings.TrimSpace(m[2])
	lower := strings.ToLower(latin)
	for _, hint := range englishHints {
		if strings.Contains(lower, hint) {
			return latin
		}
	}
	return s
}

// collapseDuplicatePhrase folds "abc abc" into "abc", a common artifact
// of layout engines rendering a heading twice.
func collapseDuplicatePhrase(s string) string {
	n := len(s)
	if n < 3 || n%2 == 0 {
		return s
	}
	half := n / 2
	if s[half] != ' ' {
		return s
	}
	if strings.EqualFold(s[:half], s[half+1:]) {
		return s[:half]
	}
	return s
}
