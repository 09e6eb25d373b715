// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdparse

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// BoundaryFunc decides whether a sentence-terminal character ends a
// sentence. left is the text accumulated so far, ending with the
// terminator; right is the untouched remainder of the paragraph. The
// heuristics are locale-dependent, so callers can inject their own policy
// without touching the state machine.
type BoundaryFunc func(left, right string) bool

// defaultAbbreviations are terminator-bearing tokens that do not end a
// sentence. Matched case-insensitively against the last token before a
// period.
var defaultAbbreviations = []string{
	"mr.", "mrs.", "ms.", "dr.", "prof.", "rev.", "hon.", "st.",
	"jr.", "sr.", "vs.", "etc.", "e.g.", "i.e.", "cf.", "al.",
	"fig.", "figs.", "no.", "nos.", "vol.", "sec.", "ch.", "pp.",
	"approx.", "dept.", "est.", "inc.", "ltd.", "co.", "corp.",
	"jan.", "feb.", "mar.", "apr.", "jun.", "jul.", "aug.", "sep.",
	"sept.", "oct.", "nov.", "dec.",
}

// Segmenter splits paragraphs into sentences. The zero value is not
// usable; construct with NewSegmenter.
type Segmenter struct {
	boundary      BoundaryFunc
	abbreviations map[string]bool
}

// NewSegmenter builds a Segmenter. A nil boundary installs the default
// policy; extra abbreviations are merged into the built-in guard list.
func NewSegmenter(boundary BoundaryFunc, extraAbbreviations []string) *Segmenter {
	s := &Segmenter{abbreviations: make(map[string]bool, len(defaultAbbreviations)+len(extraAbbreviations))}
	for _, a := range defaultAbbreviations {
		s.abbreviations[a] = true
	}
	for _, a := range extraAbbreviations {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			s.abbreviations[a] = true
		}
	}
	if boundary == nil {
		boundary = s.defaultBoundary
	}
	s.boundary = boundary
	return s
}

// Segment joins the paragraph's physical lines with single spaces to undo
// line wrapping, then splits at sentence boundaries. A trailing fragment
// without terminal punctuation becomes the final sentence. Empty results
// are discarded, so an all-whitespace paragraph yields nothing.
func (s *Segmenter) Segment(lines []string) []string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			parts = append(parts, l)
		}
	}
	joined := strings.Join(parts, " ")
	if joined == "" {
		return nil
	}

	var (
		sentences []string
		cur       strings.Builder
	)
	runes := []rune(joined)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if !isTerminator(runes[i]) {
			continue
		}
		if s.boundary(cur.String(), string(runes[i+1:])) {
			if sent := strings.TrimSpace(cur.String()); sent != "" {
				sentences = append(sentences, sent)
			}
			cur.Reset()
			// Swallow the whitespace that separated the sentences.
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
		}
	}
	if sent := strings.TrimSpace(cur.String()); sent != "" {
		sentences = append(sentences, sent)
	}
	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// defaultBoundary implements the stock splitting rule: the terminator
// must be followed by whitespace and an uppercase letter, digit, or
// opening quote, and a period preceded by a known abbreviation or a
// single initial does not split.
func (s *Segmenter) defaultBoundary(left, right string) bool {
	first, _ := utf8.DecodeRuneInString(right)
	if right == "" || !unicode.IsSpace(first) {
		return false
	}
	next := strings.TrimLeft(right, " \t")
	if next == "" {
		return false
	}
	if !startsSentence(next) {
		return false
	}

	if strings.HasSuffix(left, ".") {
		token := lastToken(left)
		if s.abbreviations[strings.ToLower(token)] {
			return false
		}
		if isInitial(token) {
			return false
		}
	}
	return true
}

// startsSentence reports whether text begins with an uppercase letter, a
// digit, or an opening quote character.
func startsSentence(text string) bool {
	r := []rune(text)[0]
	switch r {
	case '"', '\'', '“', '‘', '(', '[':
		return true
	}
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}

// lastToken returns the final whitespace-delimited token of text,
// terminator included (e.g. "Dr." or "U.S.").
func lastToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// isInitial matches single-letter initials ("J.") and dotted acronym
// runs ("U.S.", "p.m."), which almost never end a sentence mid-paragraph.
func isInitial(token string) bool {
	runes := []rune(token)
	if len(runes) < 2 || len(runes)%2 != 0 {
		return false
	}
	for i := 0; i < len(runes); i += 2 {
		if !unicode.IsLetter(runes[i]) || runes[i+1] != '.' {
			return false
		}
	}
	// Single initials must be uppercase; longer dotted runs may be
	// either case ("p.m.").
	if len(runes) == 2 && !unicode.IsUpper(runes[0]) {
		return false
	}
	return true
}
