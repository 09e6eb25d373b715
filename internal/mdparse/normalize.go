// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdparse

import (
	"regexp"
	"strings"
)

var (
	multiSpace = regexp.MustCompile(`\s{2,}`)
	escapedMD  = regexp.MustCompile("\\\\([\\\\`*_{}\\[\\]()#+\\-.!|])")

	// Emphasis wrappers. The inner text must start and end with a
	// non-space character so that stray arithmetic like "2 * 3 * 4"
	// survives untouched.
	boldItalic = regexp.MustCompile(`\*{1,3}([^*\s](?:[^*]*[^*\s])?)\*{1,3}`)
	underscore = regexp.MustCompile(`_{1,3}([^_\s](?:[^_]*[^_\s])?)_{1,3}`)
	codeSpan   = regexp.MustCompile("`([^`]+)`")
)

// Normalize strips Markdown artifacts from a line's content: whitespace
// runs collapse to single spaces, backslash escapes are resolved,
// emphasis wrappers are removed around their inner text, and the result
// is trimmed. Structural markers (heading hashes, bullet tokens) are
// already gone by the time content reaches here; Classify consumes them.
//
// Normalize is idempotent: applying it to its own output is a no-op.
func Normalize(s string) string {
	// Run passes to a fixed point: resolving an escape can expose an
	// emphasis wrapper (and vice versa), and idempotence must hold for
	// pathological inputs like doubled backslashes.
	for {
		next := multiSpace.ReplaceAllString(s, " ")
		next = escapedMD.ReplaceAllString(next, "$1")
		next = stripEmphasis(next)
		next = strings.TrimSpace(next)
		if next == s {
			return s
		}
		s = next
	}
}

// stripEmphasis removes emphasis wrappers repeatedly until a fixed point,
// so nested markers like "***text***" or "**_text_**" fully unwrap.
func stripEmphasis(s string) string {
	for {
		next := boldItalic.ReplaceAllString(s, "$1")
		next = underscore.ReplaceAllString(next, "$1")
		next = codeSpan.ReplaceAllString(next, "$1")
		if next == s {
			return s
		}
		s = next
	}
}
