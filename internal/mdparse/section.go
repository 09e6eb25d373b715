// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdparse

import "strings"

// sectionPathSeparator joins heading texts in a section path.
const sectionPathSeparator = " > "

// headingEntry is one open heading on the stack.
type headingEntry struct {
	level int
	text  string
}

// SectionTracker maintains the stack of currently open headings for one
// document parse. Levels on the stack strictly increase from the outermost
// entry inward; at most MaxHeadingLevel entries can be open at once.
type SectionTracker struct {
	stack []headingEntry
}

// SectionSnapshot is the heading state stamped onto emitted rows.
type SectionSnapshot struct {
	H1             string
	H2             string
	H3             string
	SectionPath    string
	CurrentSection string
}

// Apply records a heading event: every open heading at level or deeper is
// closed, then the new heading is pushed. A heading row is stamped with
// the snapshot taken after its own push, so its CurrentSection is itself.
func (t *SectionTracker) Apply(level int, text string) {
	if level < 1 {
		level = 1
	}
	if level > MaxHeadingLevel {
		level = MaxHeadingLevel
	}
	i := 0
	for i < len(t.stack) && t.stack[i].level < level {
		i++
	}
	t.stack = append(t.stack[:i], headingEntry{level: level, text: text})
}

// Snapshot returns the heading state as of the last Apply.
func (t *SectionTracker) Snapshot() SectionSnapshot {
	var snap SectionSnapshot
	texts := make([]string, 0, len(t.stack))
	for _, e := range t.stack {
		texts = append(texts, e.text)
		switch e.level {
		case 1:
			snap.H1 = e.text
		case 2:
			snap.H2 = e.text
		case 3:
			snap.H3 = e.text
		}
	}
	snap.SectionPath = strings.Join(texts, sectionPathSeparator)
	if n := len(t.stack); n > 0 {
		snap.CurrentSection = t.stack[n-1].text
	}
	return snap
}

// Levels returns the stack's levels from outermost to innermost.
func (t *SectionTracker) Levels() []int {
	levels := make([]int, len(t.stack))
	for i, e := range t.stack {
		levels[i] = e.level
	}
	return levels
}

// Reset clears the stack. The tracker's lifecycle spans one document
// parse; Reset readies it for the next.
func (t *SectionTracker) Reset() {
	t.stack = t.stack[:0]
}
