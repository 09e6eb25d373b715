// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdparse

import (
	"github.com/greenguard/docflow/pkg/types"
)

// Diagnostics counts the graceful degradations taken during one parse.
// They exist for auditability; none of them interrupts processing.
type Diagnostics struct {
	// FallbackText counts lines that matched no structural pattern and
	// defaulted to plain text.
	FallbackText int

	// TablesClosedAtEnd counts table blocks still open when a page or the
	// stream ended and were closed by the final flush.
	TablesClosedAtEnd int

	// TableContinuations counts non-pipe lines absorbed into a
	// surrounding table block.
	TableContinuations int

	// HeadingsClamped counts heading markers deeper than MaxHeadingLevel.
	HeadingsClamped int

	// SeparatorsSkipped counts table header-separator lines, which are
	// classified as table but excluded from output.
	SeparatorsSkipped int

	// BoilerplateSkipped counts table-of-contents and reference-list
	// lines dropped before classification.
	BoilerplateSkipped int
}

// builder is the per-document state machine. It owns the heading stack,
// the table-block flag, and the paragraph buffer for the duration of one
// parse; none of that state is shared between documents, so concurrent
// parses need no synchronization.
type builder struct {
	source string
	opts   Options
	seg    *Segmenter

	tracker SectionTracker
	rows    []types.Row
	diag    Diagnostics

	pageNo  int
	lineNo  int
	inTable bool
	para    []string
}

func newBuilder(source string, opts Options) *builder {
	return &builder{
		source: source,
		opts:   opts,
		seg:    NewSegmenter(opts.Boundary, opts.ExtraAbbreviations),
	}
}

// feedPage runs one page's lines through the state machine. A page
// boundary terminates any open paragraph and table block: converters
// that emit page-wise Markdown restart mid-paragraph text on the next
// page anyway, so carrying state across would merge unrelated content.
func (b *builder) feedPage(pageNo int, lines []string) {
	b.pageNo = pageNo
	for i, raw := range lines {
		b.feedLine(raw, lines[i+1:])
	}
	b.finish()
}

// feedLine processes one raw line. rest is the remainder of the current
// page, used only for table-continuation lookahead.
func (b *builder) feedLine(raw string, rest []string) {
	cls := Classify(raw)

	if b.opts.SkipBoilerplate && cls.Kind != LineBlank && isBoilerplate(raw) {
		b.diag.BoilerplateSkipped++
		return
	}

	switch cls.Kind {
	case LineBlank:
		b.closeTable(false)
		b.flush()

	case LineTable:
		if !b.inTable {
			b.flush()
			b.inTable = true
		}
		if cls.Separator {
			b.diag.SeparatorsSkipped++
			return
		}
		b.emit(types.SectionTable, Normalize(cls.Content), 0, false, true)

	case LineHeading:
		b.closeTable(false)
		b.flush()
		level := cls.Level
		if level > MaxHeadingLevel {
			level = MaxHeadingLevel
			b.diag.HeadingsClamped++
		}
		text := Normalize(cls.Content)
		if text == "" {
			return
		}
		b.tracker.Apply(level, text)
		b.emit(types.SectionHeading, text, level, false, false)

	case LineBullet:
		b.closeTable(false)
		b.flush()
		// Bullets are never merged across lines, but a single bullet's
		// text may span several sentences; each keeps the bullet flag.
		for _, sent := range b.seg.Segment([]string{Normalize(cls.Content)}) {
			b.emit(types.SectionBullet, sent, 0, true, false)
		}

	case LineText:
		if b.inTable {
			if nextIsTable(rest) {
				// A ragged line between two pipe rows belongs to the
				// table block: cell text leaked past the pipes.
				b.diag.TableContinuations++
				b.emit(types.SectionTable, Normalize(cls.Content), 0, false, true)
				return
			}
			b.closeTable(false)
		}
		b.diag.FallbackText++
		if text := Normalize(cls.Content); text != "" {
			b.para = append(b.para, text)
		}
	}
}

// finish closes out the stream: an unterminated table block is closed
// gracefully and any buffered paragraph is flushed.
func (b *builder) finish() {
	b.closeTable(true)
	b.flush()
}

// closeTable leaves the table state. atEnd marks closes forced by the end
// of a page or the stream, which the diagnostics track separately.
func (b *builder) closeTable(atEnd bool) {
	if !b.inTable {
		return
	}
	b.inTable = false
	if atEnd {
		b.diag.TablesClosedAtEnd++
	}
}

// flush converts the buffered paragraph into sentence rows and clears
// the buffer.
func (b *builder) flush() {
	if len(b.para) == 0 {
		return
	}
	for _, sent := range b.seg.Segment(b.para) {
		b.emit(types.SectionSentence, sent, 0, false, false)
	}
	b.para = b.para[:0]
}

// emit appends one row stamped with the tracker's current snapshot and
// the next line number. Rows with empty text are dropped.
func (b *builder) emit(st types.SectionType, text string, level int, bullet, table bool) {
	if text == "" {
		return
	}
	snap := b.tracker.Snapshot()
	b.lineNo++
	b.rows = append(b.rows, types.Row{
		Source:         b.source,
		PageNo:         b.pageNo,
		LineNo:         b.lineNo,
		SectionType:    st,
		HeadingLevel:   level,
		IsBullet:       bullet,
		IsTable:        table,
		H1:             snap.H1,
		H2:             snap.H2,
		H3:             snap.H3,
		SectionPath:    snap.SectionPath,
		CurrentSection: snap.CurrentSection,
		Text:           text,
	})
}

// nextIsTable reports whether the next non-blank line classifies as a
// table row.
func nextIsTable(rest []string) bool {
	for _, raw := range rest {
		cls := Classify(raw)
		if cls.Kind == LineBlank {
			return false
		}
		return cls.Kind == LineTable
	}
	return false
}
