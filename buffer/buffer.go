// Package buffer implements the source-text store behind a Document: a
// character-indexed, line-indexed buffer with two flavors — append-only for
// sequential ingestion, and mutable for arbitrary-span edits.
package buffer

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// Span is a half-open character range [Start, End) expressed in absolute
// sites (character offsets from 0), not byte offsets.
type Span struct {
	Start int
	End   int
}

// Len returns the number of characters spanned.
func (s Span) Len() int { return s.End - s.Start }

// Mode selects whether a Buffer accepts Append or Write.
type Mode int

const (
	// ModeAppend buffers only grow at the end; optimized for sequential
	// ingestion.
	ModeAppend Mode = iota
	// ModeMutable buffers accept arbitrary-span writes.
	ModeMutable
)

// Buffer stores UTF-8 text as a rune slice plus a derived line-start index.
// It is not safe for concurrent use without an external lock; Document
// supplies that discipline (see analyzer's per-document guard).
type Buffer struct {
	mode       Mode
	runes      []rune
	lineStarts []int // site of the first char of each line; lineStarts[0] == 0
}

// NewAppendOnly returns an empty append-only Buffer.
func NewAppendOnly() *Buffer {
	b := &Buffer{mode: ModeAppend}
	b.reindex()
	return b
}

// NewMutable returns a mutable Buffer seeded with initial.
func NewMutable(initial string) *Buffer {
	b := &Buffer{mode: ModeMutable, runes: []rune(initial)}
	b.reindex()
	return b
}

// Len returns the character length of the buffer's content.
func (b *Buffer) Len() int { return len(b.runes) }

// Append appends text to the buffer. Valid only in ModeAppend.
func (b *Buffer) Append(text string) error {
	if b.mode != ModeAppend {
		return &InvalidOpError{Op: "Append", Reason: "buffer is not append-only"}
	}
	b.runes = append(b.runes, []rune(text)...)
	b.reindex()
	return nil
}

// Write replaces the characters in span with text. Valid only in
// ModeMutable. Returns an *InvalidSpanError if span is out of range,
// inverted, or (for byte-oriented callers) not on a character boundary;
// since Buffer is rune-indexed internally every integer site is already a
// character boundary, so that last case can't arise from this API, but the
// error kind is still exposed for callers that translate from byte offsets.
func (b *Buffer) Write(span Span, text string) error {
	if b.mode != ModeMutable {
		return &InvalidOpError{Op: "Write", Reason: "buffer is append-only"}
	}
	if err := b.validateSpan(span); err != nil {
		return err
	}

	replacement := []rune(text)
	newRunes := make([]rune, 0, len(b.runes)-span.Len()+len(replacement))
	newRunes = append(newRunes, b.runes[:span.Start]...)
	newRunes = append(newRunes, replacement...)
	newRunes = append(newRunes, b.runes[span.End:]...)
	b.runes = newRunes
	b.reindex()
	return nil
}

func (b *Buffer) validateSpan(span Span) error {
	if span.Start > span.End {
		return &InvalidSpanError{Span: span, Length: len(b.runes), Reason: "start > end"}
	}
	if span.Start < 0 || span.End > len(b.runes) {
		return &InvalidSpanError{Span: span, Length: len(b.runes), Reason: "out of range"}
	}
	return nil
}

// Substring returns the text in span, or an error if span is invalid.
func (b *Buffer) Substring(span Span) (string, error) {
	if err := b.validateSpan(span); err != nil {
		return "", err
	}
	return string(b.runes[span.Start:span.End]), nil
}

// Chunks splits the text in span into line-bounded chunks, useful for
// streaming a span without materializing it as one string.
func (b *Buffer) Chunks(span Span) ([]string, error) {
	text, err := b.Substring(span)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// LineCount returns the number of lines in the buffer. An empty buffer has
// exactly one (empty) line.
func (b *Buffer) LineCount() int { return len(b.lineStarts) }

// LineLength returns the character length of the given 0-indexed line,
// excluding its trailing newline.
func (b *Buffer) LineLength(line int) (int, error) {
	if line < 0 || line >= len(b.lineStarts) {
		return 0, fmt.Errorf("line %d out of range [0, %d)", line, len(b.lineStarts))
	}
	start := b.lineStarts[line]
	var end int
	if line+1 < len(b.lineStarts) {
		end = b.lineStarts[line+1] - 1 // exclude the newline
	} else {
		end = len(b.runes)
	}
	if end < start {
		end = start
	}
	return end - start, nil
}

// LineColToSite converts a 0-indexed (line, column) position to an absolute
// site.
func (b *Buffer) LineColToSite(line, col int) (int, error) {
	if line < 0 || line >= len(b.lineStarts) {
		return 0, fmt.Errorf("line %d out of range [0, %d)", line, len(b.lineStarts))
	}
	length, err := b.LineLength(line)
	if err != nil {
		return 0, err
	}
	if col < 0 || col > length {
		return 0, fmt.Errorf("column %d out of range [0, %d] on line %d", col, length, line)
	}
	return b.lineStarts[line] + col, nil
}

// SiteToLineCol converts an absolute site to a 0-indexed (line, column)
// position. site == Len() (end of buffer) is valid.
func (b *Buffer) SiteToLineCol(site int) (line, col int, err error) {
	if site < 0 || site > len(b.runes) {
		return 0, 0, fmt.Errorf("site %d out of range [0, %d]", site, len(b.runes))
	}
	// binary search for the last lineStart <= site
	lo, hi := 0, len(b.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.lineStarts[mid] <= site {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, site - b.lineStarts[lo], nil
}

func (b *Buffer) reindex() {
	starts := []int{0}
	for i, r := range b.runes {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	b.lineStarts = starts
}

// DebugWrapped returns the buffer's full content reflowed to width columns,
// for diagnostics only; never used on the edit/read hot path.
func (b *Buffer) DebugWrapped(width int) string {
	return rosed.Edit(string(b.runes)).Wrap(width).String()
}
