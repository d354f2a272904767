package native

import (
	"unicode"

	"github.com/dshills/codeshell/internal/session"
)

// buffer is the editable text as runes with cached line starts.
type buffer struct {
	text   []rune
	starts []int // rune offset of each line start; never empty
}

func newBuffer(s string) *buffer {
	b := &buffer{}
	b.set([]rune(s))
	return b
}

func (b *buffer) set(text []rune) {
	b.text = text
	b.starts = b.starts[:0]
	b.starts = append(b.starts, 0)
	for i, r := range text {
		if r == '\n' {
			b.starts = append(b.starts, i+1)
		}
	}
}

func (b *buffer) String() string { return string(b.text) }

func (b *buffer) Len() int { return len(b.text) }

func (b *buffer) LineCount() int { return len(b.starts) }

func (b *buffer) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(b.text) {
		return len(b.text)
	}
	return offset
}

// LineStart returns the offset of line's first rune.
func (b *buffer) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	if line >= len(b.starts) {
		return len(b.text)
	}
	return b.starts[line]
}

// LineEnd returns the offset of line's newline, or the end of the text.
func (b *buffer) LineEnd(line int) int {
	if line+1 < len(b.starts) {
		return b.starts[line+1] - 1
	}
	return len(b.text)
}

// Line returns the runes of line without its newline.
func (b *buffer) Line(line int) []rune {
	if line < 0 || line >= len(b.starts) {
		return nil
	}
	return b.text[b.LineStart(line):b.LineEnd(line)]
}

// PositionAt maps an offset to its line and column.
func (b *buffer) PositionAt(offset int) session.Position {
	offset = b.clamp(offset)
	lo, hi := 0, len(b.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return session.Position{Line: lo, Column: offset - b.starts[lo]}
}

// OffsetAt maps a line and column to an offset, clamping both.
func (b *buffer) OffsetAt(pos session.Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(b.starts) {
		return len(b.text)
	}
	start, end := b.LineStart(pos.Line), b.LineEnd(pos.Line)
	off := start + pos.Column
	if off > end {
		off = end
	}
	if off < start {
		off = start
	}
	return off
}

// Replace substitutes text for [start, end) and returns the end of the
// inserted text.
func (b *buffer) Replace(start, end int, text []rune) int {
	start, end = b.clamp(start), b.clamp(end)
	if start > end {
		start, end = end, start
	}
	out := make([]rune, 0, len(b.text)-(end-start)+len(text))
	out = append(out, b.text[:start]...)
	out = append(out, text...)
	out = append(out, b.text[end:]...)
	b.set(out)
	return start + len(text)
}

// Slice returns the text in [start, end).
func (b *buffer) Slice(start, end int) string {
	start, end = b.clamp(start), b.clamp(end)
	if start > end {
		start, end = end, start
	}
	return string(b.text[start:end])
}

// Find returns the first offset of needle at or after from, wrapping around.
func (b *buffer) Find(needle []rune, from int) (int, bool) {
	n := len(needle)
	if n == 0 || n > len(b.text) {
		return 0, false
	}
	from = b.clamp(from)
	total := len(b.text) - n + 1
	for i := 0; i < total; i++ {
		at := (from + i) % total
		if runesEqual(b.text[at:at+n], needle) {
			return at, true
		}
	}
	return 0, false
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// WordAt returns the bounds of the identifier touching offset.
func (b *buffer) WordAt(offset int) (int, int) {
	offset = b.clamp(offset)
	start, end := offset, offset
	for start > 0 && isWordRune(b.text[start-1]) {
		start--
	}
	for end < len(b.text) && isWordRune(b.text[end]) {
		end++
	}
	return start, end
}
