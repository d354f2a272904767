package session

import (
	"fmt"
	"math"
)

// Position is a zero-based line and column. Columns count runes.
type Position struct {
	Line   int
	Column int
}

// Range is a half-open span of rune offsets into a surface's text.
type Range struct {
	Start int
	End   int
}

// Empty reports whether the range selects nothing.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// Normalized returns the range with Start <= End.
func (r Range) Normalized() Range {
	if r.Start > r.End {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// Rect is a screen region in the backend's own units (cells for the
// terminal, CSS pixels for the browser).
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// DisplayFlag names one of the boolean display toggles.
type DisplayFlag uint8

const (
	FlagShowTabs DisplayFlag = iota
	FlagShowSpaces
	FlagShowLineNumbers
)

// String returns the flag name.
func (f DisplayFlag) String() string {
	switch f {
	case FlagShowTabs:
		return "show-tabs"
	case FlagShowSpaces:
		return "show-spaces"
	case FlagShowLineNumbers:
		return "show-line-numbers"
	default:
		return fmt.Sprintf("flag(%d)", uint8(f))
	}
}

// Display is the global presentation state applied to every backend.
type Display struct {
	ShowTabs        bool
	ShowSpaces      bool
	ShowLineNumbers bool

	// LineHeight is a multiplier of the backend's natural line height.
	LineHeight float64
}

// DefaultDisplay returns line numbers on and a 1.0 line height.
func DefaultDisplay() Display {
	return Display{ShowLineNumbers: true, LineHeight: 1}
}

// Flag returns the value of f.
func (d Display) Flag(f DisplayFlag) bool {
	switch f {
	case FlagShowTabs:
		return d.ShowTabs
	case FlagShowSpaces:
		return d.ShowSpaces
	case FlagShowLineNumbers:
		return d.ShowLineNumbers
	}
	return false
}

// withFlag returns a copy with f set to v.
func (d Display) withFlag(f DisplayFlag, v bool) Display {
	switch f {
	case FlagShowTabs:
		d.ShowTabs = v
	case FlagShowSpaces:
		d.ShowSpaces = v
	case FlagShowLineNumbers:
		d.ShowLineNumbers = v
	}
	return d
}

// Validate reports whether the display state is usable.
func (d Display) Validate() error {
	if !validLineHeight(d.LineHeight) {
		return ErrInvalidLineHeight
	}
	return nil
}

func validLineHeight(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
