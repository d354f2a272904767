package native

import "github.com/gdamore/tcell/v2"

// Styles holds the tcell styles an editor draws with.
type Styles struct {
	Text       tcell.Style
	Selection  tcell.Style
	Whitespace tcell.Style
	LineNumber tcell.Style
	CurrentNum tcell.Style
	Breakpoint tcell.Style
	Execution  tcell.Style
	Error      tcell.Style
	Warning    tcell.Style
	Prompt     tcell.Style
}

// DefaultStyles returns a palette for dark terminals.
func DefaultStyles() Styles {
	base := tcell.StyleDefault
	return Styles{
		Text:       base,
		Selection:  base.Reverse(true),
		Whitespace: base.Foreground(tcell.ColorGray),
		LineNumber: base.Foreground(tcell.ColorGray),
		CurrentNum: base.Foreground(tcell.ColorYellow),
		Breakpoint: base.Foreground(tcell.ColorRed),
		Execution:  base.Foreground(tcell.ColorGreen).Bold(true),
		Error:      base.Foreground(tcell.ColorRed).Bold(true),
		Warning:    base.Foreground(tcell.ColorYellow),
		Prompt:     base.Reverse(true),
	}
}
