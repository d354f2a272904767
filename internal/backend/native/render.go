package native

import (
	"strconv"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/codeshell/internal/lang"
	"github.com/dshills/codeshell/internal/session"
)

const (
	glyphTab        = '→'
	glyphSpace      = '·'
	glyphBreakpoint = '●'
	glyphExecution  = '▶'
)

// signColumns is the width of the marker columns left of the line numbers.
const signColumns = 2

// gutterWidth returns the markers plus, when shown, the line numbers and a
// separating blank.
func (e *Editor) gutterWidth() int {
	w := signColumns
	if e.display.ShowLineNumbers {
		digits := len(strconv.Itoa(e.buf.LineCount()))
		if digits < 3 {
			digits = 3
		}
		w += digits + 1
	}
	return w
}

// visualColumn returns the cell column of the rune column col on line.
func (e *Editor) visualColumn(line, col int) int {
	x := 0
	runes := 0
	forEachCluster(e.buf.Line(line), func(cluster string, n, width int) bool {
		if runes+n > col {
			return false
		}
		x += clusterWidth(cluster, x, width)
		runes += n
		return true
	})
	return x
}

// columnAt returns the rune column on line under cell column x.
func (e *Editor) columnAt(line, x int) int {
	cell := 0
	runes := 0
	forEachCluster(e.buf.Line(line), func(cluster string, n, width int) bool {
		w := clusterWidth(cluster, cell, width)
		if cell+w > x {
			return false
		}
		cell += w
		runes += n
		return true
	})
	return runes
}

// forEachCluster walks the grapheme clusters of line, passing each cluster,
// its rune count and its display width.
func forEachCluster(line []rune, fn func(cluster string, runes, width int) bool) {
	rest := string(line)
	state := -1
	var cluster string
	var width int
	for rest != "" {
		cluster, rest, width, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if !fn(cluster, utf8.RuneCountInString(cluster), width) {
			return
		}
	}
}

func clusterWidth(cluster string, col, width int) int {
	if cluster == "\t" {
		return tabWidth - col%tabWidth
	}
	if width < 1 {
		return 1
	}
	return width
}

func (e *Editor) render() {
	if !e.visible || e.detached || e.screen == nil {
		return
	}
	area := e.Area()
	if area.Width <= 0 || area.Height <= 0 {
		return
	}
	for y := area.Y; y < area.Y+area.Height; y++ {
		for x := area.X; x < area.X+area.Width; x++ {
			e.screen.SetContent(x, y, ' ', nil, e.styles.Text)
		}
	}

	stride := e.stride()
	gutter := e.gutterWidth()
	caretLine := e.buf.PositionAt(e.caret).Line
	for row := 0; row < e.textRows(); row++ {
		line := e.top + row
		if line >= e.buf.LineCount() {
			break
		}
		y := area.Y + row*stride
		e.drawGutter(line, area.X, y, line == caretLine)
		e.drawLine(line, area.X+gutter, y, area.X+area.Width)
	}

	if e.search.active {
		e.drawPrompt(area)
	} else if caretLine >= e.top && caretLine < e.top+e.textRows() {
		pos := e.buf.PositionAt(e.caret)
		e.screen.ShowCursor(area.X+gutter+e.visualColumn(pos.Line, pos.Column), area.Y+(caretLine-e.top)*stride)
	} else {
		e.screen.HideCursor()
	}
	e.screen.Show()
}

func (e *Editor) drawGutter(line, x, y int, isCaretLine bool) {
	if e.breakpoints[line] {
		e.screen.SetContent(x, y, glyphBreakpoint, nil, e.styles.Breakpoint)
	}
	switch {
	case e.hasCurrent && e.current == line:
		e.screen.SetContent(x+1, y, glyphExecution, nil, e.styles.Execution)
	default:
		if sev, ok := e.diagnostics[line]; ok {
			style := e.styles.Warning
			if sev == lang.SeverityError {
				style = e.styles.Error
			}
			r, _ := utf8.DecodeRuneInString(sev.Icon())
			e.screen.SetContent(x+1, y, r, nil, style)
		}
	}
	if !e.display.ShowLineNumbers {
		return
	}
	style := e.styles.LineNumber
	if isCaretLine {
		style = e.styles.CurrentNum
	}
	num := strconv.Itoa(line + 1)
	right := x + e.gutterWidth() - 2
	for i := len(num) - 1; i >= 0; i-- {
		e.screen.SetContent(right-(len(num)-1-i), y, rune(num[i]), nil, style)
	}
}

func (e *Editor) drawLine(line, x0, y, maxX int) {
	selStart, selEnd := e.selection()
	offset := e.buf.LineStart(line)
	col := 0
	forEachCluster(e.buf.Line(line), func(cluster string, n, width int) bool {
		w := clusterWidth(cluster, col, width)
		x := x0 + col
		if x+w > maxX {
			return false
		}
		selected := offset >= selStart && offset < selEnd
		style := e.styles.Text
		if selected {
			style = e.styles.Selection
		}
		switch cluster {
		case "\t":
			glyph := ' '
			if e.display.ShowTabs {
				glyph = glyphTab
				if !selected {
					style = e.styles.Whitespace
				}
			}
			e.screen.SetContent(x, y, glyph, nil, style)
			for i := 1; i < w; i++ {
				e.screen.SetContent(x+i, y, ' ', nil, style)
			}
		case " ":
			glyph := ' '
			if e.display.ShowSpaces {
				glyph = glyphSpace
				if !selected {
					style = e.styles.Whitespace
				}
			}
			e.screen.SetContent(x, y, glyph, nil, style)
		default:
			runes := []rune(cluster)
			e.screen.SetContent(x, y, runes[0], runes[1:], style)
		}
		col += w
		offset += n
		return true
	})
}

func (e *Editor) drawPrompt(area session.Rect) {
	y := area.Y + area.Height - 1
	text := e.search.prompt()
	x := area.X
	for _, r := range text {
		if x >= area.X+area.Width {
			break
		}
		e.screen.SetContent(x, y, r, nil, e.styles.Prompt)
		x += uniseg.StringWidth(string(r))
	}
	for ; x < area.X+area.Width; x++ {
		e.screen.SetContent(x, y, ' ', nil, e.styles.Prompt)
	}
	cursor := area.X + uniseg.StringWidth(e.search.promptBeforeCursor())
	if cursor >= area.X+area.Width {
		cursor = area.X + area.Width - 1
	}
	e.screen.ShowCursor(cursor, y)
}
