package native

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/codeshell/internal/session"
)

const wheelLines = 3

// HandleKey applies a key event and reports whether the editor used it.
func (e *Editor) HandleKey(ev *tcell.EventKey) bool {
	if e.detached || ev == nil {
		return false
	}
	if e.search.active {
		if e.handleSearchKey(ev) {
			return true
		}
	}
	for _, b := range e.bindings {
		if b.shortcut.Matches(ev) {
			e.RunAction(b.action)
			return true
		}
	}

	extend := ev.Modifiers()&tcell.ModShift != 0
	switch ev.Key() {
	case tcell.KeyRune:
		if ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) != 0 {
			return false
		}
		e.insert(string(ev.Rune()))
	case tcell.KeyEnter:
		e.insert("\n")
	case tcell.KeyTab:
		e.insert("\t")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.backspace()
	case tcell.KeyDelete:
		e.deleteForward()
	case tcell.KeyLeft:
		e.moveCaret(e.caret-1, extend)
	case tcell.KeyRight:
		e.moveCaret(e.caret+1, extend)
	case tcell.KeyUp:
		e.moveLines(-1, extend)
	case tcell.KeyDown:
		e.moveLines(1, extend)
	case tcell.KeyPgUp:
		e.moveLines(-e.textRows(), extend)
	case tcell.KeyPgDn:
		e.moveLines(e.textRows(), extend)
	case tcell.KeyHome:
		e.moveCaret(e.buf.LineStart(e.buf.PositionAt(e.caret).Line), extend)
	case tcell.KeyEnd:
		e.moveCaret(e.buf.LineEnd(e.buf.PositionAt(e.caret).Line), extend)
	case tcell.KeyEscape:
		if e.anchor == e.caret {
			return false
		}
		e.anchor = e.caret
		e.render()
	default:
		return false
	}
	return true
}

func (e *Editor) insert(text string) {
	s, t := e.selection()
	e.edit(s, t, text)
}

func (e *Editor) backspace() {
	s, t := e.selection()
	if s == t {
		if s == 0 {
			return
		}
		s--
	}
	e.edit(s, t, "")
}

func (e *Editor) deleteForward() {
	s, t := e.selection()
	if s == t {
		if t >= e.buf.Len() {
			return
		}
		t++
	}
	e.edit(s, t, "")
}

func (e *Editor) moveCaret(offset int, extend bool) {
	e.caret = e.buf.clamp(offset)
	if !extend {
		e.anchor = e.caret
	}
	e.ensureCaretVisible()
	e.render()
}

// moveLines keeps the visual column while moving the caret vertically.
func (e *Editor) moveLines(delta int, extend bool) {
	pos := e.buf.PositionAt(e.caret)
	x := e.visualColumn(pos.Line, pos.Column)
	line := pos.Line + delta
	if line < 0 {
		line = 0
	}
	if line >= e.buf.LineCount() {
		line = e.buf.LineCount() - 1
	}
	col := e.columnAt(line, x)
	e.moveCaret(e.buf.OffsetAt(session.Position{Line: line, Column: col}), extend)
}

// HandleMouse applies a mouse event inside the editor's area and reports
// whether the editor used it. Left clicks in the gutter report a gutter
// tap; right clicks raise the context menu.
func (e *Editor) HandleMouse(ev *tcell.EventMouse) bool {
	if e.detached || ev == nil {
		return false
	}
	buttons := ev.Buttons()
	pressed := buttons &^ e.buttons
	e.buttons = buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)

	x, y := ev.Position()
	area := e.Area()
	if x < area.X || y < area.Y || x >= area.X+area.Width || y >= area.Y+area.Height {
		return false
	}

	switch {
	case buttons&tcell.WheelUp != 0:
		e.scrollBy(-wheelLines)
		return true
	case buttons&tcell.WheelDown != 0:
		e.scrollBy(wheelLines)
		return true
	}

	line := e.top + (y-area.Y)/e.stride()
	if line >= e.buf.LineCount() {
		line = e.buf.LineCount() - 1
	}
	inGutter := x < area.X+e.gutterWidth()

	switch {
	case pressed&tcell.Button1 != 0:
		if inGutter {
			if e.item != nil {
				e.item.NotifyGutterTapped(line)
			}
			return true
		}
		e.moveCaret(e.offsetAtCell(line, x-area.X-e.gutterWidth()), false)
		return true
	case pressed&tcell.Button2 != 0:
		if !inGutter {
			off := e.offsetAtCell(line, x-area.X-e.gutterWidth())
			s, t := e.selection()
			if off < s || off > t || s == t {
				e.moveCaret(off, false)
			}
		}
		e.raiseContextMenu()
		return true
	case buttons&tcell.Button1 != 0 && !inGutter:
		// drag extends the selection
		e.moveCaret(e.offsetAtCell(line, x-area.X-e.gutterWidth()), true)
		return true
	}
	return false
}

func (e *Editor) offsetAtCell(line, x int) int {
	col := e.columnAt(line, x)
	return e.buf.OffsetAt(session.Position{Line: line, Column: col})
}

func (e *Editor) scrollBy(delta int) {
	e.top += delta
	if last := e.buf.LineCount() - 1; e.top > last {
		e.top = last
	}
	if e.top < 0 {
		e.top = 0
	}
	e.render()
}
