package native

import "github.com/gdamore/tcell/v2"

type searchField uint8

const (
	fieldFind searchField = iota
	fieldReplace
)

// searchState is the find/replace prompt drawn on the editor's last row.
type searchState struct {
	active      bool
	replace     bool
	field       searchField
	query       []rune
	replacement []rune
	missed      bool
}

func (s *searchState) open(replace bool, seed string) {
	query := s.query
	if seed != "" {
		query = []rune(seed)
	}
	*s = searchState{active: true, replace: replace, query: query, replacement: s.replacement}
}

func (s *searchState) focused() *[]rune {
	if s.field == fieldReplace {
		return &s.replacement
	}
	return &s.query
}

func (s *searchState) promptBeforeCursor() string {
	out := "Find: " + string(s.query)
	if s.field == fieldReplace {
		out += "  Replace: " + string(s.replacement)
	}
	return out
}

func (s *searchState) prompt() string {
	out := "Find: " + string(s.query)
	if s.replace {
		out += "  Replace: " + string(s.replacement)
	}
	if s.missed {
		out += "  (no match)"
	}
	return out
}

// Searching reports whether the find prompt is open.
func (e *Editor) Searching() bool { return e.search.active }

// handleSearchKey routes keys to the prompt while it is open.
func (e *Editor) handleSearchKey(ev *tcell.EventKey) bool {
	s := &e.search
	switch ev.Key() {
	case tcell.KeyEscape:
		e.search.active = false
	case tcell.KeyTab:
		if s.replace {
			if s.field == fieldFind {
				s.field = fieldReplace
			} else {
				s.field = fieldFind
			}
		}
	case tcell.KeyEnter:
		if s.field == fieldReplace {
			e.replaceCurrent()
		}
		e.findNext()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		f := s.focused()
		if n := len(*f); n > 0 {
			*f = (*f)[:n-1]
		}
	case tcell.KeyRune:
		f := s.focused()
		*f = append(*f, ev.Rune())
	default:
		return false
	}
	e.render()
	return true
}

// findNext selects the next match after the current selection, wrapping
// at the end of the text.
func (e *Editor) findNext() bool {
	q := e.search.query
	if len(q) == 0 {
		return false
	}
	from := e.caret
	off, ok := e.buf.Find(q, from)
	e.search.missed = !ok
	if !ok {
		return false
	}
	e.anchor, e.caret = off, off+len(q)
	e.ensureCaretVisible()
	return true
}

func (e *Editor) replaceCurrent() {
	if len(e.search.query) == 0 || e.selectedText() != string(e.search.query) {
		return
	}
	start, end := e.selection()
	e.edit(start, end, string(e.search.replacement))
}
