package native

import (
	"github.com/dshills/codeshell/internal/keybind"
	"github.com/dshills/codeshell/internal/menu"
)

// Action ids understood by RunAction.
const (
	ActionCut         = "edit.cut"
	ActionCopy        = "edit.copy"
	ActionPaste       = "edit.paste"
	ActionSelectAll   = "edit.selectAll"
	ActionUndo        = "edit.undo"
	ActionDeleteLine  = "edit.deleteLine"
	ActionDefinition  = "lookup.definition"
	ActionFind        = "search.find"
	ActionReplace     = "search.replace"
	ActionPalette     = "palette.show"
	ActionContextMenu = "menu.context"
	ActionSave        = "file.save"
	ActionToggleBreak = "debug.toggleBreakpoint"
)

type binding struct {
	action   string
	label    string
	keys     string
	shortcut keybind.Shortcut
}

var bindingTable = []struct {
	action, label, keys string
}{
	{ActionCut, "Cut", "Ctrl+X"},
	{ActionCopy, "Copy", "Ctrl+C"},
	{ActionPaste, "Paste", "Ctrl+V"},
	{ActionSelectAll, "Select All", "Ctrl+A"},
	{ActionUndo, "Undo", "Ctrl+Z"},
	{ActionDeleteLine, "Delete Line", "Ctrl+K"},
	{ActionDefinition, "Go to Definition", "F12"},
	{ActionFind, "Find", "Ctrl+F"},
	{ActionReplace, "Replace", "Ctrl+R"},
	{ActionPalette, "Command Palette", "F1"},
	{ActionContextMenu, "Context Menu", "F10"},
	{ActionSave, "Save", "Ctrl+S"},
	{ActionToggleBreak, "Toggle Breakpoint", "F9"},
}

func defaultBindings() []binding {
	out := make([]binding, 0, len(bindingTable))
	for _, b := range bindingTable {
		sc, ok := keybind.Parse(b.keys)
		if !ok {
			continue
		}
		out = append(out, binding{action: b.action, label: b.label, keys: b.keys, shortcut: sc})
	}
	return out
}

func (e *Editor) bindingFor(action string) (binding, bool) {
	for _, b := range e.bindings {
		if b.action == action {
			return b, true
		}
	}
	return binding{}, false
}

// RunAction executes the command with the given id. Unknown ids are
// ignored.
func (e *Editor) RunAction(id string) {
	if e.detached {
		return
	}
	switch id {
	case ActionCut:
		if text := e.selectedText(); text != "" {
			e.clip.SetText(text)
			s, t := e.selection()
			e.edit(s, t, "")
		}
	case ActionCopy:
		if text := e.selectedText(); text != "" {
			e.clip.SetText(text)
		}
	case ActionPaste:
		if text := e.clip.Text(); text != "" {
			s, t := e.selection()
			e.edit(s, t, text)
		}
	case ActionSelectAll:
		e.anchor, e.caret = 0, e.buf.Len()
		e.ensureCaretVisible()
		e.render()
	case ActionUndo:
		e.undoLast()
	case ActionDeleteLine:
		e.deleteLine()
	case ActionDefinition:
		e.lookup()
	case ActionFind:
		e.ShowSearch(false)
	case ActionReplace:
		e.ShowSearch(true)
	case ActionPalette:
		e.raisePalette()
	case ActionContextMenu:
		e.raiseContextMenu()
	case ActionSave:
		e.save()
	case ActionToggleBreak:
		if e.item != nil {
			e.item.ToggleBreakpoint(e.buf.PositionAt(e.caret).Line)
		}
	default:
		e.log.Debug("unknown action", "id", id)
	}
}

func (e *Editor) undoLast() {
	n := len(e.undo)
	if n == 0 {
		return
	}
	snap := e.undo[n-1]
	e.undo = e.undo[:n-1]
	e.buf.set(snap.text)
	e.anchor, e.caret = e.buf.clamp(snap.anchor), e.buf.clamp(snap.caret)
	e.changed()
}

func (e *Editor) deleteLine() {
	line := e.buf.PositionAt(e.caret).Line
	start := e.buf.LineStart(line)
	end := e.buf.LineEnd(line)
	if end < e.buf.Len() {
		end++
	} else if start > 0 {
		start--
	}
	if start == end {
		return
	}
	e.edit(start, end, "")
}

func (e *Editor) wordAtCaret() string {
	s, t := e.buf.WordAt(e.caret)
	return e.buf.Slice(s, t)
}

func (e *Editor) lookup() {
	if e.item == nil {
		return
	}
	e.item.NotifyLookup(e.buf.PositionAt(e.caret), e.wordAtCaret())
}

func (e *Editor) save() {
	if e.item == nil {
		return
	}
	if err := e.item.NotifySave(""); err != nil {
		e.log.Warn("save failed", "error", err)
	}
}

func (e *Editor) menuAction(id string, enabled bool) menu.Action {
	a := menu.Action{ID: id, Enabled: enabled}
	if b, ok := e.bindingFor(id); ok {
		a.Label = b.label
		a.Keybinding = b.keys
	}
	return a
}

// contextItems builds the right-click menu for the current caret.
func (e *Editor) contextItems() []menu.Item {
	hasSel := e.anchor != e.caret
	return []menu.Item{
		e.menuAction(ActionCut, hasSel),
		e.menuAction(ActionCopy, hasSel),
		e.menuAction(ActionPaste, e.clip.Text() != ""),
		menu.Separator{},
		e.menuAction(ActionSelectAll, e.buf.Len() > 0),
		menu.Separator{},
		e.menuAction(ActionDefinition, e.wordAtCaret() != ""),
	}
}

func (e *Editor) raiseContextMenu() {
	if e.item == nil {
		return
	}
	pos := e.buf.PositionAt(e.caret)
	e.item.NotifyContextMenu(menu.Request{
		Items: e.contextItems(),
		Context: menu.Context{
			Line:         pos.Line,
			Column:       pos.Column,
			SelectedText: e.selectedText(),
			Word:         e.wordAtCaret(),
		},
	})
}

// paletteActions lists every bound command in table order.
func (e *Editor) paletteActions() []menu.PaletteAction {
	hasSel := e.anchor != e.caret
	enabled := map[string]bool{
		ActionCut:         hasSel,
		ActionCopy:        hasSel,
		ActionPaste:       e.clip.Text() != "",
		ActionUndo:        len(e.undo) > 0,
		ActionDefinition:  e.wordAtCaret() != "",
		ActionPalette:     false,
		ActionContextMenu: false,
	}
	out := make([]menu.PaletteAction, 0, len(e.bindings))
	for _, b := range e.bindings {
		on, listed := enabled[b.action]
		if !listed {
			on = true
		}
		out = append(out, menu.PaletteAction{ID: b.action, Label: b.label, Enabled: on})
	}
	return out
}

func (e *Editor) raisePalette() {
	if e.item == nil {
		return
	}
	actions := e.paletteActions()
	e.item.NotifyCommandPalette(menu.PaletteRequest{Actions: actions, Total: len(actions)})
}
