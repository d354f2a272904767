// Package native implements the in-process terminal backend.
//
// An Editor is a session.Backend drawing one document into a region of a
// shared tcell.Screen. It owns the text buffer, caret and selection, scroll
// origin, undo history and the gutter (breakpoints, execution line,
// diagnostics, line numbers). Widths are measured per grapheme cluster with
// rivo/uniseg so wide and combining characters keep the caret aligned.
//
// Editors are driven from the UI goroutine only: the application feeds
// tcell key and mouse events to the active editor's HandleKey and
// HandleMouse, and the editor reports back through its session.Item.
package native
