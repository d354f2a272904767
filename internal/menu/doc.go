// Package menu defines the context-menu and command-palette request values a
// backend hands to its host when it cannot draw native UI itself.
//
// A context menu is a tree of Item values. Item is a closed sum type with
// exactly three variants:
//
//   - Action: an invocable entry identified by a stable id
//   - Separator: a visual divider
//   - Submenu: a labelled list of child items
//
// Hosts with native nested menus walk the tree directly; hosts without them
// present Flatten's output. Either way the user's choice is reported back by
// the action id, never by position.
//
// A command palette is a flat, ordered list of PaletteAction values. The
// backend's ordering is canonical; presentation filtering (Visible) works on
// a copy.
package menu
