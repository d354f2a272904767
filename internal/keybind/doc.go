// Package keybind parses the keybinding strings backends attach to menu
// actions so a host can show them next to the action label.
//
// Bindings arrive in two spellings:
//
//   - symbolic glyphs: "⌘K", "⌃⇧P", "⌥F5"
//   - textual names joined by "+": "Cmd+K", "Ctrl+Shift+P", "Alt+F5"
//
// The key token maps onto the tcell key the terminal host would receive for
// it, which makes a parsed Shortcut usable both for display and for matching
// incoming key events. Parsing never fails loudly: a binding that cannot be
// understood simply has no shortcut to show.
package keybind
