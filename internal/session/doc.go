// Package session coordinates the documents open in an editing surface.
//
// The package is built around four pieces:
//
//   - Item: one open document's state (path, breakpoints, execution line,
//     pending requests, last validation result, delegate handle)
//   - Manager: the ordered set of open items, the active item, global display
//     flags and backend selection
//   - Bridge: per-item arbitration of context-menu and command-palette
//     requests raised by backends that cannot draw native UI
//   - Completions: the single pending completion popover and the latest
//     validation snapshot of each item
//
// Backends implement Backend (and therefore Surface); hosts implement
// Delegate. The session depends on nothing else from either side, which lets
// a terminal renderer and a browser editor behave identically to the rest of
// the application.
//
// # Threading
//
// Nothing in this package locks. All calls, including the Notify methods
// backends use to raise events, must happen on one goroutine; the host runs
// them on a uiloop.Loop and backends with their own event loop post onto it.
//
// # Delegates
//
// Items refer to their delegate through a DelegateHandle resolved in the
// manager's DelegateRegistry. Unregistering a delegate leaves its items
// without one; their callbacks then do nothing.
//
// # Closing
//
// Close notifies the delegate first, while the item and its pending requests
// are still intact, then clears every pending request, detaches the backend
// and removes the item.
package session
