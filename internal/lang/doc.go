// Package lang holds the value types exchanged between editor backends, host
// delegates and the session coordinator: completion candidates, diagnostics
// and validation snapshots.
//
// Values in this package are treated as immutable once handed to the
// session; coordinators store clones so a caller reusing its slices cannot
// alter recorded state.
package lang
