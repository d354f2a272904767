// Package host provides the application's session delegate.
//
// Host reacts to item events: it decides when to open completions (Trigger),
// gathers candidates (CompletionSource), validates text (Validator), saves
// through hostio, resolves go-to-definition through the language server and
// hands context menus, palettes and completion lists to a Presenter.
package host
