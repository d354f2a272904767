package session

import (
	"sort"

	"github.com/google/uuid"

	"github.com/dshills/codeshell/internal/lang"
	"github.com/dshills/codeshell/internal/menu"
)

// Item is the session state of one open document. The text itself belongs to
// the item's backend; the item never edits it.
type Item struct {
	id        string
	path      string
	title     string
	generated bool
	content   string // generated items only, for Reload
	anchor    string

	breakpoints map[int]struct{}
	currentLine int
	hasCurrent  bool

	delegate DelegateHandle
	backend  Backend

	pendingCompletion *CompletionRequest
	pendingMenu       *MenuRequest
	pendingPalette    *PaletteRequest
	validation        lang.ValidationResult

	session *Manager
	started bool
	closing bool
	closed  bool
}

func newItem(m *Manager, path, title string) *Item {
	return &Item{
		id:          uuid.NewString(),
		path:        path,
		title:       title,
		breakpoints: make(map[int]struct{}),
		session:     m,
	}
}

// ID returns the item's unique id. Web backends use it to route connections.
func (it *Item) ID() string { return it.id }

// Path returns the document path or, for generated content, its identifier.
func (it *Item) Path() string { return it.path }

// Title returns the tab title.
func (it *Item) Title() string { return it.title }

// Generated reports whether the item shows non-file content.
func (it *Item) Generated() bool { return it.generated }

// Anchor returns the scroll anchor of generated content.
func (it *Item) Anchor() string { return it.anchor }

// Delegate returns the item's delegate handle.
func (it *Item) Delegate() DelegateHandle { return it.delegate }

// Backend returns the attached backend, nil once closed.
func (it *Item) Backend() Backend { return it.backend }

// Session returns the manager that owns the item.
func (it *Item) Session() *Manager { return it.session }

// Closed reports whether the item has been closed.
func (it *Item) Closed() bool { return it.closed }

// SetDelegate rebinds the item to another registered delegate.
func (it *Item) SetDelegate(h DelegateHandle) { it.delegate = h }

// Breakpoints returns the breakpoint lines in ascending order.
func (it *Item) Breakpoints() []int {
	out := make([]int, 0, len(it.breakpoints))
	for line := range it.breakpoints {
		out = append(out, line)
	}
	sort.Ints(out)
	return out
}

// HasBreakpoint reports whether line carries a breakpoint.
func (it *Item) HasBreakpoint(line int) bool {
	_, ok := it.breakpoints[line]
	return ok
}

// ToggleBreakpoint adds or removes the breakpoint on line and reports
// whether the line now has one. Toggling twice restores the original set.
func (it *Item) ToggleBreakpoint(line int) bool {
	if line < 0 || it.closed {
		return false
	}
	_, had := it.breakpoints[line]
	if had {
		delete(it.breakpoints, line)
	} else {
		it.breakpoints[line] = struct{}{}
	}
	if it.backend != nil {
		it.backend.SetBreakpoints(it.Breakpoints())
	}
	it.session.publish(Change{Kind: ChangeBreakpoints, Item: it})
	return !had
}

func (it *Item) seedBreakpoints(lines []int) {
	for _, line := range lines {
		if line >= 0 {
			it.breakpoints[line] = struct{}{}
		}
	}
}

// CurrentLine returns the execution-position line, if one is set.
func (it *Item) CurrentLine() (int, bool) {
	return it.currentLine, it.hasCurrent
}

// SetAnchor changes the scroll anchor and asks the backend to scroll to it.
func (it *Item) SetAnchor(anchor string) {
	if it.closed {
		return
	}
	it.anchor = anchor
	if it.backend != nil && anchor != "" {
		it.backend.ScrollTo(anchor)
	}
}

// Validation returns the last validation result.
func (it *Item) Validation() lang.ValidationResult {
	return it.validation
}

func (it *Item) resolveDelegate() Delegate {
	if it.session == nil {
		return nil
	}
	d, _ := it.session.delegates.Resolve(it.delegate)
	return d
}

func (it *Item) live() bool {
	return !it.closed && it.backend != nil
}

// NotifyStarted is called by the backend once it has attached. Only the
// first call reaches the delegate.
func (it *Item) NotifyStarted() {
	if !it.live() || it.started {
		return
	}
	it.started = true
	if d := it.resolveDelegate(); d != nil {
		d.Started(it, it.backend)
	}
}

// NotifyTextChanged is called by the backend after every content change.
func (it *Item) NotifyTextChanged() {
	if !it.live() {
		return
	}
	if d := it.resolveDelegate(); d != nil {
		d.TextChanged(it, it.backend)
	}
}

// NotifyGutterTapped is called by the backend when the gutter is tapped.
func (it *Item) NotifyGutterTapped(line int) {
	if !it.live() {
		return
	}
	if d := it.resolveDelegate(); d != nil {
		d.GutterTapped(it, it.backend, line)
	}
}

// NotifyLookup is called by the backend for go-to-definition or hover.
func (it *Item) NotifyLookup(pos Position, word string) {
	if !it.live() {
		return
	}
	if d := it.resolveDelegate(); d != nil {
		d.Lookup(it, it.backend, pos, word)
	}
}

// NotifyContextMenu is called by a backend that wants the host to show a
// context menu.
func (it *Item) NotifyContextMenu(req menu.Request) {
	if !it.live() {
		return
	}
	it.session.bridge.raiseContextMenu(it, it.backend, req)
}

// NotifyCommandPalette is called by a backend that wants the host to show
// a command palette.
func (it *Item) NotifyCommandPalette(req menu.PaletteRequest) {
	if !it.live() {
		return
	}
	it.session.bridge.raisePalette(it, it.backend, req)
}

// NotifySave is called by a backend when the user asks to save.
func (it *Item) NotifySave(newPath string) error {
	if !it.live() {
		return ErrNotOpen
	}
	return it.session.Save(it, newPath)
}
