package session

import (
	"sort"

	"github.com/google/uuid"
)

// Delegate is implemented by the host to react to item events. Every method
// is called on the UI goroutine.
type Delegate interface {
	// Started is called once when a backend has finished attaching.
	Started(item *Item, surface Surface)

	// TextChanged is called on every content change. It runs per keystroke
	// and must not block.
	TextChanged(item *Item, surface Surface)

	// GutterTapped is called when the user taps the gutter at line.
	GutterTapped(item *Item, surface Surface, line int)

	// Save persists contents, to newPath when it is not empty.
	Save(item *Item, contents, newPath string) error

	// Closing is called before the item is removed.
	Closing(item *Item)

	// Lookup is a go-to-definition or hover trigger.
	Lookup(item *Item, surface Surface, pos Position, word string)

	// ContextMenuRequested asks the host to present req natively and resolve
	// it through the bridge.
	ContextMenuRequested(item *Item, surface Surface, req *MenuRequest)

	// CommandPaletteRequested asks the host to present req and resolve it
	// through the bridge.
	CommandPaletteRequested(item *Item, surface Surface, req *PaletteRequest)
}

// BaseDelegate implements Delegate with default behavior. Hosts embed it and
// override what they need.
type BaseDelegate struct{}

// Started does nothing.
func (BaseDelegate) Started(*Item, Surface) {}

// TextChanged does nothing.
func (BaseDelegate) TextChanged(*Item, Surface) {}

// GutterTapped toggles the breakpoint on line.
func (BaseDelegate) GutterTapped(item *Item, _ Surface, line int) {
	item.ToggleBreakpoint(line)
}

// Save reports ErrNoSaveHandler.
func (BaseDelegate) Save(*Item, string, string) error { return ErrNoSaveHandler }

// Closing does nothing.
func (BaseDelegate) Closing(*Item) {}

// Lookup does nothing.
func (BaseDelegate) Lookup(*Item, Surface, Position, string) {}

// ContextMenuRequested does nothing; the request stays pending.
func (BaseDelegate) ContextMenuRequested(*Item, Surface, *MenuRequest) {}

// CommandPaletteRequested does nothing; the request stays pending.
func (BaseDelegate) CommandPaletteRequested(*Item, Surface, *PaletteRequest) {}

// DelegateHandle is a non-owning reference to a registered delegate.
type DelegateHandle string

// NoDelegate is the zero handle.
const NoDelegate DelegateHandle = ""

// DelegateRegistry resolves delegate handles. Items store handles only, so a
// delegate's lifetime is governed by its registration, not by the items that
// refer to it.
type DelegateRegistry struct {
	delegates map[DelegateHandle]Delegate
}

// NewDelegateRegistry creates an empty registry.
func NewDelegateRegistry() *DelegateRegistry {
	return &DelegateRegistry{delegates: make(map[DelegateHandle]Delegate)}
}

// Register adds d and returns its handle. A nil delegate yields NoDelegate.
func (r *DelegateRegistry) Register(d Delegate) DelegateHandle {
	if d == nil {
		return NoDelegate
	}
	h := DelegateHandle(uuid.NewString())
	r.delegates[h] = d
	return h
}

// Unregister removes the delegate behind h.
func (r *DelegateRegistry) Unregister(h DelegateHandle) bool {
	if _, ok := r.delegates[h]; !ok {
		return false
	}
	delete(r.delegates, h)
	return true
}

// Resolve returns the delegate behind h.
func (r *DelegateRegistry) Resolve(h DelegateHandle) (Delegate, bool) {
	if h == NoDelegate {
		return nil, false
	}
	d, ok := r.delegates[h]
	return d, ok
}

// Handles returns the registered handles in sorted order.
func (r *DelegateRegistry) Handles() []DelegateHandle {
	out := make([]DelegateHandle, 0, len(r.delegates))
	for h := range r.delegates {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of registered delegates.
func (r *DelegateRegistry) Len() int {
	return len(r.delegates)
}
