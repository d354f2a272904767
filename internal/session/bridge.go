package session

import (
	"github.com/google/uuid"

	"github.com/dshills/codeshell/internal/logging"
	"github.com/dshills/codeshell/internal/menu"
)

// RequestID identifies one pending request. A resolution carrying an older
// id than the pending one refers to a superseded request.
type RequestID string

func newRequestID() RequestID {
	return RequestID(uuid.NewString())
}

// MenuRequest is a pending context-menu request.
type MenuRequest struct {
	ID      RequestID
	Request menu.Request

	surface Surface
}

// Surface returns the surface the request was raised from.
func (r *MenuRequest) Surface() Surface { return r.surface }

// Entries returns the flattened actions for hosts without nested menus.
func (r *MenuRequest) Entries() []menu.Entry {
	return menu.Flatten(r.Request.Items)
}

// PaletteRequest is a pending command-palette request.
type PaletteRequest struct {
	ID      RequestID
	Request menu.PaletteRequest

	surface Surface
}

// Surface returns the surface the request was raised from.
func (r *PaletteRequest) Surface() Surface { return r.surface }

// Bridge arbitrates context-menu and palette requests raised by backends.
// Each item holds at most one pending request of each kind; a newer request
// silently replaces the older one.
type Bridge struct {
	m   *Manager
	log *logging.Logger
}

func newBridge(m *Manager, log *logging.Logger) *Bridge {
	return &Bridge{m: m, log: log.Component("bridge")}
}

func (b *Bridge) raiseContextMenu(item *Item, surface Surface, req menu.Request) {
	if req.Empty() {
		if item.pendingMenu != nil {
			item.pendingMenu = nil
			b.m.publish(Change{Kind: ChangeContextMenu, Item: item})
		}
		b.log.Debug("empty context menu ignored", "item", item.path)
		return
	}
	pruned := menu.Request{Items: menu.Prune(req.Items), Context: req.Context}
	pending := &MenuRequest{ID: newRequestID(), Request: pruned, surface: surface}
	item.pendingMenu = pending
	b.m.publish(Change{Kind: ChangeContextMenu, Item: item})
	if d := item.resolveDelegate(); d != nil {
		d.ContextMenuRequested(item, surface, pending)
	}
}

func (b *Bridge) raisePalette(item *Item, surface Surface, req menu.PaletteRequest) {
	actions := make([]menu.PaletteAction, len(req.Actions))
	copy(actions, req.Actions)
	total := req.Total
	if total < len(actions) {
		total = len(actions)
	}
	pending := &PaletteRequest{
		ID:      newRequestID(),
		Request: menu.PaletteRequest{Actions: actions, Total: total},
		surface: surface,
	}
	item.pendingPalette = pending
	b.m.publish(Change{Kind: ChangePalette, Item: item})
	if d := item.resolveDelegate(); d != nil {
		d.CommandPaletteRequested(item, surface, pending)
	}
}

// PendingContextMenu returns the item's pending context-menu request.
func (b *Bridge) PendingContextMenu(item *Item) (*MenuRequest, bool) {
	if item == nil || item.pendingMenu == nil {
		return nil, false
	}
	return item.pendingMenu, true
}

// PendingPalette returns the item's pending palette request.
func (b *Bridge) PendingPalette(item *Item) (*PaletteRequest, bool) {
	if item == nil || item.pendingPalette == nil {
		return nil, false
	}
	return item.pendingPalette, true
}

// ResolveContextMenu completes the pending context menu with the chosen
// action. A stale id does nothing. The request is cleared either way, and
// the action runs on the originating surface only when it exists in the
// request and is enabled. It reports whether an action was dispatched.
func (b *Bridge) ResolveContextMenu(item *Item, id RequestID, actionID string) bool {
	pending, ok := b.PendingContextMenu(item)
	if !ok || pending.ID != id {
		b.log.Debug("stale context menu resolution", "request", string(id))
		return false
	}
	item.pendingMenu = nil
	b.m.publish(Change{Kind: ChangeContextMenu, Item: item})

	action, found := menu.Find(pending.Request.Items, actionID)
	if !found || !action.Enabled || pending.surface == nil {
		return false
	}
	pending.surface.RunAction(actionID)
	return true
}

// ResolvePalette completes the pending palette request with the chosen
// action, under the same rules as ResolveContextMenu.
func (b *Bridge) ResolvePalette(item *Item, id RequestID, actionID string) bool {
	pending, ok := b.PendingPalette(item)
	if !ok || pending.ID != id {
		b.log.Debug("stale palette resolution", "request", string(id))
		return false
	}
	item.pendingPalette = nil
	b.m.publish(Change{Kind: ChangePalette, Item: item})

	action, found := pending.Request.Lookup(actionID)
	if !found || !action.Enabled || pending.surface == nil {
		return false
	}
	pending.surface.RunAction(actionID)
	return true
}

// DismissContextMenu clears the pending context menu without dispatching.
func (b *Bridge) DismissContextMenu(item *Item, id RequestID) bool {
	pending, ok := b.PendingContextMenu(item)
	if !ok || pending.ID != id {
		return false
	}
	item.pendingMenu = nil
	b.m.publish(Change{Kind: ChangeContextMenu, Item: item})
	return true
}

// DismissPalette clears the pending palette request without dispatching.
func (b *Bridge) DismissPalette(item *Item, id RequestID) bool {
	pending, ok := b.PendingPalette(item)
	if !ok || pending.ID != id {
		return false
	}
	item.pendingPalette = nil
	b.m.publish(Change{Kind: ChangePalette, Item: item})
	return true
}
