package session

import (
	"reflect"
	"testing"

	"github.com/dshills/codeshell/internal/menu"
)

func TestContextMenuLastWriteWins(t *testing.T) {
	f := newFixture(map[string]string{"/a": ""})
	it := f.open("/a")
	b := f.backends["/a"]

	it.NotifyContextMenu(sampleMenu())
	it.NotifyContextMenu(menu.Request{Items: []menu.Item{
		menu.Action{ID: "edit.copy", Enabled: true},
		menu.Action{ID: "edit.selectAll", Enabled: true},
	}})

	if len(f.delegate.menus) != 2 {
		t.Fatalf("delegate saw %d requests, want 2", len(f.delegate.menus))
	}
	first, second := f.delegate.menus[0], f.delegate.menus[1]
	pending, ok := f.m.Bridge().PendingContextMenu(it)
	if !ok || pending != second {
		t.Fatal("pending request should be the second one")
	}

	if f.m.Bridge().ResolveContextMenu(it, first.ID, "edit.cut") {
		t.Error("superseded request dispatched")
	}
	if _, ok := f.m.Bridge().PendingContextMenu(it); !ok {
		t.Error("stale resolution cleared the pending request")
	}
	if !f.m.Bridge().ResolveContextMenu(it, second.ID, "edit.copy") {
		t.Error("current request not dispatched")
	}
	if !reflect.DeepEqual(b.actions, []string{"edit.copy"}) {
		t.Errorf("actions = %v", b.actions)
	}
	if _, ok := f.m.Bridge().PendingContextMenu(it); ok {
		t.Error("resolved request still pending")
	}
}

func TestContextMenuResolution(t *testing.T) {
	tests := []struct {
		name     string
		actionID string
		want     bool
	}{
		{"enabled top level", "edit.cut", true},
		{"inside submenu", "refactor.rename", true},
		{"disabled", "edit.paste", false},
		{"unknown", "edit.explode", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(map[string]string{"/a": ""})
			it := f.open("/a")
			it.NotifyContextMenu(sampleMenu())
			req := f.delegate.menus[0]

			if got := f.m.Bridge().ResolveContextMenu(it, req.ID, tt.actionID); got != tt.want {
				t.Errorf("Resolve = %v, want %v", got, tt.want)
			}
			if _, ok := f.m.Bridge().PendingContextMenu(it); ok {
				t.Error("request should be cleared")
			}
			if tt.want != (len(f.backends["/a"].actions) == 1) {
				t.Errorf("actions = %v", f.backends["/a"].actions)
			}
		})
	}
}

func TestContextMenuPruned(t *testing.T) {
	f := newFixture(map[string]string{"/a": ""})
	it := f.open("/a")

	it.NotifyContextMenu(menu.Request{Items: []menu.Item{
		menu.Separator{},
		menu.Action{ID: "a", Enabled: true},
		menu.Separator{},
		menu.Separator{},
		menu.Submenu{Label: "Empty"},
		menu.Action{ID: "b", Enabled: true},
		menu.Separator{},
	}})
	req := f.delegate.menus[0]
	want := []menu.Item{
		menu.Action{ID: "a", Enabled: true},
		menu.Separator{},
		menu.Action{ID: "b", Enabled: true},
	}
	if !reflect.DeepEqual(req.Request.Items, want) {
		t.Errorf("pruned = %#v", req.Request.Items)
	}
	if got := len(req.Entries()); got != 2 {
		t.Errorf("Entries() = %d, want 2", got)
	}

	it.NotifyContextMenu(menu.Request{Items: []menu.Item{menu.Separator{}, menu.Submenu{Label: "x"}}})
	if len(f.delegate.menus) != 1 {
		t.Error("empty menu reached the delegate")
	}
	if _, ok := f.m.Bridge().PendingContextMenu(it); ok {
		t.Error("empty menu should clear the pending request")
	}
}

func TestDismissContextMenu(t *testing.T) {
	f := newFixture(map[string]string{"/a": ""})
	it := f.open("/a")
	it.NotifyContextMenu(sampleMenu())
	req := f.delegate.menus[0]

	if f.m.Bridge().DismissContextMenu(it, "other") {
		t.Error("dismiss with wrong id succeeded")
	}
	if !f.m.Bridge().DismissContextMenu(it, req.ID) {
		t.Error("dismiss failed")
	}
	if f.m.Bridge().ResolveContextMenu(it, req.ID, "edit.cut") {
		t.Error("dismissed request dispatched")
	}
	if len(f.backends["/a"].actions) != 0 {
		t.Errorf("actions = %v", f.backends["/a"].actions)
	}
}

func TestPaletteLastWriteWins(t *testing.T) {
	f := newFixture(map[string]string{"/a": ""})
	it := f.open("/a")
	b := f.backends["/a"]

	it.NotifyCommandPalette(menu.PaletteRequest{Actions: []menu.PaletteAction{
		{ID: "editor.action.formatDocument", Enabled: true},
	}})
	it.NotifyCommandPalette(menu.PaletteRequest{Actions: []menu.PaletteAction{
		{ID: "editor.action.commentLine", Enabled: true},
		{ID: "editor.action.formatDocument", Enabled: false},
	}})

	first, second := f.delegate.palette[0], f.delegate.palette[1]
	if second.Request.Total != 2 {
		t.Errorf("Total = %d, want 2", second.Request.Total)
	}
	if f.m.Bridge().ResolvePalette(it, first.ID, "editor.action.formatDocument") {
		t.Error("superseded palette dispatched")
	}
	if f.m.Bridge().ResolvePalette(it, second.ID, "editor.action.formatDocument") {
		t.Error("disabled palette action dispatched")
	}
	if len(b.actions) != 0 {
		t.Errorf("actions = %v", b.actions)
	}
	if _, ok := f.m.Bridge().PendingPalette(it); ok {
		t.Error("resolved palette still pending")
	}

	it.NotifyCommandPalette(menu.PaletteRequest{Actions: []menu.PaletteAction{
		{ID: "editor.action.commentLine", Enabled: true},
	}})
	third := f.delegate.palette[2]
	if !f.m.Bridge().ResolvePalette(it, third.ID, "editor.action.commentLine") {
		t.Error("palette action not dispatched")
	}
	if !reflect.DeepEqual(b.actions, []string{"editor.action.commentLine"}) {
		t.Errorf("actions = %v", b.actions)
	}
	if f.m.Bridge().DismissPalette(it, third.ID) {
		t.Error("dismissing a resolved palette succeeded")
	}
}
