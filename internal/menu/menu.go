package menu

import "fmt"

// Item is one node of a context-menu tree. The set of implementations is
// closed: Action, Separator and Submenu.
type Item interface {
	menuItem()
}

// Action is an invocable menu entry.
type Action struct {
	// ID is the stable identifier reported back when the action is chosen.
	ID string

	// Label is the display text. When empty, a label is derived from ID.
	Label string

	// Keybinding is the display form of the action's shortcut, if any.
	Keybinding string

	// Enabled reports whether the action can be chosen.
	Enabled bool
}

// Separator divides groups of entries.
type Separator struct{}

// Submenu is a labelled group of child items.
type Submenu struct {
	Label string
	Items []Item
}

func (Action) menuItem()    {}
func (Separator) menuItem() {}
func (Submenu) menuItem()   {}

// DisplayLabel returns the action label or the one derived from its id.
func (a Action) DisplayLabel() string {
	if a.Label != "" {
		return a.Label
	}
	return FallbackLabel(a.ID)
}

// Context is the editor state a context menu was raised for.
type Context struct {
	Line         int
	Column       int
	SelectedText string
	Word         string
}

// Request is a context-menu request raised by a backend.
type Request struct {
	Items   []Item
	Context Context
}

// Empty reports whether the request has nothing to show once pruned.
func (r Request) Empty() bool {
	return len(Prune(r.Items)) == 0
}

// unknownItem reports a variant outside the closed set.
func unknownItem(it Item) string {
	return fmt.Sprintf("menu: unknown item variant %T", it)
}

// Prune returns a copy of items with empty submenus removed (recursively) and
// separators collapsed so none lead, trail, or repeat.
func Prune(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case Action:
			out = append(out, v)
		case Separator:
			if len(out) == 0 {
				continue
			}
			if _, prev := out[len(out)-1].(Separator); prev {
				continue
			}
			out = append(out, v)
		case Submenu:
			children := Prune(v.Items)
			if len(children) == 0 {
				continue
			}
			out = append(out, Submenu{Label: v.Label, Items: children})
		default:
			panic(unknownItem(it))
		}
	}
	if n := len(out); n > 0 {
		if _, last := out[n-1].(Separator); last {
			out = out[:n-1]
		}
	}
	return out
}

// Find returns the action with the given id, searching depth first.
func Find(items []Item, id string) (Action, bool) {
	for _, it := range items {
		switch v := it.(type) {
		case Action:
			if v.ID == id {
				return v, true
			}
		case Separator:
		case Submenu:
			if a, ok := Find(v.Items, id); ok {
				return a, true
			}
		default:
			panic(unknownItem(it))
		}
	}
	return Action{}, false
}

