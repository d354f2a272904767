package menu

// Entry is one action of a flattened menu tree.
type Entry struct {
	ID         string
	Label      string
	Keybinding string
	Enabled    bool

	// Path holds the labels of the submenus enclosing the action.
	Path []string
}

// Flatten walks the tree depth first and returns its actions in order.
// Separators are skipped and submenus contribute their children.
func Flatten(items []Item) []Entry {
	var out []Entry
	flatten(items, nil, &out)
	return out
}

func flatten(items []Item, path []string, out *[]Entry) {
	for _, it := range items {
		switch v := it.(type) {
		case Action:
			*out = append(*out, Entry{
				ID:         v.ID,
				Label:      v.DisplayLabel(),
				Keybinding: v.Keybinding,
				Enabled:    v.Enabled,
				Path:       path,
			})
		case Separator:
		case Submenu:
			sub := make([]string, len(path), len(path)+1)
			copy(sub, path)
			flatten(v.Items, append(sub, v.Label), out)
		default:
			panic(unknownItem(it))
		}
	}
}
