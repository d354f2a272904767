package host

import (
	"github.com/dshills/codeshell/internal/keybind"
	"github.com/dshills/codeshell/internal/lang"
	"github.com/dshills/codeshell/internal/menu"
	"github.com/dshills/codeshell/internal/session"
)

// Presenter shows pending requests and resolves them through the session.
type Presenter interface {
	PresentMenu(item *session.Item, req *session.MenuRequest)
	PresentPalette(item *session.Item, req *session.PaletteRequest)
	PresentCompletion(item *session.Item, req *session.CompletionRequest)

	// Dismiss hides whatever is shown for item.
	Dismiss(item *session.Item)
}

// Row is one line of a presented list.
type Row struct {
	ID      string
	Label   string
	Hint    string
	Enabled bool
}

// HintFunc renders a keybinding for display next to a menu row.
type HintFunc func(binding string) string

// ShortcutHint returns the display label of a keybinding, or "" when it
// does not parse.
func ShortcutHint(binding string) string {
	sc, ok := keybind.Parse(binding)
	if !ok {
		return ""
	}
	return sc.Label()
}

// GlyphHint is ShortcutHint in symbolic form.
func GlyphHint(binding string) string {
	sc, ok := keybind.Parse(binding)
	if !ok {
		return ""
	}
	return sc.Glyphs()
}

func menuRows(entries []menu.Entry, hint HintFunc) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		label := e.Label
		for i := len(e.Path) - 1; i >= 0; i-- {
			label = e.Path[i] + " › " + label
		}
		rows = append(rows, Row{ID: e.ID, Label: label, Hint: hint(e.Keybinding), Enabled: e.Enabled})
	}
	return rows
}

func paletteRows(actions []menu.PaletteAction) []Row {
	rows := make([]Row, 0, len(actions))
	for _, a := range actions {
		rows = append(rows, Row{ID: a.ID, Label: a.DisplayLabel(), Enabled: a.Enabled})
	}
	return rows
}

func completionRows(items []lang.Completion) []Row {
	rows := make([]Row, 0, len(items))
	for _, c := range items {
		rows = append(rows, Row{Label: c.Label, Hint: c.Kind.String(), Enabled: true})
	}
	return rows
}

// ChooseFunc picks a row. It reports the chosen index, or false to dismiss.
type ChooseFunc func(title string, rows []Row) (int, bool)

// Picker presents every request as a flat list through Choose and resolves
// it immediately. It suits hosts without nested native menus.
type Picker struct {
	m      *session.Manager
	choose ChooseFunc
}

// NewPicker creates a picker resolving through m.
func NewPicker(m *session.Manager, choose ChooseFunc) *Picker {
	return &Picker{m: m, choose: choose}
}

func (p *Picker) pick(title string, rows []Row) (int, bool) {
	if p.choose == nil {
		return 0, false
	}
	i, ok := p.choose(title, rows)
	if !ok || i < 0 || i >= len(rows) {
		return 0, false
	}
	return i, true
}

// PresentMenu implements Presenter.
func (p *Picker) PresentMenu(item *session.Item, req *session.MenuRequest) {
	rows := menuRows(req.Entries(), ShortcutHint)
	if i, ok := p.pick("Context Menu", rows); ok {
		p.m.Bridge().ResolveContextMenu(item, req.ID, rows[i].ID)
		return
	}
	p.m.Bridge().DismissContextMenu(item, req.ID)
}

// PresentPalette implements Presenter.
func (p *Picker) PresentPalette(item *session.Item, req *session.PaletteRequest) {
	rows := paletteRows(req.Request.Visible("", 0))
	if i, ok := p.pick("Command Palette", rows); ok {
		p.m.Bridge().ResolvePalette(item, req.ID, rows[i].ID)
		return
	}
	p.m.Bridge().DismissPalette(item, req.ID)
}

// PresentCompletion implements Presenter.
func (p *Picker) PresentCompletion(item *session.Item, req *session.CompletionRequest) {
	if i, ok := p.pick("Completions", completionRows(req.Completions)); ok {
		p.m.Completions().AcceptCompletion(item, req.ID, i)
		return
	}
	p.m.Completions().CancelCompletion(item)
}

// Dismiss implements Presenter. A picker keeps nothing on screen.
func (p *Picker) Dismiss(*session.Item) {}
