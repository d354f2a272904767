package host

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/codeshell/internal/session"
)

const overlayMaxRows = 10

type overlayKind uint8

const (
	overlayMenu overlayKind = iota + 1
	overlayPalette
	overlayCompletion
)

// OverlayStyles are the styles of the overlay list.
type OverlayStyles struct {
	Normal   tcell.Style
	Selected tcell.Style
	Disabled tcell.Style
	Hint     tcell.Style
}

// DefaultOverlayStyles returns a light popup on dark terminals.
func DefaultOverlayStyles() OverlayStyles {
	base := tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorWhite)
	return OverlayStyles{
		Normal:   base,
		Selected: base.Reverse(true),
		Disabled: base.Foreground(tcell.ColorGray),
		Hint:     base.Foreground(tcell.ColorSilver),
	}
}

// Overlay draws requests as a popup list on a tcell screen. It is driven
// by HandleKey and drawn by Draw after the editor renders.
type Overlay struct {
	screen tcell.Screen
	m      *session.Manager
	styles OverlayStyles
	hint   HintFunc

	kind    overlayKind
	item    *session.Item
	id      session.RequestID
	palette *session.PaletteRequest
	rows    []Row
	index   int
	scroll  int
	query   string
	at      session.Rect
}

// NewOverlay creates an overlay drawing on screen and resolving through m.
func NewOverlay(screen tcell.Screen, m *session.Manager) *Overlay {
	return &Overlay{screen: screen, m: m, styles: DefaultOverlayStyles(), hint: ShortcutHint}
}

// UseGlyphHints switches menu shortcuts between symbols and names.
func (o *Overlay) UseGlyphHints(on bool) {
	if on {
		o.hint = GlyphHint
	} else {
		o.hint = ShortcutHint
	}
}

// Active reports whether the overlay is showing.
func (o *Overlay) Active() bool { return o.kind != 0 }

// Rows returns the rows on display.
func (o *Overlay) Rows() []Row { return o.rows }

// Selected returns the highlighted row index.
func (o *Overlay) Selected() int { return o.index }

func caretRect(s session.Surface) session.Rect {
	if s == nil {
		return session.Rect{}
	}
	sel := s.Selection()
	return s.RectFor(session.Range{Start: sel.End, End: sel.End})
}

func (o *Overlay) show(kind overlayKind, item *session.Item, id session.RequestID, rows []Row, at session.Rect) {
	o.kind, o.item, o.id, o.rows, o.at = kind, item, id, rows, at
	o.index, o.scroll = 0, 0
	o.selectFrom(0, 1)
	o.Draw()
}

// PresentMenu implements Presenter.
func (o *Overlay) PresentMenu(item *session.Item, req *session.MenuRequest) {
	o.palette = nil
	o.show(overlayMenu, item, req.ID, menuRows(req.Entries(), o.hint), caretRect(req.Surface()))
}

// PresentPalette implements Presenter.
func (o *Overlay) PresentPalette(item *session.Item, req *session.PaletteRequest) {
	o.palette = req
	o.query = ""
	w, _ := o.screen.Size()
	at := session.Rect{X: w / 4, Y: 0, Height: 1}
	o.show(overlayPalette, item, req.ID, paletteRows(req.Request.Visible("", 0)), at)
}

// PresentCompletion implements Presenter.
func (o *Overlay) PresentCompletion(item *session.Item, req *session.CompletionRequest) {
	o.palette = nil
	o.show(overlayCompletion, item, req.ID, completionRows(req.Completions), req.Anchor)
}

// Dismiss implements Presenter.
func (o *Overlay) Dismiss(item *session.Item) {
	if o.item == item {
		o.hide()
	}
}

// Sync hides the overlay once its request is no longer pending.
func (o *Overlay) Sync() {
	if !o.Active() {
		return
	}
	pending := false
	switch o.kind {
	case overlayMenu:
		req, ok := o.m.Bridge().PendingContextMenu(o.item)
		pending = ok && req.ID == o.id
	case overlayPalette:
		req, ok := o.m.Bridge().PendingPalette(o.item)
		pending = ok && req.ID == o.id
	case overlayCompletion:
		req, ok := o.m.Completions().PendingCompletion(o.item)
		pending = ok && req.ID == o.id
	}
	if !pending {
		o.hide()
	}
}

func (o *Overlay) hide() {
	o.kind, o.item, o.id, o.rows, o.palette = 0, nil, "", nil, nil
	o.query = ""
}

// HandleKey drives the list. Completion lists let unhandled keys through
// to the editor; menus and the palette keep every key.
func (o *Overlay) HandleKey(ev *tcell.EventKey) bool {
	if !o.Active() {
		return false
	}
	switch ev.Key() {
	case tcell.KeyEscape:
		o.cancel()
	case tcell.KeyUp:
		o.selectFrom(o.index-1, -1)
	case tcell.KeyDown:
		o.selectFrom(o.index+1, 1)
	case tcell.KeyEnter:
		o.choose()
	case tcell.KeyTab:
		if o.kind != overlayCompletion {
			return true
		}
		o.choose()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if o.kind == overlayCompletion {
			return false
		}
		if o.kind == overlayPalette && o.query != "" {
			q := []rune(o.query)
			o.filter(string(q[:len(q)-1]))
		}
	case tcell.KeyRune:
		switch o.kind {
		case overlayCompletion:
			return false
		case overlayPalette:
			o.filter(o.query + string(ev.Rune()))
		}
	default:
		if o.kind == overlayCompletion {
			return false
		}
	}
	o.Draw()
	return true
}

func (o *Overlay) filter(query string) {
	o.query = query
	o.rows = paletteRows(o.palette.Request.Visible(query, 0))
	o.index, o.scroll = 0, 0
	o.selectFrom(0, 1)
}

// selectFrom moves the highlight to the first enabled row from i in
// direction dir, keeping the current one when none is found.
func (o *Overlay) selectFrom(i, dir int) {
	for ; i >= 0 && i < len(o.rows); i += dir {
		if o.rows[i].Enabled {
			o.index = i
			break
		}
	}
	if o.index < o.scroll {
		o.scroll = o.index
	}
	if o.index >= o.scroll+overlayMaxRows {
		o.scroll = o.index - overlayMaxRows + 1
	}
}

func (o *Overlay) choose() {
	kind, item, id := o.kind, o.item, o.id
	if o.index < 0 || o.index >= len(o.rows) || !o.rows[o.index].Enabled {
		return
	}
	row, index := o.rows[o.index], o.index
	o.hide()
	switch kind {
	case overlayMenu:
		o.m.Bridge().ResolveContextMenu(item, id, row.ID)
	case overlayPalette:
		o.m.Bridge().ResolvePalette(item, id, row.ID)
	case overlayCompletion:
		o.m.Completions().AcceptCompletion(item, id, index)
	}
}

func (o *Overlay) cancel() {
	kind, item, id := o.kind, o.item, o.id
	o.hide()
	switch kind {
	case overlayMenu:
		o.m.Bridge().DismissContextMenu(item, id)
	case overlayPalette:
		o.m.Bridge().DismissPalette(item, id)
	case overlayCompletion:
		o.m.Completions().CancelCompletion(item)
	}
}

// Draw paints the list below its anchor.
func (o *Overlay) Draw() {
	if !o.Active() || o.screen == nil {
		return
	}
	sw, sh := o.screen.Size()
	width := 12
	for _, r := range o.rows {
		if w := uniseg.StringWidth(r.Label) + uniseg.StringWidth(r.Hint) + 4; w > width {
			width = w
		}
	}
	if width > sw {
		width = sw
	}

	lines := len(o.rows) - o.scroll
	if lines > overlayMaxRows {
		lines = overlayMaxRows
	}
	header := 0
	if o.kind == overlayPalette {
		header = 1
	}
	x, y := o.at.X, o.at.Y+o.at.Height
	if y+lines+header > sh {
		y = o.at.Y - lines - header
	}
	if x+width > sw {
		x = sw - width
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	if header == 1 {
		o.drawRow(x, y, width, "> "+o.query, "", o.styles.Selected)
		y++
	}
	for i := 0; i < lines; i++ {
		idx := o.scroll + i
		r := o.rows[idx]
		style := o.styles.Normal
		switch {
		case idx == o.index && r.Enabled:
			style = o.styles.Selected
		case !r.Enabled:
			style = o.styles.Disabled
		}
		o.drawRow(x, y+i, width, " "+r.Label, r.Hint, style)
	}
	o.screen.Show()
}

func (o *Overlay) drawRow(x, y, width int, label, hint string, style tcell.Style) {
	col := 0
	put := func(s string, st tcell.Style) {
		state := -1
		var cluster string
		var w int
		for s != "" && col < width {
			cluster, s, w, state = uniseg.FirstGraphemeClusterInString(s, state)
			runes := []rune(cluster)
			o.screen.SetContent(x+col, y, runes[0], runes[1:], st)
			if w < 1 {
				w = 1
			}
			col += w
		}
	}
	put(label, style)
	hintStart := width - uniseg.StringWidth(hint) - 1
	for col < hintStart {
		o.screen.SetContent(x+col, y, ' ', nil, style)
		col++
	}
	if hint != "" {
		hs := o.styles.Hint
		if style == o.styles.Selected {
			hs = style
		}
		put(hint, hs)
	}
	for col < width {
		o.screen.SetContent(x+col, y, ' ', nil, style)
		col++
	}
}
