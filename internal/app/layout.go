package app

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/codeshell/internal/session"
)

var (
	tabStyle       = tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorSilver)
	activeTabStyle = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite).Bold(true)
	statusStyle    = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	noteStyle      = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// editorArea is the screen between the tab bar and the status line.
func (a *Application) editorArea() session.Rect {
	if a.screen == nil {
		return session.Rect{}
	}
	w, h := a.screen.Size()
	if h < 3 {
		return session.Rect{Width: w, Height: h}
	}
	return session.Rect{X: 0, Y: 1, Width: w, Height: h - 2}
}

// layout resizes every editor to the current screen.
func (a *Application) layout() {
	area := a.editorArea()
	for _, e := range a.editors {
		e.SetArea(area)
	}
	a.showActive()
}

// showActive makes the active item's editor the visible one. Web items get
// a note pointing at the browser instead.
func (a *Application) showActive() {
	if a.screen == nil {
		return
	}
	active := a.session.Active()
	for item, e := range a.editors {
		if item != active {
			e.Show(false)
		}
	}
	if e, ok := a.editors[active]; ok {
		e.Show(true)
		return
	}

	area := a.editorArea()
	clearRect(a.screen, area)
	if active == nil {
		drawText(a.screen, area.X+1, area.Y+1, area.Width-2, "No documents open. Ctrl+Q quits.", noteStyle)
		return
	}
	note := "Open in a browser: " + a.webURL(active)
	drawText(a.screen, area.X+1, area.Y+1, area.Width-2, note, noteStyle)
}

func (a *Application) webURL(item *session.Item) string {
	if a.web == nil || a.web.Addr() == "" {
		return "(web backend not serving)"
	}
	return a.web.URL(item)
}

// redraw repaints the chrome, the active editor and the overlay.
func (a *Application) redraw() {
	if a.screen == nil {
		return
	}
	a.showActive()
	a.drawChrome()
	if a.overlay != nil {
		a.overlay.Draw()
	}
	a.screen.Show()
}

func (a *Application) setMessage(msg string) {
	a.message = msg
}

// tabSpans returns the x range of each tab in the tab bar.
func (a *Application) tabSpans() []int {
	x := 0
	var spans []int
	for _, it := range a.session.Items() {
		spans = append(spans, x)
		x += uniseg.StringWidth(tabLabel(it)) + 1
	}
	return append(spans, x)
}

func tabLabel(it *session.Item) string {
	label := " " + it.Title()
	if len(it.Validation().Errors) > 0 {
		label += " ●"
	}
	return label + " "
}

func (a *Application) clickTab(ev *tcell.EventMouse) {
	x, _ := ev.Position()
	spans := a.tabSpans()
	items := a.session.Items()
	for i := range items {
		if x >= spans[i] && x < spans[i+1]-1 {
			_ = a.session.SetActive(items[i])
			return
		}
	}
}

// drawChrome draws the tab bar and the status line.
func (a *Application) drawChrome() {
	if a.screen == nil {
		return
	}
	w, h := a.screen.Size()
	if h < 3 {
		return
	}
	clearRect(a.screen, session.Rect{Width: w, Height: 1})
	active := a.session.Active()
	spans := a.tabSpans()
	for i, it := range a.session.Items() {
		style := tabStyle
		if it == active {
			style = activeTabStyle
		}
		drawText(a.screen, spans[i], 0, w-spans[i], tabLabel(it), style)
	}

	status := session.Rect{Y: h - 1, Width: w, Height: 1}
	clearRectStyle(a.screen, status, statusStyle)
	drawText(a.screen, 1, h-1, w-2, a.statusLine(active), statusStyle)
}

func (a *Application) statusLine(active *session.Item) string {
	var parts []string
	if active != nil {
		v := active.Validation()
		path := active.Path()
		if active.Generated() {
			path = active.Title()
		}
		parts = append(parts, path, active.Backend().Kind().String())
		parts = append(parts, fmt.Sprintf("E:%d W:%d", len(v.Errors), len(v.Warnings)))
		if line, ok := active.CurrentLine(); ok {
			parts = append(parts, fmt.Sprintf("at %d", line+1))
		}
	}
	if a.lsp != nil {
		parts = append(parts, "lsp "+a.lsp.Status().String())
	}
	if addr := a.WebAddr(); addr != "" {
		parts = append(parts, "web "+addr)
	}
	if a.message != "" {
		parts = append(parts, a.message)
	}
	return strings.Join(parts, " │ ")
}

func clearRect(s tcell.Screen, r session.Rect) {
	clearRectStyle(s, r, tcell.StyleDefault)
}

func clearRectStyle(s tcell.Screen, r session.Rect, style tcell.Style) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			s.SetContent(x, y, ' ', nil, style)
		}
	}
}

// drawText draws text at x, y, clipped to width cells.
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := 0
	state := -1
	var cluster string
	var w int
	for text != "" {
		cluster, text, w, state = uniseg.FirstGraphemeClusterInString(text, state)
		if w < 1 {
			w = 1
		}
		if col+w > width {
			return
		}
		runes := []rune(cluster)
		s.SetContent(x+col, y, runes[0], runes[1:], style)
		col += w
	}
}
