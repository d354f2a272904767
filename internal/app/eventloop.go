package app

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/codeshell/internal/backend/native"
	"github.com/dshills/codeshell/internal/keybind"
	"github.com/dshills/codeshell/internal/session"
)

const lineHeightStep = 0.25

// globalKey is a shortcut handled before the active editor sees the key.
type globalKey struct {
	shortcut keybind.Shortcut
	run      func(a *Application)
}

var globalKeyTable = []struct {
	binding string
	run     func(a *Application)
}{
	{"Ctrl+Q", func(a *Application) { a.quit() }},
	{"Ctrl+W", func(a *Application) { a.closeActive() }},
	{"Ctrl+PgDn", func(a *Application) { a.session.Next() }},
	{"Ctrl+PgUp", func(a *Application) { a.session.Previous() }},
	{"Alt+L", func(a *Application) { a.session.ToggleDisplayFlag(session.FlagShowLineNumbers) }},
	{"Alt+T", func(a *Application) { a.session.ToggleDisplayFlag(session.FlagShowTabs) }},
	{"Alt+W", func(a *Application) { a.session.ToggleDisplayFlag(session.FlagShowSpaces) }},
	{"Alt+=", func(a *Application) { a.adjustLineHeight(lineHeightStep) }},
	{"Alt+-", func(a *Application) { a.adjustLineHeight(-lineHeightStep) }},
	{"F5", func(a *Application) { a.reloadActive() }},
}

func globalKeys() []globalKey {
	keys := make([]globalKey, 0, len(globalKeyTable))
	for _, k := range globalKeyTable {
		sc, ok := keybind.Parse(k.binding)
		if !ok {
			continue
		}
		keys = append(keys, globalKey{shortcut: sc, run: k.run})
	}
	return keys
}

// pollEvents forwards terminal events to the loop until the screen is
// finalized.
func (a *Application) pollEvents() {
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		if !a.loop.Post(func() { a.handleEvent(ev) }) {
			select {
			case <-a.loop.Done():
				return
			default:
				a.metrics.RecordInputDropped()
			}
		}
	}
}

// handleEvent processes one terminal event on the loop.
func (a *Application) handleEvent(ev tcell.Event) {
	start := time.Now()
	defer func() { a.metrics.RecordInput(time.Since(start)) }()

	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.layout()
	case *tcell.EventKey:
		a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	}
	a.drawChrome()
	if a.overlay != nil {
		a.overlay.Draw()
	}
	a.screen.Show()
}

func (a *Application) handleKey(ev *tcell.EventKey) {
	if a.overlay != nil && a.overlay.HandleKey(ev) {
		return
	}
	for _, k := range a.keys {
		if k.shortcut.Matches(ev) {
			a.message = ""
			k.run(a)
			return
		}
	}
	if e := a.activeEditor(); e != nil {
		e.HandleKey(ev)
	}
}

func (a *Application) handleMouse(ev *tcell.EventMouse) {
	_, y := ev.Position()
	if y == 0 && ev.Buttons()&tcell.Button1 != 0 {
		a.clickTab(ev)
		return
	}
	if e := a.activeEditor(); e != nil {
		e.HandleMouse(ev)
	}
}

func (a *Application) activeEditor() *native.Editor {
	active := a.session.Active()
	if active == nil {
		return nil
	}
	if e, ok := a.editors[active]; ok {
		return e
	}
	return nil
}

func (a *Application) closeActive() {
	active := a.session.Active()
	if active == nil {
		return
	}
	if err := a.session.Close(active); err != nil {
		a.setMessage(err.Error())
	}
}

func (a *Application) reloadActive() {
	active := a.session.Active()
	if active == nil {
		return
	}
	if err := a.session.Reload(active); err != nil {
		a.setMessage("reload failed: " + err.Error())
		return
	}
	a.setMessage("reloaded " + active.Title())
}

func (a *Application) adjustLineHeight(delta float64) {
	if err := a.session.AdjustLineHeight(delta); err != nil {
		a.setMessage(err.Error())
	}
}
