package session

import (
	"errors"
	"strings"

	"github.com/dshills/codeshell/internal/hostio"
	"github.com/dshills/codeshell/internal/menu"
)

// fakeBackend records every command the session sends it.
type fakeBackend struct {
	kind        BackendKind
	text        string
	sel         Range
	loads       int
	gotoLines   []int
	searches    []bool
	displays    []Display
	anchors     []string
	breakpoints []int
	current     int
	hasCurrent  bool
	actions     []string
	inserted    []string
	detached    bool
}

func (b *fakeBackend) Selection() Range { return b.sel }

func (b *fakeBackend) PositionAt(offset int) Position {
	runes := []rune(b.text)
	if offset > len(runes) {
		offset = len(runes)
	}
	before := string(runes[:offset])
	line := strings.Count(before, "\n")
	col := len([]rune(before[strings.LastIndex(before, "\n")+1:]))
	return Position{Line: line, Column: col}
}

func (b *fakeBackend) Text() string           { return b.text }
func (b *fakeBackend) RectFor(r Range) Rect   { return Rect{X: r.Start, Y: 0, Width: r.End - r.Start, Height: 1} }
func (b *fakeBackend) RunAction(id string)    { b.actions = append(b.actions, id) }
func (b *fakeBackend) Kind() BackendKind      { return b.kind }
func (b *fakeBackend) Load(text string)       { b.text = text; b.loads++ }
func (b *fakeBackend) GoTo(line int)          { b.gotoLines = append(b.gotoLines, line) }
func (b *fakeBackend) ShowSearch(replace bool) { b.searches = append(b.searches, replace) }
func (b *fakeBackend) ApplyDisplay(d Display) { b.displays = append(b.displays, d) }
func (b *fakeBackend) ScrollTo(anchor string) { b.anchors = append(b.anchors, anchor) }
func (b *fakeBackend) SetBreakpoints(lines []int) {
	b.breakpoints = append([]int(nil), lines...)
}
func (b *fakeBackend) SetCurrentLine(line int, ok bool) { b.current, b.hasCurrent = line, ok }
func (b *fakeBackend) Detach()                          { b.detached = true }

func (b *fakeBackend) InsertCompletion(text string, replace int) {
	b.inserted = append(b.inserted, text)
	runes := []rune(b.text)
	end := b.sel.End
	start := end - replace
	if start < 0 {
		start = 0
	}
	b.text = string(runes[:start]) + text + string(runes[end:])
	b.sel = Range{Start: start + len([]rune(text)), End: start + len([]rune(text))}
}

// recordingDelegate embeds BaseDelegate and logs the callbacks it receives.
type recordingDelegate struct {
	BaseDelegate
	events  []string
	menus   []*MenuRequest
	palette []*PaletteRequest
	saved   []string
	saveErr error

	onClosing func(*Item)
}

func (d *recordingDelegate) Started(*Item, Surface)     { d.events = append(d.events, "started") }
func (d *recordingDelegate) TextChanged(*Item, Surface) { d.events = append(d.events, "changed") }

func (d *recordingDelegate) Save(item *Item, contents, newPath string) error {
	if d.saveErr != nil {
		return d.saveErr
	}
	d.saved = append(d.saved, contents+"|"+newPath)
	return nil
}

func (d *recordingDelegate) Closing(item *Item) {
	d.events = append(d.events, "closing")
	if d.onClosing != nil {
		d.onClosing(item)
	}
}

func (d *recordingDelegate) ContextMenuRequested(_ *Item, _ Surface, req *MenuRequest) {
	d.menus = append(d.menus, req)
}

func (d *recordingDelegate) CommandPaletteRequested(_ *Item, _ Surface, req *PaletteRequest) {
	d.palette = append(d.palette, req)
}

type fixture struct {
	m        *Manager
	io       *hostio.MemoryServices
	backends map[string]*fakeBackend
	delegate *recordingDelegate
	handle   DelegateHandle
}

func newFixture(files map[string]string, opts ...Option) *fixture {
	f := &fixture{
		io:       hostio.NewMemoryServices(files),
		backends: make(map[string]*fakeBackend),
		delegate: &recordingDelegate{},
	}
	factory := func(kind BackendKind) BackendFactory {
		return func(item *Item) (Backend, error) {
			b := &fakeBackend{kind: kind}
			f.backends[item.Path()] = b
			return b, nil
		}
	}
	all := append([]Option{
		WithBackendFactory(BackendNative, factory(BackendNative)),
		WithBackendFactory(BackendWeb, factory(BackendWeb)),
	}, opts...)
	f.m = NewManager(f.io, all...)
	f.handle = f.m.RegisterDelegate(f.delegate)
	f.m.SetDefaultDelegate(f.handle)
	return f
}

func (f *fixture) open(path string, opts ...OpenOption) *Item {
	it, err := f.m.OpenFile(path, opts...)
	if err != nil {
		panic(err)
	}
	return it
}

var errDisk = errors.New("disk full")

func sampleMenu() menu.Request {
	return menu.Request{Items: []menu.Item{
		menu.Action{ID: "edit.cut", Label: "Cut", Enabled: true},
		menu.Action{ID: "edit.paste", Label: "Paste", Enabled: false},
		menu.Separator{},
		menu.Submenu{Label: "Refactor", Items: []menu.Item{
			menu.Action{ID: "refactor.rename", Enabled: true},
		}},
	}}
}
