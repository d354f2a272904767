package host

import (
	"context"
	"strings"
	"testing"

	"github.com/dshills/codeshell/internal/hostio"
	"github.com/dshills/codeshell/internal/lsp"
	"github.com/dshills/codeshell/internal/session"
)

// fakeBackend is a plain-text backend driven directly by tests.
type fakeBackend struct {
	text     string
	sel      session.Range
	actions  []string
	gotos    []int
	detached bool
}

func (b *fakeBackend) Selection() session.Range { return b.sel }

func (b *fakeBackend) PositionAt(offset int) session.Position {
	runes := []rune(b.text)
	if offset > len(runes) {
		offset = len(runes)
	}
	before := string(runes[:offset])
	line := strings.Count(before, "\n")
	col := len([]rune(before[strings.LastIndex(before, "\n")+1:]))
	return session.Position{Line: line, Column: col}
}

func (b *fakeBackend) Text() string { return b.text }

func (b *fakeBackend) RectFor(r session.Range) session.Rect {
	return session.Rect{X: r.Start, Y: 1, Width: r.End - r.Start, Height: 1}
}

func (b *fakeBackend) RunAction(id string) { b.actions = append(b.actions, id) }
func (b *fakeBackend) Kind() session.BackendKind { return session.BackendNative }
func (b *fakeBackend) Load(text string) { b.text = text }
func (b *fakeBackend) GoTo(line int) { b.gotos = append(b.gotos, line) }
func (b *fakeBackend) ShowSearch(bool) {}
func (b *fakeBackend) ApplyDisplay(session.Display) {}
func (b *fakeBackend) ScrollTo(string) {}
func (b *fakeBackend) SetBreakpoints([]int) {}
func (b *fakeBackend) SetCurrentLine(int, bool) {}
func (b *fakeBackend) Detach() { b.detached = true }

func (b *fakeBackend) InsertCompletion(text string, replace int) {
	runes := []rune(b.text)
	end := b.sel.End
	start := end - replace
	if start < 0 {
		start = 0
	}
	b.text = string(runes[:start]) + text + string(runes[end:])
	b.sel = session.Range{Start: start + len([]rune(text)), End: start + len([]rune(text))}
}

// typeText replaces the backend text, puts the caret at the end and
// notifies the item.
func (b *fakeBackend) typeText(item *session.Item, text string) {
	b.text = text
	n := len([]rune(text))
	b.sel = session.Range{Start: n, End: n}
	item.NotifyTextChanged()
}

// recordingPresenter keeps what it was asked to show.
type recordingPresenter struct {
	menus       []*session.MenuRequest
	palettes    []*session.PaletteRequest
	completions []*session.CompletionRequest
	dismissed   []*session.Item
}

func (p *recordingPresenter) PresentMenu(_ *session.Item, req *session.MenuRequest) {
	p.menus = append(p.menus, req)
}

func (p *recordingPresenter) PresentPalette(_ *session.Item, req *session.PaletteRequest) {
	p.palettes = append(p.palettes, req)
}

func (p *recordingPresenter) PresentCompletion(_ *session.Item, req *session.CompletionRequest) {
	p.completions = append(p.completions, req)
}

func (p *recordingPresenter) Dismiss(item *session.Item) {
	p.dismissed = append(p.dismissed, item)
}

// recordingSync records document sync notifications.
type recordingSync struct {
	events []string
}

func (s *recordingSync) DidOpen(path, languageID, _ string) error {
	s.events = append(s.events, "open "+path+" "+languageID)
	return nil
}

func (s *recordingSync) DidChange(path, _ string) error {
	s.events = append(s.events, "change "+path)
	return nil
}

func (s *recordingSync) DidClose(path string) error {
	s.events = append(s.events, "close "+path)
	return nil
}

// fakeDefiner answers every definition request with loc.
type fakeDefiner struct {
	loc lsp.Location
}

func (d fakeDefiner) Definition(context.Context, string, int, int) ([]lsp.Location, error) {
	return []lsp.Location{d.loc}, nil
}

// chanPoster hands posted functions to the test goroutine.
type chanPoster chan func()

func (p chanPoster) Post(fn func()) bool {
	p <- fn
	return true
}

type fixture struct {
	m         *session.Manager
	io        *hostio.MemoryServices
	host      *Host
	presenter *recordingPresenter
	backends  map[string]*fakeBackend
}

func newFixture(t *testing.T, files map[string]string, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		io:        hostio.NewMemoryServices(files),
		presenter: &recordingPresenter{},
		backends:  make(map[string]*fakeBackend),
	}
	factory := func(item *session.Item) (session.Backend, error) {
		b := &fakeBackend{}
		f.backends[item.Path()] = b
		return b, nil
	}
	f.m = session.NewManager(f.io, session.WithBackendFactory(session.BackendNative, factory))
	all := append([]Option{
		WithPresenter(f.presenter),
		WithSource(WordSource{Keywords: []string{"func", "return"}}),
	}, opts...)
	f.host = New(f.m, f.io, all...)
	f.m.SetDefaultDelegate(f.m.RegisterDelegate(f.host))
	return f
}

func (f *fixture) open(t *testing.T, path string) (*session.Item, *fakeBackend) {
	t.Helper()
	it, err := f.m.OpenFile(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	return it, f.backends[path]
}
