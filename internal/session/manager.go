package session

import (
	"context"
	"path/filepath"

	"github.com/dshills/codeshell/internal/hostio"
	"github.com/dshills/codeshell/internal/logging"
)

// LanguageServer is the optional language-server collaborator. Start may
// fail; the failure is recorded and the session keeps working.
type LanguageServer interface {
	Start(ctx context.Context) error
	WorkspaceRoot() string
}

// Manager owns the ordered set of open items, the active item and the global
// display state.
type Manager struct {
	io  hostio.Services
	log *logging.Logger

	items  []*Item
	byPath map[string]*Item
	active *Item

	display   Display
	preferred BackendKind
	factories map[BackendKind]BackendFactory

	delegates       *DelegateRegistry
	defaultDelegate DelegateHandle
	bridge          *Bridge
	completions     *Completions

	lang    LanguageServer
	langErr error

	subs    []subscriber
	nextSub int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithDisplay sets the initial display state. Invalid states are ignored.
func WithDisplay(d Display) Option {
	return func(m *Manager) {
		if d.Validate() == nil {
			m.display = d
		}
	}
}

// WithPreferredBackend sets the backend used for HintAuto.
func WithPreferredBackend(kind BackendKind) Option {
	return func(m *Manager) {
		m.preferred = kind
	}
}

// WithBackendFactory registers the factory for a backend kind.
func WithBackendFactory(kind BackendKind, f BackendFactory) Option {
	return func(m *Manager) {
		if f != nil {
			m.factories[kind] = f
		}
	}
}

// WithLanguageServer sets the language-server collaborator.
func WithLanguageServer(ls LanguageServer) Option {
	return func(m *Manager) {
		m.lang = ls
	}
}

// NewManager creates a manager that loads content through io.
func NewManager(io hostio.Services, opts ...Option) *Manager {
	m := &Manager{
		io:        io,
		log:       logging.Nop(),
		byPath:    make(map[string]*Item),
		display:   DefaultDisplay(),
		factories: make(map[BackendKind]BackendFactory),
		delegates: NewDelegateRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.Component("session")
	m.bridge = newBridge(m, m.log)
	m.completions = newCompletions(m, m.log)
	return m
}

// Bridge returns the context-menu and palette bridge.
func (m *Manager) Bridge() *Bridge { return m.bridge }

// Completions returns the completion and validation coordinator.
func (m *Manager) Completions() *Completions { return m.completions }

// Delegates returns the delegate registry.
func (m *Manager) Delegates() *DelegateRegistry { return m.delegates }

// RegisterDelegate registers d and returns its handle.
func (m *Manager) RegisterDelegate(d Delegate) DelegateHandle {
	return m.delegates.Register(d)
}

// UnregisterDelegate removes a delegate. Items bound to it keep working
// without callbacks.
func (m *Manager) UnregisterDelegate(h DelegateHandle) bool {
	if m.defaultDelegate == h {
		m.defaultDelegate = NoDelegate
	}
	return m.delegates.Unregister(h)
}

// SetDefaultDelegate sets the handle used by opens without WithDelegate.
func (m *Manager) SetDefaultDelegate(h DelegateHandle) {
	m.defaultDelegate = h
}

// OpenOption configures a single open.
type OpenOption func(*openOptions)

type openOptions struct {
	delegate    DelegateHandle
	hasDelegate bool
	hint        BackendHint
	breakpoints []int
}

// WithDelegate binds the new item to a registered delegate.
func WithDelegate(h DelegateHandle) OpenOption {
	return func(o *openOptions) {
		o.delegate = h
		o.hasDelegate = true
	}
}

// WithBackend selects the backend for the new item.
func WithBackend(hint BackendHint) OpenOption {
	return func(o *openOptions) {
		o.hint = hint
	}
}

// WithBreakpoints seeds the new item's breakpoints.
func WithBreakpoints(lines ...int) OpenOption {
	return func(o *openOptions) {
		o.breakpoints = append(o.breakpoints, lines...)
	}
}

func (m *Manager) openOptions(opts []OpenOption) openOptions {
	o := openOptions{delegate: m.defaultDelegate}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// OpenFile opens path, or activates and returns the item already showing it.
// Load failures are returned as *hostio.Error and nothing is opened.
func (m *Manager) OpenFile(path string, opts ...OpenOption) (*Item, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if it, ok := m.byPath[path]; ok {
		m.activate(it)
		return it, nil
	}

	text, err := m.io.Load(path)
	if err != nil {
		m.log.Warn("open failed", "path", path, "error", err)
		return nil, err
	}

	it := newItem(m, path, filepath.Base(path))
	if err := m.attach(it, text, m.openOptions(opts)); err != nil {
		return nil, err
	}
	return it, nil
}

// OpenGenerated shows non-file content under identifier. Reopening the same
// identifier activates the existing item and moves it to anchor.
func (m *Manager) OpenGenerated(title, identifier, content, anchor string, opts ...OpenOption) (*Item, error) {
	if identifier == "" {
		return nil, ErrEmptyPath
	}
	if it, ok := m.byPath[identifier]; ok {
		m.activate(it)
		if anchor != "" {
			it.SetAnchor(anchor)
		}
		return it, nil
	}

	if title == "" {
		title = identifier
	}
	it := newItem(m, identifier, title)
	it.generated = true
	it.content = content
	it.anchor = anchor
	if err := m.attach(it, content, m.openOptions(opts)); err != nil {
		return nil, err
	}
	if anchor != "" {
		it.backend.ScrollTo(anchor)
	}
	return it, nil
}

func (m *Manager) attach(it *Item, text string, o openOptions) error {
	kind, factory, err := m.selectBackend(o.hint)
	if err != nil {
		return &OpError{Op: "open", Path: it.path, Err: err}
	}
	backend, err := factory(it)
	if err != nil {
		return &OpError{Op: "attach", Path: it.path, Err: err}
	}

	it.delegate = o.delegate
	it.backend = backend
	it.seedBreakpoints(o.breakpoints)

	backend.Load(text)
	if len(it.breakpoints) > 0 {
		backend.SetBreakpoints(it.Breakpoints())
	}

	m.items = append(m.items, it)
	m.byPath[it.path] = it
	m.log.Info("opened", "path", it.path, "backend", kind.String(), "generated", it.generated)
	m.publish(Change{Kind: ChangeOpened, Item: it})
	m.activate(it)
	return nil
}

// Available reports whether a factory is registered for kind.
func (m *Manager) Available(kind BackendKind) bool {
	_, ok := m.factories[kind]
	return ok
}

// PreferredBackend returns the backend used for HintAuto.
func (m *Manager) PreferredBackend() BackendKind { return m.preferred }

// SetPreferredBackend changes the backend used for later HintAuto opens.
func (m *Manager) SetPreferredBackend(kind BackendKind) {
	m.preferred = kind
}

// selectBackend honors explicit hints when that backend is available and
// otherwise falls back to native, then to whatever is registered.
func (m *Manager) selectBackend(hint BackendHint) (BackendKind, BackendFactory, error) {
	want := m.preferred
	switch hint {
	case HintNative:
		want = BackendNative
	case HintWeb:
		want = BackendWeb
	}
	for _, kind := range []BackendKind{want, BackendNative, BackendWeb} {
		if f, ok := m.factories[kind]; ok {
			if kind != want {
				m.log.Debug("backend unavailable, falling back", "wanted", want.String(), "using", kind.String())
			}
			return kind, f, nil
		}
	}
	return 0, nil, ErrNoBackend
}

func (m *Manager) indexOf(it *Item) int {
	for i, cur := range m.items {
		if cur == it {
			return i
		}
	}
	return -1
}

func (m *Manager) owns(it *Item) bool {
	return it != nil && !it.closed && it.session == m && m.indexOf(it) >= 0
}

// Close closes item. The delegate's Closing runs first with the item still
// intact; the previous tab, else the next, becomes active.
func (m *Manager) Close(it *Item) error {
	if !m.owns(it) || it.closing {
		return ErrNotOpen
	}
	it.closing = true
	if d := it.resolveDelegate(); d != nil {
		d.Closing(it)
	}

	it.pendingCompletion = nil
	it.pendingMenu = nil
	it.pendingPalette = nil
	if it.backend != nil {
		it.backend.Detach()
		it.backend = nil
	}

	idx := m.indexOf(it)
	m.items = append(m.items[:idx], m.items[idx+1:]...)
	delete(m.byPath, it.path)
	it.closed = true
	m.log.Info("closed", "path", it.path)
	m.publish(Change{Kind: ChangeClosed, Item: it})

	if m.active == it {
		m.active = nil
		switch {
		case len(m.items) == 0:
			m.publish(Change{Kind: ChangeActivated})
		case idx > 0:
			m.activate(m.items[idx-1])
		default:
			m.activate(m.items[idx])
		}
	}
	return nil
}

// Shutdown closes every item in tab order.
func (m *Manager) Shutdown() {
	items := append([]*Item(nil), m.items...)
	for _, it := range items {
		_ = m.Close(it)
	}
}

// Items returns the open items in tab order.
func (m *Manager) Items() []*Item {
	return append([]*Item(nil), m.items...)
}

// Len returns the number of open items.
func (m *Manager) Len() int { return len(m.items) }

// Active returns the active item, nil when nothing is open.
func (m *Manager) Active() *Item { return m.active }

// Lookup returns the item open at path.
func (m *Manager) Lookup(path string) (*Item, bool) {
	it, ok := m.byPath[path]
	return it, ok
}

// SetActive makes item the active item.
func (m *Manager) SetActive(it *Item) error {
	if !m.owns(it) {
		return ErrNotOpen
	}
	m.activate(it)
	return nil
}

func (m *Manager) activate(it *Item) {
	if m.active == it {
		return
	}
	m.active = it
	if it.backend != nil {
		it.backend.ApplyDisplay(m.display)
	}
	m.publish(Change{Kind: ChangeActivated, Item: it})
}

// Next activates the item after the active one, wrapping around.
func (m *Manager) Next() *Item {
	return m.cycle(1)
}

// Previous activates the item before the active one, wrapping around.
func (m *Manager) Previous() *Item {
	return m.cycle(-1)
}

func (m *Manager) cycle(step int) *Item {
	n := len(m.items)
	if n == 0 {
		return nil
	}
	idx := m.indexOf(m.active)
	if idx < 0 {
		idx = 0
	} else {
		idx = (idx + step + n) % n
	}
	m.activate(m.items[idx])
	return m.active
}

// Display returns the global display state.
func (m *Manager) Display() Display { return m.display }

// ToggleDisplayFlag flips f and returns its new value.
func (m *Manager) ToggleDisplayFlag(f DisplayFlag) bool {
	v := !m.display.Flag(f)
	m.applyDisplay(m.display.withFlag(f, v))
	return v
}

// AdjustLineHeight adds delta to the line height. A result that is not
// positive is rejected and the current value kept.
func (m *Manager) AdjustLineHeight(delta float64) error {
	next := m.display
	next.LineHeight += delta
	if !validLineHeight(next.LineHeight) {
		return ErrInvalidLineHeight
	}
	m.applyDisplay(next)
	return nil
}

// SetDisplay replaces the display state.
func (m *Manager) SetDisplay(d Display) error {
	if err := d.Validate(); err != nil {
		return err
	}
	m.applyDisplay(d)
	return nil
}

// applyDisplay re-renders the active backend only; others pick the state up
// when activated.
func (m *Manager) applyDisplay(d Display) {
	if d == m.display {
		return
	}
	m.display = d
	if m.active != nil && m.active.backend != nil {
		m.active.backend.ApplyDisplay(d)
	}
	m.publish(Change{Kind: ChangeDisplay})
}

// GoTo moves the active backend to line. Without an active item it does
// nothing.
func (m *Manager) GoTo(line int) {
	if m.active == nil || m.active.backend == nil {
		return
	}
	m.active.backend.GoTo(line)
}

// Search opens the find affordance of the active backend.
func (m *Manager) Search(showReplace bool) {
	if m.active == nil || m.active.backend == nil {
		return
	}
	m.active.backend.ShowSearch(showReplace)
}

// SetCurrentLine marks the execution line of item.
func (m *Manager) SetCurrentLine(it *Item, line int) error {
	if !m.owns(it) {
		return ErrNotOpen
	}
	it.currentLine = line
	it.hasCurrent = true
	it.backend.SetCurrentLine(line, true)
	m.publish(Change{Kind: ChangeCurrentLine, Item: it})
	return nil
}

// ClearCurrentLine removes the execution line of item.
func (m *Manager) ClearCurrentLine(it *Item) error {
	if !m.owns(it) {
		return ErrNotOpen
	}
	if !it.hasCurrent {
		return nil
	}
	it.currentLine = 0
	it.hasCurrent = false
	it.backend.SetCurrentLine(0, false)
	m.publish(Change{Kind: ChangeCurrentLine, Item: it})
	return nil
}

// Reload reloads item's content and clears its execution line. Generated
// items reload the content they were opened with.
func (m *Manager) Reload(it *Item) error {
	if !m.owns(it) {
		return ErrNotOpen
	}
	text := it.content
	if !it.generated {
		loaded, err := m.io.Load(it.path)
		if err != nil {
			m.log.Warn("reload failed", "path", it.path, "error", err)
			return err
		}
		text = loaded
	}
	m.completions.CancelCompletion(it)
	it.backend.Load(text)
	if err := m.ClearCurrentLine(it); err != nil {
		return err
	}
	m.publish(Change{Kind: ChangeReloaded, Item: it})
	return nil
}

// Save asks item's delegate to persist the backend's text, to newPath when
// it is not empty. On success with a new path the item takes that path.
func (m *Manager) Save(it *Item, newPath string) error {
	if !m.owns(it) {
		return ErrNotOpen
	}
	d := it.resolveDelegate()
	if d == nil {
		return &OpError{Op: "save", Path: it.path, Err: ErrNoDelegate}
	}
	if newPath == it.path {
		newPath = ""
	}
	if newPath != "" {
		if _, taken := m.byPath[newPath]; taken {
			return &OpError{Op: "save", Path: newPath, Err: ErrPathInUse}
		}
	}

	if err := d.Save(it, it.backend.Text(), newPath); err != nil {
		m.log.Warn("save failed", "path", it.path, "error", err)
		return err
	}
	if newPath == "" {
		return nil
	}

	old := it.path
	delete(m.byPath, old)
	it.path = newPath
	it.title = filepath.Base(newPath)
	it.generated = false
	it.content = ""
	m.byPath[newPath] = it
	m.log.Info("renamed", "from", old, "to", newPath)
	m.publish(Change{Kind: ChangeRenamed, Item: it, OldPath: old})
	return nil
}

// StartLanguageServer starts the language-server collaborator. A failure is
// recorded, logged and returned; the session stays usable.
func (m *Manager) StartLanguageServer(ctx context.Context) error {
	if m.lang == nil {
		return ErrNoLanguageServer
	}
	err := m.lang.Start(ctx)
	m.langErr = err
	if err != nil {
		m.log.Warn("language server unavailable", "root", m.lang.WorkspaceRoot(), "error", err)
		return err
	}
	m.log.Info("language server started", "root", m.lang.WorkspaceRoot())
	return nil
}

// LanguageServerErr returns the last language-server start failure.
func (m *Manager) LanguageServerErr() error { return m.langErr }

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (m *Manager) Subscribe(fn func(Change)) func() {
	if fn == nil {
		return func() {}
	}
	m.nextSub++
	id := m.nextSub
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) publish(c Change) {
	if len(m.subs) == 0 {
		return
	}
	subs := append([]subscriber(nil), m.subs...)
	for _, s := range subs {
		s.fn(c)
	}
}
