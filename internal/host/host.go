package host

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dshills/codeshell/internal/config"
	"github.com/dshills/codeshell/internal/hostio"
	"github.com/dshills/codeshell/internal/logging"
	"github.com/dshills/codeshell/internal/lsp"
	"github.com/dshills/codeshell/internal/session"
)

// DefaultLookupTimeout bounds a language-server definition request.
const DefaultLookupTimeout = 5 * time.Second

// Definer resolves go-to-definition requests.
type Definer interface {
	Definition(ctx context.Context, path string, line, column int) ([]lsp.Location, error)
}

// DocumentSync mirrors open documents to a language server.
type DocumentSync interface {
	DidOpen(path, languageID, text string) error
	DidChange(path, text string) error
	DidClose(path string) error
}

// Poster runs functions on the UI goroutine.
type Poster interface {
	Post(fn func()) bool
}

// LookupRequest records a lookup the host received.
type LookupRequest struct {
	Item *session.Item
	Pos  session.Position
	Word string
}

// Host is the application's session delegate. All methods run on the UI
// goroutine.
type Host struct {
	m   *session.Manager
	io  hostio.Services
	log *logging.Logger

	trigger   Trigger
	source    CompletionSource
	validator Validator
	presenter Presenter

	definer       Definer
	poster        Poster
	sync          DocumentSync
	lookupTimeout time.Duration

	lastLookup LookupRequest
}

// Option configures a Host.
type Option func(*Host)

// WithTrigger sets the completion trigger.
func WithTrigger(t Trigger) Option {
	return func(h *Host) { h.trigger = t }
}

// WithSource sets the completion source.
func WithSource(s CompletionSource) Option {
	return func(h *Host) { h.source = s }
}

// WithValidator sets the validator. Nil disables validation.
func WithValidator(v Validator) Option {
	return func(h *Host) { h.validator = v }
}

// WithPresenter sets the presenter of menus, palettes and completions.
func WithPresenter(p Presenter) Option {
	return func(h *Host) { h.presenter = p }
}

// WithDefiner resolves lookups through d. Results are posted back to the UI
// goroutine through p.
func WithDefiner(d Definer, p Poster) Option {
	return func(h *Host) {
		h.definer = d
		h.poster = p
	}
}

// WithDocumentSync mirrors documents through s.
func WithDocumentSync(s DocumentSync) Option {
	return func(h *Host) { h.sync = s }
}

// WithLookupTimeout overrides DefaultLookupTimeout.
func WithLookupTimeout(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.lookupTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(h *Host) {
		if log != nil {
			h.log = log
		}
	}
}

// New creates a host for m saving through io.
func New(m *session.Manager, io hostio.Services, opts ...Option) *Host {
	h := &Host{
		m:             m,
		io:            io,
		log:           logging.Nop(),
		trigger:       AnyTrigger(PrefixTrigger("."), IdentifierTrigger(3)),
		source:        WordSource{MaxItems: 50},
		validator:     BasicValidator{},
		lookupTimeout: DefaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.Component("host")
	return h
}

// ConfigTrigger is the trigger described by a completion configuration.
type ConfigTrigger struct {
	Trigger
	lua *LuaPredicate
}

// Close releases the Lua predicate, if any.
func (t *ConfigTrigger) Close() { t.lua.Close() }

// TriggerFromConfig builds the trigger described by cfg. A Lua trigger,
// when given, is combined with the token and identifier triggers.
func TriggerFromConfig(cfg config.CompletionConfig) (*ConfigTrigger, error) {
	triggers := []Trigger{PrefixTrigger(cfg.Triggers...)}
	if cfg.MinIdentifier > 0 {
		triggers = append(triggers, IdentifierTrigger(cfg.MinIdentifier))
	}
	out := &ConfigTrigger{}
	if strings.TrimSpace(cfg.LuaTrigger) != "" {
		lt, err := LuaTrigger(cfg.LuaTrigger)
		if err != nil {
			return nil, err
		}
		out.lua = lt
		triggers = append(triggers, lt)
	}
	out.Trigger = AnyTrigger(triggers...)
	return out, nil
}

// LastLookup returns the most recent lookup request.
func (h *Host) LastLookup() LookupRequest { return h.lastLookup }

// Started implements session.Delegate.
func (h *Host) Started(item *session.Item, surface session.Surface) {
	text := surface.Text()
	h.validate(item, text)
	if h.sync != nil && !item.Generated() {
		if err := h.sync.DidOpen(item.Path(), LanguageID(item.Path()), text); err != nil {
			h.log.Debug("didOpen not sent", "path", item.Path(), "error", err)
		}
	}
}

// TextChanged implements session.Delegate.
func (h *Host) TextChanged(item *session.Item, surface session.Surface) {
	h.complete(item, surface)
	text := surface.Text()
	h.validate(item, text)
	if h.sync != nil && !item.Generated() {
		if err := h.sync.DidChange(item.Path(), text); err != nil {
			h.log.Debug("didChange not sent", "path", item.Path(), "error", err)
		}
	}
}

func (h *Host) complete(item *session.Item, surface session.Surface) {
	c := h.m.Completions()
	sel := surface.Selection()
	if !sel.Empty() || h.trigger == nil || h.source == nil {
		c.CancelCompletion(item)
		return
	}
	line := session.LineBeforeCaret(surface)
	if !h.trigger.ShouldComplete(line) {
		c.CancelCompletion(item)
		return
	}
	prefix := identifierSuffix(line)
	candidates := h.source.Complete(prefix, surface.Text())
	anchor := surface.RectFor(session.Range{Start: sel.End - utf8.RuneCountInString(prefix), End: sel.End})
	req, ok := c.RequestCompletion(item, anchor, surface, prefix, candidates)
	if ok && h.presenter != nil {
		h.presenter.PresentCompletion(item, req)
	}
}

func (h *Host) validate(item *session.Item, text string) {
	if h.validator == nil {
		return
	}
	r := h.validator.Validate(text)
	h.m.Completions().ValidationResult(item, r.Functions, r.Errors, r.Warnings)
}

// GutterTapped implements session.Delegate by toggling a breakpoint.
func (h *Host) GutterTapped(item *session.Item, _ session.Surface, line int) {
	on := item.ToggleBreakpoint(line)
	h.log.Debug("breakpoint", "path", item.Path(), "line", line, "set", on)
}

// Save implements session.Delegate.
func (h *Host) Save(item *session.Item, contents, newPath string) error {
	path := newPath
	if path == "" {
		if item.Generated() {
			return ErrGeneratedContent
		}
		path = item.Path()
	}
	if err := h.io.Save(contents, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	h.log.Info("saved", "path", path)
	return nil
}

// Closing implements session.Delegate.
func (h *Host) Closing(item *session.Item) {
	if h.presenter != nil {
		h.presenter.Dismiss(item)
	}
	if h.sync != nil && !item.Generated() {
		if err := h.sync.DidClose(item.Path()); err != nil {
			h.log.Debug("didClose not sent", "path", item.Path(), "error", err)
		}
	}
}

// Lookup implements session.Delegate. A function declared in the item
// itself is resolved at once; anything else goes to the language server.
func (h *Host) Lookup(item *session.Item, _ session.Surface, pos session.Position, word string) {
	h.lastLookup = LookupRequest{Item: item, Pos: pos, Word: word}
	if word != "" {
		for _, fn := range h.m.Completions().LastValidation(item).Functions {
			if fn.Name == word {
				item.Backend().GoTo(fn.Line)
				return
			}
		}
	}
	if h.definer == nil || h.poster == nil || item.Generated() {
		return
	}

	path := item.Path()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.lookupTimeout)
		defer cancel()
		locs, err := h.definer.Definition(ctx, path, pos.Line, pos.Column)
		if err != nil || len(locs) == 0 {
			h.log.Debug("no definition", "path", path, "word", word, "error", err)
			return
		}
		target := lsp.URIToFilePath(locs[0].URI)
		line := locs[0].Range.Start.Line
		h.poster.Post(func() { h.jump(target, line) })
	}()
}

func (h *Host) jump(path string, line int) {
	if _, err := h.m.OpenFile(path); err != nil {
		h.log.Warn("definition not opened", "path", path, "error", err)
		return
	}
	h.m.GoTo(line)
}

// ContextMenuRequested implements session.Delegate.
func (h *Host) ContextMenuRequested(item *session.Item, _ session.Surface, req *session.MenuRequest) {
	if h.presenter != nil {
		h.presenter.PresentMenu(item, req)
	}
}

// CommandPaletteRequested implements session.Delegate.
func (h *Host) CommandPaletteRequested(item *session.Item, _ session.Surface, req *session.PaletteRequest) {
	if h.presenter != nil {
		h.presenter.PresentPalette(item, req)
	}
}

var languageIDs = map[string]string{
	".gd":   "gdscript",
	".go":   "go",
	".lua":  "lua",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".json": "json",
	".toml": "toml",
	".yaml": "yaml",
	".yml":  "yaml",
	".md":   "markdown",
}

// LanguageID maps a path to its language-server language identifier.
func LanguageID(path string) string {
	if id, ok := languageIDs[strings.ToLower(filepath.Ext(path))]; ok {
		return id
	}
	return "plaintext"
}

var _ session.Delegate = (*Host)(nil)
