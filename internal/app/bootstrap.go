package app

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/codeshell/internal/backend/native"
	"github.com/dshills/codeshell/internal/backend/web"
	"github.com/dshills/codeshell/internal/config"
	"github.com/dshills/codeshell/internal/host"
	"github.com/dshills/codeshell/internal/hostio"
	"github.com/dshills/codeshell/internal/lang"
	"github.com/dshills/codeshell/internal/logging"
	"github.com/dshills/codeshell/internal/lsp"
	"github.com/dshills/codeshell/internal/session"
	"github.com/dshills/codeshell/internal/uiloop"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{app: app, opts: app.opts, initOrder: make([]string, 0, 8)}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initConfig,
		b.initLogging,
		b.initLoop,
		b.initScreen,
		b.initWeb,
		b.initLSP,
		b.initSession,
		b.initWatcher,
		b.initDocuments,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

func (b *bootstrapper) configOptions() config.Options {
	return config.Options{Path: b.opts.ConfigPath, Environ: b.opts.Environ}
}

func (b *bootstrapper) initConfig() error {
	cfg, err := config.Load(b.configOptions())
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if b.opts.LogLevel != "" {
		cfg.Log.Level = b.opts.LogLevel
	}
	if b.opts.Backend != "" {
		cfg.Backend.Preferred = b.opts.Backend
	}
	if b.opts.Web {
		cfg.Backend.WebEnabled = true
	}
	if err := cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	b.app.cfg = cfg
	b.initOrder = append(b.initOrder, "config")
	return nil
}

func (b *bootstrapper) initLogging() error {
	// The terminal owns stderr while the screen is up.
	var out io.Writer = io.Discard
	if b.opts.LogOutput != nil {
		out = b.opts.LogOutput
	}
	if path := b.app.cfg.Log.File; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return &InitError{Component: "logging", Err: err}
		}
		b.app.logFile = f
		out = f
	}
	b.app.log = logging.New(logging.Options{
		Level:  logging.ParseLevel(b.app.cfg.Log.Level),
		Output: out,
		Prefix: "codeshell",
	})
	b.initOrder = append(b.initOrder, "logging")
	return nil
}

func (b *bootstrapper) initLoop() error {
	b.app.loop = uiloop.New(uiloop.DefaultBuffer, b.app.log)
	b.initOrder = append(b.initOrder, "loop")
	return nil
}

func (b *bootstrapper) initScreen() error {
	if b.opts.Headless {
		if !b.app.cfg.Backend.WebEnabled {
			return &InitError{Component: "screen", Err: ErrNoFrontend}
		}
		return nil
	}
	screen := b.opts.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return &InitError{Component: "screen", Err: err}
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	screen.EnableMouse()
	b.app.screen = screen
	b.initOrder = append(b.initOrder, "screen")
	return nil
}

func (b *bootstrapper) initWeb() error {
	if !b.app.cfg.Backend.WebEnabled {
		return nil
	}
	srv := web.NewServer(b.app.loop, web.WithLogger(b.app.log.Component("web")))
	ln, err := srv.Listen(b.app.cfg.Backend.WebAddr)
	if err != nil {
		return &InitError{Component: "web", Err: err}
	}
	b.app.web = srv
	b.app.webLn = ln
	b.initOrder = append(b.initOrder, "web")
	return nil
}

func (b *bootstrapper) initLSP() error {
	c := b.app.cfg.LSP
	if !c.Enabled {
		return nil
	}
	root := b.opts.WorkspacePath
	if root == "" {
		if wd, err := os.Getwd(); err == nil {
			root = wd
		}
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	b.app.lsp = lsp.NewProxy(lsp.Config{
		Command:       c.Command,
		Args:          c.Args,
		WorkspaceRoot: root,
		StartTimeout:  c.StartTimeout,
	}, lsp.WithLogger(b.app.log))
	b.app.lsp.OnDiagnostics(func(path string, diags []lang.Diagnostic) {
		b.app.loop.Post(func() { b.app.applyServerDiagnostics(path, diags) })
	})
	b.initOrder = append(b.initOrder, "lsp")
	return nil
}

func (b *bootstrapper) initSession() error {
	a := b.app
	cfg := a.cfg

	services := b.opts.IO
	if services == nil {
		services = hostio.FileServices{}
	}

	display := session.Display{
		ShowTabs:        cfg.Display.ShowTabs,
		ShowSpaces:      cfg.Display.ShowSpaces,
		ShowLineNumbers: cfg.Display.ShowLineNumbers,
		LineHeight:      cfg.Display.LineHeight,
	}
	sopts := []session.Option{
		session.WithLogger(a.log),
		session.WithDisplay(display),
		session.WithPreferredBackend(b.preferredBackend()),
	}
	if a.screen != nil {
		sopts = append(sopts, session.WithBackendFactory(session.BackendNative, native.Factory(a.screen,
			native.WithArea(a.editorArea()),
			native.WithLogger(a.log.Component("native")),
			native.OnCreate(func(e *native.Editor) { a.editors[e.Item()] = e }),
		)))
	}
	if a.web != nil {
		sopts = append(sopts, session.WithBackendFactory(session.BackendWeb, a.web.Factory()))
	}
	if a.lsp != nil {
		sopts = append(sopts, session.WithLanguageServer(a.lsp))
	}
	a.session = session.NewManager(services, sopts...)

	trigger, err := host.TriggerFromConfig(cfg.Completion)
	if err != nil {
		return &InitError{Component: "completion", Err: err}
	}
	a.trigger = trigger
	hopts := []host.Option{
		host.WithTrigger(trigger),
		host.WithSource(host.WordSource{Keywords: cfg.Completion.Keywords, MaxItems: cfg.Completion.MaxItems}),
		host.WithLogger(a.log),
	}
	if a.screen != nil {
		a.overlay = host.NewOverlay(a.screen, a.session)
		a.overlay.UseGlyphHints(cfg.Display.ShortcutGlyphs)
		hopts = append(hopts, host.WithPresenter(a.overlay))
	}
	if a.lsp != nil {
		hopts = append(hopts, host.WithDefiner(a.lsp, a.loop), host.WithDocumentSync(a.lsp))
	}
	a.host = host.New(a.session, services, hopts...)
	a.session.SetDefaultDelegate(a.session.RegisterDelegate(a.host))

	a.keys = globalKeys()
	a.unsubscribe = a.session.Subscribe(a.onChange)
	b.initOrder = append(b.initOrder, "session")
	return nil
}

// preferredBackend resolves "auto" to the terminal when there is one.
func (b *bootstrapper) preferredBackend() session.BackendKind {
	if kind, ok := session.ParseBackendKind(b.app.cfg.Backend.Preferred); ok {
		return kind
	}
	if b.app.screen == nil {
		return session.BackendWeb
	}
	return session.BackendNative
}

func (b *bootstrapper) initWatcher() error {
	if b.opts.ConfigPath == "" {
		return nil
	}
	a := b.app
	w, err := config.NewWatcher(b.configOptions(), func(cfg *config.Config, err error) {
		a.loop.Post(func() { a.applyConfig(cfg, err) })
	}, config.WithWatchLogger(a.log))
	if err != nil {
		a.log.Warn("config watch unavailable", "path", b.opts.ConfigPath, "error", err)
		return nil
	}
	a.watcher = w
	b.initOrder = append(b.initOrder, "watcher")
	return nil
}

func (b *bootstrapper) initDocuments() error {
	for _, file := range b.opts.Files {
		if _, err := b.app.session.OpenFile(file); err != nil {
			b.app.log.Warn("open failed", "path", file, "error", err)
			b.app.setMessage(err.Error())
		}
	}
	b.initOrder = append(b.initOrder, "documents")
	return nil
}

// cleanup performs cleanup in reverse initialization order.
func (b *bootstrapper) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(ctx, b.initOrder[i])
	}
}

func (b *bootstrapper) cleanupComponent(ctx context.Context, component string) {
	a := b.app
	switch component {
	case "logging":
		if a.logFile != nil {
			_ = a.logFile.Close()
		}
	case "loop":
		a.loop.Stop()
	case "screen":
		a.screen.Fini()
	case "web":
		_ = a.web.Shutdown(ctx)
		_ = a.webLn.Close()
	case "lsp":
		_ = a.lsp.Shutdown(ctx)
	case "session":
		a.unsubscribe()
		a.session.Shutdown()
		if lt, ok := a.trigger.(interface{ Close() }); ok {
			lt.Close()
		}
	case "watcher":
		_ = a.watcher.Close()
	}
}
