// Package app wires the codeshell session to its terminal and web
// frontends and runs the UI loop.
package app

import (
	"context"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/codeshell/internal/backend/native"
	"github.com/dshills/codeshell/internal/backend/web"
	"github.com/dshills/codeshell/internal/config"
	"github.com/dshills/codeshell/internal/host"
	"github.com/dshills/codeshell/internal/hostio"
	"github.com/dshills/codeshell/internal/logging"
	"github.com/dshills/codeshell/internal/lsp"
	"github.com/dshills/codeshell/internal/session"
	"github.com/dshills/codeshell/internal/uiloop"
)

const shutdownTimeout = 5 * time.Second

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty uses defaults and the
	// environment only.
	ConfigPath string

	// WorkspacePath is the language-server workspace root.
	WorkspacePath string

	// Files are opened on startup.
	Files []string

	// LogLevel overrides log.level when set.
	LogLevel string

	// Backend overrides backend.preferred when set.
	Backend string

	// Web starts the web backend regardless of configuration.
	Web bool

	// Headless skips the terminal; documents are reachable over the web
	// backend only.
	Headless bool

	// Screen replaces the terminal, for tests.
	Screen tcell.Screen

	// IO replaces file access, for tests.
	IO hostio.Services

	// Environ replaces os.Environ for configuration overrides.
	Environ []string

	// LogOutput receives logs when log.file is not set.
	LogOutput io.Writer
}

// Application owns every component and runs the UI loop. Apart from
// construction and Run, all of its state is touched on the loop only.
type Application struct {
	opts Options

	cfg     *config.Config
	log     *logging.Logger
	logFile *os.File
	loop    *uiloop.Loop
	metrics *Metrics

	screen  tcell.Screen
	editors map[*session.Item]*native.Editor
	overlay *host.Overlay

	session *session.Manager
	host    *host.Host
	trigger host.Trigger

	web   *web.Server
	webLn net.Listener
	lsp   *lsp.Proxy

	watcher     *config.Watcher
	unsubscribe func()

	message string
	keys    []globalKey

	running  atomic.Bool
	quitting atomic.Bool
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates the application and opens opts.Files.
func New(opts Options) (*Application, error) {
	a := &Application{
		opts:    opts,
		metrics: NewMetrics(),
		editors: make(map[*session.Item]*native.Editor),
	}
	if err := newBootstrapper(a).bootstrap(); err != nil {
		return nil, err
	}
	return a, nil
}

// Run serves input until the user quits or ctx is cancelled. A quit
// returns ErrQuit.
func (a *Application) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.shutdown()

	if a.web != nil && a.webLn != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.web.Serve(a.webLn); err != nil && err != web.ErrServerClosed {
				a.log.Error("web backend stopped", "error", err)
			}
		}()
	}
	if a.lsp != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.startLanguageServer(ctx)
		}()
	}
	if a.screen != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.pollEvents()
		}()
	}

	a.loop.Post(func() { a.redraw() })
	err := a.loop.Run(ctx)
	if a.quitting.Load() {
		return ErrQuit
	}
	return err
}

// startLanguageServer runs the handshake off the loop and records the
// result on it.
func (a *Application) startLanguageServer(ctx context.Context) {
	startCtx, cancel := context.WithTimeout(ctx, a.cfg.LSP.StartTimeout+time.Second)
	defer cancel()
	_ = a.lsp.Start(startCtx)
	a.loop.Post(func() {
		if err := a.session.StartLanguageServer(ctx); err != nil {
			a.setMessage("language server unavailable: " + err.Error())
		}
		a.redraw()
	})
}

// Post runs fn on the UI loop.
func (a *Application) Post(fn func()) bool {
	return a.loop.Post(fn)
}

// Quit stops Run with ErrQuit.
func (a *Application) Quit() {
	a.loop.Post(func() { a.quit() })
}

func (a *Application) quit() {
	a.quitting.Store(true)
	a.loop.Stop()
}

// Shutdown stops Run, if it is running, and releases every component.
func (a *Application) Shutdown() {
	if a.running.Load() {
		a.loop.Stop()
		return
	}
	a.shutdown()
}

func (a *Application) shutdown() {
	a.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if a.unsubscribe != nil {
			a.unsubscribe()
		}
		if a.watcher != nil {
			_ = a.watcher.Close()
		}
		a.session.Shutdown()
		if a.web != nil {
			_ = a.web.Shutdown(ctx)
			if a.webLn != nil {
				_ = a.webLn.Close()
			}
		}
		if a.lsp != nil {
			_ = a.lsp.Shutdown(ctx)
		}
		if lt, ok := a.trigger.(interface{ Close() }); ok {
			lt.Close()
		}
		if a.screen != nil {
			a.screen.Fini()
		}
		a.loop.Stop()

		done := make(chan struct{})
		go func() {
			a.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			a.log.Warn("shutdown timed out")
		}
		a.log.Info("stopped", "uptime", a.metrics.Snapshot().Uptime.Round(time.Second).String())
		if a.logFile != nil {
			_ = a.logFile.Close()
		}
	})
}

// Config returns the active configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Session returns the session manager.
func (a *Application) Session() *session.Manager { return a.session }

// Metrics returns the input metrics.
func (a *Application) Metrics() *Metrics { return a.metrics }

// WebAddr returns the address the web backend listens on.
func (a *Application) WebAddr() string {
	if a.webLn == nil {
		return ""
	}
	return a.webLn.Addr().String()
}

// Editor returns the terminal editor of item.
func (a *Application) Editor(item *session.Item) (*native.Editor, bool) {
	e, ok := a.editors[item]
	return e, ok
}
