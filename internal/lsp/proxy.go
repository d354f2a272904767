package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/codeshell/internal/lang"
	"github.com/dshills/codeshell/internal/logging"
)

// Status is the lifecycle state of a Proxy.
type Status int32

const (
	StatusStopped Status = iota
	StatusStarting
	StatusRunning
	StatusFailed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config defines how to start a language server.
type Config struct {
	// Command is the executable to run.
	Command string

	// Args are command-line arguments.
	Args []string

	// Env are additional environment variables.
	Env map[string]string

	// WorkspaceRoot is sent as the root URI and used as the working directory.
	WorkspaceRoot string

	// StartTimeout bounds the initialize handshake (default: 10s).
	StartTimeout time.Duration
}

// Spawner starts the server and returns its stdio as one stream.
type Spawner func(ctx context.Context, cfg Config) (io.ReadWriteCloser, error)

// DiagnosticsHandler receives server diagnostics for a file path.
type DiagnosticsHandler func(path string, diags []lang.Diagnostic)

// Proxy owns one language-server connection.
type Proxy struct {
	cfg   Config
	spawn Spawner
	log   *logging.Logger

	once     sync.Once
	startErr error // result of the first Start
	status   atomic.Int32

	mu        sync.Mutex
	err       error
	transport *Transport
	cancel    context.CancelFunc
	server    *ServerInfo
	versions  map[DocumentURI]int
	onDiags   DiagnosticsHandler
}

// ProxyOption configures a Proxy.
type ProxyOption func(*Proxy)

// WithSpawner replaces process spawning, for tests and embedded servers.
func WithSpawner(s Spawner) ProxyOption {
	return func(p *Proxy) {
		if s != nil {
			p.spawn = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) ProxyOption {
	return func(p *Proxy) {
		if log != nil {
			p.log = log
		}
	}
}

// NewProxy creates a proxy. Nothing is started until Start.
func NewProxy(cfg Config, opts ...ProxyOption) *Proxy {
	if cfg.StartTimeout <= 0 {
		cfg.StartTimeout = 10 * time.Second
	}
	p := &Proxy{
		cfg:      cfg,
		spawn:    spawnProcess,
		log:      logging.Nop(),
		versions: make(map[DocumentURI]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.Component("lsp")
	return p
}

// WorkspaceRoot returns the configured workspace root.
func (p *Proxy) WorkspaceRoot() string {
	return p.cfg.WorkspaceRoot
}

// Status returns the current lifecycle state.
func (p *Proxy) Status() Status {
	return Status(p.status.Load())
}

// Err returns why the server is not running: the start failure or a lost
// connection.
func (p *Proxy) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// ServerInfo returns what the server reported about itself.
func (p *Proxy) ServerInfo() (ServerInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.server == nil {
		return ServerInfo{}, false
	}
	return *p.server, true
}

// OnDiagnostics sets the handler for published diagnostics.
func (p *Proxy) OnDiagnostics(fn DiagnosticsHandler) {
	p.mu.Lock()
	p.onDiags = fn
	p.mu.Unlock()
}

// Start spawns the server and runs the initialize handshake. Only the first
// call does any work; later calls return its result.
func (p *Proxy) Start(ctx context.Context) error {
	p.once.Do(func() {
		p.startErr = p.start(ctx)
		if p.startErr != nil {
			p.mu.Lock()
			p.err = p.startErr
			p.mu.Unlock()
			p.log.Warn("language server unavailable", "error", p.startErr)
		}
	})
	return p.startErr
}

func (p *Proxy) start(ctx context.Context) error {
	if p.cfg.Command == "" {
		p.status.Store(int32(StatusFailed))
		return &StartError{Stage: "spawn", Err: ErrNoCommand}
	}
	p.status.Store(int32(StatusStarting))
	p.log.Info("starting language server", "command", p.cfg.Command, "root", p.cfg.WorkspaceRoot)

	runCtx, cancel := context.WithCancel(context.Background())
	conn, err := p.spawn(runCtx, p.cfg)
	if err != nil {
		cancel()
		p.status.Store(int32(StatusFailed))
		return &StartError{Command: p.cfg.Command, Stage: "spawn", Err: err}
	}

	t := NewTransport(conn, conn, conn, p.log)
	t.OnNotification("textDocument/publishDiagnostics", p.handleDiagnostics)
	t.OnNotification("window/logMessage", func(_ string, params json.RawMessage) {
		p.log.Debug("server log", "message", string(params))
	})
	t.Start(runCtx)

	initCtx, initCancel := context.WithTimeout(ctx, p.cfg.StartTimeout)
	defer initCancel()

	var result InitializeResult
	if err := t.Call(initCtx, "initialize", p.initializeParams(), &result); err != nil {
		cancel()
		_ = t.Close()
		p.status.Store(int32(StatusFailed))
		return &StartError{Command: p.cfg.Command, Stage: "initialize", Err: err}
	}
	if err := t.Notify("initialized", struct{}{}); err != nil {
		cancel()
		_ = t.Close()
		p.status.Store(int32(StatusFailed))
		return &StartError{Command: p.cfg.Command, Stage: "initialize", Err: err}
	}

	p.mu.Lock()
	p.transport = t
	p.cancel = cancel
	p.server = result.ServerInfo
	p.mu.Unlock()
	p.status.Store(int32(StatusRunning))

	go func() {
		<-t.Done()
		if p.status.CompareAndSwap(int32(StatusRunning), int32(StatusFailed)) {
			p.log.Warn("language server connection lost")
			p.mu.Lock()
			p.err = &StartError{Command: p.cfg.Command, Stage: "run", Err: ErrShutdown}
			p.mu.Unlock()
		}
	}()

	p.log.Info("language server running", "command", p.cfg.Command)
	return nil
}

func (p *Proxy) initializeParams() InitializeParams {
	params := InitializeParams{
		ProcessID: os.Getpid(),
		Capabilities: map[string]any{
			"textDocument": map[string]any{
				"definition":         map[string]any{"dynamicRegistration": false},
				"publishDiagnostics": map[string]any{"relatedInformation": false},
				"synchronization":    map[string]any{"didSave": false},
			},
		},
		ClientInfo: &ClientInfo{Name: "codeshell"},
	}
	if root := p.cfg.WorkspaceRoot; root != "" {
		uri := FilePathToURI(root)
		params.RootURI = uri
		params.WorkspaceFolders = []WorkspaceFolder{{URI: uri, Name: filepath.Base(root)}}
	}
	return params
}

func (p *Proxy) handleDiagnostics(_ string, params json.RawMessage) {
	var pd PublishDiagnosticsParams
	if err := json.Unmarshal(params, &pd); err != nil {
		p.log.Warn("bad diagnostics payload", "error", err)
		return
	}
	p.mu.Lock()
	fn := p.onDiags
	p.mu.Unlock()
	if fn == nil {
		return
	}
	fn(URIToFilePath(pd.URI), ConvertDiagnostics(pd.Diagnostics))
}

// ConvertDiagnostics maps server diagnostics onto editor diagnostics.
// Informational and hint diagnostics are reported as warnings.
func ConvertDiagnostics(in []Diagnostic) []lang.Diagnostic {
	out := make([]lang.Diagnostic, 0, len(in))
	for _, d := range in {
		sev := lang.SeverityWarning
		if d.Severity == SeverityError {
			sev = lang.SeverityError
		}
		out = append(out, lang.Diagnostic{
			Severity: sev,
			Line:     d.Range.Start.Line,
			Column:   d.Range.Start.Character,
			Message:  d.Message,
		})
	}
	return out
}

func (p *Proxy) running() (*Transport, error) {
	if p.Status() != StatusRunning {
		return nil, ErrNotRunning
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.transport == nil {
		return nil, ErrNotRunning
	}
	return p.transport, nil
}

// DidOpen tells the server a document was opened.
func (p *Proxy) DidOpen(path, languageID, text string) error {
	t, err := p.running()
	if err != nil {
		return err
	}
	uri := FilePathToURI(path)
	p.mu.Lock()
	p.versions[uri] = 1
	p.mu.Unlock()
	return t.Notify("textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	})
}

// DidChange sends the full new text of a document.
func (p *Proxy) DidChange(path, text string) error {
	t, err := p.running()
	if err != nil {
		return err
	}
	uri := FilePathToURI(path)
	p.mu.Lock()
	p.versions[uri]++
	version := p.versions[uri]
	p.mu.Unlock()
	return t.Notify("textDocument/didChange", DidChangeTextDocumentParams{
		TextDocument:   VersionedTextDocumentIdentifier{URI: uri, Version: version},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: text}},
	})
}

// DidClose tells the server a document was closed.
func (p *Proxy) DidClose(path string) error {
	t, err := p.running()
	if err != nil {
		return err
	}
	uri := FilePathToURI(path)
	p.mu.Lock()
	delete(p.versions, uri)
	p.mu.Unlock()
	return t.Notify("textDocument/didClose", DidCloseTextDocumentParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
	})
}

// Definition asks where the symbol at line and column of path is defined.
func (p *Proxy) Definition(ctx context.Context, path string, line, column int) ([]Location, error) {
	t, err := p.running()
	if err != nil {
		return nil, err
	}
	params := TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: FilePathToURI(path)},
		Position:     Position{Line: line, Character: column},
	}
	var raw json.RawMessage
	if err := t.Call(ctx, "textDocument/definition", params, &raw); err != nil {
		return nil, err
	}
	return parseLocations(raw)
}

// parseLocations accepts the Location, []Location and null result forms.
func parseLocations(raw json.RawMessage) ([]Location, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '[' {
		var locs []Location
		if err := json.Unmarshal(raw, &locs); err != nil {
			return nil, fmt.Errorf("definition result: %w", err)
		}
		return locs, nil
	}
	var loc Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil, fmt.Errorf("definition result: %w", err)
	}
	return []Location{loc}, nil
}

// Shutdown asks a running server to exit and closes the connection.
func (p *Proxy) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	t, cancel := p.transport, p.cancel
	p.transport, p.cancel = nil, nil
	p.mu.Unlock()

	if t == nil {
		return nil
	}
	p.status.Store(int32(StatusStopped))

	callCtx, callCancel := context.WithTimeout(ctx, 5*time.Second)
	defer callCancel()
	err := t.Call(callCtx, "shutdown", nil, nil)
	if nerr := t.Notify("exit", nil); err == nil {
		err = nerr
	}
	if cerr := t.Close(); err == nil {
		err = cerr
	}
	if cancel != nil {
		cancel()
	}
	if errors.Is(err, ErrShutdown) {
		err = nil
	}
	p.log.Info("language server stopped")
	return err
}

// processConn joins a child process's pipes into one stream.
type processConn struct {
	io.ReadCloser
	stdin io.WriteCloser
	cmd   *exec.Cmd
}

func (c *processConn) Write(b []byte) (int, error) {
	return c.stdin.Write(b)
}

func (c *processConn) Close() error {
	_ = c.stdin.Close()
	err := c.ReadCloser.Close()
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_ = c.cmd.Wait()
	}
	return err
}

func spawnProcess(ctx context.Context, cfg Config) (io.ReadWriteCloser, error) {
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Env = os.Environ()
	for k, v := range cfg.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	if cfg.WorkspaceRoot != "" {
		cmd.Dir = cfg.WorkspaceRoot
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		return nil, fmt.Errorf("start process: %w", err)
	}
	return &processConn{ReadCloser: stdout, stdin: stdin, cmd: cmd}, nil
}
