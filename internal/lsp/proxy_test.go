package lsp

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/codeshell/internal/lang"
)

func startFake(t *testing.T) (*Proxy, *fakeServer, *atomic.Int32) {
	t.Helper()
	srv, client := newFakeServer(t)
	go srv.serve()

	var spawns atomic.Int32
	p := NewProxy(Config{Command: "fake-gd", WorkspaceRoot: "/proj", StartTimeout: 2 * time.Second},
		WithSpawner(func(context.Context, Config) (io.ReadWriteCloser, error) {
			spawns.Add(1)
			return client, nil
		}))
	return p, srv, &spawns
}

func waitNotified(t *testing.T, srv *fakeServer, want string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got := <-srv.notified:
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("server never received %s", want)
		}
	}
}

func TestProxyStartOnce(t *testing.T) {
	p, srv, spawns := startFake(t)
	ctx := context.Background()

	if p.Status() != StatusStopped {
		t.Fatalf("initial status = %v", p.Status())
	}
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := p.Start(ctx); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if n := spawns.Load(); n != 1 {
		t.Errorf("spawned %d times, want 1", n)
	}
	if p.Status() != StatusRunning {
		t.Errorf("status = %v, want running", p.Status())
	}
	waitNotified(t, srv, "initialized")

	info, ok := p.ServerInfo()
	if !ok || info.Name != "fake-gd" {
		t.Errorf("ServerInfo = %+v, %v", info, ok)
	}
	if p.WorkspaceRoot() != "/proj" {
		t.Errorf("WorkspaceRoot = %q", p.WorkspaceRoot())
	}
}

func TestProxyDefinition(t *testing.T) {
	p, srv, _ := startFake(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := p.Definition(ctx, "/proj/a.gd", 1, 1); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Definition before start = %v", err)
	}
	if err := p.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := p.DidOpen("/proj/a.gd", "gdscript", "extends Base\n"); err != nil {
		t.Fatalf("DidOpen() error = %v", err)
	}
	waitNotified(t, srv, "textDocument/didOpen")

	locs, err := p.Definition(ctx, "/proj/a.gd", 3, 4)
	if err != nil {
		t.Fatalf("Definition() error = %v", err)
	}
	if len(locs) != 1 || locs[0].Range.Start.Line != 13 || URIToFilePath(locs[0].URI) != "/proj/base.gd" {
		t.Errorf("locations = %+v", locs)
	}
}

func TestProxyShutdown(t *testing.T) {
	p, srv, _ := startFake(t)
	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if p.Status() != StatusStopped {
		t.Errorf("status = %v, want stopped", p.Status())
	}
	waitNotified(t, srv, "exit")
	if err := p.DidChange("/proj/a.gd", ""); !errors.Is(err, ErrNotRunning) {
		t.Errorf("DidChange after shutdown = %v", err)
	}
}

func TestProxyDiagnostics(t *testing.T) {
	p, srv, _ := startFake(t)
	got := make(chan []lang.Diagnostic, 1)
	var gotPath atomic.Value
	p.OnDiagnostics(func(path string, diags []lang.Diagnostic) {
		gotPath.Store(path)
		got <- diags
	})
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := srv.publish(`{"jsonrpc":"2.0","method":"textDocument/publishDiagnostics","params":{"uri":"file:///proj/a.gd","diagnostics":[` +
		`{"range":{"start":{"line":2,"character":1},"end":{"line":2,"character":4}},"severity":1,"message":"bad"},` +
		`{"range":{"start":{"line":5,"character":0},"end":{"line":5,"character":1}},"severity":3,"message":"note"}]}}`)
	if err != nil {
		t.Fatal(err)
	}

	select {
	case diags := <-got:
		if gotPath.Load() != "/proj/a.gd" {
			t.Errorf("path = %v", gotPath.Load())
		}
		if len(diags) != 2 || diags[0].Severity != lang.SeverityError || diags[1].Severity != lang.SeverityWarning || diags[0].Line != 2 {
			t.Errorf("diagnostics = %+v", diags)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("diagnostics not delivered")
	}
}

func TestProxyStartFailures(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		stage string
		want  error
	}{
		{"no command", Config{}, "spawn", ErrNoCommand},
		{"missing binary", Config{Command: "/nonexistent/codeshell-lsp-test"}, "spawn", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProxy(tt.cfg)
			err := p.Start(context.Background())
			var se *StartError
			if !errors.As(err, &se) || se.Stage != tt.stage {
				t.Fatalf("Start() error = %v, want StartError at %s", err, tt.stage)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Start() error = %v, want %v", err, tt.want)
			}
			if p.Status() != StatusFailed {
				t.Errorf("status = %v, want failed", p.Status())
			}
			if !errors.Is(p.Err(), err) {
				t.Errorf("Err() = %v", p.Err())
			}
			if again := p.Start(context.Background()); again != err {
				t.Errorf("second Start() = %v, want first result", again)
			}
		})
	}
}

func TestProxyInitializeTimeout(t *testing.T) {
	srv, client := newFakeServer(t)
	go io.Copy(io.Discard, srv.conn) // reads requests, never answers
	p := NewProxy(Config{Command: "silent", StartTimeout: 50 * time.Millisecond},
		WithSpawner(func(context.Context, Config) (io.ReadWriteCloser, error) {
			return client, nil
		}))

	err := p.Start(context.Background())
	var se *StartError
	if !errors.As(err, &se) || se.Stage != "initialize" {
		t.Fatalf("Start() error = %v", err)
	}
	if p.Status() != StatusFailed {
		t.Errorf("status = %v", p.Status())
	}
}
