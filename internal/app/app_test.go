package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/codeshell/internal/hostio"
	"github.com/dshills/codeshell/internal/session"
)

func newTestApp(t *testing.T, files map[string]string, opts Options) (*Application, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	opts.Screen = screen
	if opts.IO == nil {
		opts.IO = hostio.NewMemoryServices(files)
	}
	if opts.Environ == nil {
		opts.Environ = []string{}
	}
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Shutdown)
	return a, screen
}

func row(s tcell.SimulationScreen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y) //nolint:staticcheck
		b.WriteRune(r)
	}
	return b.String()
}

func key(k tcell.Key, r rune, mod tcell.ModMask) *tcell.EventKey {
	return tcell.NewEventKey(k, r, mod)
}

func startApp(t *testing.T, a *Application) <-chan error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		done <- a.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-finished:
		case <-time.After(5 * time.Second):
			t.Error("Run did not stop")
		}
	})
	return done
}

// onLoop runs fn on the UI loop and waits for it.
func onLoop(t *testing.T, a *Application, fn func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.loop.Call(ctx, fn); err != nil {
		t.Fatalf("loop call: %v", err)
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestOpensFilesIntoTabs(t *testing.T) {
	a, screen := newTestApp(t, map[string]string{"/a.gd": "var a", "/b.gd": "var b"}, Options{Files: []string{"/a.gd", "/b.gd"}})

	m := a.Session()
	if m.Len() != 2 {
		t.Fatalf("open items = %d, want 2", m.Len())
	}
	if m.Active().Path() != "/b.gd" {
		t.Errorf("active = %s, want /b.gd", m.Active().Path())
	}
	first, _ := m.Lookup("/a.gd")
	ea, _ := a.Editor(first)
	eb, _ := a.Editor(m.Active())
	if ea == nil || eb == nil {
		t.Fatal("native editors not tracked")
	}
	if ea.Visible() || !eb.Visible() {
		t.Errorf("visible a=%v b=%v, want only b", ea.Visible(), eb.Visible())
	}
	if top := row(screen, 0); !strings.HasPrefix(top, " a.gd   b.gd ") {
		t.Errorf("tab bar = %q", top)
	}
	_, h := screen.Size()
	if status := row(screen, h-1); !strings.Contains(status, "/b.gd │ native │ E:0 W:0") {
		t.Errorf("status = %q", status)
	}
}

func TestOpenFailureIsReported(t *testing.T) {
	a, _ := newTestApp(t, nil, Options{Files: []string{"/missing.gd"}})
	if a.Session().Len() != 0 {
		t.Errorf("open items = %d, want 0", a.Session().Len())
	}
	if a.message == "" {
		t.Error("failure not shown in the status line")
	}
}

func TestGlobalKeys(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"/a.gd": "", "/b.gd": ""}, Options{Files: []string{"/a.gd", "/b.gd"}})
	m := a.Session()

	a.handleEvent(key(tcell.KeyPgUp, 0, tcell.ModCtrl))
	if m.Active().Path() != "/a.gd" {
		t.Errorf("after Ctrl+PgUp active = %s", m.Active().Path())
	}
	a.handleEvent(key(tcell.KeyPgDn, 0, tcell.ModCtrl))
	if m.Active().Path() != "/b.gd" {
		t.Errorf("after Ctrl+PgDn active = %s", m.Active().Path())
	}

	a.handleEvent(key(tcell.KeyRune, 'l', tcell.ModAlt))
	if m.Display().ShowLineNumbers {
		t.Error("Alt+L did not hide line numbers")
	}
	a.handleEvent(key(tcell.KeyRune, 't', tcell.ModAlt))
	if !m.Display().ShowTabs {
		t.Error("Alt+T did not show tabs")
	}
	a.handleEvent(key(tcell.KeyRune, '=', tcell.ModAlt))
	if got := m.Display().LineHeight; got != 1.25 {
		t.Errorf("line height = %v, want 1.25", got)
	}

	a.handleEvent(key(tcell.KeyCtrlW, 0, tcell.ModCtrl))
	if m.Len() != 1 || m.Active().Path() != "/a.gd" {
		t.Errorf("after Ctrl+W: %d items", m.Len())
	}

	a.handleEvent(key(tcell.KeyCtrlQ, 0, tcell.ModCtrl))
	if !a.quitting.Load() {
		t.Error("Ctrl+Q did not quit")
	}
}

func TestTypingReachesActiveEditor(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"/a.gd": "", "/b.gd": "end"}, Options{Files: []string{"/a.gd", "/b.gd"}})

	for _, r := range "var " {
		a.handleEvent(key(tcell.KeyRune, r, tcell.ModNone))
	}
	if got := a.Session().Active().Backend().Text(); got != "var end" {
		t.Errorf("active text = %q, want %q", got, "var end")
	}
	first, _ := a.Session().Lookup("/a.gd")
	if got := first.Backend().Text(); got != "" {
		t.Errorf("inactive text = %q", got)
	}
	if a.Metrics().Snapshot().InputCount != 4 {
		t.Errorf("input count = %d, want 4", a.Metrics().Snapshot().InputCount)
	}
}

func TestPaletteOverlay(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"/a.gd": ""}, Options{Files: []string{"/a.gd"}})
	item := a.Session().Active()

	a.handleEvent(key(tcell.KeyF1, 0, tcell.ModNone))
	if !a.overlay.Active() {
		t.Fatal("palette not shown")
	}
	if _, ok := a.Session().Bridge().PendingPalette(item); !ok {
		t.Error("palette not pending")
	}

	a.handleEvent(key(tcell.KeyEscape, 0, tcell.ModNone))
	if a.overlay.Active() {
		t.Error("palette still shown")
	}
	if _, ok := a.Session().Bridge().PendingPalette(item); ok {
		t.Error("palette still pending")
	}
}

func TestClickTab(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"/a.gd": "", "/b.gd": ""}, Options{Files: []string{"/a.gd", "/b.gd"}})

	a.handleEvent(tcell.NewEventMouse(2, 0, tcell.Button1, tcell.ModNone))
	if got := a.Session().Active().Path(); got != "/a.gd" {
		t.Errorf("active = %s, want /a.gd", got)
	}
	a.handleEvent(tcell.NewEventMouse(9, 0, tcell.Button1, tcell.ModNone))
	if got := a.Session().Active().Path(); got != "/b.gd" {
		t.Errorf("active = %s, want /b.gd", got)
	}
}

func TestRunQuits(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"/a.gd": ""}, Options{Files: []string{"/a.gd"}})
	done := startApp(t, a)

	a.Quit()
	select {
	case err := <-done:
		if !errors.Is(err, ErrQuit) {
			t.Errorf("Run = %v, want ErrQuit", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRunInputFromScreen(t *testing.T) {
	a, screen := newTestApp(t, map[string]string{"/a.gd": ""}, Options{Files: []string{"/a.gd"}})
	done := startApp(t, a)

	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	eventually(t, "typed text", func() bool {
		var text string
		onLoop(t, a, func() { text = a.Session().Active().Backend().Text() })
		return text == "x"
	})

	screen.InjectKey(tcell.KeyCtrlQ, 0, tcell.ModCtrl)
	select {
	case err := <-done:
		if !errors.Is(err, ErrQuit) {
			t.Errorf("Run = %v, want ErrQuit", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWebBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codeshell.toml")
	writeConfig(t, path, "[backend]\nwebEnabled = true\nwebAddr = \"127.0.0.1:0\"\npreferred = \"web\"\n")
	a, _ := newTestApp(t, map[string]string{"/a.gd": "x"}, Options{ConfigPath: path, Files: []string{"/a.gd"}})
	startApp(t, a)

	if a.WebAddr() == "" {
		t.Fatal("web backend not listening")
	}

	var kind session.BackendKind
	onLoop(t, a, func() { kind = a.Session().Active().Backend().Kind() })
	if kind != session.BackendWeb {
		t.Errorf("backend = %v, want web", kind)
	}

	resp, err := http.Get("http://" + a.WebAddr() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestConfigReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codeshell.toml")
	writeConfig(t, path, "[display]\nshowLineNumbers = true\n")
	a, _ := newTestApp(t, map[string]string{"/a.gd": ""}, Options{ConfigPath: path, Files: []string{"/a.gd"}})
	startApp(t, a)

	writeConfig(t, path, "[display]\nshowLineNumbers = false\nlineHeight = 1.5\n")
	eventually(t, "reloaded display", func() bool {
		var d session.Display
		onLoop(t, a, func() { d = a.Session().Display() })
		return !d.ShowLineNumbers && d.LineHeight == 1.5
	})
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codeshell.toml")
	writeConfig(t, path, "[display]\nlineHeight = -1\n")
	_, err := New(Options{ConfigPath: path, Screen: tcell.NewSimulationScreen("UTF-8"), Environ: []string{}})
	var ie *InitError
	if !errors.As(err, &ie) || ie.Component != "config" {
		t.Errorf("err = %v, want config InitError", err)
	}
}

func TestHeadlessNeedsWeb(t *testing.T) {
	_, err := New(Options{Headless: true, Environ: []string{}})
	if !errors.Is(err, ErrNoFrontend) {
		t.Errorf("err = %v, want ErrNoFrontend", err)
	}
}
