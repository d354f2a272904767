package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dshills/codeshell/internal/config/loader"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(s), nil
}

func TestDefaultValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	fsys := memFS{"/etc/codeshell.toml": `
[display]
showTabs = true
shortcutGlyphs = true
lineHeight = 1.5

[backend]
preferred = "web"
webEnabled = true

[lsp]
enabled = true
command = "godot-lsp"
args = ["--stdio"]
startTimeout = "3s"
`}
	cfg, err := Load(Options{Path: "/etc/codeshell.toml", FS: fsys, Environ: []string{}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Display.ShowTabs || cfg.Display.LineHeight != 1.5 || !cfg.Display.ShowLineNumbers || !cfg.Display.ShortcutGlyphs {
		t.Errorf("Display = %+v", cfg.Display)
	}
	if cfg.Backend.Preferred != "web" || !cfg.Backend.WebEnabled || cfg.Backend.WebAddr != Default().Backend.WebAddr {
		t.Errorf("Backend = %+v", cfg.Backend)
	}
	if cfg.LSP.Command != "godot-lsp" || !reflect.DeepEqual(cfg.LSP.Args, []string{"--stdio"}) || cfg.LSP.StartTimeout != 3*time.Second {
		t.Errorf("LSP = %+v", cfg.LSP)
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	fsys := memFS{"/codeshell.yaml": `
completion:
  minIdentifier: 4
  keywords: [extends, func]
log:
  level: warn
`}
	cfg, err := Load(Options{
		Path:    "/codeshell.yaml",
		FS:      fsys,
		Environ: []string{"CODESHELL_LOG_LEVEL=debug", "CODESHELL_COMPLETION_MAX_ITEMS=10"},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Completion.MinIdentifier != 4 || cfg.Completion.MaxItems != 10 {
		t.Errorf("Completion = %+v", cfg.Completion)
	}
	if !reflect.DeepEqual(cfg.Completion.Keywords, []string{"extends", "func"}) {
		t.Errorf("Keywords = %v", cfg.Completion.Keywords)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, env should win", cfg.Log.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(Options{Path: "/nowhere.toml", FS: memFS{}, Environ: []string{}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		want error
	}{
		{"type mismatch", "[display]\nshowTabs = \"yes\"\n", ErrTypeMismatch},
		{"bad line height", "[display]\nlineHeight = 0.0\n", ErrValidationFailed},
		{"bad backend", "[backend]\npreferred = \"gpu\"\n", ErrValidationFailed},
		{"lsp without command", "[lsp]\nenabled = true\n", ErrValidationFailed},
		{"bad level", "[log]\nlevel = \"loud\"\n", ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(Options{Path: "/c.toml", FS: memFS{"/c.toml": tt.file}, Environ: []string{}})
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}

	_, err := Load(Options{Path: "/c.ini", FS: memFS{}, Environ: []string{}})
	if !errors.Is(err, loader.ErrUnsupportedFormat) {
		t.Errorf("unsupported format error = %v", err)
	}
}

func TestValidateReportsEverything(t *testing.T) {
	cfg := Default()
	cfg.Display.LineHeight = -1
	cfg.Completion.MinIdentifier = 0
	err := cfg.Validate()

	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ve *ValidationError
		if errors.As(e, &ve) {
			fields = append(fields, ve.Path)
		}
	}
	want := []string{"display.lineHeight", "completion.minIdentifier"}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("invalid fields = %v, want %v", fields, want)
	}
}

func TestClone(t *testing.T) {
	a := Default()
	b := a.Clone()
	b.Completion.Triggers[0] = "!"
	if a.Completion.Triggers[0] == "!" {
		t.Error("Clone shares the triggers slice")
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codeshell.toml")
	if err := os.WriteFile(path, []byte("[display]\nshowTabs = false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var got []*Config
	done := make(chan struct{}, 4)
	w, err := NewWatcher(Options{Path: path, Environ: []string{}}, func(cfg *Config, err error) {
		if err != nil {
			return
		}
		mu.Lock()
		got = append(got, cfg)
		mu.Unlock()
		done <- struct{}{}
	}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[display]\nshowTabs = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
	mu.Lock()
	defer mu.Unlock()
	if !got[len(got)-1].Display.ShowTabs {
		t.Error("reloaded config does not reflect the write")
	}
}

func TestWatcherClose(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(Options{Path: filepath.Join(dir, "c.toml")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("second Close() = %v", err)
	}
}
