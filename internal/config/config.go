package config

import (
	"errors"
	"strings"
	"time"

	"github.com/dshills/codeshell/internal/config/loader"
	"github.com/dshills/codeshell/internal/logging"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "CODESHELL_"

// DisplayConfig holds the initial display state.
type DisplayConfig struct {
	ShowTabs        bool
	ShowSpaces      bool
	ShowLineNumbers bool

	// ShortcutGlyphs shows menu shortcuts as symbols (⌃⇧K) instead of
	// names (Ctrl+Shift+K).
	ShortcutGlyphs bool

	// LineHeight is the line height multiplier. Must be positive.
	LineHeight float64
}

// BackendConfig selects and configures the rendering backends.
type BackendConfig struct {
	// Preferred is "auto", "native" or "web".
	Preferred string

	// WebEnabled starts the websocket server for the browser editor.
	WebEnabled bool

	// WebAddr is the listen address of the websocket server.
	WebAddr string
}

// CompletionConfig controls when completions are offered.
type CompletionConfig struct {
	// Triggers are line suffixes that open completions (e.g. ".", "$").
	Triggers []string

	// MinIdentifier is the identifier length that opens completions.
	MinIdentifier int

	// LuaTrigger is an optional Lua chunk deciding whether to complete.
	LuaTrigger string

	// Keywords are always offered as candidates.
	Keywords []string

	// MaxItems bounds the candidate list.
	MaxItems int
}

// LSPConfig describes the language server to start.
type LSPConfig struct {
	Enabled      bool
	Command      string
	Args         []string
	StartTimeout time.Duration
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string

	// File receives log output; empty means stderr.
	File string
}

// Config is the complete codeshell configuration.
type Config struct {
	Display    DisplayConfig
	Backend    BackendConfig
	Completion CompletionConfig
	LSP        LSPConfig
	Log        LogConfig
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			ShowLineNumbers: true,
			LineHeight:      1.0,
		},
		Backend: BackendConfig{
			Preferred: "auto",
			WebAddr:   "127.0.0.1:7420",
		},
		Completion: CompletionConfig{
			Triggers:      []string{".", "$", "@"},
			MinIdentifier: 3,
			Keywords: []string{
				"func", "var", "const", "extends", "class_name", "signal",
				"return", "if", "elif", "else", "for", "while", "match", "pass",
			},
			MaxItems: 50,
		},
		LSP: LSPConfig{
			StartTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Options selects the configuration sources.
type Options struct {
	// Path is the config file. Empty loads defaults and environment only.
	Path string

	// FS reads the config file; nil uses the OS.
	FS loader.FileSystem

	// Environ overrides os.Environ, for tests.
	Environ []string
}

// Load reads the configured layers, merges them over the defaults and
// validates the result. A missing config file is not an error.
func Load(opts Options) (*Config, error) {
	merged := make(map[string]any)

	if opts.Path != "" {
		fsys := opts.FS
		if fsys == nil {
			fsys = loader.DefaultFS()
		}
		fl, err := loader.ForPath(fsys, opts.Path)
		if err != nil {
			return nil, err
		}
		data, err := fl.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	env := loader.NewEnvLoader(EnvPrefix)
	if opts.Environ != nil {
		env = loader.NewEnvLoaderFrom(EnvPrefix, opts.Environ)
	}
	envData, err := env.Load()
	if err != nil {
		return nil, err
	}
	merged = loader.DeepMerge(merged, envData)

	cfg, err := FromMap(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromMap decodes a merged settings map over the defaults. Unknown keys are
// ignored.
func FromMap(m map[string]any) (*Config, error) {
	cfg := Default()
	d := decoder{data: m}

	d.boolean(&cfg.Display.ShowTabs, "display", "showTabs")
	d.boolean(&cfg.Display.ShowSpaces, "display", "showSpaces")
	d.boolean(&cfg.Display.ShowLineNumbers, "display", "showLineNumbers")
	d.boolean(&cfg.Display.ShortcutGlyphs, "display", "shortcutGlyphs")
	d.float(&cfg.Display.LineHeight, "display", "lineHeight")

	d.str(&cfg.Backend.Preferred, "backend", "preferred")
	d.boolean(&cfg.Backend.WebEnabled, "backend", "webEnabled")
	d.str(&cfg.Backend.WebAddr, "backend", "webAddr")

	d.stringList(&cfg.Completion.Triggers, "completion", "triggers")
	d.integer(&cfg.Completion.MinIdentifier, "completion", "minIdentifier")
	d.str(&cfg.Completion.LuaTrigger, "completion", "luaTrigger")
	d.stringList(&cfg.Completion.Keywords, "completion", "keywords")
	d.integer(&cfg.Completion.MaxItems, "completion", "maxItems")

	d.boolean(&cfg.LSP.Enabled, "lsp", "enabled")
	d.str(&cfg.LSP.Command, "lsp", "command")
	d.stringList(&cfg.LSP.Args, "lsp", "args")
	d.duration(&cfg.LSP.StartTimeout, "lsp", "startTimeout")

	d.str(&cfg.Log.Level, "log", "level")
	d.str(&cfg.Log.File, "log", "file")

	if len(d.errs) > 0 {
		return nil, errors.Join(d.errs...)
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	bad := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if !(c.Display.LineHeight > 0) {
		bad("display.lineHeight", "must be positive", c.Display.LineHeight)
	}
	switch strings.ToLower(c.Backend.Preferred) {
	case "auto", "native", "web":
	default:
		bad("backend.preferred", `must be "auto", "native" or "web"`, c.Backend.Preferred)
	}
	if c.Backend.WebEnabled && c.Backend.WebAddr == "" {
		bad("backend.webAddr", "required when the web backend is enabled", c.Backend.WebAddr)
	}
	if c.Completion.MinIdentifier < 1 {
		bad("completion.minIdentifier", "must be at least 1", c.Completion.MinIdentifier)
	}
	if c.Completion.MaxItems < 1 {
		bad("completion.maxItems", "must be at least 1", c.Completion.MaxItems)
	}
	if c.LSP.Enabled && c.LSP.Command == "" {
		bad("lsp.command", "required when lsp is enabled", c.LSP.Command)
	}
	if c.LSP.StartTimeout < 0 {
		bad("lsp.startTimeout", "must not be negative", c.LSP.StartTimeout)
	}
	if !logging.ValidLevel(c.Log.Level) {
		bad("log.level", "unknown level", c.Log.Level)
	}

	return errors.Join(errs...)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Completion.Triggers = append([]string(nil), c.Completion.Triggers...)
	out.Completion.Keywords = append([]string(nil), c.Completion.Keywords...)
	out.LSP.Args = append([]string(nil), c.LSP.Args...)
	return &out
}
