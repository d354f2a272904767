// Package main is the entry point for the codeshell editor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/codeshell/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if addr := application.WebAddr(); addr != "" && opts.Headless {
		fmt.Fprintf(os.Stderr, "codeshell: serving on http://%s\n", addr)
	}

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, app.ErrQuit) || errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml or .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.WorkspacePath, "workspace", "", "Workspace directory passed to the language server")
	flag.StringVar(&opts.WorkspacePath, "w", "", "Workspace directory (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.Backend, "backend", "", "Preferred editor backend (auto, native, web)")
	flag.BoolVar(&opts.Web, "web", false, "Enable the browser backend")
	flag.BoolVar(&opts.Headless, "headless", false, "Run without a terminal; requires the browser backend")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "codeshell - multi-document script editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: codeshell [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  codeshell player.gd                 Open a file in the terminal\n")
		fmt.Fprintf(os.Stderr, "  codeshell -web player.gd            Also serve the browser editor\n")
		fmt.Fprintf(os.Stderr, "  codeshell -headless -web a.gd b.gd  Browser only\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("codeshell %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}
	switch opts.Backend {
	case "", "auto", "native", "web":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid backend %q (must be auto, native, or web)\n", opts.Backend)
		os.Exit(1)
	}

	opts.Files = flag.Args()
	for i, f := range opts.Files {
		if abs, err := filepath.Abs(f); err == nil {
			opts.Files[i] = abs
		}
	}

	if opts.WorkspacePath == "" && len(opts.Files) > 0 {
		opts.WorkspacePath = filepath.Dir(opts.Files[0])
	}

	return opts
}
