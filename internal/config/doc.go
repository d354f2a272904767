// Package config provides the configuration system for codeshell.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← CODESHELL_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← codeshell.toml or codeshell.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Layers are parsed into nested maps by the loader sub-package, merged, and
// decoded into the typed Config. A Watcher reloads the file when it changes
// so display settings can follow edits live.
//
// # Basic Usage
//
//	cfg, err := config.Load(config.Options{Path: "codeshell.toml"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Display.LineHeight)
package config
