package app

import (
	"github.com/dshills/codeshell/internal/config"
	"github.com/dshills/codeshell/internal/lang"
	"github.com/dshills/codeshell/internal/logging"
	"github.com/dshills/codeshell/internal/session"
)

// onChange reacts to session changes on the loop.
func (a *Application) onChange(c session.Change) {
	a.metrics.RecordChange()
	switch c.Kind {
	case session.ChangeClosed:
		delete(a.editors, c.Item)
	case session.ChangeCompletion, session.ChangeContextMenu, session.ChangePalette:
		if a.overlay != nil {
			a.overlay.Sync()
		}
	case session.ChangeRenamed:
		a.setMessage("saved as " + c.Item.Path())
	}
	a.redraw()
}

// applyConfig applies a reloaded configuration. Only display and log level
// take effect without a restart.
func (a *Application) applyConfig(cfg *config.Config, err error) {
	if err != nil {
		a.log.Warn("config reload rejected", "error", err)
		a.setMessage("config error: " + err.Error())
		a.redraw()
		return
	}
	a.cfg = cfg
	a.log.SetLevel(logging.ParseLevel(cfg.Log.Level))
	if a.overlay != nil {
		a.overlay.UseGlyphHints(cfg.Display.ShortcutGlyphs)
	}
	d := session.Display{
		ShowTabs:        cfg.Display.ShowTabs,
		ShowSpaces:      cfg.Display.ShowSpaces,
		ShowLineNumbers: cfg.Display.ShowLineNumbers,
		LineHeight:      cfg.Display.LineHeight,
	}
	if err := a.session.SetDisplay(d); err != nil {
		a.log.Warn("display not applied", "error", err)
	}
	a.setMessage("configuration reloaded")
	a.redraw()
}

// applyServerDiagnostics replaces the diagnostics of the item showing path,
// keeping the symbols of its last validation.
func (a *Application) applyServerDiagnostics(path string, diags []lang.Diagnostic) {
	item, ok := a.session.Lookup(path)
	if !ok {
		return
	}
	var errs, warnings []lang.Diagnostic
	for _, d := range diags {
		if d.Severity == lang.SeverityError {
			errs = append(errs, d)
		} else {
			warnings = append(warnings, d)
		}
	}
	functions := a.session.Completions().LastValidation(item).Functions
	a.session.Completions().ValidationResult(item, functions, errs, warnings)
}
