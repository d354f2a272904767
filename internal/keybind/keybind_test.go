package keybind

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestParse(t *testing.T) {
	tests := []struct {
		binding  string
		wantMods tcell.ModMask
		wantKey  tcell.Key
		wantRune rune
		wantName string
	}{
		{"⌘K", tcell.ModMeta, tcell.KeyRune, 'k', "k"},
		{"F5", 0, tcell.KeyF5, 0, "f5"},
		{"f20", 0, tcell.KeyF20, 0, "f20"},
		{"Ctrl+Shift+P", tcell.ModCtrl | tcell.ModShift, tcell.KeyRune, 'p', "p"},
		{"cmd+enter", tcell.ModMeta, tcell.KeyEnter, 0, "enter"},
		{"Option+Return", tcell.ModAlt, tcell.KeyEnter, 0, "return"},
		{"⌃⇧Tab", tcell.ModCtrl | tcell.ModShift, tcell.KeyTab, 0, "tab"},
		{"⌥Space", tcell.ModAlt, tcell.KeyRune, ' ', "space"},
		{"Alt+Page Up", tcell.ModAlt, tcell.KeyPgUp, 0, "pageup"},
		{"Ctrl++", tcell.ModCtrl, tcell.KeyRune, '+', "+"},
		{"Shift+⌘Left", tcell.ModShift | tcell.ModMeta, tcell.KeyLeft, 0, "left"},
		{"⌘⌫", tcell.ModMeta, tcell.KeyBackspace2, 0, "backspace"},
		{"Escape", 0, tcell.KeyEscape, 0, "escape"},
		{"^C", tcell.ModCtrl, tcell.KeyRune, 'c', "c"},
		{"^", 0, tcell.KeyRune, '^', "^"},
		{"Ctrl+Insert", tcell.ModCtrl, tcell.KeyRune, 0, "insert"},
		{"  Cmd + S  ", tcell.ModMeta, tcell.KeyRune, 's', "s"},
	}

	for _, tt := range tests {
		sc, ok := Parse(tt.binding)
		if !ok {
			t.Errorf("Parse(%q) failed", tt.binding)
			continue
		}
		if sc.Mods != tt.wantMods {
			t.Errorf("Parse(%q) mods = %v, want %v", tt.binding, sc.Mods, tt.wantMods)
		}
		if sc.Key != tt.wantKey {
			t.Errorf("Parse(%q) key = %v, want %v", tt.binding, sc.Key, tt.wantKey)
		}
		if sc.Rune != tt.wantRune {
			t.Errorf("Parse(%q) rune = %q, want %q", tt.binding, sc.Rune, tt.wantRune)
		}
		if sc.Name != tt.wantName {
			t.Errorf("Parse(%q) name = %q, want %q", tt.binding, sc.Name, tt.wantName)
		}
	}
}

func TestParseUnparseable(t *testing.T) {
	for _, b := range []string{"", "   ", "Ctrl+", "Hyper+K", "⌘", "++K"} {
		if sc, ok := Parse(b); ok {
			t.Errorf("Parse(%q) = %+v, want no shortcut", b, sc)
		}
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		binding string
		label   string
		glyphs  string
	}{
		{"⌘K", "Cmd+K", "⌘K"},
		{"ctrl+shift+p", "Ctrl+Shift+P", "⌃⇧P"},
		{"F5", "F5", "F5"},
		{"alt+space", "Alt+Space", "⌥Space"},
		{"cmd+pgdn", "Cmd+PageDown", "⌘PageDown"},
	}
	for _, tt := range tests {
		sc, ok := Parse(tt.binding)
		if !ok {
			t.Fatalf("Parse(%q) failed", tt.binding)
		}
		if got := sc.Label(); got != tt.label {
			t.Errorf("Label(%q) = %q, want %q", tt.binding, got, tt.label)
		}
		if got := sc.Glyphs(); got != tt.glyphs {
			t.Errorf("Glyphs(%q) = %q, want %q", tt.binding, got, tt.glyphs)
		}
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		binding string
		ev      *tcell.EventKey
		want    bool
	}{
		{"F5", tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), true},
		{"F5", tcell.NewEventKey(tcell.KeyF6, 0, tcell.ModNone), false},
		{"Alt+x", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModAlt), true},
		{"Alt+x", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), false},
		{"Ctrl+S", tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl), true},
	}
	for _, tt := range tests {
		sc, _ := Parse(tt.binding)
		if got := sc.Matches(tt.ev); got != tt.want {
			t.Errorf("Parse(%q).Matches(%v) = %v, want %v", tt.binding, tt.ev.Name(), got, tt.want)
		}
	}
	var sc Shortcut
	if sc.Matches(nil) {
		t.Error("Matches(nil) should be false")
	}
}
