package keybind

import (
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// Shortcut is a parsed keybinding.
type Shortcut struct {
	// Mods is the modifier set.
	Mods tcell.ModMask

	// Key is the tcell key. tcell.KeyRune means Rune (or Name) holds the key.
	Key tcell.Key

	// Rune is the character for single-character keys.
	Rune rune

	// Name is the lowercased key token as written in the binding.
	Name string
}

// modifier glyphs used by symbolic bindings.
var glyphModifiers = map[rune]tcell.ModMask{
	'⌘': tcell.ModMeta,
	'⌥': tcell.ModAlt,
	'⌃': tcell.ModCtrl,
	'⇧': tcell.ModShift,
	'^': tcell.ModCtrl,
}

// textual modifier names (lowercase).
var nameModifiers = map[string]tcell.ModMask{
	"cmd":     tcell.ModMeta,
	"command": tcell.ModMeta,
	"meta":    tcell.ModMeta,
	"super":   tcell.ModMeta,
	"win":     tcell.ModMeta,
	"ctrl":    tcell.ModCtrl,
	"control": tcell.ModCtrl,
	"alt":     tcell.ModAlt,
	"option":  tcell.ModAlt,
	"opt":     tcell.ModAlt,
	"shift":   tcell.ModShift,
}

// named keys (lowercase, spaces removed).
var namedKeys = map[string]tcell.Key{
	"tab":       tcell.KeyTab,
	"enter":     tcell.KeyEnter,
	"return":    tcell.KeyEnter,
	"escape":    tcell.KeyEscape,
	"esc":       tcell.KeyEscape,
	"backspace": tcell.KeyBackspace2,
	"delete":    tcell.KeyDelete,
	"del":       tcell.KeyDelete,
	"up":        tcell.KeyUp,
	"down":      tcell.KeyDown,
	"left":      tcell.KeyLeft,
	"right":     tcell.KeyRight,
	"home":      tcell.KeyHome,
	"end":       tcell.KeyEnd,
	"pageup":    tcell.KeyPgUp,
	"pgup":      tcell.KeyPgUp,
	"pagedown":  tcell.KeyPgDn,
	"pgdn":      tcell.KeyPgDn,
	"f1":        tcell.KeyF1,
	"f2":        tcell.KeyF2,
	"f3":        tcell.KeyF3,
	"f4":        tcell.KeyF4,
	"f5":        tcell.KeyF5,
	"f6":        tcell.KeyF6,
	"f7":        tcell.KeyF7,
	"f8":        tcell.KeyF8,
	"f9":        tcell.KeyF9,
	"f10":       tcell.KeyF10,
	"f11":       tcell.KeyF11,
	"f12":       tcell.KeyF12,
	"f13":       tcell.KeyF13,
	"f14":       tcell.KeyF14,
	"f15":       tcell.KeyF15,
	"f16":       tcell.KeyF16,
	"f17":       tcell.KeyF17,
	"f18":       tcell.KeyF18,
	"f19":       tcell.KeyF19,
	"f20":       tcell.KeyF20,
}

// glyph keys a symbolic binding may use for named keys.
var glyphKeys = map[string]string{
	"↩": "enter",
	"⏎": "enter",
	"⎋": "escape",
	"⌫": "backspace",
	"⌦": "delete",
	"⇥": "tab",
	"↑": "up",
	"↓": "down",
	"←": "left",
	"→": "right",
	"↖": "home",
	"↘": "end",
	"⇞": "pageup",
	"⇟": "pagedown",
	"␣": "space",
}

// Parse parses a keybinding string. It reports false for empty or
// unparseable bindings, which callers treat as "no shortcut shown".
func Parse(binding string) (Shortcut, bool) {
	binding = strings.TrimSpace(binding)
	if binding == "" {
		return Shortcut{}, false
	}

	var mods tcell.ModMask
	var keyToken string

	if strings.Contains(binding, "+") && binding != "+" {
		parts := strings.Split(binding, "+")
		last := len(parts) - 1
		keyToken = parts[last]
		// "Ctrl++" names the plus key itself.
		if keyToken == "" && last > 0 && parts[last-1] == "" {
			keyToken = "+"
			parts = parts[:last-1]
		} else {
			parts = parts[:last]
		}
		for _, p := range parts {
			m, ok := parseModifierToken(strings.TrimSpace(p))
			if !ok {
				return Shortcut{}, false
			}
			mods |= m
		}
		// Glyphs may also prefix the key token: "Shift+⌘K".
		m, rest := splitGlyphs(strings.TrimSpace(keyToken))
		mods |= m
		keyToken = rest
	} else {
		mods, keyToken = splitGlyphs(binding)
	}

	keyToken = strings.TrimSpace(keyToken)
	if keyToken == "" || loneModifierGlyph(keyToken) {
		return Shortcut{}, false
	}
	return makeShortcut(mods, keyToken), true
}

// parseModifierToken parses one modifier part: a textual name or a run of
// glyphs.
func parseModifierToken(tok string) (tcell.ModMask, bool) {
	if tok == "" {
		return 0, false
	}
	if m, ok := nameModifiers[strings.ToLower(tok)]; ok {
		return m, true
	}
	m, rest := splitGlyphs(tok)
	if rest != "" || m == 0 {
		return 0, false
	}
	return m, true
}

// splitGlyphs consumes leading modifier glyphs.
func splitGlyphs(s string) (tcell.ModMask, string) {
	var mods tcell.ModMask
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		m, ok := glyphModifiers[r]
		// A lone "^" is the caret key, not a modifier.
		if !ok || size == len(s) {
			break
		}
		mods |= m
		s = s[size:]
	}
	return mods, s
}

// loneModifierGlyph reports whether s is just a modifier glyph with no key.
// The caret doubles as a key and is accepted.
func loneModifierGlyph(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	_, ok := glyphModifiers[r]
	return ok && size == len(s) && r != '^'
}

func makeShortcut(mods tcell.ModMask, token string) Shortcut {
	if name, ok := glyphKeys[token]; ok {
		token = name
	}
	lower := strings.ToLower(token)
	compact := strings.ReplaceAll(lower, " ", "")

	if compact == "space" {
		return Shortcut{Mods: mods, Key: tcell.KeyRune, Rune: ' ', Name: "space"}
	}
	if k, ok := namedKeys[compact]; ok {
		return Shortcut{Mods: mods, Key: k, Name: compact}
	}

	sc := Shortcut{Mods: mods, Key: tcell.KeyRune, Name: lower}
	if utf8.RuneCountInString(lower) == 1 {
		sc.Rune, _ = utf8.DecodeRuneInString(lower)
	}
	return sc
}

// Label returns the display form, e.g. "Ctrl+Shift+K" or "F5".
func (s Shortcut) Label() string {
	var parts []string
	if s.Mods&tcell.ModCtrl != 0 {
		parts = append(parts, "Ctrl")
	}
	if s.Mods&tcell.ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if s.Mods&tcell.ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if s.Mods&tcell.ModMeta != 0 {
		parts = append(parts, "Cmd")
	}
	return strings.Join(append(parts, s.keyLabel()), "+")
}

// Glyphs returns the compact symbolic form, e.g. "⌃⇧K".
func (s Shortcut) Glyphs() string {
	var b strings.Builder
	if s.Mods&tcell.ModCtrl != 0 {
		b.WriteRune('⌃')
	}
	if s.Mods&tcell.ModAlt != 0 {
		b.WriteRune('⌥')
	}
	if s.Mods&tcell.ModShift != 0 {
		b.WriteRune('⇧')
	}
	if s.Mods&tcell.ModMeta != 0 {
		b.WriteRune('⌘')
	}
	b.WriteString(s.keyLabel())
	return b.String()
}

// display names for named keys.
var keyLabels = map[tcell.Key]string{
	tcell.KeyTab:        "Tab",
	tcell.KeyEnter:      "Enter",
	tcell.KeyEscape:     "Esc",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyDelete:     "Delete",
	tcell.KeyUp:         "Up",
	tcell.KeyDown:       "Down",
	tcell.KeyLeft:       "Left",
	tcell.KeyRight:      "Right",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyPgUp:       "PageUp",
	tcell.KeyPgDn:       "PageDown",
}

func (s Shortcut) keyLabel() string {
	if s.Key != tcell.KeyRune {
		if name, ok := keyLabels[s.Key]; ok {
			return name
		}
		return strings.ToUpper(s.Name)
	}
	if s.Rune == ' ' {
		return "Space"
	}
	if s.Rune != 0 {
		return strings.ToUpper(string(s.Rune))
	}
	return s.Name
}

// Matches reports whether ev is the key combination the shortcut names.
func (s Shortcut) Matches(ev *tcell.EventKey) bool {
	if ev == nil {
		return false
	}
	mods := ev.Modifiers()
	if s.Key == tcell.KeyBackspace2 && ev.Key() == tcell.KeyBackspace {
		return mods == s.Mods
	}
	if s.Key != tcell.KeyRune {
		return ev.Key() == s.Key && mods == s.Mods
	}
	if s.Rune == 0 {
		return false
	}
	if ev.Key() == tcell.KeyRune {
		return lowerRune(ev.Rune()) == s.Rune && mods&^tcell.ModShift == s.Mods&^tcell.ModShift
	}
	// Terminals deliver Ctrl+letter as a control key.
	if s.Mods&tcell.ModCtrl != 0 && s.Rune >= 'a' && s.Rune <= 'z' {
		return ev.Key() == tcell.KeyCtrlA+tcell.Key(s.Rune-'a')
	}
	return false
}

func lowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
