package session

import (
	"fmt"
	"strings"

	"github.com/dshills/codeshell/internal/lang"
)

// Surface is the capability set a rendering backend exposes to delegates.
type Surface interface {
	// Selection returns the current selection; an empty range is the caret.
	Selection() Range

	// PositionAt maps a rune offset to its line and column.
	PositionAt(offset int) Position

	// Text returns the full current text.
	Text() string

	// RectFor returns the screen region covering r.
	RectFor(r Range) Rect

	// RunAction executes the backend command with the given id. Unknown ids
	// are ignored.
	RunAction(id string)
}

// TextInserter is implemented by surfaces that can apply an accepted
// completion: the replace runes before the caret are replaced by text.
type TextInserter interface {
	InsertCompletion(text string, replace int)
}

// DiagnosticsView is implemented by surfaces that can mark diagnostics in
// their gutter. The session pushes every validation result to it.
type DiagnosticsView interface {
	ShowDiagnostics(result lang.ValidationResult)
}

// BackendKind identifies a rendering backend implementation.
type BackendKind uint8

const (
	// BackendNative is the in-process terminal renderer.
	BackendNative BackendKind = iota

	// BackendWeb is the browser editor reached over a websocket.
	BackendWeb
)

// String returns the backend name.
func (k BackendKind) String() string {
	switch k {
	case BackendNative:
		return "native"
	case BackendWeb:
		return "web"
	default:
		return fmt.Sprintf("backend(%d)", uint8(k))
	}
}

// ParseBackendKind parses "native" or "web".
func ParseBackendKind(s string) (BackendKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "native", "terminal":
		return BackendNative, true
	case "web", "browser":
		return BackendWeb, true
	}
	return 0, false
}

// BackendHint is the caller's backend preference for a new item.
type BackendHint uint8

const (
	// HintAuto uses the manager's preferred backend.
	HintAuto BackendHint = iota
	HintNative
	HintWeb
)

// ParseBackendHint parses "auto", "native" or "web".
func ParseBackendHint(s string) (BackendHint, bool) {
	if strings.EqualFold(strings.TrimSpace(s), "auto") || s == "" {
		return HintAuto, true
	}
	k, ok := ParseBackendKind(s)
	if !ok {
		return HintAuto, false
	}
	if k == BackendWeb {
		return HintWeb, true
	}
	return HintNative, true
}

// Backend is a rendering backend attached to one item. The session drives it
// with fire-and-forget commands; the backend reports back through the
// item's Notify methods.
type Backend interface {
	Surface

	// Kind reports which implementation this is.
	Kind() BackendKind

	// Load replaces the backend's buffer. Called once on open and on reload.
	Load(text string)

	// GoTo moves the caret and viewport to line.
	GoTo(line int)

	// ShowSearch shows the find affordance, with replace when asked.
	ShowSearch(replace bool)

	// ApplyDisplay re-renders with the given display state.
	ApplyDisplay(d Display)

	// ScrollTo scrolls to a named anchor in generated content.
	ScrollTo(anchor string)

	// SetBreakpoints shows the given breakpoint lines in the gutter.
	SetBreakpoints(lines []int)

	// SetCurrentLine highlights the execution line, or clears it when ok is
	// false.
	SetCurrentLine(line int, ok bool)

	// Detach releases the backend. No Notify calls may follow.
	Detach()
}

// BackendFactory creates the backend for a newly opened item.
type BackendFactory func(item *Item) (Backend, error)

// LineBeforeCaret returns the text of the caret's line up to the caret.
// Delegates use it for completion trigger decisions.
func LineBeforeCaret(s Surface) string {
	sel := s.Selection()
	pos := s.PositionAt(sel.End)
	text := s.Text()

	line := 0
	start := 0
	for i, r := range text {
		if line == pos.Line {
			start = i
			break
		}
		if r == '\n' {
			line++
			start = i + 1
		}
	}
	if line < pos.Line {
		return ""
	}
	rest := text[start:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	runes := []rune(rest)
	if pos.Column < 0 {
		return ""
	}
	if pos.Column > len(runes) {
		return string(runes)
	}
	return string(runes[:pos.Column])
}
