package native

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/codeshell/internal/lang"
	"github.com/dshills/codeshell/internal/logging"
	"github.com/dshills/codeshell/internal/session"
)

const (
	undoLimit = 200
	tabWidth  = 4
)

// Option configures editors created by a Factory.
type Option func(*options)

type options struct {
	area      *session.Rect
	clipboard *Clipboard
	styles    Styles
	log       *logging.Logger
	onCreate  func(*Editor)
}

// WithArea places new editors in area instead of the whole screen.
func WithArea(area session.Rect) Option {
	return func(o *options) { o.area = &area }
}

// WithClipboard shares c between editors.
func WithClipboard(c *Clipboard) Option {
	return func(o *options) { o.clipboard = c }
}

// WithStyles sets the drawing styles.
func WithStyles(s Styles) Option {
	return func(o *options) { o.styles = s }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// OnCreate registers a callback that receives each new editor, so the
// application can route input to it.
func OnCreate(fn func(*Editor)) Option {
	return func(o *options) { o.onCreate = fn }
}

// Factory returns a session.BackendFactory producing editors drawn on screen.
func Factory(screen tcell.Screen, opts ...Option) session.BackendFactory {
	o := options{styles: DefaultStyles()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clipboard == nil {
		o.clipboard = &Clipboard{}
	}
	if o.log == nil {
		o.log = logging.Nop()
	}
	return func(item *session.Item) (session.Backend, error) {
		if screen == nil {
			return nil, ErrNoScreen
		}
		e := NewEditor(screen, item, o.clipboard)
		e.styles = o.styles
		e.log = o.log.With("item", item.Title())
		if o.area != nil {
			e.area = *o.area
		}
		if o.onCreate != nil {
			o.onCreate(e)
		}
		return e, nil
	}
}

type snapshot struct {
	text   []rune
	anchor int
	caret  int
}

// Editor is the terminal backend of one item.
type Editor struct {
	screen tcell.Screen
	item   *session.Item
	clip   *Clipboard
	styles Styles
	log    *logging.Logger

	buf    *buffer
	anchor int
	caret  int
	top    int
	area   session.Rect

	display     session.Display
	breakpoints map[int]bool
	current     int
	hasCurrent  bool
	diagnostics map[int]lang.Severity

	search   searchState
	undo     []snapshot
	bindings []binding
	buttons  tcell.ButtonMask

	loaded   bool
	visible  bool
	detached bool
}

// NewEditor creates an editor for item. A zero area means the whole screen.
func NewEditor(screen tcell.Screen, item *session.Item, clip *Clipboard) *Editor {
	if clip == nil {
		clip = &Clipboard{}
	}
	return &Editor{
		screen:      screen,
		item:        item,
		clip:        clip,
		styles:      DefaultStyles(),
		log:         logging.Nop(),
		buf:         newBuffer(""),
		display:     session.DefaultDisplay(),
		breakpoints: make(map[int]bool),
		diagnostics: make(map[int]lang.Severity),
		bindings:    defaultBindings(),
	}
}

// Item returns the item the editor belongs to.
func (e *Editor) Item() *session.Item { return e.item }

// Kind returns session.BackendNative.
func (e *Editor) Kind() session.BackendKind { return session.BackendNative }

// SetArea moves the editor to area and redraws.
func (e *Editor) SetArea(area session.Rect) {
	e.area = area
	e.ensureCaretVisible()
	e.render()
}

// Area returns the region the editor draws in.
func (e *Editor) Area() session.Rect {
	if e.area.Width > 0 && e.area.Height > 0 {
		return e.area
	}
	if e.screen == nil {
		return session.Rect{}
	}
	w, h := e.screen.Size()
	return session.Rect{Width: w, Height: h}
}

// Show makes the editor the one drawing to its area.
func (e *Editor) Show(visible bool) {
	if e.detached {
		return
	}
	e.visible = visible
	e.render()
}

// Visible reports whether the editor is drawing.
func (e *Editor) Visible() bool { return e.visible }

// Top returns the first visible line.
func (e *Editor) Top() int { return e.top }

// Selection returns the anchor..caret span.
func (e *Editor) Selection() session.Range {
	return session.Range{Start: e.anchor, End: e.caret}
}

// Select sets the selection; offsets are clamped to the text.
func (e *Editor) Select(anchor, caret int) {
	e.anchor = e.buf.clamp(anchor)
	e.caret = e.buf.clamp(caret)
	e.ensureCaretVisible()
	e.render()
}

// PositionAt maps a rune offset to its line and column.
func (e *Editor) PositionAt(offset int) session.Position {
	return e.buf.PositionAt(offset)
}

// Text returns the buffer contents.
func (e *Editor) Text() string { return e.buf.String() }

// RectFor returns the cells covering r. Ranges spanning lines cover whole
// rows from the start column.
func (e *Editor) RectFor(r session.Range) session.Rect {
	r = r.Normalized()
	area := e.Area()
	stride := e.stride()
	start := e.buf.PositionAt(r.Start)
	end := e.buf.PositionAt(r.End)
	x := area.X + e.gutterWidth() + e.visualColumn(start.Line, start.Column)
	y := area.Y + (start.Line-e.top)*stride
	if start.Line == end.Line {
		w := e.visualColumn(end.Line, end.Column) - e.visualColumn(start.Line, start.Column)
		if w < 1 {
			w = 1
		}
		return session.Rect{X: x, Y: y, Width: w, Height: stride}
	}
	return session.Rect{
		X:      x,
		Y:      y,
		Width:  area.X + area.Width - x,
		Height: (end.Line - start.Line + 1) * stride,
	}
}

// Load replaces the buffer and resets caret, scroll and history. The first
// load reports the backend as started.
func (e *Editor) Load(text string) {
	if e.detached {
		return
	}
	e.buf.set([]rune(text))
	e.anchor, e.caret, e.top = 0, 0, 0
	e.undo = nil
	e.search = searchState{}
	e.render()
	if !e.loaded {
		e.loaded = true
		if e.item != nil {
			e.item.NotifyStarted()
		}
	}
}

// GoTo moves the caret to the start of line and scrolls it into view.
func (e *Editor) GoTo(line int) {
	if line < 0 {
		line = 0
	}
	if line >= e.buf.LineCount() {
		line = e.buf.LineCount() - 1
	}
	off := e.buf.LineStart(line)
	e.anchor, e.caret = off, off
	e.ensureCaretVisible()
	e.render()
}

// ShowSearch opens the find prompt, with a replace field when asked.
func (e *Editor) ShowSearch(replace bool) {
	if e.detached {
		return
	}
	e.search.open(replace, e.selectedText())
	e.render()
}

// ApplyDisplay redraws with d.
func (e *Editor) ApplyDisplay(d session.Display) {
	e.display = d
	e.ensureCaretVisible()
	e.render()
}

// ScrollTo moves to the first occurrence of anchor. A leading '#' is
// ignored when the literal text is absent.
func (e *Editor) ScrollTo(anchor string) {
	for _, needle := range []string{anchor, strings.TrimPrefix(anchor, "#")} {
		if needle == "" {
			continue
		}
		if off, ok := e.buf.Find([]rune(needle), 0); ok {
			e.anchor, e.caret = off, off
			e.top = e.buf.PositionAt(off).Line
			e.render()
			return
		}
	}
	e.log.Debug("scroll anchor not found", "anchor", anchor)
}

// SetBreakpoints replaces the gutter breakpoints.
func (e *Editor) SetBreakpoints(lines []int) {
	e.breakpoints = make(map[int]bool, len(lines))
	for _, l := range lines {
		e.breakpoints[l] = true
	}
	e.render()
}

// SetCurrentLine marks the execution line and scrolls to it.
func (e *Editor) SetCurrentLine(line int, ok bool) {
	e.current, e.hasCurrent = line, ok
	if ok {
		e.scrollToLine(line)
	}
	e.render()
}

// ShowDiagnostics marks the lines of result in the gutter.
func (e *Editor) ShowDiagnostics(result lang.ValidationResult) {
	e.diagnostics = result.Lines()
	e.render()
}

// Detach stops drawing and drops further input.
func (e *Editor) Detach() {
	e.detached = true
	e.visible = false
	e.search = searchState{}
}

// Detached reports whether the editor has been released.
func (e *Editor) Detached() bool { return e.detached }

// InsertCompletion replaces the replace runes before the caret with text.
func (e *Editor) InsertCompletion(text string, replace int) {
	if e.detached {
		return
	}
	start := e.caret - replace
	if ls := e.buf.LineStart(e.buf.PositionAt(e.caret).Line); start < ls {
		start = ls
	}
	e.edit(start, e.caret, text)
}

func (e *Editor) selection() (int, int) {
	if e.anchor <= e.caret {
		return e.anchor, e.caret
	}
	return e.caret, e.anchor
}

func (e *Editor) selectedText() string {
	s, t := e.selection()
	return e.buf.Slice(s, t)
}

func (e *Editor) pushUndo() {
	snap := snapshot{
		text:   append([]rune(nil), e.buf.text...),
		anchor: e.anchor,
		caret:  e.caret,
	}
	e.undo = append(e.undo, snap)
	if len(e.undo) > undoLimit {
		e.undo = e.undo[len(e.undo)-undoLimit:]
	}
}

// edit replaces [start, end) with text, leaves the caret after it and
// reports the change.
func (e *Editor) edit(start, end int, text string) {
	e.pushUndo()
	e.caret = e.buf.Replace(start, end, []rune(text))
	e.anchor = e.caret
	e.changed()
}

func (e *Editor) changed() {
	e.ensureCaretVisible()
	e.render()
	if e.item != nil {
		e.item.NotifyTextChanged()
	}
}

func (e *Editor) stride() int {
	h := int(e.display.LineHeight + 0.5)
	if h < 1 {
		return 1
	}
	return h
}

// textRows is the number of buffer lines that fit in the area.
func (e *Editor) textRows() int {
	rows := e.Area().Height
	if e.search.active {
		rows--
	}
	n := rows / e.stride()
	if n < 1 {
		return 1
	}
	return n
}

func (e *Editor) scrollToLine(line int) {
	rows := e.textRows()
	if line < e.top {
		e.top = line
	} else if line >= e.top+rows {
		e.top = line - rows + 1
	}
	if e.top < 0 {
		e.top = 0
	}
}

func (e *Editor) ensureCaretVisible() {
	e.scrollToLine(e.buf.PositionAt(e.caret).Line)
}
