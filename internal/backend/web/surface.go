package web

import (
	"unicode/utf8"

	"github.com/dshills/codeshell/internal/lang"
	"github.com/dshills/codeshell/internal/logging"
	"github.com/dshills/codeshell/internal/session"
)

// Surface is the web backend of one item. Every method runs on the UI
// goroutine; the page's connection feeds it through the UI loop.
type Surface struct {
	server *Server
	item   *session.Item
	log    *logging.Logger

	text    string
	sel     session.Range
	metrics metrics

	display        session.Display
	breakpoints    []int
	current        int
	hasCurrent     bool
	anchor         string
	diagnostics    lang.ValidationResult
	hasDiagnostics bool

	peer     *peer
	detached bool
}

func newSurface(s *Server, item *session.Item) *Surface {
	return &Surface{
		server:  s,
		item:    item,
		log:     s.log.With("item", item.ID()),
		metrics: defaultMetrics(),
		display: session.DefaultDisplay(),
	}
}

// Item returns the item the surface belongs to.
func (s *Surface) Item() *session.Item { return s.item }

// URL returns the page address for this item.
func (s *Surface) URL() string { return s.server.URL(s.item) }

// Connected reports whether a page is attached.
func (s *Surface) Connected() bool { return s.peer != nil }

// Kind returns session.BackendWeb.
func (s *Surface) Kind() session.BackendKind { return session.BackendWeb }

// Selection returns the last selection the page reported.
func (s *Surface) Selection() session.Range { return s.sel }

// Text returns the last text the page reported.
func (s *Surface) Text() string { return s.text }

// PositionAt maps a rune offset of the snapshot text to line and column.
func (s *Surface) PositionAt(offset int) session.Position {
	var pos session.Position
	i := 0
	for _, r := range s.text {
		if i >= offset {
			break
		}
		if r == '\n' {
			pos.Line++
			pos.Column = 0
		} else {
			pos.Column++
		}
		i++
	}
	return pos
}

// RectFor estimates the CSS pixel box of r from the page's metrics.
func (s *Surface) RectFor(r session.Range) session.Rect {
	r = r.Normalized()
	start, end := s.PositionAt(r.Start), s.PositionAt(r.End)
	m := s.metrics
	x := m.gutterWidth + float64(start.Column)*m.charWidth
	y := float64(start.Line-m.firstLine) * m.lineHeight
	width := float64(end.Column-start.Column) * m.charWidth
	if end.Line != start.Line || width < m.charWidth {
		width = m.charWidth
	}
	height := float64(end.Line-start.Line+1) * m.lineHeight
	return session.Rect{X: int(x), Y: int(y), Width: int(width), Height: int(height)}
}

// RunAction asks the page to run a command.
func (s *Surface) RunAction(id string) {
	s.send(encode(msgRunAction, field{"id", id}))
}

// Load replaces the page's text.
func (s *Surface) Load(text string) {
	if s.detached {
		return
	}
	s.text = text
	s.sel = session.Range{}
	s.send(encode(msgLoad, field{"text", text}))
}

// GoTo asks the page to show line.
func (s *Surface) GoTo(line int) {
	s.send(encode(msgGoTo, field{"line", line}))
}

// ShowSearch opens the page's find box.
func (s *Surface) ShowSearch(replace bool) {
	s.send(encode(msgSearch, field{"replace", replace}))
}

// ApplyDisplay sends the display state.
func (s *Surface) ApplyDisplay(d session.Display) {
	s.display = d
	s.send(encodeDisplay(d))
}

// ScrollTo asks the page to scroll to a named anchor.
func (s *Surface) ScrollTo(anchor string) {
	s.anchor = anchor
	s.send(encode(msgScrollTo, field{"anchor", anchor}))
}

// SetBreakpoints sends the breakpoint lines.
func (s *Surface) SetBreakpoints(lines []int) {
	s.breakpoints = append([]int(nil), lines...)
	s.send(encodeBreakpoints(s.breakpoints))
}

// SetCurrentLine sends the execution line.
func (s *Surface) SetCurrentLine(line int, ok bool) {
	s.current, s.hasCurrent = line, ok
	s.send(encode(msgCurrentLine, field{"line", line}, field{"active", ok}))
}

// ShowDiagnostics sends the validation markers.
func (s *Surface) ShowDiagnostics(result lang.ValidationResult) {
	s.diagnostics, s.hasDiagnostics = result, true
	s.send(encodeDiagnostics(result))
}

// InsertCompletion applies a completion to the snapshot and asks the page
// to do the same.
func (s *Surface) InsertCompletion(text string, replace int) {
	runes := []rune(s.text)
	end := min(max(s.sel.End, 0), len(runes))
	start := min(max(end-replace, 0), end)
	s.text = string(runes[:start]) + text + string(runes[end:])
	caret := start + len([]rune(text))
	s.sel = session.Range{Start: caret, End: caret}
	s.send(encode(msgInsertText, field{"text", text}, field{"replace", replace}))
}

// Detach unregisters the surface and closes its connection.
func (s *Surface) Detach() {
	if s.detached {
		return
	}
	s.detached = true
	s.server.unregister(s.item.ID())
	if s.peer != nil {
		s.peer.close()
		s.peer = nil
	}
}

func (s *Surface) send(data []byte, err error) {
	if err != nil {
		s.log.Error("encode failed", "error", err)
		return
	}
	if s.detached || s.peer == nil {
		return
	}
	s.peer.queue(data)
}

// attach makes p the page of this surface and replays the current state.
// A newer connection replaces an older one.
func (s *Surface) attach(p *peer) {
	if s.detached {
		p.close()
		return
	}
	if s.peer != nil {
		s.peer.close()
	}
	s.peer = p
	s.send(encode(msgLoad, field{"text", s.text}))
	s.send(encodeDisplay(s.display))
	if len(s.breakpoints) > 0 {
		s.send(encodeBreakpoints(s.breakpoints))
	}
	if s.hasCurrent {
		s.send(encode(msgCurrentLine, field{"line", s.current}, field{"active", true}))
	}
	if s.hasDiagnostics {
		s.send(encodeDiagnostics(s.diagnostics))
	}
	if s.anchor != "" {
		s.send(encode(msgScrollTo, field{"anchor", s.anchor}))
	}
	s.log.Debug("page attached")
}

func (s *Surface) detachPeer(p *peer) {
	if s.peer == p {
		s.peer = nil
		s.log.Debug("page detached")
	}
}

// handle applies one inbound message from p.
func (s *Surface) handle(p *peer, in inbound) {
	if s.detached || s.peer != p {
		return
	}
	b := in.body
	switch in.kind {
	case msgStarted:
		s.item.NotifyStarted()
	case msgTextChanged:
		s.text = b.Get("text").String()
		if sel := b.Get("selection"); sel.Exists() {
			s.sel = decodeRange(sel, utf8.RuneCountInString(s.text))
		}
		s.item.NotifyTextChanged()
	case msgSelectionChanged:
		s.sel = decodeRange(b, utf8.RuneCountInString(s.text))
	case msgMetrics:
		s.metrics = decodeMetrics(b, s.metrics)
	case msgGutterTapped:
		s.item.NotifyGutterTapped(int(b.Get("line").Int()))
	case msgLookup:
		pos := session.Position{Line: int(b.Get("line").Int()), Column: int(b.Get("column").Int())}
		s.item.NotifyLookup(pos, b.Get("word").String())
	case msgContextMenu:
		s.item.NotifyContextMenu(decodeMenuRequest(b))
	case msgCommandPalette:
		s.item.NotifyCommandPalette(decodePalette(b))
	case msgSave:
		if err := s.item.NotifySave(b.Get("path").String()); err != nil {
			s.log.Warn("save failed", "error", err)
		}
	default:
		s.log.Debug("ignoring message", "type", in.kind)
	}
}
