package web

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/codeshell/internal/lang"
	"github.com/dshills/codeshell/internal/menu"
	"github.com/dshills/codeshell/internal/session"
)

// Inbound message types, sent by the page.
const (
	msgStarted          = "started"
	msgTextChanged      = "textChanged"
	msgSelectionChanged = "selectionChanged"
	msgMetrics          = "metrics"
	msgGutterTapped     = "gutterTapped"
	msgLookup           = "lookup"
	msgContextMenu      = "contextMenu"
	msgCommandPalette   = "commandPalette"
	msgSave             = "save"
)

// Outbound message types, sent to the page.
const (
	msgLoad        = "load"
	msgRunAction   = "runAction"
	msgGoTo        = "goTo"
	msgSearch      = "search"
	msgDisplay     = "display"
	msgScrollTo    = "scrollTo"
	msgBreakpoints = "breakpoints"
	msgCurrentLine = "currentLine"
	msgInsertText  = "insertText"
	msgDiagnostics = "diagnostics"
)

// inbound is a decoded frame from the page.
type inbound struct {
	kind string
	body gjson.Result
}

func parseInbound(data []byte) (inbound, error) {
	if !gjson.ValidBytes(data) {
		return inbound{}, ErrMalformedMessage
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return inbound{}, ErrMalformedMessage
	}
	kind := root.Get("type").String()
	if kind == "" {
		return inbound{}, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}
	return inbound{kind: kind, body: root}, nil
}

// decodeRange reads a start/end pair clamped to [0, limit].
func decodeRange(r gjson.Result, limit int) session.Range {
	return session.Range{
		Start: clampOffset(r.Get("start").Int(), limit),
		End:   clampOffset(r.Get("end").Int(), limit),
	}
}

func clampOffset(v int64, limit int) int {
	switch {
	case v < 0:
		return 0
	case v > int64(limit):
		return limit
	}
	return int(v)
}

// metrics is the page's layout, used to answer RectFor in CSS pixels.
type metrics struct {
	charWidth   float64
	lineHeight  float64
	gutterWidth float64
	firstLine   int
}

func defaultMetrics() metrics {
	return metrics{charWidth: 8, lineHeight: 18}
}

func decodeMetrics(r gjson.Result, prev metrics) metrics {
	m := prev
	if v := r.Get("charWidth"); v.Exists() && v.Float() > 0 {
		m.charWidth = v.Float()
	}
	if v := r.Get("lineHeight"); v.Exists() && v.Float() > 0 {
		m.lineHeight = v.Float()
	}
	if v := r.Get("gutterWidth"); v.Exists() {
		m.gutterWidth = v.Float()
	}
	if v := r.Get("firstLine"); v.Exists() {
		m.firstLine = int(v.Int())
	}
	return m
}

// decodeMenuItems reads a menu tree. Nodes with an unknown kind are
// skipped.
func decodeMenuItems(r gjson.Result) []menu.Item {
	var out []menu.Item
	r.ForEach(func(_, node gjson.Result) bool {
		switch node.Get("kind").String() {
		case "action", "":
			id := node.Get("id").String()
			if id == "" {
				return true
			}
			enabled := true
			if v := node.Get("enabled"); v.Exists() {
				enabled = v.Bool()
			}
			out = append(out, menu.Action{
				ID:         id,
				Label:      node.Get("label").String(),
				Keybinding: node.Get("keybinding").String(),
				Enabled:    enabled,
			})
		case "separator":
			out = append(out, menu.Separator{})
		case "submenu":
			out = append(out, menu.Submenu{
				Label: node.Get("label").String(),
				Items: decodeMenuItems(node.Get("items")),
			})
		}
		return true
	})
	return out
}

func decodeMenuRequest(r gjson.Result) menu.Request {
	ctx := r.Get("context")
	return menu.Request{
		Items: decodeMenuItems(r.Get("items")),
		Context: menu.Context{
			Line:         int(ctx.Get("line").Int()),
			Column:       int(ctx.Get("column").Int()),
			SelectedText: ctx.Get("selectedText").String(),
			Word:         ctx.Get("word").String(),
		},
	}
}

func decodePalette(r gjson.Result) menu.PaletteRequest {
	var req menu.PaletteRequest
	r.Get("actions").ForEach(func(_, a gjson.Result) bool {
		id := a.Get("id").String()
		if id == "" {
			return true
		}
		enabled := true
		if v := a.Get("enabled"); v.Exists() {
			enabled = v.Bool()
		}
		req.Actions = append(req.Actions, menu.PaletteAction{
			ID:      id,
			Label:   a.Get("label").String(),
			Enabled: enabled,
		})
		return true
	})
	req.Total = int(r.Get("total").Int())
	return req
}

// field is one path/value pair of an outbound message.
type field struct {
	path  string
	value any
}

func encode(kind string, fields ...field) ([]byte, error) {
	out, err := sjson.SetBytes([]byte(`{}`), "type", kind)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		out, err = sjson.SetBytes(out, f.path, f.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s.%s: %w", kind, f.path, err)
		}
	}
	return out, nil
}

func encodeDisplay(d session.Display) ([]byte, error) {
	return encode(msgDisplay,
		field{"showTabs", d.ShowTabs},
		field{"showSpaces", d.ShowSpaces},
		field{"showLineNumbers", d.ShowLineNumbers},
		field{"lineHeight", d.LineHeight},
	)
}

func encodeBreakpoints(lines []int) ([]byte, error) {
	out, err := encode(msgBreakpoints)
	if err != nil {
		return nil, err
	}
	// an empty set is still an array on the wire
	out, err = sjson.SetRawBytes(out, "lines", []byte(`[]`))
	if err != nil {
		return nil, err
	}
	for i, l := range lines {
		if out, err = sjson.SetBytes(out, fmt.Sprintf("lines.%d", i), l); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func encodeDiagnostics(result lang.ValidationResult) ([]byte, error) {
	out, err := encode(msgDiagnostics)
	if err != nil {
		return nil, err
	}
	for _, group := range []struct {
		key   string
		items []lang.Diagnostic
	}{{"errors", result.Errors}, {"warnings", result.Warnings}} {
		if out, err = sjson.SetRawBytes(out, group.key, []byte(`[]`)); err != nil {
			return nil, err
		}
		for i, d := range group.items {
			base := fmt.Sprintf("%s.%d.", group.key, i)
			for _, f := range []field{{"line", d.Line}, {"column", d.Column}, {"message", d.Message}} {
				if out, err = sjson.SetBytes(out, base+f.path, f.value); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}
