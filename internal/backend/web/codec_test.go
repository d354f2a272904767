package web

import (
	"errors"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/dshills/codeshell/internal/lang"
	"github.com/dshills/codeshell/internal/logging"
	"github.com/dshills/codeshell/internal/menu"
	"github.com/dshills/codeshell/internal/session"
)

func TestParseInbound(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    string
		wantErr bool
	}{
		{"valid", `{"type":"started"}`, msgStarted, false},
		{"not json", `nope`, "", true},
		{"array", `[1,2]`, "", true},
		{"no type", `{"text":"x"}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := parseInbound([]byte(tt.data))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedMessage) {
					t.Fatalf("err = %v, want ErrMalformedMessage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseInbound: %v", err)
			}
			if in.kind != tt.want {
				t.Errorf("kind = %q, want %q", in.kind, tt.want)
			}
		})
	}
}

func TestDecodeMenuRequest(t *testing.T) {
	raw := `{
		"context": {"line": 3, "column": 4, "selectedText": "x", "word": "foo"},
		"items": [
			{"kind": "action", "id": "a", "label": "A", "keybinding": "Ctrl+A"},
			{"kind": "separator"},
			{"kind": "submenu", "label": "More", "items": [
				{"kind": "action", "id": "b", "enabled": false},
				{"kind": "hologram", "id": "z"}
			]},
			{"kind": "action", "label": "no id"}
		]
	}`
	req := decodeMenuRequest(gjson.Parse(raw))
	if req.Context != (menu.Context{Line: 3, Column: 4, SelectedText: "x", Word: "foo"}) {
		t.Errorf("context = %+v", req.Context)
	}
	entries := menu.Flatten(req.Items)
	if len(entries) != 2 {
		t.Fatalf("entries = %+v, want a and b", entries)
	}
	if entries[0].ID != "a" || !entries[0].Enabled || entries[0].Keybinding != "Ctrl+A" {
		t.Errorf("entry a = %+v", entries[0])
	}
	if entries[1].ID != "b" || entries[1].Enabled || len(entries[1].Path) != 1 || entries[1].Path[0] != "More" {
		t.Errorf("entry b = %+v", entries[1])
	}
}

func TestDecodePalette(t *testing.T) {
	req := decodePalette(gjson.Parse(`{"actions":[{"id":"x","label":"X"},{"id":"y","enabled":false},{"label":"none"}],"total":9}`))
	if len(req.Actions) != 2 || req.Total != 9 {
		t.Fatalf("req = %+v", req)
	}
	if !req.Actions[0].Enabled || req.Actions[1].Enabled {
		t.Errorf("enabled flags = %v, %v", req.Actions[0].Enabled, req.Actions[1].Enabled)
	}
}

func TestEncodeMessages(t *testing.T) {
	data, err := encodeBreakpoints(nil)
	if err != nil {
		t.Fatalf("encodeBreakpoints: %v", err)
	}
	if got := gjson.GetBytes(data, "lines").Raw; got != "[]" {
		t.Errorf("empty lines = %s, want []", got)
	}

	data, err = encodeBreakpoints([]int{0, 26, 120})
	if err != nil {
		t.Fatalf("encodeBreakpoints: %v", err)
	}
	if got := gjson.GetBytes(data, "lines").Raw; got != "[0,26,120]" {
		t.Errorf("lines = %s", got)
	}

	data, err = encodeDisplay(session.Display{ShowTabs: true, LineHeight: 1.5})
	if err != nil {
		t.Fatalf("encodeDisplay: %v", err)
	}
	res := gjson.ParseBytes(data)
	if res.Get("type").String() != msgDisplay || !res.Get("showTabs").Bool() || res.Get("lineHeight").Float() != 1.5 {
		t.Errorf("display = %s", data)
	}

	data, err = encodeDiagnostics(lang.ValidationResult{
		Errors: []lang.Diagnostic{{Severity: lang.SeverityError, Line: 2, Column: 1, Message: "unbalanced"}},
	})
	if err != nil {
		t.Fatalf("encodeDiagnostics: %v", err)
	}
	res = gjson.ParseBytes(data)
	if res.Get("errors.0.line").Int() != 2 || res.Get("errors.0.message").String() != "unbalanced" {
		t.Errorf("diagnostics = %s", data)
	}
	if res.Get("warnings").Raw != "[]" {
		t.Errorf("warnings = %s, want []", res.Get("warnings").Raw)
	}
}

func TestDecodeRangeClamps(t *testing.T) {
	tests := []struct {
		raw  string
		want session.Range
	}{
		{`{"start":1,"end":3}`, session.Range{Start: 1, End: 3}},
		{`{"start":-2,"end":-2}`, session.Range{}},
		{`{"start":2,"end":99}`, session.Range{Start: 2, End: 5}},
		{`{"start":"x"}`, session.Range{}},
	}
	for _, tt := range tests {
		if got := decodeRange(gjson.Parse(tt.raw), 5); got != tt.want {
			t.Errorf("decodeRange(%s) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestInsertCompletionOutOfRangeSelection(t *testing.T) {
	tests := []struct {
		name    string
		sel     session.Range
		replace int
		want    string
	}{
		{"negative", session.Range{Start: -2, End: -2}, 1, "worldhello"},
		{"past end", session.Range{Start: 40, End: 40}, 2, "helworld"},
		{"negative replace", session.Range{Start: 2, End: 2}, -3, "heworldllo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Surface{log: logging.Nop(), text: "hello", sel: tt.sel}
			s.InsertCompletion("world", tt.replace)
			if s.text != tt.want {
				t.Errorf("text = %q, want %q", s.text, tt.want)
			}
		})
	}
}
