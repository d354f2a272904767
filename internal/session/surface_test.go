package session

import "testing"

func TestLineBeforeCaret(t *testing.T) {
	tests := []struct {
		text  string
		caret int
		want  string
	}{
		{"", 0, ""},
		{"hello", 3, "hel"},
		{"one\ntwo three", 8, "two "},
		{"one\nδέλτα\n", 7, "δέλ"},
		{"a\n", 2, ""},
	}

	for _, tt := range tests {
		b := &fakeBackend{text: tt.text, sel: Range{Start: tt.caret, End: tt.caret}}
		if got := LineBeforeCaret(b); got != tt.want {
			t.Errorf("LineBeforeCaret(%q, %d) = %q, want %q", tt.text, tt.caret, got, tt.want)
		}
	}
}

func TestParseBackendHint(t *testing.T) {
	tests := []struct {
		in   string
		want BackendHint
		ok   bool
	}{
		{"", HintAuto, true},
		{"auto", HintAuto, true},
		{"Native", HintNative, true},
		{"browser", HintWeb, true},
		{"gpu", HintAuto, false},
	}
	for _, tt := range tests {
		got, ok := ParseBackendHint(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseBackendHint(%q) = %v, %v", tt.in, got, ok)
		}
	}
}

func TestDisplayValidate(t *testing.T) {
	if err := DefaultDisplay().Validate(); err != nil {
		t.Errorf("default display invalid: %v", err)
	}
	if err := (Display{LineHeight: 0}).Validate(); err != ErrInvalidLineHeight {
		t.Errorf("zero line height = %v", err)
	}
}
