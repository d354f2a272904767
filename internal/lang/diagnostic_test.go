package lang

import "testing"

func TestValidationResultClone(t *testing.T) {
	orig := ValidationResult{
		Functions: []Symbol{{Name: "_ready", Line: 3}},
		Errors:    []Diagnostic{{Severity: SeverityError, Line: 4, Message: "unexpected token"}},
	}
	c := orig.Clone()
	orig.Functions[0].Name = "changed"
	orig.Errors[0].Line = 99

	if c.Functions[0].Name != "_ready" {
		t.Errorf("clone shares Functions backing array")
	}
	if c.Errors[0].Line != 4 {
		t.Errorf("clone shares Errors backing array")
	}
	if c.Warnings != nil {
		t.Errorf("Warnings = %v, want nil", c.Warnings)
	}
}

func TestValidationResultDiagnosticsAt(t *testing.T) {
	r := ValidationResult{
		Errors:   []Diagnostic{{Severity: SeverityError, Line: 2, Message: "e"}},
		Warnings: []Diagnostic{{Severity: SeverityWarning, Line: 2, Message: "w"}, {Severity: SeverityWarning, Line: 5}},
	}

	got := r.DiagnosticsAt(2)
	if len(got) != 2 {
		t.Fatalf("DiagnosticsAt(2) len = %d, want 2", len(got))
	}
	if got[0].Severity != SeverityError || got[1].Severity != SeverityWarning {
		t.Errorf("DiagnosticsAt(2) order = %v, want error then warning", got)
	}

	lines := r.Lines()
	if lines[2] != SeverityError {
		t.Errorf("Lines()[2] = %v, want error", lines[2])
	}
	if lines[5] != SeverityWarning {
		t.Errorf("Lines()[5] = %v, want warning", lines[5])
	}
}

func TestSortedDiagnostics(t *testing.T) {
	r := ValidationResult{
		Errors:   []Diagnostic{{Line: 9, Column: 1}, {Line: 1, Column: 4}},
		Warnings: []Diagnostic{{Line: 1, Column: 2}},
	}
	got := r.SortedDiagnostics()
	want := [][2]int{{1, 2}, {1, 4}, {9, 1}}
	for i, w := range want {
		if got[i].Line != w[0] || got[i].Column != w[1] {
			t.Errorf("SortedDiagnostics()[%d] = %d:%d, want %d:%d", i, got[i].Line, got[i].Column, w[0], w[1])
		}
	}
}

func TestCompletionText(t *testing.T) {
	tests := []struct {
		c    Completion
		want string
	}{
		{Completion{Label: "print", Insert: "print("}, "print("},
		{Completion{Label: "var"}, "var"},
	}
	for _, tt := range tests {
		if got := tt.c.Text(); got != tt.want {
			t.Errorf("Text() = %q, want %q", got, tt.want)
		}
	}
}

func TestCompletionKindString(t *testing.T) {
	if KindSignal.String() != "Signal" {
		t.Errorf("KindSignal.String() = %q", KindSignal.String())
	}
	if CompletionKind(200).String() != "Unknown" {
		t.Errorf("unknown kind should stringify as Unknown")
	}
}
