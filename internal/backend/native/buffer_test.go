package native

import (
	"testing"

	"github.com/dshills/codeshell/internal/session"
)

func TestBufferPositions(t *testing.T) {
	b := newBuffer("ab\ncde\n\nf")
	tests := []struct {
		offset int
		want   session.Position
	}{
		{0, session.Position{Line: 0, Column: 0}},
		{2, session.Position{Line: 0, Column: 2}},
		{3, session.Position{Line: 1, Column: 0}},
		{6, session.Position{Line: 1, Column: 3}},
		{7, session.Position{Line: 2, Column: 0}},
		{8, session.Position{Line: 3, Column: 0}},
		{9, session.Position{Line: 3, Column: 1}},
		{99, session.Position{Line: 3, Column: 1}},
	}
	for _, tt := range tests {
		got := b.PositionAt(tt.offset)
		if got != tt.want {
			t.Errorf("PositionAt(%d) = %+v, want %+v", tt.offset, got, tt.want)
		}
		if tt.offset <= b.Len() {
			if back := b.OffsetAt(got); back != tt.offset {
				t.Errorf("OffsetAt(%+v) = %d, want %d", got, back, tt.offset)
			}
		}
	}
	if b.LineCount() != 4 {
		t.Errorf("LineCount = %d, want 4", b.LineCount())
	}
	if got := b.OffsetAt(session.Position{Line: 0, Column: 10}); got != 2 {
		t.Errorf("column past line end = %d, want 2", got)
	}
}

func TestBufferReplace(t *testing.T) {
	b := newBuffer("hello world")
	end := b.Replace(6, 11, []rune("there\nfriend"))
	if b.String() != "hello there\nfriend" {
		t.Fatalf("text = %q", b.String())
	}
	if end != 18 {
		t.Errorf("end = %d, want 18", end)
	}
	if b.LineCount() != 2 {
		t.Errorf("LineCount = %d, want 2", b.LineCount())
	}
	if string(b.Line(1)) != "friend" {
		t.Errorf("Line(1) = %q", string(b.Line(1)))
	}
}

func TestBufferFindWraps(t *testing.T) {
	b := newBuffer("one two one")
	tests := []struct {
		from int
		want int
	}{
		{0, 0},
		{1, 8},
		{9, 0},
	}
	for _, tt := range tests {
		got, ok := b.Find([]rune("one"), tt.from)
		if !ok || got != tt.want {
			t.Errorf("Find from %d = %d, %v; want %d", tt.from, got, ok, tt.want)
		}
	}
	if _, ok := b.Find([]rune("three"), 0); ok {
		t.Error("Find of absent text should fail")
	}
}

func TestBufferWordAt(t *testing.T) {
	b := newBuffer("call foo_bar(x)")
	s, e := b.WordAt(7)
	if got := b.Slice(s, e); got != "foo_bar" {
		t.Errorf("WordAt = %q, want foo_bar", got)
	}
	s, e = b.WordAt(4)
	if got := b.Slice(s, e); got != "call" {
		t.Errorf("WordAt at boundary = %q, want call", got)
	}
}
