package docmeta

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	m := New()
	if m.Encoding != "utf-8" || m.LineEnding != LF || m.IsDirty {
		t.Fatalf("New() = %+v", m)
	}
}

func TestMarkDirtyAndSaved(t *testing.T) {
	m := New().MarkDirty()
	if !m.IsDirty {
		t.Fatalf("expected IsDirty after MarkDirty")
	}
	now := time.Now()
	m = m.MarkSaved(now)
	if m.IsDirty {
		t.Fatalf("expected IsDirty cleared after MarkSaved")
	}
	if !m.LastSaved.Equal(now) {
		t.Fatalf("LastSaved = %v, want %v", m.LastSaved, now)
	}
}

func TestDetectLineEnding(t *testing.T) {
	cases := []struct {
		text string
		want LineEnding
	}{
		{"no terminator", LF},
		{"", LF},
		{"a\nb", LF},
		{"a\r\nb", CRLF},
		{"a\rb", CR},
		{"\r\n", CRLF},
		{"\r", CR},
	}
	for _, c := range cases {
		if got := DetectLineEnding(c.text); got != c.want {
			t.Errorf("DetectLineEnding(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestLineEndingString(t *testing.T) {
	if LF.String() != "\n" || CRLF.String() != "\r\n" || CR.String() != "\r" {
		t.Fatalf("unexpected LineEnding.String() values")
	}
}
