package query

import (
	"context"
	"testing"

	"github.com/dshills/scrivener/internal/engine/document"
	"github.com/dshills/scrivener/internal/engine/postype"
	"github.com/dshills/scrivener/internal/engine/selection"
)

func TestGetLineContentStripsTerminator(t *testing.T) {
	snap := document.New("hello\nworld\n", 1000, 0)
	if got := GetLineContent(snap, 0); got != "hello" {
		t.Fatalf("line 0 = %q, want hello", got)
	}
	if got := GetLineContent(snap, 1); got != "world" {
		t.Fatalf("line 1 = %q, want world", got)
	}
	if got := GetLineContent(snap, 5); got != "" {
		t.Fatalf("out-of-range line = %q, want empty", got)
	}
}

func TestGetVisibleLine(t *testing.T) {
	snap := document.New("ab\ncd\n", 1000, 0)
	vl, ok := GetVisibleLine(snap, 0)
	if !ok {
		t.Fatalf("GetVisibleLine(0) not ok")
	}
	if vl.Content != "ab" || !vl.HasNewline || vl.StartOffset != 0 || vl.EndOffset != 3 {
		t.Fatalf("VisibleLine = %+v", vl)
	}
}

func TestGetVisibleLinesWithOverscan(t *testing.T) {
	snap := document.New("a\nb\nc\nd\ne\n", 1000, 0)
	res := GetVisibleLines(snap, VisibleLinesQuery{StartLine: 2, VisibleCount: 1, Overscan: 1})
	if res.FirstLine != 1 || res.LastLine != 3 {
		t.Fatalf("First/Last = %d/%d, want 1/3", res.FirstLine, res.LastLine)
	}
	if len(res.Lines) != 3 {
		t.Fatalf("len(Lines) = %d, want 3", len(res.Lines))
	}
	if res.TotalLines != 6 {
		t.Fatalf("TotalLines = %d, want 6", res.TotalLines)
	}
}

func TestGetVisibleLinesClampsOverscan(t *testing.T) {
	snap := document.New("only one line", 1000, 0)
	res := GetVisibleLines(snap, VisibleLinesQuery{StartLine: 0, VisibleCount: 5, Overscan: 10})
	if res.FirstLine != 0 || res.LastLine != 0 {
		t.Fatalf("First/Last = %d/%d, want 0/0", res.FirstLine, res.LastLine)
	}
}

func TestPositionToLineColumnRoundTrip(t *testing.T) {
	snap := document.New("hello\nworld", 1000, 0)
	pos := PositionToLineColumn(snap, 8) // 'r' in "world" (line 1, col 2)
	if pos.Line != 1 || pos.Column != 2 {
		t.Fatalf("pos = %+v, want {1 2}", pos)
	}
	back := LineColumnToPosition(snap, pos.Line, pos.Column)
	if back != 8 {
		t.Fatalf("back = %d, want 8", back)
	}
}

func TestLineColumnToPositionClampsColumn(t *testing.T) {
	snap := document.New("hi\nworld", 1000, 0)
	pos := LineColumnToPosition(snap, 0, 99)
	// Line 0 is "hi" (2 bytes); clamped column should land at its end.
	if pos != 2 {
		t.Fatalf("pos = %d, want 2 (clamped to end of line 0)", pos)
	}
}

func TestSelectionCharOffsetRoundTrip(t *testing.T) {
	snap := document.New("héllo", 1000, 0) // é is 2 bytes, 1 UTF-16 unit
	r := selection.Range{Anchor: 0, Head: postype.ByteOffset(len("héllo"))}
	chars := SelectionToCharOffsets(snap, r)
	if chars.Head != 5 {
		t.Fatalf("chars.Head = %d, want 5 (char count)", chars.Head)
	}
	back := CharOffsetsToSelection(snap, chars)
	if back.Head != r.Head {
		t.Fatalf("back.Head = %d, want %d", back.Head, r.Head)
	}
}

func TestGetValueStreamRespectsCancellation(t *testing.T) {
	snap := document.New("abcdefghij", 1000, 0)
	ctx, cancel := context.WithCancel(context.Background())
	s := GetValueStream(ctx, snap, 2, 0, 10)

	chunk, ok := s.Next()
	if !ok || chunk.Content != "ab" {
		t.Fatalf("first chunk = %+v, ok=%v", chunk, ok)
	}
	cancel()
	if _, ok := s.Next(); ok {
		t.Fatalf("expected stream to stop after context cancellation")
	}
}

func TestFindLinesGlob(t *testing.T) {
	snap := document.New("apple\nbanana\napricot\ncherry", 1000, 0)
	lines := FindLines(snap, "ap*")
	if len(lines) != 2 || lines[0] != 0 || lines[1] != 2 {
		t.Fatalf("FindLines = %v, want [0 2]", lines)
	}
}

func TestGetText(t *testing.T) {
	snap := document.New("hello world", 1000, 0)
	if got := GetText(snap, 0, 5); got != "hello" {
		t.Fatalf("GetText = %q, want hello", got)
	}
}
