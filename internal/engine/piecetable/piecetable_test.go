package piecetable

import (
	"strings"
	"testing"

	"github.com/dshills/scrivener/internal/engine/postype"
)

func TestInsertAndSplit(t *testing.T) {
	s := New()
	s, _ = s.Insert(0, "Hello")
	s, _ = s.Insert(5, " World")
	s, _ = s.Insert(0, "Say ")
	s, _ = s.Insert(9, ",")

	want := "Say Hello, World"
	if got := s.GetText(0, postype.ByteOffset(s.Length())); got != want {
		t.Fatalf("GetText = %q, want %q", got, want)
	}
	if s.Length() != postype.ByteLen(len(want)) {
		t.Fatalf("Length = %d, want %d", s.Length(), len(want))
	}
}

func TestMultiPieceDelete(t *testing.T) {
	s := New()
	for _, ch := range "ABCDEFGH" {
		s, _ = s.Insert(postype.ByteOffset(s.Length()), string(ch))
	}
	if got := s.GetText(0, postype.ByteOffset(s.Length())); got != "ABCDEFGH" {
		t.Fatalf("setup GetText = %q", got)
	}

	s = s.Delete(3, 5)
	if got := s.GetText(0, postype.ByteOffset(s.Length())); got != "ABCFGH" {
		t.Fatalf("GetText after delete = %q, want ABCFGH", got)
	}
}

func TestGetTextOutOfRange(t *testing.T) {
	s := New()
	s, _ = s.Insert(0, "abc")
	if got := s.GetText(10, 20); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := s.GetText(2, 1); got != "" {
		t.Fatalf("expected empty string for inverted range, got %q", got)
	}
}

func TestBufferStatsO1(t *testing.T) {
	s := New()
	s, _ = s.Insert(0, "hello world")
	s = s.Delete(0, 6)
	stats := s.BufferStats()
	if stats.AddBufferUsed != s.Length() {
		t.Fatalf("AddBufferUsed = %d, want %d", stats.AddBufferUsed, s.Length())
	}
	if stats.WasteRatio <= 0 {
		t.Fatalf("expected nonzero waste after delete, got %v", stats.WasteRatio)
	}
}

func TestCompactAddBuffer(t *testing.T) {
	s := New()
	s, _ = s.Insert(0, "0123456789")
	s = s.Delete(0, 5)
	before := s.BufferStats()

	compacted := s.CompactAddBuffer(0.1)
	after := compacted.BufferStats()

	if compacted.GetText(0, postype.ByteOffset(compacted.Length())) != s.GetText(0, postype.ByteOffset(s.Length())) {
		t.Fatalf("compaction changed document text")
	}
	if after.AddBufferWaste >= before.AddBufferWaste {
		t.Fatalf("compaction did not reduce waste: before=%v after=%v", before, after)
	}
}

func TestByteCharOffsetInverse(t *testing.T) {
	text := "aé中\U0001F600b" // ascii, 2-byte, 3-byte, 4-byte(surrogate pair), ascii
	for b := 0; b <= len(text); b++ {
		c := ByteToCharOffset(text, b)
		back := CharToByteOffset(text, c)
		// back must be a character boundary <= b (nearest boundary to the left).
		if back > b {
			t.Fatalf("CharToByteOffset(%d)=%d landed right of byte %d", c, back, b)
		}
	}
}

func TestValueStreamConcatenation(t *testing.T) {
	s := New()
	var want strings.Builder
	for i := 0; i < 50; i++ {
		chunk := strings.Repeat("x", i%7+1) + "\n"
		s, _ = s.Insert(postype.ByteOffset(s.Length()), chunk)
		want.WriteString(chunk)
	}

	for _, chunkSize := range []int{1, 3, 17, 1000} {
		stream := s.GetValueStream(chunkSize, 0, postype.ByteOffset(s.Length()))
		var got strings.Builder
		for {
			c, ok := stream.Next()
			if !ok {
				break
			}
			got.WriteString(c.Content)
		}
		if got.String() != want.String() {
			t.Fatalf("chunkSize=%d: stream mismatch", chunkSize)
		}
	}
}

func TestFindPieceAtPosition(t *testing.T) {
	s := New()
	s, _ = s.Insert(0, "Hello")
	s, _ = s.Insert(5, " World")

	ref, ok := s.FindPieceAt(6)
	if !ok {
		t.Fatalf("expected to find piece at position 6")
	}
	if ref.PieceStartOffset != 5 {
		t.Fatalf("PieceStartOffset = %d, want 5", ref.PieceStartOffset)
	}

	if _, ok := s.FindPieceAt(-1); ok {
		t.Fatalf("expected ok=false for negative offset")
	}
	if _, ok := s.FindPieceAt(postype.ByteOffset(s.Length())); ok {
		t.Fatalf("expected ok=false for offset == length")
	}
}
