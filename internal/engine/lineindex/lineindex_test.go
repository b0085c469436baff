package lineindex

import (
	"strings"
	"testing"

	"github.com/dshills/scrivener/internal/engine/postype"
)

func TestNewFromTextSplitsLines(t *testing.T) {
	s := NewFromText("a\nbb\nccc")
	if s.LineCount() != 3 {
		t.Fatalf("LineCount = %d, want 3", s.LineCount())
	}
	want := []postype.ByteLen{2, 3, 3}
	for i, w := range want {
		l, ok := s.LineAt(postype.LineNumber(i))
		if !ok {
			t.Fatalf("line %d missing", i)
		}
		if l.LineLength != w {
			t.Fatalf("line %d length = %d, want %d", i, l.LineLength, w)
		}
	}
}

func TestEagerInsertShiftsOffsetsImmediately(t *testing.T) {
	s := NewFromText("aaa\nbbb\nccc\n")
	// insert a newline-free "X" at the very start of line 0.
	s2 := s.Insert(Eager, 0, "X", "aaa\n", 1)

	r1, _ := s2.GetLineRangePrecise(1)
	if r1.Start != 5 { // "Xaaa\n" is 5 bytes
		t.Fatalf("line 1 start = %d, want 5", r1.Start)
	}
	l0, _ := s2.LineAt(0)
	if l0.LineLength != 5 {
		t.Fatalf("line 0 length = %d, want 5", l0.LineLength)
	}
}

func TestLazyInsertDefersOffsetsButReadsCorrect(t *testing.T) {
	s := NewFromText("aaa\nbbb\nccc\n")
	s2 := s.Insert(Lazy, 0, "X", "aaa\n", 1)

	if len(s2.dirty) == 0 {
		t.Fatalf("expected a dirty range after lazy insert")
	}
	r1, ok := s2.GetLineRangePrecise(1)
	if !ok {
		t.Fatalf("GetLineRangePrecise(1) ok=false")
	}
	if r1.Start != 5 {
		t.Fatalf("line 1 start (lazy, delta-corrected) = %d, want 5", r1.Start)
	}
}

func TestScenarioSingleByteInsertAtStartOfLargeDocument(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 1000; i++ {
		b.WriteString("abcdef\n") // 7 bytes per line
	}
	s := NewFromText(b.String())
	if s.LineCount() != 1001 {
		t.Fatalf("LineCount = %d, want 1001", s.LineCount())
	}

	s2 := s.Insert(Lazy, 0, "X", "abcdef\n", 1)

	r, ok := s2.GetLineRangePrecise(500)
	if !ok {
		t.Fatalf("ok=false")
	}
	if r.Start != 1+500*7 {
		t.Fatalf("line 500 start = %d, want %d", r.Start, 1+500*7)
	}
	if r.Length != 7 {
		t.Fatalf("line 500 length = %d, want 7", r.Length)
	}
}

func TestInsertWithNewlinesSplitsLine(t *testing.T) {
	s := NewFromText("hello world\n")
	// insert "NEW\n" in the middle of the single line.
	s2 := s.Insert(Lazy, 6, "NEW\n", "hello world\n", 1)
	// line_count = 1 + terminators: the original trailing "\n" plus the
	// new one inserted, plus the empty line that trailing "\n" implies.
	if s2.LineCount() != 3 {
		t.Fatalf("LineCount = %d, want 3", s2.LineCount())
	}
	l0, _ := s2.LineAt(0)
	if l0.LineLength != postype.ByteLen(len("hello NEW\n")) {
		t.Fatalf("line 0 length = %d, want %d", l0.LineLength, len("hello NEW\n"))
	}
	l1, _ := s2.LineAt(1)
	if l1.LineLength != postype.ByteLen(len("world\n")) {
		t.Fatalf("line 1 length = %d, want %d", l1.LineLength, len("world\n"))
	}
}

func TestDeleteAcrossLinesMerges(t *testing.T) {
	s := NewFromText("aaa\nbbb\nccc\nddd\n")
	// delete from inside line 0 through inside line 2: "a[aa\nbbb\ncc]c\nddd\n"
	affected := "aaa\nbbb\nccc\n"
	s2 := s.Delete(Eager, 1, 10, affected, 1)
	// "aaa\nbbb\nccc\nddd\n" is 5 lines (4 terminators + empty trailing
	// line); collapsing the first 3 into "ac\n" leaves 3.
	if s2.LineCount() != 3 {
		t.Fatalf("LineCount after delete = %d, want 3", s2.LineCount())
	}
	l0, _ := s2.LineAt(0)
	if l0.LineLength != postype.ByteLen(len("ac\n")) {
		t.Fatalf("line 0 length = %d, want %d (%q)", l0.LineLength, len("ac\n"), "ac\n")
	}
}

func TestReconcileFullClearsDirtyRanges(t *testing.T) {
	s := NewFromText("aaa\nbbb\nccc\n")
	s2 := s.Insert(Lazy, 0, "X", "aaa\n", 1)
	if len(s2.dirty) == 0 {
		t.Fatalf("expected dirty ranges")
	}
	s3 := s2.ReconcileFull(2, nil)
	if len(s3.dirty) != 0 {
		t.Fatalf("expected dirty ranges cleared, got %v", s3.dirty)
	}
	for i := postype.LineNumber(0); i < postype.LineNumber(s3.LineCount()); i++ {
		r, ok := s3.GetLineRangePrecise(i)
		if !ok {
			t.Fatalf("line %d missing after reconcile", i)
		}
		exact, _ := s3.ExactLineStartByte(i)
		if r.Start != exact {
			t.Fatalf("line %d start = %d, want exact %d", i, r.Start, exact)
		}
	}
}

func TestDirtyRangeSafetyCapCollapses(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("line\n")
	}
	s := NewFromText(b.String())

	for i := 0; i < 40; i++ {
		offset, _ := s.ExactLineStartByte(postype.LineNumber(i * 2))
		insText := strings.Repeat("Y", i%3+1) // varying delta so ranges don't dedupe
		s = s.Insert(Lazy, offset, insText, "line\n", int64(i+1))
	}

	if !s.RebuildPending() {
		t.Fatalf("expected RebuildPending after exceeding dirty range cap")
	}
	if len(s.dirty) != 1 {
		t.Fatalf("expected collapsed single dirty range, got %d", len(s.dirty))
	}
}

func TestMergeDirtyRangesPairwiseSum(t *testing.T) {
	ranges := []DirtyRange{
		{StartLine: 5, EndLine: postype.MaxLineNumber, OffsetDelta: 3},
		{StartLine: 5, EndLine: postype.MaxLineNumber, OffsetDelta: 4},
		{StartLine: 5, EndLine: postype.MaxLineNumber, OffsetDelta: -1},
	}
	merged, rebuild := mergeDirtyRanges(ranges)
	if rebuild {
		t.Fatalf("unexpected rebuildPending")
	}
	if len(merged) != 1 {
		t.Fatalf("expected one merged range, got %d", len(merged))
	}
	if merged[0].OffsetDelta != 6 {
		t.Fatalf("OffsetDelta = %d, want 6", merged[0].OffsetDelta)
	}
}
