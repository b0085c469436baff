// Package query is the read surface a viewport consumes: text ranges,
// line lookups, and position/selection conversions, all pure functions
// over a frozen document.Snapshot. Nothing here mutates or schedules
// work — that belongs to the store.
package query

import (
	"context"

	"github.com/tidwall/match"

	"github.com/dshills/scrivener/internal/engine/document"
	"github.com/dshills/scrivener/internal/engine/piecetable"
	"github.com/dshills/scrivener/internal/engine/postype"
	"github.com/dshills/scrivener/internal/engine/selection"
)

// GetText returns document bytes in [start, end) as a string.
func GetText(snap document.Snapshot, start, end postype.ByteOffset) string {
	return snap.PieceTable.GetText(start, end)
}

// lineTextAndBounds returns line n's content (trailing terminator
// stripped), its start offset, and its full (terminator-inclusive)
// length, or ok=false when n is out of range.
func lineTextAndBounds(snap document.Snapshot, n postype.LineNumber) (content string, start postype.ByteOffset, fullLen postype.ByteLen, hasNewline bool, ok bool) {
	lr, ok := snap.LineIndex.GetLineRangePrecise(n)
	if !ok {
		return "", 0, 0, false, false
	}
	full := snap.PieceTable.GetText(lr.Start, lr.Start+postype.ByteOffset(lr.Length))
	stripped, hadNL := stripTerminator(full)
	return stripped, lr.Start, lr.Length, hadNL, true
}

func stripTerminator(s string) (string, bool) {
	switch {
	case len(s) >= 2 && s[len(s)-2] == '\r' && s[len(s)-1] == '\n':
		return s[:len(s)-2], true
	case len(s) >= 1 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r'):
		return s[:len(s)-1], true
	default:
		return s, false
	}
}

// GetLineContent returns line n's text without its trailing terminator,
// or "" when n is out of range.
func GetLineContent(snap document.Snapshot, n postype.LineNumber) string {
	content, _, _, _, ok := lineTextAndBounds(snap, n)
	if !ok {
		return ""
	}
	return content
}

// VisibleLine is one resolved line for viewport rendering.
type VisibleLine struct {
	LineNumber  postype.LineNumber
	Content     string
	StartOffset postype.ByteOffset
	EndOffset   postype.ByteOffset
	HasNewline  bool
}

// GetVisibleLine resolves a single line, or ok=false when n is out of
// range.
func GetVisibleLine(snap document.Snapshot, n postype.LineNumber) (VisibleLine, bool) {
	content, start, fullLen, hasNL, ok := lineTextAndBounds(snap, n)
	if !ok {
		return VisibleLine{}, false
	}
	return VisibleLine{
		LineNumber:  n,
		Content:     content,
		StartOffset: start,
		EndOffset:   start + postype.ByteOffset(fullLen),
		HasNewline:  hasNL,
	}, true
}

// VisibleLinesQuery parameterizes GetVisibleLines.
type VisibleLinesQuery struct {
	StartLine    postype.LineNumber
	VisibleCount int
	Overscan     int
}

// VisibleLinesResult is a frozen batch of resolved lines for one render
// pass.
type VisibleLinesResult struct {
	Lines     []VisibleLine
	FirstLine postype.LineNumber
	LastLine  postype.LineNumber
	TotalLines int64
}

// GetVisibleLines resolves a contiguous run of lines around q.StartLine,
// expanded by q.Overscan on each side and clamped to
// [0, total_lines-1].
func GetVisibleLines(snap document.Snapshot, q VisibleLinesQuery) VisibleLinesResult {
	total := snap.LineIndex.LineCount()
	if total == 0 {
		return VisibleLinesResult{TotalLines: 0}
	}

	overscan := q.Overscan
	if overscan < 0 {
		overscan = 0
	}
	maxLine := total - 1

	first := int64(q.StartLine) - int64(overscan)
	if first < 0 {
		first = 0
	}
	last := int64(q.StartLine) + int64(q.VisibleCount) + int64(overscan) - 1
	if last > maxLine {
		last = maxLine
	}
	if last < first {
		last = first
	}

	var lines []VisibleLine
	for n := first; n <= last; n++ {
		if vl, ok := GetVisibleLine(snap, postype.LineNumber(n)); ok {
			lines = append(lines, vl)
		}
	}

	return VisibleLinesResult{
		Lines:      lines,
		FirstLine:  postype.LineNumber(first),
		LastLine:   postype.LineNumber(last),
		TotalLines: total,
	}
}

// PositionToLineColumn converts a byte offset to a line number and a
// UTF-16 code-unit column within that line.
func PositionToLineColumn(snap document.Snapshot, pos postype.ByteOffset) postype.Position {
	lineNum, offsetInLine, ok := snap.LineIndex.FindLineAtByteOffset(pos)
	if !ok {
		return postype.Position{}
	}
	lineStart, _ := snap.LineIndex.ExactLineStartByte(lineNum)
	lineText := snap.PieceTable.GetText(lineStart, lineStart+postype.ByteOffset(offsetInLine))
	col := piecetable.ByteToCharOffset(lineText, len(lineText))
	return postype.Position{Line: lineNum, Column: postype.Column(col)}
}

// LineColumnToPosition converts a line/column pair to a byte offset.
// column is a UTF-16 code-unit offset within the line; out-of-range
// columns clamp to the line's char length.
func LineColumnToPosition(snap document.Snapshot, line postype.LineNumber, column postype.Column) postype.ByteOffset {
	lr, ok := snap.LineIndex.GetLineRangePrecise(line)
	if !ok {
		return 0
	}
	content, _, _, _, _ := lineTextAndBounds(snap, line)
	byteOff := piecetable.CharToByteOffset(content, int(column))
	if byteOff > len(content) {
		byteOff = len(content)
	}
	return lr.Start + postype.ByteOffset(byteOff)
}

// SelectionToCharOffsets converts a byte-indexed selection range to a
// UTF-16 char-indexed one, resolving each endpoint via its containing
// line (O(log n + line length) per endpoint).
func SelectionToCharOffsets(snap document.Snapshot, r selection.Range) selection.CharRange {
	return selection.CharRange{
		Anchor: byteToChar(snap, r.Anchor),
		Head:   byteToChar(snap, r.Head),
	}
}

// CharOffsetsToSelection is SelectionToCharOffsets's inverse.
func CharOffsetsToSelection(snap document.Snapshot, r selection.CharRange) selection.Range {
	return selection.Range{
		Anchor: charToByte(snap, r.Anchor),
		Head:   charToByte(snap, r.Head),
	}
}

func byteToChar(snap document.Snapshot, pos postype.ByteOffset) postype.CharOffset {
	lineNum, offsetInLine, ok := snap.LineIndex.FindLineAtByteOffset(pos)
	if !ok {
		return 0
	}
	lineStart, _ := snap.LineIndex.ExactLineStartByte(lineNum)
	lineCharStart, _ := snap.LineIndex.ExactLineStartChar(lineNum)
	lineText := snap.PieceTable.GetText(lineStart, lineStart+postype.ByteOffset(offsetInLine))
	return lineCharStart + postype.CharOffset(piecetable.ByteToCharOffset(lineText, len(lineText)))
}

func charToByte(snap document.Snapshot, pos postype.CharOffset) postype.ByteOffset {
	lineNum, offsetInLine, ok := findLineAtCharOffset(snap, pos)
	if !ok {
		return 0
	}
	lr, _ := snap.LineIndex.GetLineRangePrecise(lineNum)
	content, _, _, _, _ := lineTextAndBounds(snap, lineNum)
	byteOff := piecetable.CharToByteOffset(content, int(offsetInLine))
	if byteOff > len(content) {
		byteOff = len(content)
	}
	return lr.Start + postype.ByteOffset(byteOff)
}

// findLineAtCharOffset locates the line containing UTF-16 char offset
// pos via a linear scan of ExactLineStartChar boundaries. O(n) in line
// count; acceptable since char-indexed selection conversion is an
// infrequent, UI-driven operation (LSP interop), not a hot edit path.
func findLineAtCharOffset(snap document.Snapshot, pos postype.CharOffset) (postype.LineNumber, postype.CharOffset, bool) {
	total := snap.LineIndex.LineCount()
	if total == 0 {
		return 0, 0, false
	}
	var prevStart postype.CharOffset
	for n := int64(0); n < total; n++ {
		start, ok := snap.LineIndex.ExactLineStartChar(postype.LineNumber(n))
		if !ok {
			return 0, 0, false
		}
		if n > 0 && pos < start {
			return postype.LineNumber(n - 1), pos - prevStart, true
		}
		prevStart = start
	}
	last := postype.LineNumber(total - 1)
	return last, pos - prevStart, true
}

// StreamChunks is a pull-based iterator over document bytes in
// [start, end). Next checks ctx itself and ends the stream early once
// ctx is done.
type StreamChunks struct {
	ctx    context.Context
	stream *piecetable.Stream
}

// GetValueStream returns a chunked stream of the document's text in
// [start, end), chunkSize bytes at a time (the final chunk may be
// shorter).
func GetValueStream(ctx context.Context, snap document.Snapshot, chunkSize int, start, end postype.ByteOffset) *StreamChunks {
	return &StreamChunks{ctx: ctx, stream: snap.PieceTable.GetValueStream(chunkSize, start, end)}
}

// Next returns the next chunk, or ok=false once the stream is drained or
// ctx is done.
func (s *StreamChunks) Next() (piecetable.Chunk, bool) {
	if s.ctx != nil && s.ctx.Err() != nil {
		return piecetable.Chunk{}, false
	}
	return s.stream.Next()
}

// FindLines returns the line numbers whose content matches the given
// glob pattern (tidwall/match syntax: '*' and '?' wildcards), scanning
// every line in order.
func FindLines(snap document.Snapshot, pattern string) []postype.LineNumber {
	var out []postype.LineNumber
	total := snap.LineIndex.LineCount()
	for n := int64(0); n < total; n++ {
		content := GetLineContent(snap, postype.LineNumber(n))
		if match.Match(content, pattern) {
			out = append(out, postype.LineNumber(n))
		}
	}
	return out
}
