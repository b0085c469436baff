package lineindex

import (
	"github.com/dshills/scrivener/internal/engine/postype"
)

// Mode selects how a structural edit maintains cached document offsets.
type Mode int

const (
	// Eager recomputes every affected line's DocumentOffset immediately.
	Eager Mode = iota
	// Lazy defers that recomputation via a dirty range.
	Lazy
)

// State is an immutable line index: a root (nil only for a destroyed
// tree; a fresh document always has at least one line), the line count,
// and whatever dirty ranges LAZY edits have left outstanding.
type State struct {
	root                  *Node
	lineCount             int64
	dirty                 []DirtyRange
	rebuildPending        bool
	lastReconciledVersion int64
}

// NewEmpty returns the line index for an empty document: one line of
// length zero.
func NewEmpty() *State {
	root := insertAtRank(nil, 0, Line{DocumentOffset: 0})
	return &State{root: root, lineCount: 1}
}

// NewFromText builds a line index from scratch for the given text, with
// every DocumentOffset exact (there is nothing to reconcile for a freshly
// built tree).
func NewFromText(text string) *State {
	segs := splitLines(text, true)
	var root *Node
	offset := postype.ByteOffset(0)
	for i, seg := range segs {
		root = insertAtRank(root, int64(i), Line{DocumentOffset: offset, LineLength: seg.ByteLen, CharLength: seg.CharLen})
		offset += postype.ByteOffset(seg.ByteLen)
	}
	return &State{root: root, lineCount: int64(len(segs))}
}

// LineCount returns the number of lines. O(1).
func (s *State) LineCount() int64 { return s.lineCount }

// RebuildPending reports whether the dirty-range list collapsed to a
// single full-document range (the maxDirtyRanges safety cap tripped).
func (s *State) RebuildPending() bool { return s.rebuildPending }

// HasDirty reports whether any offset correction is still outstanding.
func (s *State) HasDirty() bool { return len(s.dirty) > 0 }

// LineAt returns line n's length fields. O(log n).
func (s *State) LineAt(n postype.LineNumber) (Line, bool) {
	return lineAt(s.root, int64(n))
}

// CollectLines returns every line's length fields in order. O(n).
func (s *State) CollectLines() []Line {
	var out []Line
	collect(s.root, func(l Line) { out = append(out, l) })
	return out
}

// FindLineAtByteOffset returns the line number containing byte position
// pos and the offset within that line. O(log n).
func (s *State) FindLineAtByteOffset(pos postype.ByteOffset) (postype.LineNumber, postype.ByteOffset, bool) {
	n, off, ok := findLineAtByteOffset(s.root, pos)
	return postype.LineNumber(n), off, ok
}

// ExactLineStartByte computes line n's byte start offset by accumulating
// byte-length aggregates. Always correct, independent of dirty ranges.
func (s *State) ExactLineStartByte(n postype.LineNumber) (postype.ByteOffset, bool) {
	return exactLineStartByte(s.root, int64(n))
}

// ExactLineStartChar is ExactLineStartByte's UTF-16 analogue.
func (s *State) ExactLineStartChar(n postype.LineNumber) (postype.CharOffset, bool) {
	return exactLineStartChar(s.root, int64(n))
}

// LineRange is the resolved byte span of a single line.
type LineRange struct {
	Start  postype.ByteOffset
	Length postype.ByteLen
}

// GetLineRangePrecise returns line n's byte span. When there are no
// outstanding dirty ranges it reads the cached DocumentOffset field
// directly. Otherwise it applies the cumulative dirty-range delta to
// that cache, falling back to the always-correct aggregate computation
// for lines whose cache was never filled in (newly split LAZY lines).
func (s *State) GetLineRangePrecise(n postype.LineNumber) (LineRange, bool) {
	line, ok := lineAt(s.root, int64(n))
	if !ok {
		return LineRange{}, false
	}
	if len(s.dirty) == 0 {
		return LineRange{Start: line.DocumentOffset, Length: line.LineLength}, true
	}
	if line.DocumentOffset == UnknownOffset {
		start, ok := exactLineStartByte(s.root, int64(n))
		if !ok {
			return LineRange{}, false
		}
		return LineRange{Start: start, Length: line.LineLength}, true
	}
	delta := cumulativeDelta(s.dirty, n)
	return LineRange{Start: line.DocumentOffset + postype.ByteOffset(delta), Length: line.LineLength}, true
}

// editPlan is the common structural-splice shape both Insert and Delete
// reduce to: replace the inclusive rank span [startRank, endRank] with
// newSegs, assigning the first new segment the replaced span's original
// DocumentOffset (its own position never moved) and UnknownOffset to
// every other new segment.
func (s *State) editPlan(startRank, endRank int64, newSegs []rawLine, mode Mode, version int64, delta int64) *State {
	old, _ := lineAt(s.root, startRank)

	root := s.root
	for r := startRank + 1; r <= endRank; r++ {
		root = deleteAtRank(root, startRank+1)
	}

	lines := make([]Line, len(newSegs))
	for i, seg := range newSegs {
		l := Line{LineLength: seg.ByteLen, CharLength: seg.CharLen}
		if i == 0 {
			l.DocumentOffset = old.DocumentOffset
		} else {
			l.DocumentOffset = UnknownOffset
		}
		lines[i] = l
	}

	root = replaceAtRank(root, startRank, lines[0])
	for i := 1; i < len(lines); i++ {
		root = insertAtRank(root, startRank+int64(i), lines[i])
	}

	newLineCount := s.lineCount - (endRank - startRank + 1) + int64(len(newSegs))
	dirtyStart := postype.LineNumber(startRank + 1)

	switch mode {
	case Eager:
		throughRank := startRank + int64(len(newSegs)) - 1
		root = fillExactOffsetsRange(root, startRank+1, throughRank)
		root = shiftOffsetsFromRank(root, 0, throughRank+1, delta)
		return &State{root: root, lineCount: newLineCount, dirty: s.dirty, lastReconciledVersion: s.lastReconciledVersion}
	default: // Lazy
		if s.rebuildPending {
			// Already collapsed to one whole-document range; keep it.
			return &State{root: root, lineCount: newLineCount, dirty: s.dirty, rebuildPending: true, lastReconciledVersion: s.lastReconciledVersion}
		}
		next := append(append([]DirtyRange(nil), s.dirty...), DirtyRange{
			StartLine: dirtyStart, EndLine: postype.MaxLineNumber, OffsetDelta: delta, CreatedAtVersion: version,
		})
		merged, rebuildPending := mergeDirtyRanges(next)
		return &State{root: root, lineCount: newLineCount, dirty: merged, rebuildPending: rebuildPending, lastReconciledVersion: s.lastReconciledVersion}
	}
}

// fillExactOffsetsRange sets DocumentOffset = exactLineStartByte(rank)
// for every rank in [from, through], inclusive.
func fillExactOffsetsRange(root *Node, from, through int64) *Node {
	for r := from; r <= through; r++ {
		start, ok := exactLineStartByte(root, r)
		if !ok {
			continue
		}
		l, ok := lineAt(root, r)
		if !ok {
			continue
		}
		l.DocumentOffset = start
		root = replaceAtRank(root, r, l)
	}
	return root
}

// Insert performs the structural line-index update for inserting text at
// byte position p. oldLineText must be the full, unmodified content
// (including terminator, if any) of the single line p currently falls
// within — the index stores only lengths, not text, so the caller (which
// just performed the matching piece-table edit) supplies it.
func (s *State) Insert(mode Mode, p postype.ByteOffset, text string, oldLineText string, version int64) *State {
	lineNum, offsetInLine, ok := findLineAtByteOffset(s.root, p)
	if !ok {
		lineNum, offsetInLine = 0, 0
	}
	merged := oldLineText[:int(offsetInLine)] + text + oldLineText[int(offsetInLine):]
	atDocumentEnd := int64(lineNum) == s.lineCount-1
	segs := splitLines(merged, atDocumentEnd)
	delta := int64(len(text))
	return s.editPlan(lineNum, lineNum, segs, mode, version, delta)
}

// Delete performs the structural line-index update for deleting bytes in
// [start, end). affectedText must be the full, unmodified content of
// every line that start's and end's containing lines span (from the
// start of start's line through the end of end's line).
func (s *State) Delete(mode Mode, start, end postype.ByteOffset, affectedText string, version int64) *State {
	startLine, startOffset, ok := findLineAtByteOffset(s.root, start)
	if !ok {
		startLine, startOffset = 0, 0
	}
	endLine, endOffset, ok := findLineAtByteOffset(s.root, end)
	if !ok {
		endLine, endOffset = startLine, startOffset
	}
	startLineStart, _ := exactLineStartByte(s.root, startLine)
	endLineStart, _ := exactLineStartByte(s.root, endLine)

	// Position of `end` relative to affectedText's start (which is
	// startLineStart): the offset of endLine within affectedText, plus
	// end's offset within endLine.
	endRel := int64(endLineStart-startLineStart) + int64(endOffset)

	merged := affectedText[:int(startOffset)] + affectedText[int(endRel):]
	atDocumentEnd := int64(endLine) == s.lineCount-1
	segs := splitLines(merged, atDocumentEnd)
	delta := -int64(end - start)
	return s.editPlan(startLine, endLine, segs, mode, version, delta)
}
