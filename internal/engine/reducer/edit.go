package reducer

import (
	"github.com/dshills/scrivener/internal/engine/lineindex"
	"github.com/dshills/scrivener/internal/engine/piecetable"
	"github.com/dshills/scrivener/internal/engine/postype"
)

// lineSpanText returns the full, unmodified content of every line that
// start's and end's containing lines span, read from pt/li before any
// edit touches them. This is exactly what lineindex.Delete needs as
// affectedText.
func lineSpanText(pt *piecetable.State, li *lineindex.State, start, end postype.ByteOffset) string {
	startLine, _, ok := li.FindLineAtByteOffset(start)
	if !ok {
		startLine = 0
	}
	endLine, _, ok := li.FindLineAtByteOffset(end)
	if !ok {
		endLine = startLine
	}
	lineStart, _ := li.ExactLineStartByte(startLine)
	endRange, _ := li.GetLineRangePrecise(endLine)
	lineEnd := endRange.Start + postype.ByteOffset(endRange.Length)
	return pt.GetText(lineStart, lineEnd)
}

// applyStructural performs the unified delete-then-insert edit against
// the piece table and line index, per the reducer's single edit
// pipeline: at most one delete phase followed by at most one insert
// phase, both trees updated in lock step under the given maintenance
// mode. It returns the new trees, the text that was deleted (for
// building the history change), and the number of bytes actually
// inserted (the piece table may reject an empty insert).
func applyStructural(
	pt *piecetable.State, li *lineindex.State,
	hasDelete bool, deleteStart, deleteEnd postype.ByteOffset,
	insertPos postype.ByteOffset, insertText string,
	mode lineindex.Mode, version int64,
) (newPt *piecetable.State, newLi *lineindex.State, deletedText string, insertedLen postype.ByteLen) {
	newPt, newLi = pt, li

	if hasDelete && deleteStart < deleteEnd {
		deletedText = newPt.GetText(deleteStart, deleteEnd)
		affected := lineSpanText(newPt, newLi, deleteStart, deleteEnd)
		newLi = newLi.Delete(mode, deleteStart, deleteEnd, affected, version)
		newPt = newPt.Delete(deleteStart, deleteEnd)
	}

	if insertText != "" {
		oldLineText := ""
		if lineNum, _, ok := newLi.FindLineAtByteOffset(insertPos); ok {
			if lr, ok := newLi.GetLineRangePrecise(lineNum); ok {
				oldLineText = newPt.GetText(lr.Start, lr.Start+postype.ByteOffset(lr.Length))
			}
		}
		newLi = newLi.Insert(mode, insertPos, insertText, oldLineText, version)
		newPt, insertedLen = newPt.Insert(insertPos, insertText)
	}

	return newPt, newLi, deletedText, insertedLen
}
