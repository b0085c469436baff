package lineindex

import (
	"unicode/utf8"

	"github.com/dshills/scrivener/internal/engine/postype"
)

// rawLine is one line's length, in bytes and in UTF-16 code units,
// including its terminator if it has one.
type rawLine struct {
	ByteLen postype.ByteLen
	CharLen postype.CharOffset
}

// splitLines partitions text into line segments. A terminator — CRLF,
// lone LF, or lone CR — ends a segment and is counted as part of it. A
// trailing segment with no terminator is still a line.
//
// atDocumentEnd tells splitLines whether text's end is the true end of
// the whole document, as opposed to a fragment whose trailing
// terminator already separates it from a real, untouched line that
// continues to exist just past it (the usual case for a single edited
// line or an edited line span). Only when atDocumentEnd is set does a
// terminator at the very end of text imply one more, empty trailing
// line — per line_count == 1 + number of line terminators, which holds
// only once the whole document (or the whole of text, when it stands
// in for the document, as in NewFromText) has been accounted for.
func splitLines(text string, atDocumentEnd bool) []rawLine {
	if text == "" {
		return []rawLine{{}}
	}
	var lines []rawLine
	start := 0
	i := 0
	for i < len(text) {
		switch text[i] {
		case '\n':
			seg := text[start : i+1]
			lines = append(lines, rawLine{ByteLen: postype.ByteLen(len(seg)), CharLen: postype.CharOffset(utf16Len(seg))})
			i++
			start = i
		case '\r':
			end := i + 1
			if end < len(text) && text[end] == '\n' {
				end++
			}
			seg := text[start:end]
			lines = append(lines, rawLine{ByteLen: postype.ByteLen(len(seg)), CharLen: postype.CharOffset(utf16Len(seg))})
			i = end
			start = i
		default:
			_, size := utf8.DecodeRuneInString(text[i:])
			i += size
		}
	}
	// Unterminated tail: always its own line. Terminator exactly at
	// text's end: only a new trailing empty line when that end is the
	// document's true end — otherwise the next, untouched line already
	// continues past it.
	if start < len(text) || len(lines) == 0 || atDocumentEnd {
		seg := text[start:]
		lines = append(lines, rawLine{ByteLen: postype.ByteLen(len(seg)), CharLen: postype.CharOffset(utf16Len(seg))})
	}
	return lines
}

// newlineCount reports how many terminators splitLines(text) would find.
func newlineCount(text string) int {
	n := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			n++
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			n++
		}
	}
	return n
}

// utf16Len returns the UTF-16 code unit count of s.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}
