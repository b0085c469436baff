// Package docmeta holds the metadata that travels alongside a document
// snapshot but describes it rather than its content: where it came from,
// how it is encoded, and whether it has unsaved changes.
package docmeta

import "time"

// LineEnding names the dominant line terminator style detected on load
// (or configured for a new document). It never changes what bytes the
// piece table stores — it only records which style new-document defaults
// and display should assume.
type LineEnding int

const (
	// LF is the default for new, empty documents.
	LF LineEnding = iota
	CRLF
	CR
)

// String returns the canonical terminator bytes for e.
func (e LineEnding) String() string {
	switch e {
	case CRLF:
		return "\r\n"
	case CR:
		return "\r"
	default:
		return "\n"
	}
}

// Metadata describes a document independent of its content.
type Metadata struct {
	// Path is empty for an unsaved, untitled document.
	Path string
	// Encoding names the text encoding the document was decoded from on
	// load (e.g. "utf-8"). The in-memory piece table is always UTF-8;
	// this field is provenance for round-tripping on save.
	Encoding string
	// LineEnding is the dominant terminator style detected on load.
	LineEnding LineEnding
	// IsDirty reports whether the document has unsaved changes.
	IsDirty bool
	// LastSaved is the zero time when the document has never been saved.
	LastSaved time.Time
}

// New returns metadata for a brand-new, untitled document.
func New() Metadata {
	return Metadata{Encoding: "utf-8", LineEnding: LF}
}

// MarkDirty returns a copy of m with IsDirty set to true.
func (m Metadata) MarkDirty() Metadata {
	m.IsDirty = true
	return m
}

// MarkSaved returns a copy of m with IsDirty cleared and LastSaved set to
// when.
func (m Metadata) MarkSaved(when time.Time) Metadata {
	m.IsDirty = false
	m.LastSaved = when
	return m
}

// DetectLineEnding inspects text for its first line terminator and
// reports the corresponding style. Text with no terminator at all
// reports LF, the default for a document that has never wrapped a line.
func DetectLineEnding(text string) LineEnding {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				return CRLF
			}
			return CR
		case '\n':
			return LF
		}
	}
	return LF
}
