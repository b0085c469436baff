// Package selection holds the cursor/selection value types threaded
// through a document snapshot. Ranges are byte-offset pairs; there is no
// notion of a "current" text buffer here, so all conversions to
// line/column or UTF-16 char offsets live in package query, which has
// access to both the piece table and the line index.
package selection

import "github.com/dshills/scrivener/internal/engine/postype"

// Range is one selection span: Anchor is where the selection started,
// Head is where it currently ends (and where further typing occurs). A
// collapsed selection (Anchor == Head) is a plain cursor.
type Range struct {
	Anchor postype.ByteOffset
	Head   postype.ByteOffset
}

// IsEmpty reports whether the range is a collapsed cursor.
func (r Range) IsEmpty() bool { return r.Anchor == r.Head }

// Lo returns the lower of Anchor and Head.
func (r Range) Lo() postype.ByteOffset {
	if r.Anchor < r.Head {
		return r.Anchor
	}
	return r.Head
}

// Hi returns the higher of Anchor and Head.
func (r Range) Hi() postype.ByteOffset {
	if r.Anchor > r.Head {
		return r.Anchor
	}
	return r.Head
}

// State is the selection: an ordered list of ranges and which one is
// primary (the one new typing and most reads reference).
type State struct {
	Ranges  []Range
	Primary int
}

// New returns a single collapsed selection at position p.
func New(p postype.ByteOffset) State {
	return State{Ranges: []Range{{Anchor: p, Head: p}}, Primary: 0}
}

// PrimaryRange returns the primary selection range, or a collapsed
// cursor at 0 if the selection is empty.
func (s State) PrimaryRange() Range {
	if len(s.Ranges) == 0 {
		return Range{}
	}
	if s.Primary < 0 || s.Primary >= len(s.Ranges) {
		return s.Ranges[0]
	}
	return s.Ranges[s.Primary]
}

// CharRange mirrors Range but measures Anchor/Head in UTF-16 code units
// instead of bytes, for clients that speak LSP-style columns.
type CharRange struct {
	Anchor postype.CharOffset
	Head   postype.CharOffset
}
