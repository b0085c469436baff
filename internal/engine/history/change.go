package history

import "github.com/dshills/scrivener/internal/engine/postype"

// ChangeKind names the edit a Change records.
type ChangeKind int

const (
	Insert ChangeKind = iota
	Delete
	Replace
)

// Change is one undoable edit: what happened, where, and with what
// text. OldText is only meaningful for Replace.
type Change struct {
	Kind       ChangeKind
	Position   postype.ByteOffset
	Text       string
	ByteLength postype.ByteLen
	OldText    string
}

// Invert returns the change that undoes c. Insert and Delete swap kind
// while keeping position/text/byte_length; Replace swaps Text and
// OldText, recomputing ByteLength from the (now current) Text.
func (c Change) Invert() Change {
	switch c.Kind {
	case Insert:
		return Change{Kind: Delete, Position: c.Position, Text: c.Text, ByteLength: c.ByteLength}
	case Delete:
		return Change{Kind: Insert, Position: c.Position, Text: c.Text, ByteLength: c.ByteLength}
	case Replace:
		return Change{Kind: Replace, Position: c.Position, Text: c.OldText, OldText: c.Text, ByteLength: postype.ByteLen(len(c.OldText))}
	default:
		return c
	}
}
