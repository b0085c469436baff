package lineindex

import (
	"github.com/dshills/scrivener/internal/engine/postype"
	"github.com/dshills/scrivener/internal/engine/rbtree"
)

// UnknownOffset marks a line whose cached DocumentOffset has not been
// reconciled since a LAZY structural edit touched it.
const UnknownOffset = postype.ByteOffset(-1)

// Line is one line-index node payload: a line's own length plus the
// tree's subtree aggregates.
type Line struct {
	// DocumentOffset is the line's cached absolute byte start. It is
	// exact under EAGER maintenance, and may be UnknownOffset or stale
	// (but correctable via dirty ranges) under LAZY maintenance.
	DocumentOffset postype.ByteOffset
	// LineLength is the line's length in bytes, including its line
	// terminator, if any.
	LineLength postype.ByteLen
	// CharLength is the line's length in UTF-16 code units, including
	// its terminator.
	CharLength postype.CharOffset

	SubtreeLineCount  int64
	SubtreeByteLength postype.ByteLen
	SubtreeCharLength postype.CharOffset
}

// Node is a line-index tree node.
type Node = rbtree.Node[Line]

// recompute rebuilds a line's subtree aggregates from its own length
// fields and its children's aggregates.
func recompute(l Line, left, right *Node) Line {
	l.SubtreeLineCount = 1
	l.SubtreeByteLength = l.LineLength
	l.SubtreeCharLength = l.CharLength
	if left != nil {
		l.SubtreeLineCount += left.Payload.SubtreeLineCount
		l.SubtreeByteLength += left.Payload.SubtreeByteLength
		l.SubtreeCharLength += left.Payload.SubtreeCharLength
	}
	if right != nil {
		l.SubtreeLineCount += right.Payload.SubtreeLineCount
		l.SubtreeByteLength += right.Payload.SubtreeByteLength
		l.SubtreeCharLength += right.Payload.SubtreeCharLength
	}
	return l
}

func subtreeLineCount(n *Node) int64 {
	if n == nil {
		return 0
	}
	return n.Payload.SubtreeLineCount
}

func subtreeByteLength(n *Node) postype.ByteLen {
	if n == nil {
		return 0
	}
	return n.Payload.SubtreeByteLength
}

func subtreeCharLength(n *Node) postype.CharOffset {
	if n == nil {
		return 0
	}
	return n.Payload.SubtreeCharLength
}
