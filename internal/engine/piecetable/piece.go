package piecetable

import (
	"github.com/dshills/scrivener/internal/engine/postype"
	"github.com/dshills/scrivener/internal/engine/rbtree"
)

// BufferKind names which backing buffer a piece references.
type BufferKind uint8

const (
	OriginalBuffer BufferKind = iota
	AddBuffer
)

// Piece is a value-typed reference into one of the two backing buffers,
// plus the two subtree aggregates the tree maintains for it. Pieces carry
// no identity of their own; their position in the tree is their identity.
type Piece struct {
	Buffer BufferKind
	Start  postype.ByteOffset
	Length postype.ByteLen

	// SubtreeLength = Length + left.SubtreeLength + right.SubtreeLength.
	SubtreeLength postype.ByteLen
	// SubtreeAddLength = (Buffer == AddBuffer ? Length : 0) + children's.
	SubtreeAddLength postype.ByteLen
}

// End returns the exclusive end offset of the piece within its buffer.
func (p Piece) End() postype.ByteOffset { return p.Start + postype.ByteOffset(p.Length) }

// Node is a piece-tree node.
type Node = rbtree.Node[Piece]

// recompute rebuilds a piece's subtree aggregates from its own Buffer/
// Length and its children's aggregates. It is the Recompute function
// threaded through every rbtree call in this package.
func recompute(p Piece, left, right *Node) Piece {
	p.SubtreeLength = p.Length
	p.SubtreeAddLength = 0
	if p.Buffer == AddBuffer {
		p.SubtreeAddLength = postype.ByteLen(p.Length)
	}
	if left != nil {
		p.SubtreeLength += left.Payload.SubtreeLength
		p.SubtreeAddLength += left.Payload.SubtreeAddLength
	}
	if right != nil {
		p.SubtreeLength += right.Payload.SubtreeLength
		p.SubtreeAddLength += right.Payload.SubtreeAddLength
	}
	return p
}

// subtreeLength returns n's SubtreeLength, or 0 for a nil node.
func subtreeLength(n *Node) postype.ByteLen {
	if n == nil {
		return 0
	}
	return n.Payload.SubtreeLength
}

// subtreeAddLength returns n's SubtreeAddLength, or 0 for a nil node.
func subtreeAddLength(n *Node) postype.ByteLen {
	if n == nil {
		return 0
	}
	return n.Payload.SubtreeAddLength
}
