package piecetable

import (
	"github.com/dshills/scrivener/internal/engine/postype"
	"github.com/dshills/scrivener/internal/engine/rbtree"
)

// location describes where a byte offset falls within the piece tree.
type location struct {
	base          postype.ByteOffset // global start offset of piece
	piece         Piece
	offsetInPiece postype.ByteOffset // 0 <= offsetInPiece <= piece.Length
}

// locate finds the piece containing byte offset p. When p lands exactly
// on a boundary between two pieces, either neighbour may be returned:
// the earlier piece with offsetInPiece equal to its length, or the later
// piece with offsetInPiece 0, depending on which is met first on the
// path from the root. Returns ok=false for an empty tree or when p lies
// outside [0, total length].
func locate(root *Node, p postype.ByteOffset) (loc location, ok bool) {
	n := root
	base := postype.ByteOffset(0)
	for n != nil {
		leftLen := postype.ByteOffset(subtreeLength(n.Left))
		if p < leftLen {
			n = n.Left
			continue
		}
		p -= leftLen
		base += leftLen
		if p <= postype.ByteOffset(n.Payload.Length) {
			return location{base: base, piece: n.Payload, offsetInPiece: p}, true
		}
		p -= postype.ByteOffset(n.Payload.Length)
		base += postype.ByteOffset(n.Payload.Length)
		n = n.Right
	}
	return location{}, false
}

// insertAtRank inserts newPiece as a new leaf so that it occupies byte
// rank `at` within the in-order sequence. The caller must ensure `at`
// lands exactly on an existing piece boundary (or that the tree is
// empty / `at` is past the end).
func insertAtRank(root *Node, at postype.ByteOffset, newPiece Piece) *Node {
	root = insertAtRankRec(root, at, newPiece)
	return rbtree.ForceBlackRoot(root)
}

func insertAtRankRec(n *Node, at postype.ByteOffset, newPiece Piece) *Node {
	if n == nil {
		return rbtree.New(rbtree.Red, nil, newPiece, nil, recompute)
	}
	leftLen := postype.ByteOffset(subtreeLength(n.Left))
	if at <= leftLen {
		newLeft := insertAtRankRec(n.Left, at, newPiece)
		n = rbtree.WithChildren(n, newLeft, n.Right, recompute)
	} else {
		newRight := insertAtRankRec(n.Right, at-leftLen-postype.ByteOffset(n.Payload.Length), newPiece)
		n = rbtree.WithChildren(n, n.Left, newRight, recompute)
	}
	return rbtree.Balance(n, recompute)
}

// replaceAtRank replaces the payload of the node whose piece starts
// exactly at global offset `base` with newPiece. Structure and color are
// untouched; only the node's own fields (and every ancestor's
// aggregates) change.
func replaceAtRank(n *Node, base postype.ByteOffset, newPiece Piece) *Node {
	leftLen := postype.ByteOffset(subtreeLength(n.Left))
	switch {
	case base < leftLen:
		newLeft := replaceAtRank(n.Left, base, newPiece)
		return rbtree.WithChildren(n, newLeft, n.Right, recompute)
	case base == leftLen:
		return rbtree.New(n.Color, n.Left, newPiece, n.Right, recompute)
	default:
		newRight := replaceAtRank(n.Right, base-leftLen-postype.ByteOffset(n.Payload.Length), newPiece)
		return rbtree.WithChildren(n, n.Left, newRight, recompute)
	}
}

// ensureBoundary splits the piece straddling byte offset pos, if any, so
// that a clean piece boundary exists at pos. A no-op when pos already
// falls on a boundary or is outside the tree's range.
func ensureBoundary(root *Node, pos postype.ByteOffset) *Node {
	if root == nil {
		return root
	}
	loc, ok := locate(root, pos)
	if !ok || loc.offsetInPiece == 0 || loc.offsetInPiece == postype.ByteOffset(loc.piece.Length) {
		return root
	}

	left := loc.piece
	left.Length = postype.ByteLen(loc.offsetInPiece)

	right := loc.piece
	right.Start = loc.piece.Start + loc.offsetInPiece
	right.Length = loc.piece.Length - postype.ByteLen(loc.offsetInPiece)

	root = replaceAtRank(root, loc.base, left)
	root = insertAtRank(root, loc.base+loc.offsetInPiece, right)
	return root
}

// deleteAtRank removes the whole node whose piece starts exactly at
// global offset `base`, using the standard left-leaning red-black delete
// (Sedgewick): recurse toward the target rebalancing red links ahead of
// the recursion via MoveRedLeft/MoveRedRight, then splice the node out by
// replacing it with its in-order successor when it has two children.
func deleteAtRank(root *Node, base postype.ByteOffset) *Node {
	if root == nil {
		return nil
	}
	if !rbtree.IsRed(root.Left) && !rbtree.IsRed(root.Right) {
		root = rbtree.WithColor(root, rbtree.Red)
	}
	root = deleteAtRankRec(root, base)
	if root != nil {
		root = rbtree.ForceBlackRoot(root)
	}
	return root
}

func deleteAtRankRec(n *Node, base postype.ByteOffset) *Node {
	leftLen := postype.ByteOffset(subtreeLength(n.Left))

	if base < leftLen {
		if !rbtree.IsRed(n.Left) && !rbtree.IsRed(n.Left.Left) {
			n = rbtree.MoveRedLeft(n, recompute)
			leftLen = postype.ByteOffset(subtreeLength(n.Left))
		}
		newLeft := deleteAtRankRec(n.Left, base)
		n = rbtree.WithChildren(n, newLeft, n.Right, recompute)
		return rbtree.Balance(n, recompute)
	}

	if rbtree.IsRed(n.Left) {
		n = rbtree.RotateRight(n, recompute)
		leftLen = postype.ByteOffset(subtreeLength(n.Left))
	}
	if base == leftLen && n.Right == nil {
		return nil
	}
	if !rbtree.IsRed(n.Right) && !rbtree.IsRed(n.Right.Left) {
		n = rbtree.MoveRedRight(n, recompute)
		leftLen = postype.ByteOffset(subtreeLength(n.Left))
	}
	if base == leftLen {
		succ := rbtree.Min(n.Right)
		newRight := rbtree.DeleteMin(n.Right, recompute)
		n = rbtree.New(n.Color, n.Left, succ.Payload, newRight, recompute)
	} else {
		newRight := deleteAtRankRec(n.Right, base-leftLen-postype.ByteOffset(n.Payload.Length))
		n = rbtree.WithChildren(n, n.Left, newRight, recompute)
	}
	return rbtree.Balance(n, recompute)
}

// collect walks the tree in order, invoking fn(piece, globalStart) for
// every piece. Used by GetText/GetValueStream/compaction.
func collect(n *Node, base postype.ByteOffset, fn func(Piece, postype.ByteOffset)) {
	if n == nil {
		return
	}
	collect(n.Left, base, fn)
	pieceBase := base + postype.ByteOffset(subtreeLength(n.Left))
	fn(n.Payload, pieceBase)
	collect(n.Right, pieceBase+postype.ByteOffset(n.Payload.Length), fn)
}

// collectRange is like collect but skips subtrees that cannot overlap
// [start, end), using SubtreeLength to prune — the pruning guarantee
// described in spec §4.3.
func collectRange(n *Node, base, start, end postype.ByteOffset, fn func(Piece, postype.ByteOffset)) {
	if n == nil {
		return
	}
	subtreeEnd := base + postype.ByteOffset(subtreeLength(n))
	if subtreeEnd <= start || base >= end {
		return
	}
	leftEnd := base + postype.ByteOffset(subtreeLength(n.Left))
	collectRange(n.Left, base, start, end, fn)
	if leftEnd < end && leftEnd+postype.ByteOffset(n.Payload.Length) > start {
		fn(n.Payload, leftEnd)
	}
	pieceEnd := leftEnd + postype.ByteOffset(n.Payload.Length)
	collectRange(n.Right, pieceEnd, start, end, fn)
}
