package lineindex

import (
	"github.com/dshills/scrivener/internal/engine/postype"
	"github.com/dshills/scrivener/internal/engine/rbtree"
)

// insertAtRank inserts newLine as a new leaf so it occupies line number
// `at` in the in-order sequence. The caller must ensure 0 <= at <=
// current line count.
func insertAtRank(root *Node, at int64, newLine Line) *Node {
	root = insertAtRankRec(root, at, newLine)
	return rbtree.ForceBlackRoot(root)
}

func insertAtRankRec(n *Node, at int64, newLine Line) *Node {
	if n == nil {
		return rbtree.New(rbtree.Red, nil, newLine, nil, recompute)
	}
	leftCount := subtreeLineCount(n.Left)
	if at <= leftCount {
		newLeft := insertAtRankRec(n.Left, at, newLine)
		n = rbtree.WithChildren(n, newLeft, n.Right, recompute)
	} else {
		newRight := insertAtRankRec(n.Right, at-leftCount-1, newLine)
		n = rbtree.WithChildren(n, n.Left, newRight, recompute)
	}
	return rbtree.Balance(n, recompute)
}

// replaceAtRank replaces the payload of the line at rank `at` in place.
// Structure and color are untouched.
func replaceAtRank(n *Node, at int64, newLine Line) *Node {
	leftCount := subtreeLineCount(n.Left)
	switch {
	case at < leftCount:
		newLeft := replaceAtRank(n.Left, at, newLine)
		return rbtree.WithChildren(n, newLeft, n.Right, recompute)
	case at == leftCount:
		return rbtree.New(n.Color, n.Left, newLine, n.Right, recompute)
	default:
		newRight := replaceAtRank(n.Right, at-leftCount-1, newLine)
		return rbtree.WithChildren(n, n.Left, newRight, recompute)
	}
}

// lineAt returns the line at rank `at`, or ok=false if out of range.
func lineAt(root *Node, at int64) (Line, bool) {
	n := root
	for n != nil {
		leftCount := subtreeLineCount(n.Left)
		switch {
		case at < leftCount:
			n = n.Left
		case at == leftCount:
			return n.Payload, true
		default:
			at -= leftCount + 1
			n = n.Right
		}
	}
	return Line{}, false
}

// deleteAtRank removes the line at rank `at` using the standard
// Sedgewick left-leaning red-black delete, identical in shape to
// piecetable's deleteAtRank but keyed by line rank.
func deleteAtRank(root *Node, at int64) *Node {
	if root == nil {
		return nil
	}
	if !rbtree.IsRed(root.Left) && !rbtree.IsRed(root.Right) {
		root = rbtree.WithColor(root, rbtree.Red)
	}
	root = deleteAtRankRec(root, at)
	if root != nil {
		root = rbtree.ForceBlackRoot(root)
	}
	return root
}

func deleteAtRankRec(n *Node, at int64) *Node {
	leftCount := subtreeLineCount(n.Left)

	if at < leftCount {
		if !rbtree.IsRed(n.Left) && !rbtree.IsRed(n.Left.Left) {
			n = rbtree.MoveRedLeft(n, recompute)
			leftCount = subtreeLineCount(n.Left)
		}
		newLeft := deleteAtRankRec(n.Left, at)
		n = rbtree.WithChildren(n, newLeft, n.Right, recompute)
		return rbtree.Balance(n, recompute)
	}

	if rbtree.IsRed(n.Left) {
		n = rbtree.RotateRight(n, recompute)
		leftCount = subtreeLineCount(n.Left)
	}
	if at == leftCount && n.Right == nil {
		return nil
	}
	if !rbtree.IsRed(n.Right) && !rbtree.IsRed(n.Right.Left) {
		n = rbtree.MoveRedRight(n, recompute)
		leftCount = subtreeLineCount(n.Left)
	}
	if at == leftCount {
		succ := rbtree.Min(n.Right)
		newRight := rbtree.DeleteMin(n.Right, recompute)
		n = rbtree.New(n.Color, n.Left, succ.Payload, newRight, recompute)
	} else {
		newRight := deleteAtRankRec(n.Right, at-leftCount-1)
		n = rbtree.WithChildren(n, n.Left, newRight, recompute)
	}
	return rbtree.Balance(n, recompute)
}

// collect walks the tree in order, invoking fn for every line.
func collect(n *Node, fn func(Line)) {
	if n == nil {
		return
	}
	collect(n.Left, fn)
	fn(n.Payload)
	collect(n.Right, fn)
}

// exactLineStartByte returns line `at`'s byte start offset, computed by
// accumulating SubtreeByteLength along the search path. This is always
// correct, regardless of any pending dirty ranges, since the byte-length
// aggregates are kept exact on every structural edit; only the cached
// DocumentOffset field can go stale.
func exactLineStartByte(root *Node, at int64) (postype.ByteOffset, bool) {
	n := root
	acc := postype.ByteOffset(0)
	for n != nil {
		leftCount := subtreeLineCount(n.Left)
		switch {
		case at < leftCount:
			n = n.Left
		case at == leftCount:
			return acc + postype.ByteOffset(subtreeByteLength(n.Left)), true
		default:
			acc += postype.ByteOffset(subtreeByteLength(n.Left)) + postype.ByteOffset(n.Payload.LineLength)
			at -= leftCount + 1
			n = n.Right
		}
	}
	return 0, false
}

// exactLineStartChar is exactLineStartByte's UTF-16 code unit analogue.
func exactLineStartChar(root *Node, at int64) (postype.CharOffset, bool) {
	n := root
	acc := postype.CharOffset(0)
	for n != nil {
		leftCount := subtreeLineCount(n.Left)
		switch {
		case at < leftCount:
			n = n.Left
		case at == leftCount:
			return acc + subtreeCharLength(n.Left), true
		default:
			acc += subtreeCharLength(n.Left) + n.Payload.CharLength
			at -= leftCount + 1
			n = n.Right
		}
	}
	return 0, false
}

// findLineAtByteOffset returns the line number containing byte position
// pos, plus the byte offset within that line. pos equal to totalBytes
// maps to the end of the last line; pos below 0 or above totalBytes
// returns ok=false.
func findLineAtByteOffset(root *Node, pos postype.ByteOffset) (lineNum int64, offsetInLine postype.ByteOffset, ok bool) {
	n := root
	if n == nil {
		return 0, 0, false
	}
	rank := int64(0)
	for n != nil {
		leftBytes := postype.ByteOffset(subtreeByteLength(n.Left))
		if pos < leftBytes {
			n = n.Left
			continue
		}
		pos -= leftBytes
		rank += subtreeLineCount(n.Left)
		if pos <= postype.ByteOffset(n.Payload.LineLength) && (pos < postype.ByteOffset(n.Payload.LineLength) || n.Right == nil) {
			return rank, pos, true
		}
		pos -= postype.ByteOffset(n.Payload.LineLength)
		rank++
		n = n.Right
	}
	return 0, 0, false
}

// shiftOffsetsFromRank adds delta to the cached DocumentOffset of every
// line with rank >= fromRank, known offsets only. This is the O(k)
// (worst case O(n)) write EAGER maintenance pays on every edit: every
// touched node is reallocated to preserve structural sharing for the
// untouched prefix.
func shiftOffsetsFromRank(n *Node, base int64, fromRank int64, delta int64) *Node {
	if n == nil {
		return nil
	}
	leftCount := subtreeLineCount(n.Left)
	rank := base + leftCount

	newLeft := n.Left
	if base+leftCount > fromRank {
		newLeft = shiftOffsetsFromRank(n.Left, base, fromRank, delta)
	}

	payload := n.Payload
	if rank >= fromRank && payload.DocumentOffset != UnknownOffset {
		payload.DocumentOffset += postype.ByteOffset(delta)
	}

	rightBase := rank + 1
	newRight := n.Right
	if rightBase+subtreeLineCount(n.Right) > fromRank {
		newRight = shiftOffsetsFromRank(n.Right, rightBase, fromRank, delta)
	}

	return rbtree.New(n.Color, newLeft, payload, newRight, recompute)
}
