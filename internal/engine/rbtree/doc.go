// Package rbtree is the generic, immutable red-black tree core shared by
// the piece table and the line index. It is polymorphic over a node
// payload type via Go generics instead of a classic OO node interface: a
// Recompute function, supplied by the caller at every call site, rebuilds
// a node's subtree aggregates from its own base fields plus its
// children's payloads. Left/right/color are the only structural fields
// the core itself understands; it never inspects payload contents.
//
// There are no parent pointers anywhere in this package: persistence
// rules them out, since mutating a parent pointer in place would corrupt
// older snapshots that still reference the same child. Instead, every
// operation walks down from the root and rebuilds the path back up,
// which is also why insert and delete are written recursively here: the
// Go call stack on the way down *is* the path, and each stack frame
// repairs its own local red-violation on the way back up via Balance.
//
// The concrete balancing discipline is left-leaning red-black (LLRB,
// Sedgewick): red links only ever lean left, which collapses the
// textbook four-rotation-case red-black fixup into three local checks
// (RotateLeft if a lone red link leans right, RotateRight if two reds
// stack up on the left, FlipColors if both children are red). This is a
// concrete, well-known realization of the spec's path-based fixup
// description, chosen because it is naturally recursive/path-based and
// because a single Balance call safely captures every fixup case for
// both the piece tree and the line tree without duplicating rotation
// case analysis in each.
package rbtree
