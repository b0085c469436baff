// Package piecetable implements the persistent piece table: an immutable
// red-black tree, keyed implicitly by document byte offset, whose nodes
// are pieces referencing either the original (immutable) buffer or the
// append-only add buffer. Every node carries two subtree aggregates,
// SubtreeLength and SubtreeAddLength, which make length queries O(1) and
// position lookups O(log n).
//
// Grounded on the teacher's internal/engine/rope package: a rope is also
// a tree of spans with subtree aggregates (TextSummary) used to answer
// position queries in O(log n). This package swaps the rope's
// weight-balanced B+ tree for a red-black tree over two fixed backing
// buffers, per the spec's piece-table design, reusing internal/engine/rbtree
// for the balancing core and internal/engine/addbuf for the add buffer
// (teacher: rope/chunk.go's doubling growth).
package piecetable
