// Package lineindex maintains a second red-black tree, parallel to the
// piece table, keyed by line number instead of byte offset. Each node
// carries a line's length in bytes and in UTF-16 code units, plus the
// same kind of subtree aggregates the piece tree uses — here a line
// count, a byte length and a char length instead of just a length.
//
// The tree reuses the teacher's rope idea of pushing per-node metadata
// up through aggregates so that "which line is byte N in" and "where
// does line N start" are both O(log n) navigations rather than O(n)
// scans, the same trade the piece tree makes for byte offsets (see
// internal/engine/piecetable).
//
// Two maintenance strategies are supported, selected per edit by the
// caller (the reducer): EAGER recomputes every affected line's cached
// document_offset immediately, which is simple but touches O(k) nodes
// where k is the number of lines after the edit point. LAZY defers that
// write by recording a dirty range (see dirty.go) and leaves affected
// lines' cached offsets stale until a later reconciliation pass. Both
// strategies keep the byte/char length aggregates exact at all times;
// only the convenience "document_offset" field on outlying lines can go
// stale under LAZY, and only until it's reconciled.
package lineindex
