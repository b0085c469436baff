// Package history tracks undo/redo state as a value, not as a mutable
// stack of buffer-mutating commands. Where the teacher's history package
// wraps Execute/Undo methods around a live buffer and cursor set, this
// one stores Change values (insert/delete/replace, by position and
// text) that the reducer knows how to invert and reapply against an
// immutable snapshot — the document model here has no single mutable
// buffer to hand a command.
//
// Coalescing keeps interactive typing and backspacing from generating
// one undo step per keystroke: adjacent same-kind single-change entries
// within a configurable time window merge into one entry, the same
// ergonomic goal as the teacher's BeginGroup/EndGroup but driven by a
// timestamp window instead of explicit grouping calls.
package history
