// Package txn implements the nested transaction manager: a stack of
// snapshots (one pushed per Begin) plus a pending-action log, so a
// sequence of store dispatches can be bracketed and either committed as
// one notification or rolled back to the snapshot that preceded them.
//
// It mirrors the teacher's history package in spirit — a small piece of
// mutable, mutex-guarded bookkeeping sitting in front of an otherwise
// immutable document model, the same shape as keystorm's History guarding
// undo/redo stacks around a live buffer — but here the "commands" are
// whole snapshots rather than buffer mutations, since the document model
// has no single buffer to hand back and forth.
package txn
