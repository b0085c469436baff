package history

import "github.com/dshills/scrivener/internal/engine/postype"

// State is the undo/redo value: two entry stacks plus configuration.
// Unlike the teacher's History (a mutable struct guarded by a mutex),
// every method here returns a new State; there is nothing to lock
// because nothing is shared and mutated in place.
type State struct {
	UndoStack         []Entry
	RedoStack         []Entry
	Limit             int
	CoalesceTimeoutMs int64
}

// NewState returns an empty history with the given undo-stack limit and
// coalesce window. limit <= 0 means unbounded.
func NewState(limit int, coalesceTimeoutMs int64) State {
	return State{Limit: limit, CoalesceTimeoutMs: coalesceTimeoutMs}
}

// Push records entry, coalescing it into the current top-of-stack entry
// when both are single-change, same-kind, within the coalesce window,
// and their positions line up per the adjacency rule for that kind.
// Pushing always clears the redo stack.
func (s State) Push(entry Entry) State {
	if len(entry.Changes) == 1 && len(s.UndoStack) > 0 {
		last := s.UndoStack[len(s.UndoStack)-1]
		if len(last.Changes) == 1 && s.CoalesceTimeoutMs > 0 && entry.TimestampMs-last.TimestampMs <= s.CoalesceTimeoutMs {
			if merged, ok := coalesce(last.Changes[0], entry.Changes[0]); ok {
				mergedEntry := Entry{
					Changes:         []Change{merged},
					SelectionBefore: last.SelectionBefore,
					SelectionAfter:  entry.SelectionAfter,
					TimestampMs:     entry.TimestampMs,
				}
				stack := append(append([]Entry(nil), s.UndoStack[:len(s.UndoStack)-1]...), mergedEntry)
				return State{UndoStack: stack, Limit: s.Limit, CoalesceTimeoutMs: s.CoalesceTimeoutMs}
			}
		}
	}

	stack := append(append([]Entry(nil), s.UndoStack...), entry)
	if s.Limit > 0 && len(stack) > s.Limit {
		stack = stack[len(stack)-s.Limit:]
	}
	return State{UndoStack: stack, Limit: s.Limit, CoalesceTimeoutMs: s.CoalesceTimeoutMs}
}

// coalesce reports whether new can be folded into last, and if so,
// returns the merged change.
func coalesce(last, next Change) (Change, bool) {
	if last.Kind != next.Kind {
		return Change{}, false
	}
	switch last.Kind {
	case Insert:
		if next.Position == last.Position+postype.ByteOffset(last.ByteLength) {
			merged := last
			merged.Text = last.Text + next.Text
			merged.ByteLength = last.ByteLength + next.ByteLength
			return merged, true
		}
	case Delete:
		if next.Position+postype.ByteOffset(next.ByteLength) == last.Position {
			// Backspace: newer delete lands just before the last one.
			merged := last
			merged.Position = next.Position
			merged.Text = next.Text + last.Text
			merged.ByteLength = last.ByteLength + next.ByteLength
			return merged, true
		}
		if next.Position == last.Position {
			// Forward delete: both delete starting at the same point.
			merged := last
			merged.Text = last.Text + next.Text
			merged.ByteLength = last.ByteLength + next.ByteLength
			return merged, true
		}
	}
	return Change{}, false
}

// PopUndo removes and returns the top undo entry, moving it to the redo
// stack. ok is false when the undo stack is empty.
func (s State) PopUndo() (Entry, State, bool) {
	if len(s.UndoStack) == 0 {
		return Entry{}, s, false
	}
	entry := s.UndoStack[len(s.UndoStack)-1]
	undo := s.UndoStack[:len(s.UndoStack)-1]
	redo := append(append([]Entry(nil), s.RedoStack...), entry)
	return entry, State{UndoStack: undo, RedoStack: redo, Limit: s.Limit, CoalesceTimeoutMs: s.CoalesceTimeoutMs}, true
}

// PopRedo removes and returns the top redo entry, moving it back to the
// undo stack. ok is false when the redo stack is empty.
func (s State) PopRedo() (Entry, State, bool) {
	if len(s.RedoStack) == 0 {
		return Entry{}, s, false
	}
	entry := s.RedoStack[len(s.RedoStack)-1]
	redo := s.RedoStack[:len(s.RedoStack)-1]
	undo := append(append([]Entry(nil), s.UndoStack...), entry)
	return entry, State{UndoStack: undo, RedoStack: redo, Limit: s.Limit, CoalesceTimeoutMs: s.CoalesceTimeoutMs}, true
}

// Clear empties both stacks, preserving Limit and CoalesceTimeoutMs.
func (s State) Clear() State {
	return State{Limit: s.Limit, CoalesceTimeoutMs: s.CoalesceTimeoutMs}
}

// CanUndo reports whether the undo stack has an entry.
func (s State) CanUndo() bool { return len(s.UndoStack) > 0 }

// CanRedo reports whether the redo stack has an entry.
func (s State) CanRedo() bool { return len(s.RedoStack) > 0 }
