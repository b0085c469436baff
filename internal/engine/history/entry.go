package history

import "github.com/dshills/scrivener/internal/engine/selection"

// Entry is one undo/redo unit: the changes it applied (in application
// order), the selection immediately before and after, and when it
// happened.
type Entry struct {
	Changes         []Change
	SelectionBefore selection.State
	SelectionAfter  selection.State
	TimestampMs     int64
}

// Invert returns the entry that undoes e: its changes inverted and run
// in reverse order, with before/after selection swapped.
func (e Entry) Invert() Entry {
	inverted := make([]Change, len(e.Changes))
	for i, c := range e.Changes {
		inverted[len(e.Changes)-1-i] = c.Invert()
	}
	return Entry{
		Changes:         inverted,
		SelectionBefore: e.SelectionAfter,
		SelectionAfter:  e.SelectionBefore,
		TimestampMs:     e.TimestampMs,
	}
}
