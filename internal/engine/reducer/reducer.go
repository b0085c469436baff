package reducer

import (
	"time"

	"github.com/dshills/scrivener/internal/engine/document"
	"github.com/dshills/scrivener/internal/engine/history"
	"github.com/dshills/scrivener/internal/engine/lineindex"
	"github.com/dshills/scrivener/internal/engine/piecetable"
	"github.com/dshills/scrivener/internal/engine/postype"
	"github.com/dshills/scrivener/internal/engine/selection"
)

// Apply routes action through the reducer's validation and the unified
// edit pipeline, returning the resulting snapshot. Invalid or no-op
// actions return snap unchanged — same version, same reference fields —
// so the store can tell "nothing happened" from "something changed"
// without a separate signal.
func Apply(snap document.Snapshot, action Action) document.Snapshot {
	total := postype.ByteOffset(snap.TotalLength())

	switch action.Kind {
	case Insert:
		if action.Start < 0 || action.Text == "" {
			return snap
		}
		pos := postype.ClampOffset(action.Start, total)
		return applyEdit(snap, false, 0, 0, pos, action.Text, lineindex.Lazy, history.Insert, action.TimestampMs)

	case Delete:
		if action.Start < 0 || action.End < 0 || action.Start > action.End {
			return snap
		}
		start := postype.ClampOffset(action.Start, total)
		end := postype.ClampOffset(action.End, total)
		if start >= end {
			return snap
		}
		return applyEdit(snap, true, start, end, start, "", lineindex.Lazy, history.Delete, action.TimestampMs)

	case Replace:
		if action.Start < 0 || action.End < 0 || action.Start > action.End {
			return snap
		}
		start := postype.ClampOffset(action.Start, total)
		end := postype.ClampOffset(action.End, total)
		if start == end && action.Text == "" {
			return snap
		}
		return applyEdit(snap, true, start, end, start, action.Text, lineindex.Lazy, history.Replace, action.TimestampMs)

	case SetSelection:
		next := snap
		next.Version = snap.Version + 1
		next.Selection = action.Selection
		return next

	case Undo:
		return applyUndo(snap)

	case Redo:
		return applyRedo(snap)

	case HistoryClear:
		next := snap
		next.Version = snap.Version + 1
		next.History = snap.History.Clear()
		return next

	case TransactionStart, TransactionCommit, TransactionRollback:
		// Handled by the store; the reducer never sees transaction
		// brackets as a state change of its own.
		return snap

	case ApplyRemote:
		return applyRemote(snap, action.RemoteChanges)

	case LoadChunk, EvictChunk:
		// Reserved for large-file chunking; not part of the core contract.
		return snap

	default:
		return snap
	}
}

// applyEdit is the reducer's apply_edit: at most one delete phase
// followed by at most one insert phase against both trees, one history
// change built from the result, version incremented, metadata marked
// dirty.
func applyEdit(
	snap document.Snapshot,
	hasDelete bool, deleteStart, deleteEnd postype.ByteOffset,
	insertPos postype.ByteOffset, insertText string,
	mode lineindex.Mode, kind history.ChangeKind, timestampMs int64,
) document.Snapshot {
	version := snap.Version + 1
	pt, li, deletedText, insertedLen := applyStructural(
		snap.PieceTable, snap.LineIndex,
		hasDelete, deleteStart, deleteEnd,
		insertPos, insertText, mode, version,
	)

	var change history.Change
	var afterPos postype.ByteOffset
	switch kind {
	case history.Insert:
		change = history.Change{Kind: history.Insert, Position: insertPos, Text: insertText, ByteLength: insertedLen}
		afterPos = insertPos + postype.ByteOffset(insertedLen)
	case history.Delete:
		change = history.Change{Kind: history.Delete, Position: deleteStart, Text: deletedText, ByteLength: postype.ByteLen(deleteEnd - deleteStart)}
		afterPos = deleteStart
	case history.Replace:
		change = history.Change{Kind: history.Replace, Position: deleteStart, Text: insertText, OldText: deletedText, ByteLength: insertedLen}
		afterPos = deleteStart + postype.ByteOffset(insertedLen)
	}

	ts := timestampMs
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	afterSelection := selection.New(afterPos)
	hist := snap.History.Push(history.Entry{
		Changes:         []history.Change{change},
		SelectionBefore: snap.Selection,
		SelectionAfter:  afterSelection,
		TimestampMs:     ts,
	})

	return document.Snapshot{
		Version:    version,
		PieceTable: pt,
		LineIndex:  li,
		Selection:  afterSelection,
		History:    hist,
		Metadata:   snap.Metadata.MarkDirty(),
	}
}

// applyEntryChanges replays changes against pt/li in order, EAGERLY, for
// undo/redo (which need the resulting offsets to be immediately exact,
// not deferred behind a dirty range).
func applyEntryChanges(pt *piecetable.State, li *lineindex.State, changes []history.Change, version int64) (*piecetable.State, *lineindex.State) {
	for _, ch := range changes {
		switch ch.Kind {
		case history.Insert:
			pt, li, _, _ = applyStructural(pt, li, false, 0, 0, ch.Position, ch.Text, lineindex.Eager, version)
		case history.Delete:
			end := ch.Position + postype.ByteOffset(ch.ByteLength)
			pt, li, _, _ = applyStructural(pt, li, true, ch.Position, end, 0, "", lineindex.Eager, version)
		case history.Replace:
			end := ch.Position + postype.ByteOffset(len(ch.OldText))
			pt, li, _, _ = applyStructural(pt, li, true, ch.Position, end, ch.Position, ch.Text, lineindex.Eager, version)
		}
	}
	return pt, li
}

func applyUndo(snap document.Snapshot) document.Snapshot {
	entry, hist, ok := snap.History.PopUndo()
	if !ok {
		return snap
	}
	version := snap.Version + 1
	pt, li := applyEntryChanges(snap.PieceTable, snap.LineIndex, entry.Invert().Changes, version)
	return document.Snapshot{
		Version:    version,
		PieceTable: pt,
		LineIndex:  li,
		Selection:  entry.SelectionBefore,
		History:    hist,
		Metadata:   snap.Metadata.MarkDirty(),
	}
}

func applyRedo(snap document.Snapshot) document.Snapshot {
	entry, hist, ok := snap.History.PopRedo()
	if !ok {
		return snap
	}
	version := snap.Version + 1
	pt, li := applyEntryChanges(snap.PieceTable, snap.LineIndex, entry.Changes, version)
	return document.Snapshot{
		Version:    version,
		PieceTable: pt,
		LineIndex:  li,
		Selection:  entry.SelectionAfter,
		History:    hist,
		Metadata:   snap.Metadata.MarkDirty(),
	}
}

// applyRemote applies every change LAZILY and never touches history —
// it represents edits that happened elsewhere (a collaborator, a
// language server) and are simply being folded into this document.
func applyRemote(snap document.Snapshot, changes []RemoteChange) document.Snapshot {
	if len(changes) == 0 {
		return snap
	}
	version := snap.Version + 1
	pt, li := snap.PieceTable, snap.LineIndex
	for _, ch := range changes {
		switch ch.Kind {
		case RemoteInsert:
			pt, li, _, _ = applyStructural(pt, li, false, 0, 0, ch.Start, ch.Text, lineindex.Lazy, version)
		case RemoteDelete:
			end := ch.Start + postype.ByteOffset(ch.Length)
			pt, li, _, _ = applyStructural(pt, li, true, ch.Start, end, 0, "", lineindex.Lazy, version)
		}
	}
	return document.Snapshot{
		Version:    version,
		PieceTable: pt,
		LineIndex:  li,
		Selection:  snap.Selection,
		History:    snap.History,
		Metadata:   snap.Metadata.MarkDirty(),
	}
}
