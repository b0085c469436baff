package store

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/scrivener/internal/engine/document"
	"github.com/dshills/scrivener/internal/engine/postype"
	"github.com/dshills/scrivener/internal/engine/reducer"
	"github.com/dshills/scrivener/internal/engine/selection"
)

// DecodeAction parses one serializable action envelope (§6) from JSON.
// Strict validation: every position must be present and a non-negative
// number (JSON numbers are always finite, so "finite" is automatic);
// SET_SELECTION.ranges and APPLY_REMOTE.changes must be arrays. A
// decode failure means the action is a no-op — callers should not
// dispatch it rather than trying to dispatch a zero-value Action.
func DecodeAction(raw string) (reducer.Action, error) {
	if !gjson.Valid(raw) {
		return reducer.Action{}, fmt.Errorf("store: invalid JSON action")
	}
	root := gjson.Parse(raw)
	kind := root.Get("type").String()

	switch kind {
	case "INSERT":
		start := root.Get("start")
		if !validPosition(start) {
			return reducer.Action{}, fmt.Errorf("store: INSERT.start must be a non-negative number")
		}
		return reducer.Action{
			Kind:        reducer.Insert,
			Start:       postype.ByteOffset(start.Int()),
			Text:        root.Get("text").String(),
			TimestampMs: root.Get("timestamp").Int(),
		}, nil

	case "DELETE":
		start, end := root.Get("start"), root.Get("end")
		if !validPosition(start) || !validPosition(end) {
			return reducer.Action{}, fmt.Errorf("store: DELETE.start/end must be non-negative numbers")
		}
		return reducer.Action{
			Kind:        reducer.Delete,
			Start:       postype.ByteOffset(start.Int()),
			End:         postype.ByteOffset(end.Int()),
			TimestampMs: root.Get("timestamp").Int(),
		}, nil

	case "REPLACE":
		start, end := root.Get("start"), root.Get("end")
		if !validPosition(start) || !validPosition(end) {
			return reducer.Action{}, fmt.Errorf("store: REPLACE.start/end must be non-negative numbers")
		}
		return reducer.Action{
			Kind:        reducer.Replace,
			Start:       postype.ByteOffset(start.Int()),
			End:         postype.ByteOffset(end.Int()),
			Text:        root.Get("text").String(),
			TimestampMs: root.Get("timestamp").Int(),
		}, nil

	case "SET_SELECTION":
		rangesResult := root.Get("ranges")
		if !rangesResult.IsArray() {
			return reducer.Action{}, fmt.Errorf("store: SET_SELECTION.ranges must be an array")
		}
		var ranges []selection.Range
		var parseErr error
		rangesResult.ForEach(func(_, val gjson.Result) bool {
			anchor, head := val.Get("anchor"), val.Get("head")
			if !validPosition(anchor) || !validPosition(head) {
				parseErr = fmt.Errorf("store: SET_SELECTION range requires non-negative anchor/head")
				return false
			}
			ranges = append(ranges, selection.Range{
				Anchor: postype.ByteOffset(anchor.Int()),
				Head:   postype.ByteOffset(head.Int()),
			})
			return true
		})
		if parseErr != nil {
			return reducer.Action{}, parseErr
		}
		return reducer.Action{
			Kind:      reducer.SetSelection,
			Selection: selection.State{Ranges: ranges, Primary: int(root.Get("primary").Int())},
		}, nil

	case "UNDO":
		return reducer.Action{Kind: reducer.Undo}, nil
	case "REDO":
		return reducer.Action{Kind: reducer.Redo}, nil
	case "HISTORY_CLEAR":
		return reducer.Action{Kind: reducer.HistoryClear}, nil
	case "TRANSACTION_START":
		return reducer.Action{Kind: reducer.TransactionStart}, nil
	case "TRANSACTION_COMMIT":
		return reducer.Action{Kind: reducer.TransactionCommit}, nil
	case "TRANSACTION_ROLLBACK":
		return reducer.Action{Kind: reducer.TransactionRollback}, nil

	case "APPLY_REMOTE":
		changesResult := root.Get("changes")
		if !changesResult.IsArray() {
			return reducer.Action{}, fmt.Errorf("store: APPLY_REMOTE.changes must be an array")
		}
		var changes []reducer.RemoteChange
		var parseErr error
		changesResult.ForEach(func(_, val gjson.Result) bool {
			start := val.Get("start")
			if !validPosition(start) {
				parseErr = fmt.Errorf("store: APPLY_REMOTE change requires a non-negative start")
				return false
			}
			switch val.Get("kind").String() {
			case "insert":
				changes = append(changes, reducer.RemoteChange{
					Kind: reducer.RemoteInsert, Start: postype.ByteOffset(start.Int()), Text: val.Get("text").String(),
				})
			case "delete":
				changes = append(changes, reducer.RemoteChange{
					Kind: reducer.RemoteDelete, Start: postype.ByteOffset(start.Int()), Length: postype.ByteLen(val.Get("length").Int()),
				})
			default:
				parseErr = fmt.Errorf("store: APPLY_REMOTE change has unknown kind %q", val.Get("kind").String())
				return false
			}
			return true
		})
		if parseErr != nil {
			return reducer.Action{}, parseErr
		}
		return reducer.Action{Kind: reducer.ApplyRemote, RemoteChanges: changes}, nil

	case "LOAD_CHUNK":
		idx := root.Get("chunkIndex")
		if !validPosition(idx) {
			return reducer.Action{}, fmt.Errorf("store: LOAD_CHUNK.chunkIndex must be a non-negative number")
		}
		return reducer.Action{
			Kind:       reducer.LoadChunk,
			ChunkIndex: int(idx.Int()),
			ChunkData:  []byte(root.Get("data").String()),
		}, nil

	case "EVICT_CHUNK":
		idx := root.Get("chunkIndex")
		if !validPosition(idx) {
			return reducer.Action{}, fmt.Errorf("store: EVICT_CHUNK.chunkIndex must be a non-negative number")
		}
		return reducer.Action{Kind: reducer.EvictChunk, ChunkIndex: int(idx.Int())}, nil

	default:
		return reducer.Action{}, fmt.Errorf("store: unknown action type %q", kind)
	}
}

func validPosition(r gjson.Result) bool {
	return r.Exists() && r.Type == gjson.Number && r.Num >= 0
}

// DispatchJSON decodes raw and dispatches it. A decode failure is a
// no-op: the current snapshot is returned unchanged alongside the
// decode error, matching the reducer's own no-op contract for invalid
// actions.
func (st *Store) DispatchJSON(raw string) (document.Snapshot, error) {
	action, err := DecodeAction(raw)
	if err != nil {
		return st.snapshot, err
	}
	return st.Dispatch(action), nil
}
