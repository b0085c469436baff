// Package reducer turns serializable actions into new document
// snapshots, applying at most one delete followed by at most one insert
// to both the piece table and the line index in lock step, and
// recording the corresponding history entry.
package reducer

import (
	"github.com/dshills/scrivener/internal/engine/postype"
	"github.com/dshills/scrivener/internal/engine/selection"
)

// Kind names the action variants the reducer accepts.
type Kind int

const (
	Insert Kind = iota
	Delete
	Replace
	SetSelection
	Undo
	Redo
	HistoryClear
	TransactionStart
	TransactionCommit
	TransactionRollback
	ApplyRemote
	LoadChunk
	EvictChunk
)

// RemoteChangeKind names one change within an APPLY_REMOTE action.
type RemoteChangeKind int

const (
	RemoteInsert RemoteChangeKind = iota
	RemoteDelete
)

// RemoteChange is one edit within an APPLY_REMOTE action, applied LAZILY
// and never pushed to history.
type RemoteChange struct {
	Kind   RemoteChangeKind
	Start  postype.ByteOffset
	Text   string
	Length postype.ByteLen
}

// Action is the reducer's input: a serializable description of one
// document mutation or query-adjacent command. Only the fields relevant
// to Kind are meaningful; the rest are zero.
type Action struct {
	Kind Kind

	// INSERT / DELETE / REPLACE
	Start       postype.ByteOffset
	End         postype.ByteOffset
	Text        string
	TimestampMs int64 // 0 means "not provided"; the reducer falls back to now.

	// SET_SELECTION
	Selection selection.State

	// APPLY_REMOTE
	RemoteChanges []RemoteChange

	// LOAD_CHUNK / EVICT_CHUNK (reserved, no-ops against the core contract)
	ChunkIndex int
	ChunkData  []byte
}
