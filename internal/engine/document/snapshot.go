// Package document ties the engine's pieces together into one versioned,
// immutable value: piece table, line index, selection, history, and
// metadata, all consistent with one another at a given version.
package document

import (
	"github.com/dshills/scrivener/internal/engine/config"
	"github.com/dshills/scrivener/internal/engine/docmeta"
	"github.com/dshills/scrivener/internal/engine/history"
	"github.com/dshills/scrivener/internal/engine/lineindex"
	"github.com/dshills/scrivener/internal/engine/piecetable"
	"github.com/dshills/scrivener/internal/engine/selection"
)

// Snapshot is a frozen document state. Every field is itself immutable,
// so a Snapshot can be handed to any number of readers — a render loop,
// a background save, a diagnostic dump — without locking: nothing in it
// is ever mutated in place, and producing a new document state always
// produces a new Snapshot with a higher Version rather than editing this
// one.
type Snapshot struct {
	Version    int64
	PieceTable *piecetable.State
	LineIndex  *lineindex.State
	Selection  selection.State
	History    history.State
	Metadata   docmeta.Metadata
}

// New returns the initial snapshot for content, version 0, a collapsed
// selection at position 0, empty history bounded by historyLimit and
// coalesceTimeoutMs, and metadata detected from content.
func New(content string, historyLimit int, coalesceTimeoutMs int64) Snapshot {
	meta := docmeta.New()
	meta.LineEnding = docmeta.DetectLineEnding(content)

	var pt *piecetable.State
	var li *lineindex.State
	if content == "" {
		pt = piecetable.New()
		li = lineindex.NewEmpty()
	} else {
		pt = piecetable.NewFromOriginal([]byte(content))
		li = lineindex.NewFromText(content)
	}

	return Snapshot{
		Version:    0,
		PieceTable: pt,
		LineIndex:  li,
		Selection:  selection.New(0),
		History:    history.NewState(historyLimit, coalesceTimeoutMs),
		Metadata:   meta,
	}
}

// NewFromConfig builds the initial snapshot from cfg: content, history
// sizing and coalescing window, and encoding/line-ending metadata. If
// cfg.Content is non-empty, its detected line ending overrides
// cfg.LineEnding (an explicit LineEnding option only matters for an
// empty starting document, which has nothing to detect from).
func NewFromConfig(cfg config.Config) Snapshot {
	snap := New(cfg.Content, cfg.HistoryLimit, cfg.UndoGroupTimeoutMs)
	meta := snap.Metadata
	meta.Encoding = cfg.Encoding
	if cfg.Content == "" {
		meta.LineEnding = cfg.LineEnding
	}
	snap.Metadata = meta
	return snap
}

// TotalLength returns the document's total byte length. O(1).
func (s Snapshot) TotalLength() int64 {
	return int64(s.PieceTable.Length())
}
