package store

import (
	"fmt"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ExportState serializes the current snapshot's metadata and selection
// (never document content) into a pretty-printed JSON envelope, for a
// host application to persist UI state across restarts or to attach to
// a bug report.
func (st *Store) ExportState() string {
	snap := st.snapshot
	raw := "{}"
	raw, _ = sjson.Set(raw, "version", snap.Version)
	raw, _ = sjson.Set(raw, "metadata.path", snap.Metadata.Path)
	raw, _ = sjson.Set(raw, "metadata.encoding", snap.Metadata.Encoding)
	raw, _ = sjson.Set(raw, "metadata.lineEnding", snap.Metadata.LineEnding.String())
	raw, _ = sjson.Set(raw, "metadata.isDirty", snap.Metadata.IsDirty)
	raw, _ = sjson.Set(raw, "selection.primary", snap.Selection.Primary)
	for i, r := range snap.Selection.Ranges {
		raw, _ = sjson.Set(raw, fmt.Sprintf("selection.ranges.%d.anchor", i), int64(r.Anchor))
		raw, _ = sjson.Set(raw, fmt.Sprintf("selection.ranges.%d.head", i), int64(r.Head))
	}
	return string(pretty.Pretty([]byte(raw)))
}
