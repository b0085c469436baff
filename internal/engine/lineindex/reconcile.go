package lineindex

import (
	"math/bits"

	"github.com/dshills/scrivener/internal/engine/postype"
)

// DefaultReconcileThreshold returns the line count below which
// ReconcileFull reconciles incrementally (touching only dirty lines)
// rather than doing a full O(n) tree rebuild. It grows with the
// document so that a full rebuild is never drastically more expensive
// than a long string of incremental fixups would have been.
func DefaultReconcileThreshold(lineCount int64) int64 {
	log2 := int64(bits.Len64(uint64(lineCount + 1)))
	if log2 == 0 {
		log2 = 1
	}
	byDensity := lineCount / log2
	if byDensity < 64 {
		return 64
	}
	return byDensity
}

// ReconcileRange recomputes DocumentOffset for every line in [s, e]
// (inclusive) and trims outstanding dirty ranges so they no longer cover
// that span. O((e-s) * log n).
func (st *State) ReconcileRange(s, e postype.LineNumber, version int64) *State {
	if st.lineCount == 0 {
		return st
	}
	if e >= postype.LineNumber(st.lineCount) {
		e = postype.LineNumber(st.lineCount - 1)
	}
	if s > e {
		return st
	}
	root := fillExactOffsetsRange(st.root, int64(s), int64(e))
	dirty := trimAll(st.dirty, s, e)
	rebuildPending := st.rebuildPending && len(dirty) > 0
	return &State{root: root, lineCount: st.lineCount, dirty: dirty, rebuildPending: rebuildPending, lastReconciledVersion: version}
}

// ReconcileViewport reconciles [s, e] only if some dirty range actually
// intersects it; otherwise it's a no-op. Intended for "the lines
// currently on screen are about to be read" call sites.
func (st *State) ReconcileViewport(s, e postype.LineNumber, version int64) *State {
	for _, r := range st.dirty {
		if r.overlaps(s, e) {
			return st.ReconcileRange(s, e, version)
		}
	}
	return st
}

// ReconcileFull clears every outstanding dirty range. When the total
// number of dirty lines is within threshold(lineCount) it reconciles
// range by range (cheap, incremental); otherwise it does a single full
// walk recomputing every line's DocumentOffset from the byte-length
// aggregates, which is exact regardless of how many dirty ranges
// preceded it.
func (st *State) ReconcileFull(version int64, threshold func(lineCount int64) int64) *State {
	if len(st.dirty) == 0 && !st.rebuildPending {
		return st
	}
	if threshold == nil {
		threshold = DefaultReconcileThreshold
	}

	if !st.rebuildPending && totalDirtyLines(st.dirty, st.lineCount) <= threshold(st.lineCount) {
		result := st
		for _, r := range st.dirty {
			result = result.ReconcileRange(r.StartLine, r.EndLine, version)
		}
		result.dirty = nil
		result.rebuildPending = false
		result.lastReconciledVersion = version
		return result
	}

	root := fillExactOffsetsRange(st.root, 0, st.lineCount-1)
	return &State{root: root, lineCount: st.lineCount, dirty: nil, rebuildPending: false, lastReconciledVersion: version}
}

// LastReconciledVersion returns the document edit version as of the most
// recent reconciliation, whether full or of a line range.
func (st *State) LastReconciledVersion() int64 { return st.lastReconciledVersion }
