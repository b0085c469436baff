package lineindex

import (
	"sort"

	"github.com/dshills/scrivener/internal/engine/postype"
)

// maxDirtyRanges caps how many disjoint dirty ranges LAZY mode will
// track before collapsing to a single full-document range. Past this,
// per-range bookkeeping costs more than just remembering "everything
// after line 0 needs reconciling."
const maxDirtyRanges = 32

// DirtyRange records a still-unapplied offset correction for every line
// in [StartLine, EndLine] (inclusive; EndLine may be
// postype.MaxLineNumber for "to the end of the document").
type DirtyRange struct {
	StartLine        postype.LineNumber
	EndLine          postype.LineNumber
	OffsetDelta      int64
	CreatedAtVersion int64
}

func (r DirtyRange) overlaps(s, e postype.LineNumber) bool {
	return r.StartLine <= e && s <= r.EndLine
}

// mergeDirtyRanges sorts and folds a dirty-range list. Ranges sharing a
// start line are combined (equal deltas union their span; unequal
// deltas sum the deltas pairwise, in encounter order, over the union of
// their spans — the source has no single documented rule for >2
// differing deltas at the same start, so this is applied as a left-to-
// right reduce). Overlapping ranges with equal deltas are unioned. Past
// maxDirtyRanges, everything collapses to one full-document range and
// rebuildPending is reported true.
func mergeDirtyRanges(ranges []DirtyRange) (merged []DirtyRange, rebuildPending bool) {
	if len(ranges) == 0 {
		return nil, false
	}
	sorted := append([]DirtyRange(nil), ranges...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartLine < sorted[j].StartLine })

	merged = []DirtyRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		switch {
		case r.StartLine == last.StartLine:
			if r.OffsetDelta != last.OffsetDelta {
				last.OffsetDelta += r.OffsetDelta
			}
			if r.EndLine > last.EndLine {
				last.EndLine = r.EndLine
			}
			if r.CreatedAtVersion > last.CreatedAtVersion {
				last.CreatedAtVersion = r.CreatedAtVersion
			}
		case r.StartLine <= last.EndLine && r.OffsetDelta == last.OffsetDelta:
			if r.EndLine > last.EndLine {
				last.EndLine = r.EndLine
			}
			if r.CreatedAtVersion > last.CreatedAtVersion {
				last.CreatedAtVersion = r.CreatedAtVersion
			}
		default:
			merged = append(merged, r)
		}
	}

	if len(merged) > maxDirtyRanges {
		latest := int64(0)
		for _, r := range merged {
			if r.CreatedAtVersion > latest {
				latest = r.CreatedAtVersion
			}
		}
		return []DirtyRange{{StartLine: 0, EndLine: postype.MaxLineNumber, OffsetDelta: 0, CreatedAtVersion: latest}}, true
	}
	return merged, false
}

// cumulativeDelta sums OffsetDelta over every range covering line n.
func cumulativeDelta(ranges []DirtyRange, n postype.LineNumber) int64 {
	var total int64
	for _, r := range ranges {
		if r.StartLine <= n && n <= r.EndLine {
			total += r.OffsetDelta
		}
	}
	return total
}

// trimDirtyRange removes the inclusive span [s, e] from r, returning
// zero, one (if the removed span is an edge) or two (if it's an interior
// sub-span) surviving ranges.
func trimDirtyRange(r DirtyRange, s, e postype.LineNumber) []DirtyRange {
	if !r.overlaps(s, e) {
		return []DirtyRange{r}
	}
	var out []DirtyRange
	if r.StartLine < s {
		out = append(out, DirtyRange{StartLine: r.StartLine, EndLine: s - 1, OffsetDelta: r.OffsetDelta, CreatedAtVersion: r.CreatedAtVersion})
	}
	if r.EndLine > e {
		out = append(out, DirtyRange{StartLine: e + 1, EndLine: r.EndLine, OffsetDelta: r.OffsetDelta, CreatedAtVersion: r.CreatedAtVersion})
	}
	return out
}

// trimAll applies trimDirtyRange to every range in the list.
func trimAll(ranges []DirtyRange, s, e postype.LineNumber) []DirtyRange {
	var out []DirtyRange
	for _, r := range ranges {
		out = append(out, trimDirtyRange(r, s, e)...)
	}
	return out
}

// totalDirtyLines sums the (clamped) line count covered by ranges,
// counting overlaps multiple times — used only as a cheap upper bound
// for the reconcileFull threshold decision, not an exact count.
func totalDirtyLines(ranges []DirtyRange, lineCount int64) int64 {
	var total int64
	for _, r := range ranges {
		end := int64(r.EndLine)
		if end >= lineCount {
			end = lineCount - 1
		}
		start := int64(r.StartLine)
		if end < start {
			continue
		}
		total += end - start + 1
	}
	return total
}
