// Package addbuf implements the piece table's append-only "add" buffer:
// a growable byte store shared by every snapshot handle that has ever
// observed it, each respecting its own length as the upper bound for
// reads. Growth never moves bytes an older handle can see.
//
// Grounded on the teacher's rope/chunk.go growth strategy (doubling
// capacity on overflow) and the doubling-array idiom shared across the
// corpus's buffer/log types (e.g. other_examples' append-log stores).
package addbuf

const initialCapacity = 64

// Buffer is an immutable handle onto a shared, append-only byte array.
// Two handles may alias the same backing array; each trusts only its own
// Len as the valid prefix.
type Buffer struct {
	arr []byte
	n   int
}

// New returns an empty add buffer.
func New() *Buffer {
	return &Buffer{arr: make([]byte, 0, initialCapacity), n: 0}
}

// Len returns the number of valid bytes visible through this handle.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return b.n
}

// Append writes data after the handle's current valid prefix and returns a
// new handle plus the start offset the data was written at. If the
// backing array has spare capacity beyond b.n, the bytes are written in
// place and shared; older handles are unaffected because their Len never
// extends into the newly written region. Otherwise a fresh, larger array
// is allocated and the valid prefix is copied over.
func (b *Buffer) Append(data []byte) (*Buffer, int) {
	start := b.n
	needed := b.n + len(data)

	if needed <= cap(b.arr) {
		arr := b.arr[:needed]
		copy(arr[start:needed], data)
		return &Buffer{arr: arr, n: needed}, start
	}

	newCap := 2 * cap(b.arr)
	if newCap < needed {
		newCap = needed
	}
	if newCap < initialCapacity {
		newCap = initialCapacity
	}
	newArr := make([]byte, needed, newCap)
	copy(newArr, b.arr[:b.n])
	copy(newArr[start:needed], data)
	return &Buffer{arr: newArr, n: needed}, start
}

// Subarray returns a zero-copy view of bytes [start, end) within the
// handle's valid prefix.
func (b *Buffer) Subarray(start, end int) []byte {
	if b == nil || start < 0 || end > b.n || start > end {
		return nil
	}
	return b.arr[start:end]
}

// Rebuilt returns a brand new, tightly-capacitated buffer containing only
// the given bytes. Used by compaction to discard unreferenced waste.
func Rebuilt(data []byte) *Buffer {
	arr := make([]byte, len(data))
	copy(arr, data)
	return &Buffer{arr: arr, n: len(data)}
}
