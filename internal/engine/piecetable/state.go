package piecetable

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/scrivener/internal/engine/addbuf"
	"github.com/dshills/scrivener/internal/engine/postype"
)

// State is an immutable piece table: a root (possibly nil for an empty
// document), the immutable original buffer, the shared append-only add
// buffer, and the cached total length.
type State struct {
	root     *Node
	original []byte
	add      *addbuf.Buffer
	total    postype.ByteLen
}

// New builds an empty piece table.
func New() *State {
	return &State{add: addbuf.New()}
}

// NewFromOriginal builds a piece table whose entire initial content lives
// in the original (immutable) buffer.
func NewFromOriginal(original []byte) *State {
	s := &State{original: original, add: addbuf.New()}
	if len(original) == 0 {
		return s
	}
	p := Piece{Buffer: OriginalBuffer, Start: 0, Length: postype.ByteLen(len(original))}
	s.root = insertAtRank(nil, 0, p)
	s.total = postype.ByteLen(len(original))
	return s
}

// Length returns the total document length in bytes. O(1).
func (s *State) Length() postype.ByteLen { return s.total }

// bytesOf returns the raw bytes a piece refers to.
func (s *State) bytesOf(p Piece) []byte {
	switch p.Buffer {
	case OriginalBuffer:
		return s.original[p.Start : p.Start+postype.ByteOffset(p.Length)]
	default:
		return s.add.Subarray(int(p.Start), int(p.Start+postype.ByteOffset(p.Length)))
	}
}

// GetText returns the document bytes in [start, end) decoded as UTF-8.
// Out-of-range or empty intersections return "". O(log n + m).
func (s *State) GetText(start, end postype.ByteOffset) string {
	r := postype.Range{Start: start, End: end}.Clamp(postype.ByteOffset(s.total))
	if r.IsEmpty() {
		return ""
	}

	var sb strings.Builder
	sb.Grow(int(r.Len()))
	collectRange(s.root, 0, r.Start, r.End, func(p Piece, base postype.ByteOffset) {
		data := s.bytesOf(p)
		lo := int64(0)
		hi := int64(len(data))
		if int64(r.Start) > int64(base) {
			lo = int64(r.Start) - int64(base)
		}
		if int64(r.End) < int64(base)+int64(len(data)) {
			hi = int64(r.End) - int64(base)
		}
		if lo < hi {
			sb.Write(data[lo:hi])
		}
	})
	return sb.String()
}

// PieceRef describes the piece located at a given byte position.
type PieceRef struct {
	Piece            Piece
	OffsetInPiece    postype.ByteOffset
	PieceStartOffset postype.ByteOffset
	// Path records, root to leaf, which direction was descended to reach
	// the piece (false = left, true = right).
	Path []bool
}

// FindPieceAt returns the piece containing byte position p, or ok=false
// when p is out of [0, Length()). O(log n).
func (s *State) FindPieceAt(p postype.ByteOffset) (PieceRef, bool) {
	if p < 0 || p >= postype.ByteOffset(s.total) {
		return PieceRef{}, false
	}
	n := s.root
	base := postype.ByteOffset(0)
	rest := p
	var path []bool
	for n != nil {
		leftLen := postype.ByteOffset(subtreeLength(n.Left))
		if rest < leftLen {
			path = append(path, false)
			n = n.Left
			continue
		}
		rest -= leftLen
		base += leftLen
		if rest < postype.ByteOffset(n.Payload.Length) {
			return PieceRef{Piece: n.Payload, OffsetInPiece: rest, PieceStartOffset: base, Path: path}, true
		}
		rest -= postype.ByteOffset(n.Payload.Length)
		base += postype.ByteOffset(n.Payload.Length)
		path = append(path, true)
		n = n.Right
	}
	return PieceRef{}, false
}

// BufferStats reports add-buffer usage for engineering diagnostics.
type BufferStats struct {
	AddBufferSize int
	AddBufferUsed postype.ByteLen
	AddBufferWaste postype.ByteLen
	WasteRatio    float64
}

// BufferStats computes add-buffer usage. AddBufferUsed is O(1) since it
// reads the root's SubtreeAddLength aggregate directly.
func (s *State) BufferStats() BufferStats {
	size := s.add.Len()
	used := subtreeAddLength(s.root)
	waste := postype.ByteLen(size) - used
	if waste < 0 {
		waste = 0
	}
	ratio := 0.0
	if size > 0 {
		ratio = float64(waste) / float64(size)
	}
	return BufferStats{AddBufferSize: size, AddBufferUsed: used, AddBufferWaste: waste, WasteRatio: ratio}
}

// ByteToCharOffset converts a byte offset within text to a UTF-16 code
// unit offset. A byte offset strictly inside a multi-byte rune maps to
// the start of that rune (nearest character boundary to the left).
func ByteToCharOffset(text string, byteOff int) int {
	if byteOff <= 0 {
		return 0
	}
	if byteOff >= len(text) {
		byteOff = len(text)
	}
	units := 0
	i := 0
	for i < byteOff {
		r, size := utf8.DecodeRuneInString(text[i:])
		if i+size > byteOff {
			// byteOff lands mid-rune; this rune is not yet counted.
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return units
}

// CharToByteOffset converts a UTF-16 code unit offset within text to a
// byte offset.
func CharToByteOffset(text string, charOff int) int {
	if charOff <= 0 {
		return 0
	}
	units := 0
	i := 0
	for i < len(text) && units < charOff {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return i
}

// Insert encodes text as UTF-8, appends it to the add buffer, and splices
// a new piece (or splits an existing one) into the tree at byte offset
// p. Returns the new state and the number of bytes actually inserted.
func (s *State) Insert(p postype.ByteOffset, text string) (*State, postype.ByteLen) {
	if text == "" {
		return s, 0
	}
	p = postype.ClampOffset(p, postype.ByteOffset(s.total))
	data := []byte(text)

	newAdd, start := s.add.Append(data)
	newPiece := Piece{Buffer: AddBuffer, Start: postype.ByteOffset(start), Length: postype.ByteLen(len(data))}

	var root *Node
	if s.root == nil {
		root = insertAtRank(nil, 0, newPiece)
	} else {
		// p is clamped to [0, s.total] above and s.root is non-nil, so
		// locate always finds a containing piece: ok is always true.
		loc, _ := locate(s.root, p)
		switch {
		case loc.offsetInPiece == 0 || loc.offsetInPiece == postype.ByteOffset(loc.piece.Length):
			root = insertAtRank(s.root, p, newPiece)
		default:
			left := loc.piece
			left.Length = postype.ByteLen(loc.offsetInPiece)
			right := loc.piece
			right.Start = loc.piece.Start + loc.offsetInPiece
			right.Length = loc.piece.Length - postype.ByteLen(loc.offsetInPiece)

			root = replaceAtRank(s.root, loc.base, left)
			root = insertAtRank(root, loc.base+loc.offsetInPiece, newPiece)
			root = insertAtRank(root, loc.base+loc.offsetInPiece+postype.ByteOffset(newPiece.Length), right)
		}
	}

	return &State{root: root, original: s.original, add: newAdd, total: s.total + postype.ByteLen(len(data))}, postype.ByteLen(len(data))
}

// Delete removes bytes in [start, end), clamped to [0, Length()). A no-op
// when start >= end after clamping.
func (s *State) Delete(start, end postype.ByteOffset) *State {
	r := postype.Range{Start: start, End: end}.Clamp(postype.ByteOffset(s.total))
	if r.IsEmpty() {
		return s
	}

	root := ensureBoundary(s.root, r.Start)
	root = ensureBoundary(root, r.End)

	// Both ends are now piece boundaries: drop whole pieces starting at
	// r.Start until r.Len() bytes are gone.
	remaining := r.Len()
	for remaining > 0 {
		cur := &State{root: root, total: subtreeLength(root)}
		ref, ok := cur.FindPieceAt(r.Start)
		if !ok || ref.PieceStartOffset != r.Start {
			break
		}
		root = deleteAtRank(root, r.Start)
		remaining -= ref.Piece.Length
	}

	return &State{root: root, original: s.original, add: s.add, total: s.total - postype.ByteLen(r.Len())}
}

// CompactAddBuffer rebuilds the add buffer from only the bytes still
// referenced by live pieces, when the current waste ratio meets or
// exceeds threshold. Pieces are remapped to the new, dense add buffer;
// the original buffer and every original-buffer piece are untouched.
func (s *State) CompactAddBuffer(threshold float64) *State {
	stats := s.BufferStats()
	if stats.WasteRatio < threshold {
		return s
	}

	var live []byte
	type remap struct {
		base     postype.ByteOffset
		newStart int
		length   postype.ByteLen
	}
	var remaps []remap

	collect(s.root, 0, func(p Piece, base postype.ByteOffset) {
		if p.Buffer != AddBuffer {
			return
		}
		newStart := len(live)
		live = append(live, s.bytesOf(p)...)
		remaps = append(remaps, remap{base: base, newStart: newStart, length: p.Length})
	})

	newAdd := addbuf.Rebuilt(live)

	root := s.root
	for _, rm := range remaps {
		p := Piece{Buffer: AddBuffer, Start: postype.ByteOffset(rm.newStart), Length: rm.length}
		root = replaceAtRank(root, rm.base, p)
	}

	return &State{root: root, original: s.original, add: newAdd, total: s.total}
}
