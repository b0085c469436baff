package piecetable

import "github.com/dshills/scrivener/internal/engine/postype"

// Chunk is one slice of a GetValueStream.
type Chunk struct {
	Content    string
	ByteOffset postype.ByteOffset
	ByteLength postype.ByteLen
	IsLast     bool
}

// resolvedSpan is a byte span materialized from one piece (or part of
// one), ready to be sliced into fixed-size chunks.
type resolvedSpan struct {
	data  []byte
	start postype.ByteOffset
}

// Stream is a finite, non-restartable, pull-based iterator over a byte
// range. Calling Next repeatedly drains it; it never re-reads from the
// tree once constructed, matching the spec's "lazy... finite...
// non-restartable" contract for get_value_stream.
type Stream struct {
	spans     []resolvedSpan
	chunkSize int
	pos       postype.ByteOffset
	end       postype.ByteOffset
	spanIdx   int
	offInSpan int
	done      bool
}

// GetValueStream returns a Stream over document bytes in [start, end).
// chunkSize must be >= 1; sizes are exactly chunkSize except possibly the
// last, shorter chunk.
func (s *State) GetValueStream(chunkSize int, start, end postype.ByteOffset) *Stream {
	if chunkSize < 1 {
		chunkSize = 1
	}
	r := postype.Range{Start: start, End: end}.Clamp(postype.ByteOffset(s.total))

	var spans []resolvedSpan
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
		if lo >= hi {
			return
		}
		spanStart := base + postype.ByteOffset(lo)
		spans = append(spans, resolvedSpan{data: data[lo:hi], start: spanStart})
	})

	return &Stream{spans: spans, chunkSize: chunkSize, pos: r.Start, end: r.End, done: r.IsEmpty()}
}

// Next returns the next chunk, or ok=false once the stream is drained.
func (s *Stream) Next() (Chunk, bool) {
	if s.done {
		return Chunk{}, false
	}

	var buf []byte
	chunkStart := s.pos
	for len(buf) < s.chunkSize && s.spanIdx < len(s.spans) {
		span := s.spans[s.spanIdx]
		avail := span.data[s.offInSpan:]
		need := s.chunkSize - len(buf)
		if need >= len(avail) {
			buf = append(buf, avail...)
			s.pos += postype.ByteOffset(len(avail))
			s.spanIdx++
			s.offInSpan = 0
		} else {
			buf = append(buf, avail[:need]...)
			s.pos += postype.ByteOffset(need)
			s.offInSpan += need
		}
	}

	if len(buf) == 0 {
		s.done = true
		return Chunk{}, false
	}

	isLast := s.spanIdx >= len(s.spans)
	if isLast {
		s.done = true
	}
	return Chunk{Content: string(buf), ByteOffset: chunkStart, ByteLength: postype.ByteLen(len(buf)), IsLast: isLast}, true
}
