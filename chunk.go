package fastq

import (
	"bytes"

	"github.com/hupe1980/fastq/internal/simd"
)

// Chunk is a record-aligned byte range [Start, End) of the input.
type Chunk struct {
	Index int
	Start int
	End   int
}

// Len returns End - Start.
func (c Chunk) Len() int { return c.End - c.Start }

// Empty reports whether the chunk holds no bytes.
func (c Chunk) Empty() bool { return c.End <= c.Start }

// FindChunkBoundaries splits data into numChunks record-aligned ranges.
//
// The naive split point i*len(data)/numChunks is moved forward, never behind
// the previous boundary, to the next line start whose first byte is '@', or
// to len(data) if there is none. The chunks cover data exactly once, in
// order; some may be empty. numChunks < 1 is treated as 1.
//
// A quality line may itself begin with '@', so a boundary can land inside a
// record when quality strings start with that byte. Inputs where this
// matters should be parsed single-threaded or with a chunk size large enough
// that the resulting chunk error is acceptable.
func FindChunkBoundaries(data []byte, numChunks int) []Chunk {
	numChunks = max(numChunks, 1)
	n := len(data)

	chunks := make([]Chunk, numChunks)
	start := 0
	for i := range numChunks {
		end := n
		if i < numChunks-1 {
			naive := int(int64(i+1) * int64(n) / int64(numChunks))
			end = nextRecordStart(data, max(naive, start))
		}
		chunks[i] = Chunk{Index: i, Start: start, End: end}
		start = end
	}
	return chunks
}

// nextRecordStart returns the first p >= from that is a line start followed by
// '@', or len(data). Offset 0 is a line start.
func nextRecordStart(data []byte, from int) int {
	n := len(data)
	if from >= n {
		return n
	}
	if data[from] == '@' && (from == 0 || data[from-1] == '\n') {
		return from
	}
	for p := from; p < n; {
		j := simd.IndexByte(data[p:], '\n')
		if j < 0 {
			break
		}
		p += j + 1
		if p < n && data[p] == '@' {
			return p
		}
	}
	return n
}

// lastRecordStart returns the offset of the last record start in data that
// can be told apart from a quality line beginning with '@', or 0 if there is
// none. A line start p holding '@' is a record start when the line two above
// it is a separator, or, near the front of data, when the line two below it
// is.
func lastRecordStart(data []byte) int {
	end := len(data)
	for end > 0 {
		i := bytes.LastIndex(data[:end], []byte("\n@"))
		if i < 0 {
			return 0
		}
		if p := i + 1; isRecordStart(data, p) {
			return p
		}
		end = i
	}
	return 0
}

// countRecordStarts counts the record starts in data, which must begin at a
// record start. Lines beginning with '@' are told apart from quality lines as
// in lastRecordStart.
func countRecordStarts(data []byte) int {
	n := 0
	for p := 0; p < len(data); {
		if data[p] == '@' && (p == 0 || isRecordStart(data, p)) {
			n++
		}
		j := simd.IndexByte(data[p:], '\n')
		if j < 0 {
			break
		}
		p += j + 1
	}
	return n
}

func isRecordStart(data []byte, p int) bool {
	if s, ok := lineAbove(data, p, 2); ok {
		return data[s] == '+'
	}
	if s, ok := lineBelow(data, p, 2); ok {
		return data[s] == '+'
	}
	return false
}

// lineAbove returns the start of the k-th line above the line starting at p.
func lineAbove(data []byte, p, k int) (int, bool) {
	s := p
	for range k {
		if s == 0 {
			return 0, false
		}
		s = bytes.LastIndexByte(data[:s-1], '\n') + 1
	}
	return s, true
}

// lineBelow returns the start of the k-th line below the line starting at p.
func lineBelow(data []byte, p, k int) (int, bool) {
	s := p
	for range k {
		j := simd.IndexByte(data[s:], '\n')
		if j < 0 {
			return 0, false
		}
		s += j + 1
	}
	if s >= len(data) {
		return 0, false
	}
	return s, true
}
