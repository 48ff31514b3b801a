package buffer

import (
	"io"
)

// Ring is a fixed-capacity circular byte buffer. It is not safe for
// concurrent use.
type Ring struct {
	buf   []byte
	head  int // offset of the first buffered byte
	count int // buffered bytes
	src   *Buffer
}

// NewRing creates a ring holding up to capacity bytes.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &Ring{buf: make([]byte, capacity)}
}

// NewRingFrom creates a ring on the full capacity of a pooled buffer. The ring
// owns b until Close.
func NewRingFrom(b *Buffer) *Ring {
	return &Ring{buf: b.B[:cap(b.B)], src: b}
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Remaining returns the number of buffered bytes.
func (r *Ring) Remaining() int { return r.count }

// Available returns the free space.
func (r *Ring) Available() int { return len(r.buf) - r.count }

// Reset discards all buffered bytes.
func (r *Ring) Reset() {
	r.head, r.count = 0, 0
}

func (r *Ring) tail() int {
	t := r.head + r.count
	if t >= len(r.buf) {
		t -= len(r.buf)
	}
	return t
}

// freeSpan returns the largest contiguous free region after the tail.
func (r *Ring) freeSpan() []byte {
	if r.count == len(r.buf) {
		return nil
	}
	t := r.tail()
	if t >= r.head {
		return r.buf[t:]
	}
	return r.buf[t:r.head]
}

// Fill performs one Read from src into the free space and returns the bytes
// added. It returns ErrBufferOverflow if the ring is already full.
func (r *Ring) Fill(src io.Reader) (int, error) {
	if r.count == 0 {
		r.head = 0
	}
	span := r.freeSpan()
	if len(span) == 0 {
		return 0, ErrBufferOverflow
	}
	n, err := src.Read(span)
	r.count += n
	return n, err
}

// Write appends p. If p does not fit, as much as fits is written and
// ErrBufferOverflow is returned.
func (r *Ring) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		span := r.freeSpan()
		if len(span) == 0 {
			return written, ErrBufferOverflow
		}
		n := copy(span, p[written:])
		r.count += n
		written += n
	}
	return written, nil
}

// Read consumes up to len(p) bytes. It returns io.EOF when the ring is empty.
func (r *Ring) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.count == 0 {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) && r.count > 0 {
		end := min(r.head+r.count, len(r.buf))
		c := copy(p[n:], r.buf[r.head:end])
		n += c
		r.Discard(c)
	}
	return n, nil
}

// Peek returns up to n buffered bytes without consuming them. The slice is
// valid until the next mutating call.
func (r *Ring) Peek(n int) []byte {
	data := r.Contiguous()
	return data[:min(n, len(data))]
}

// Contiguous returns all buffered bytes as one slice, linearizing the ring
// first if the data wraps. The slice is valid until the next mutating call.
func (r *Ring) Contiguous() []byte {
	if r.head+r.count <= len(r.buf) {
		return r.buf[r.head : r.head+r.count]
	}
	wrapped := r.head + r.count - len(r.buf)
	saved := make([]byte, wrapped)
	copy(saved, r.buf[:wrapped])
	front := copy(r.buf, r.buf[r.head:])
	copy(r.buf[front:], saved)
	r.head = 0
	return r.buf[:r.count]
}

// Compact moves the buffered bytes to the start of the ring so the free space
// is one contiguous span.
func (r *Ring) Compact() {
	if r.head == 0 {
		return
	}
	data := r.Contiguous()
	copy(r.buf, data)
	r.head = 0
}

// Discard consumes up to n bytes and returns the number discarded.
func (r *Ring) Discard(n int) int {
	n = min(max(n, 0), r.count)
	r.head += n
	if r.head >= len(r.buf) {
		r.head -= len(r.buf)
	}
	r.count -= n
	if r.count == 0 {
		r.head = 0
	}
	return n
}

// Close hands the backing buffer back to its pool, if any. The ring must not
// be used afterwards.
func (r *Ring) Close() {
	if r.src != nil {
		r.src.Release()
		r.src = nil
	}
	r.buf = nil
	r.head, r.count = 0, 0
}
