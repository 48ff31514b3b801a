package buffer

import (
	"errors"
	"sync/atomic"

	"github.com/hupe1980/fastq/internal/mem"
)

// ErrBufferOverflow is returned when data does not fit a fixed-capacity buffer.
var ErrBufferOverflow = errors.New("buffer: overflow")

const (
	// DefaultBufferSize is the nominal capacity of pooled buffers (1 MiB).
	DefaultBufferSize = 1 << 20
	// DefaultMaxHeld is the default number of idle buffers a pool keeps.
	DefaultMaxHeld = 16
	// maxGrowth is how far past nominal a buffer may grow and still be reused.
	maxGrowth = 4
)

// Buffer is a pooled byte slice. B always starts empty with at least the
// pool's nominal capacity. Fresh buffers are cache-line aligned.
type Buffer struct {
	B    []byte
	pool *Pool
	out  atomic.Bool
}

// Release returns the buffer to its pool. It is a no-op for buffers that do
// not belong to a pool or were already released.
func (b *Buffer) Release() {
	if b == nil || b.pool == nil {
		return
	}
	b.pool.Put(b)
}

// Len returns len(b.B).
func (b *Buffer) Len() int { return len(b.B) }

// Cap returns cap(b.B).
func (b *Buffer) Cap() int { return cap(b.B) }

// PoolStats counts pool traffic since creation.
type PoolStats struct {
	Gets   uint64 // buffers handed out
	Allocs uint64 // Gets that had to allocate
	Puts   uint64 // buffers returned to the free list
	Drops  uint64 // buffers discarded on return
}

// Pool is a bounded pool of reusable buffers. It is safe for concurrent use.
type Pool struct {
	size int
	free chan *Buffer

	gets   atomic.Uint64
	allocs atomic.Uint64
	puts   atomic.Uint64
	drops  atomic.Uint64
}

// NewPool creates a pool of bufSize-byte buffers holding at most maxHeld idle
// buffers. Non-positive arguments select the defaults.
func NewPool(bufSize, maxHeld int) *Pool {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	if maxHeld <= 0 {
		maxHeld = DefaultMaxHeld
	}
	return &Pool{
		size: bufSize,
		free: make(chan *Buffer, maxHeld),
	}
}

// Get takes ownership of a cleared buffer, allocating when none is idle.
func (p *Pool) Get() *Buffer {
	p.gets.Add(1)
	var b *Buffer
	select {
	case b = <-p.free:
	default:
		p.allocs.Add(1)
		b = &Buffer{B: mem.AllocAligned(p.size)[:0], pool: p}
	}
	b.out.Store(true)
	return b
}

// Put gives a buffer back. It reports whether the buffer was kept for reuse.
// Buffers from another pool, released twice, grown past four times the
// nominal size, or arriving while the pool is full are dropped.
func (p *Pool) Put(b *Buffer) bool {
	if b == nil || b.pool != p || !b.out.CompareAndSwap(true, false) {
		return false
	}
	if cap(b.B) > maxGrowth*p.size {
		p.drops.Add(1)
		return false
	}
	b.B = b.B[:0]
	select {
	case p.free <- b:
		p.puts.Add(1)
		return true
	default:
		p.drops.Add(1)
		return false
	}
}

// With runs fn with a pooled buffer and releases it on every exit path,
// including a panic in fn, which is re-raised after the release.
func (p *Pool) With(fn func(*Buffer) error) error {
	b := p.Get()
	defer b.Release()
	return fn(b)
}

// Held returns the number of idle buffers.
func (p *Pool) Held() int {
	return len(p.free)
}

// MaxHeld returns the idle-buffer bound.
func (p *Pool) MaxHeld() int {
	return cap(p.free)
}

// BufferSize returns the nominal buffer capacity.
func (p *Pool) BufferSize() int {
	return p.size
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Gets:   p.gets.Load(),
		Allocs: p.allocs.Load(),
		Puts:   p.puts.Load(),
		Drops:  p.drops.Load(),
	}
}
