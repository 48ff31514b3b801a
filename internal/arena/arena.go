// Package arena provides a chunked byte arena for materializing owned records.
//
// # Ownership Model
//
// An Arena has exactly one owner (one parse task). It is NOT safe for
// concurrent use. Slices returned by Copy stay valid after the arena is
// released: chunks are ordinary heap memory kept alive by the slices that
// point into them, so Release only returns the memory budget.
//
// # Memory Management
//
// Copies are packed into chunks (64 KiB default). A copy larger than a
// quarter of the chunk size gets a dedicated allocation so big records do not
// waste the tail of a shared chunk. Every chunk is reserved from the
// MemoryAcquirer, if one is set, before it is allocated.
package arena

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

// ErrReleased is returned by Copy after Release.
var ErrReleased = errors.New("arena: released")

const (
	// DefaultChunkSize is the default size of a chunk (64 KiB).
	DefaultChunkSize = 64 * 1024
	// MinChunkSize is the smallest accepted chunk size.
	MinChunkSize = 512
	// defaultAcquireTimeout bounds a budget wait when ctx has no deadline.
	defaultAcquireTimeout = 100 * time.Millisecond
)

// Stats tracks arena memory usage.
//
//   - BytesReserved: total memory allocated for chunks and large copies
//   - BytesUsed: bytes handed out by Copy
//   - Chunks: shared chunks allocated
//   - LargeAllocs: copies that got a dedicated allocation
//   - TotalAllocs: cumulative Copy calls with non-empty input
type Stats struct {
	BytesReserved uint64
	BytesUsed     uint64
	Chunks        uint64
	LargeAllocs   uint64
	TotalAllocs   uint64
}

// Arena is a single-owner bump allocator for byte copies.
type Arena struct {
	ctx       context.Context
	chunkSize int
	cur       []byte
	stats     Stats
	acquired  int64
	released  bool
	acquirer  MemoryAcquirer
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer sets the memory acquirer for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// WithContext sets the context used while waiting on the memory acquirer.
func WithContext(ctx context.Context) Option {
	return func(a *Arena) {
		a.ctx = ctx
	}
}

// New creates a new Arena. chunkSize <= 0 selects DefaultChunkSize; smaller
// values are raised to MinChunkSize.
func New(chunkSize int, opts ...Option) *Arena {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	chunkSize = max(chunkSize, MinChunkSize)

	a := &Arena{
		ctx:       context.Background(),
		chunkSize: chunkSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Copy returns a copy of b backed by arena memory. The result has
// cap == len, so appending to it reallocates instead of overwriting the
// neighbouring copy. Copy of an empty slice returns nil.
func (a *Arena) Copy(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if a.released {
		return nil, ErrReleased
	}

	n := len(b)
	var dst []byte
	if n > a.chunkSize/4 {
		if err := a.reserve(n); err != nil {
			return nil, err
		}
		dst = make([]byte, n)
		a.stats.LargeAllocs++
	} else {
		if len(a.cur) < n {
			if err := a.reserve(a.chunkSize); err != nil {
				return nil, err
			}
			a.cur = make([]byte, a.chunkSize)
			a.stats.Chunks++
		}
		dst = a.cur[:n:n]
		a.cur = a.cur[n:]
	}

	copy(dst, b)
	a.stats.BytesUsed += uint64(n)
	a.stats.TotalAllocs++
	return dst, nil
}

func (a *Arena) reserve(n int) error {
	if a.acquirer != nil {
		ctx := a.ctx
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, defaultAcquireTimeout)
			defer cancel()
		}
		if err := a.acquirer.AcquireMemory(ctx, int64(n)); err != nil {
			return fmt.Errorf("arena: reserve %d bytes: %w", n, err)
		}
		a.acquired += int64(n)
	}
	a.stats.BytesReserved += uint64(n)
	return nil
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return a.stats
}

// Acquired returns the bytes currently reserved from the MemoryAcquirer.
func (a *Arena) Acquired() int64 {
	return a.acquired
}

// Release returns every reservation to the MemoryAcquirer and detaches the
// current chunk. Copies made earlier remain valid. Release is idempotent.
func (a *Arena) Release() {
	if a.released {
		return
	}
	a.released = true
	if a.acquirer != nil && a.acquired > 0 {
		a.acquirer.ReleaseMemory(a.acquired)
	}
	a.acquired = 0
	a.cur = nil
}

// Usage returns the percentage of reserved bytes handed out by Copy.
func (a *Arena) Usage() float64 {
	if a.stats.BytesReserved == 0 {
		return 0
	}
	return float64(a.stats.BytesUsed) / float64(a.stats.BytesReserved) * 100
}

func (a *Arena) String() string {
	return fmt.Sprintf(
		"Arena{chunks: %d, large: %d, reserved: %.2f MB, used: %.2f MB, usage: %.1f%%, allocs: %d}",
		a.stats.Chunks,
		a.stats.LargeAllocs,
		float64(a.stats.BytesReserved)/(1024*1024),
		float64(a.stats.BytesUsed)/(1024*1024),
		a.Usage(),
		a.stats.TotalAllocs,
	)
}
