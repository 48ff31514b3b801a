// Package buffer provides the reusable byte buffers behind streaming parses.
//
// # Pool
//
// Pool is a bounded free list of fixed-size buffers. Every Buffer has exactly
// one owner at a time: Get transfers ownership to the caller and Release (or
// Put) transfers it back. A released buffer is cleared to length zero. The
// pool holds at most MaxHeld idle buffers; extra buffers, and buffers that
// grew far past their nominal size, are dropped for the garbage collector.
//
//	pool := buffer.NewPool(1<<20, 8)
//	err := pool.With(func(b *buffer.Buffer) error {
//	    b.B = append(b.B, data...)
//	    return process(b.B)
//	}) // b is back in the pool here, even if process panicked
//
// # Ring
//
// Ring is a fixed-capacity circular byte buffer that can expose its contents
// as one contiguous slice, which is what the record parser needs to cut
// complete records out of a stream.
package buffer
