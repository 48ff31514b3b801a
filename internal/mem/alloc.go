// Package mem provides cache-line aligned byte allocation for scan buffers.
package mem

import (
	"unsafe"
)

// Alignment is the cache line size the vector scanning tier is tuned for.
const Alignment = 64

// AllocAligned returns a zeroed slice of length and capacity size whose first
// byte sits on an Alignment boundary. The backing array is kept alive by the
// returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)
	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // address is only inspected
	offset := int((Alignment - addr&(Alignment-1)) & (Alignment - 1))

	return buf[offset : offset+size : offset+size]
}

// IsAligned reports whether b starts on an Alignment boundary. Empty slices
// are aligned.
func IsAligned(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&b[0]))&(Alignment-1) == 0 //nolint:gosec // address is only inspected
}
