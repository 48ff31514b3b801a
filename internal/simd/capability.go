package simd

import (
	"strings"
	"sync"
)

// ISA represents a byte-scanning implementation tier.
type ISA uint8

const (
	// Generic represents the byte-at-a-time scalar implementation.
	Generic ISA = iota
	// SWAR represents SIMD-within-a-register kernels over 64-bit words.
	SWAR
	// Vector represents the hardware-vectorized tier (AVX2 on x86-64,
	// ASIMD/NEON on ARM64).
	Vector
)

// VectorWidth is the block size in bytes processed per iteration by the
// SWAR and Vector tiers. Inputs shorter than this always take the Generic path.
const VectorWidth = 32

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case SWAR:
		return "swar"
	case Vector:
		return "vector"
	default:
		return "unknown"
	}
}

// ParseISA parses a string into an ISA value.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "swar":
		return SWAR, true
	case "vector":
		return Vector, true
	default:
		return Generic, false
	}
}

// Features reports the CPU features relevant to tier selection.
type Features struct {
	AVX2  bool // x86-64 AVX2
	SSE42 bool // x86-64 SSE4.2
	ASIMD bool // ARM64 NEON
}

// capabilities is the probed, immutable process-wide state.
type capabilities struct {
	features Features
	active   ISA
}

// probe runs the platform detection exactly once, on first use.
var probe = sync.OnceValue(func() capabilities {
	f := detectFeatures()
	return capabilities{features: f, active: selectBestISA(f)}
})

// selectBestISA chooses the fastest tier the CPU supports.
func selectBestISA(f Features) ISA {
	if f.AVX2 || f.ASIMD {
		return Vector
	}
	// SWAR needs nothing beyond 64-bit integer arithmetic.
	return SWAR
}

// ActiveISA returns the tier selected for this process.
func ActiveISA() ISA {
	return probe().active
}

// CPUFeatures returns the detected CPU features.
func CPUFeatures() Features {
	return probe().features
}

// IsAvailable reports whether isa can run on this CPU.
func IsAvailable(isa ISA) bool {
	switch isa {
	case Generic, SWAR:
		return true
	case Vector:
		f := probe().features
		return f.AVX2 || f.ASIMD
	default:
		return false
	}
}
