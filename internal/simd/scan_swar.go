package simd

import (
	"encoding/binary"
	"math/bits"
)

// SWAR kernels operate on eight byte lanes packed into a uint64, four words
// (VectorWidth bytes) per iteration. Lane k of a word loaded at offset i is
// data[i+k] (little-endian load), so bit 8k+7 of a lane mask marks data[i+k].

const (
	lo7  uint64 = 0x7F7F7F7F7F7F7F7F
	hi   uint64 = 0x8080808080808080
	ones uint64 = 0x0101010101010101
)

func load64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

// zeroMask sets bit 7 of every lane of w that is zero and clears all other
// bits. Unlike the classic (w-ones)&^w&hi test it has no false positives, so
// popcounts and lane positions are exact.
func zeroMask(w uint64) uint64 {
	t := (w & lo7) + lo7
	return ^(t | w | lo7)
}

// eqMask marks the lanes of w equal to c.
func eqMask(w uint64, c byte) uint64 {
	return zeroMask(w ^ (ones * uint64(c)))
}

func appendLanes(dst []int, m uint64, base int) []int {
	for m != 0 {
		dst = append(dst, base+bits.TrailingZeros64(m)>>3)
		m &= m - 1
	}
	return dst
}

func appendNewlinesSWAR(dst []int, data []byte) []int {
	n := len(data)
	i := 0
	for ; i+VectorWidth <= n; i += VectorWidth {
		m0 := eqMask(load64(data[i:]), '\n')
		m1 := eqMask(load64(data[i+8:]), '\n')
		m2 := eqMask(load64(data[i+16:]), '\n')
		m3 := eqMask(load64(data[i+24:]), '\n')
		if m0|m1|m2|m3 == 0 {
			continue
		}
		dst = appendLanes(dst, m0, i)
		dst = appendLanes(dst, m1, i+8)
		dst = appendLanes(dst, m2, i+16)
		dst = appendLanes(dst, m3, i+24)
	}
	for ; i+8 <= n; i += 8 {
		dst = appendLanes(dst, eqMask(load64(data[i:]), '\n'), i)
	}
	for ; i < n; i++ {
		if data[i] == '\n' {
			dst = append(dst, i)
		}
	}
	return dst
}

func validateASCIISWAR(data []byte) bool {
	n := len(data)
	i := 0
	for ; i+VectorWidth <= n; i += VectorWidth {
		acc := load64(data[i:]) | load64(data[i+8:]) | load64(data[i+16:]) | load64(data[i+24:])
		if acc&hi != 0 {
			return false
		}
	}
	for ; i+8 <= n; i += 8 {
		if load64(data[i:])&hi != 0 {
			return false
		}
	}
	for ; i < n; i++ {
		if data[i] >= 0x80 {
			return false
		}
	}
	return true
}

func firstNonASCIISWAR(data []byte) int {
	n := len(data)
	i := 0
	for ; i+8 <= n; i += 8 {
		if m := load64(data[i:]) & hi; m != 0 {
			return i + bits.TrailingZeros64(m)>>3
		}
	}
	for ; i < n; i++ {
		if data[i] >= 0x80 {
			return i
		}
	}
	return -1
}

func countCharsSWAR(data []byte, target byte) int {
	n := len(data)
	i := 0
	count := 0
	for ; i+VectorWidth <= n; i += VectorWidth {
		count += bits.OnesCount64(eqMask(load64(data[i:]), target))
		count += bits.OnesCount64(eqMask(load64(data[i+8:]), target))
		count += bits.OnesCount64(eqMask(load64(data[i+16:]), target))
		count += bits.OnesCount64(eqMask(load64(data[i+24:]), target))
	}
	for ; i+8 <= n; i += 8 {
		count += bits.OnesCount64(eqMask(load64(data[i:]), target))
	}
	for ; i < n; i++ {
		if data[i] == target {
			count++
		}
	}
	return count
}

func countNucleotidesSWAR(seq []byte) NucleotideCounts {
	var c NucleotideCounts
	n := len(seq)
	i := 0
	for ; i+8 <= n; i += 8 {
		w := load64(seq[i:])
		c.A += bits.OnesCount64(eqMask(w, 'A'))
		c.C += bits.OnesCount64(eqMask(w, 'C'))
		c.G += bits.OnesCount64(eqMask(w, 'G'))
		c.T += bits.OnesCount64(eqMask(w, 'T'))
		c.N += bits.OnesCount64(eqMask(w, 'N'))
	}
	return c.Add(countNucleotidesGeneric(seq[i:]))
}

func indexByteSWAR(data []byte, c byte) int {
	n := len(data)
	i := 0
	for ; i+VectorWidth <= n; i += VectorWidth {
		m0 := eqMask(load64(data[i:]), c)
		m1 := eqMask(load64(data[i+8:]), c)
		m2 := eqMask(load64(data[i+16:]), c)
		m3 := eqMask(load64(data[i+24:]), c)
		switch {
		case m0 != 0:
			return i + bits.TrailingZeros64(m0)>>3
		case m1 != 0:
			return i + 8 + bits.TrailingZeros64(m1)>>3
		case m2 != 0:
			return i + 16 + bits.TrailingZeros64(m2)>>3
		case m3 != 0:
			return i + 24 + bits.TrailingZeros64(m3)>>3
		}
	}
	for ; i+8 <= n; i += 8 {
		if m := eqMask(load64(data[i:]), c); m != 0 {
			return i + bits.TrailingZeros64(m)>>3
		}
	}
	for ; i < n; i++ {
		if data[i] == c {
			return i
		}
	}
	return -1
}
