package simd

import "bytes"

// The Vector tier delegates search and count to the runtime's byte kernels,
// which are hand-written AVX2/SSE4.2 (amd64) and NEON (arm64) assembly.
// Classification (ASCII) reuses SWAR, which already saturates memory
// bandwidth for that check.

func appendNewlinesVector(dst []int, data []byte) []int {
	off := 0
	for {
		j := bytes.IndexByte(data[off:], '\n')
		if j < 0 {
			return dst
		}
		dst = append(dst, off+j)
		off += j + 1
	}
}

func countCharsVector(data []byte, target byte) int {
	return bytes.Count(data, []byte{target})
}

// countNucleotidesVector makes five vectorized passes. Reads are short
// enough to stay cache-resident between passes.
func countNucleotidesVector(seq []byte) NucleotideCounts {
	return NucleotideCounts{
		A: bytes.Count(seq, []byte{'A'}),
		C: bytes.Count(seq, []byte{'C'}),
		G: bytes.Count(seq, []byte{'G'}),
		T: bytes.Count(seq, []byte{'T'}),
		N: bytes.Count(seq, []byte{'N'}),
	}
}

func indexByteVector(data []byte, c byte) int {
	return bytes.IndexByte(data, c)
}
