package scan

import (
	"github.com/hupe1980/fastq/internal/simd"
)

// NucleotideCounts holds per-base counts for A, C, G, T and N.
type NucleotideCounts = simd.NucleotideCounts

// VectorWidth is the minimum input length routed to a vectorized tier.
const VectorWidth = simd.VectorWidth

// FindNewlines returns the ascending offsets of every '\n' in data.
func FindNewlines(data []byte) []int {
	return simd.FindNewlines(data)
}

// AppendNewlines appends the offsets of every '\n' in data to dst.
func AppendNewlines(dst []int, data []byte) []int {
	return simd.AppendNewlines(dst, data)
}

// ValidateASCII reports whether every byte in data is < 0x80.
func ValidateASCII(data []byte) bool {
	return simd.ValidateASCII(data)
}

// CountChars returns the exact number of occurrences of target in data.
func CountChars(data []byte, target byte) int {
	return simd.CountChars(data, target)
}

// CountNucleotides counts A, C, G, T and N. Other bytes are not counted, so
// the total may be less than len(seq).
func CountNucleotides(seq []byte) NucleotideCounts {
	return simd.CountNucleotides(seq)
}

// GCContent returns (G+C)/len(seq)*100, and 0 for an empty sequence.
func GCContent(seq []byte) float64 {
	return simd.GCContent(seq)
}

// IndexByte returns the index of the first c in data, or -1.
func IndexByte(data []byte, c byte) int {
	return simd.IndexByte(data, c)
}

// ActiveISA returns the name of the tier selected for this process
// ("generic", "swar" or "vector").
func ActiveISA() string {
	return simd.ActiveISA().String()
}
