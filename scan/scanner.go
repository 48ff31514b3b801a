package scan

import "github.com/hupe1980/fastq/internal/simd"

// Scanner is a fixed implementation tier. Unlike the package-level functions
// it never switches tiers based on input length.
type Scanner struct {
	k simd.Kernels
}

var (
	// Scalar is the byte-at-a-time reference scanner.
	Scalar = Scanner{k: simd.KernelsFor(simd.Generic)}
	// SWAR is the portable word-at-a-time scanner.
	SWAR = Scanner{k: simd.KernelsFor(simd.SWAR)}
	// Vector is the hardware-vectorized scanner. It is always callable; on
	// CPUs without the required features the runtime kernels it relies on
	// fall back to their own portable code.
	Vector = Scanner{k: simd.KernelsFor(simd.Vector)}
)

// Name returns the tier name.
func (s Scanner) Name() string { return s.k.ISA.String() }

// FindNewlines returns the ascending offsets of every '\n' in data.
func (s Scanner) FindNewlines(data []byte) []int { return s.k.AppendNewlines(nil, data) }

// ValidateASCII reports whether every byte in data is < 0x80.
func (s Scanner) ValidateASCII(data []byte) bool { return s.k.ValidateASCII(data) }

// CountChars returns the number of occurrences of target in data.
func (s Scanner) CountChars(data []byte, target byte) int { return s.k.CountChars(data, target) }

// CountNucleotides counts A, C, G, T and N.
func (s Scanner) CountNucleotides(seq []byte) NucleotideCounts { return s.k.CountNucleotides(seq) }

// GCContent returns (G+C)/len(seq)*100, and 0 for an empty sequence.
func (s Scanner) GCContent(seq []byte) float64 {
	if len(seq) == 0 {
		return 0
	}
	c := s.k.CountNucleotides(seq)
	return float64(c.G+c.C) / float64(len(seq)) * 100
}
