// Package simd provides vectorized byte-scanning kernels for FASTQ parsing.
//
// # Tiers
//
//   - Generic: byte-at-a-time reference implementation
//   - SWAR: eight byte lanes per uint64, 32 bytes per iteration
//   - Vector: runtime AVX2/SSE4.2 (x86-64) or NEON (ARM64) search and count
//
// The capability probe runs once, lazily, on first use and selects the best
// tier for the CPU (golang.org/x/sys/cpu). Inputs shorter than VectorWidth
// always use Generic. Every tier returns byte-identical results; KernelsFor
// exposes each tier directly for conformance testing.
//
// # Operations
//
//   - Search: FindNewlines, AppendNewlines, IndexByte
//   - Validation: ValidateASCII, FirstNonASCII
//   - Counting: CountChars, CountNucleotides, GCContent
package simd
