package simd

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/hupe1980/fastq/internal/mem"
)

// Compare tiers with:
//
//	go test ./internal/simd -run '^$' -bench . -benchmem

var benchTiers = []ISA{Generic, SWAR, Vector}

func benchInput(seed int64, n int) []byte {
	return randomBytes(rand.New(rand.NewSource(seed)), n)
}

func BenchmarkFindNewlines(b *testing.B) {
	data := benchInput(6, 1<<20)
	for _, isa := range benchTiers {
		k := KernelsFor(isa)
		b.Run(isa.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			dst := make([]int, 0, len(data)/8)
			for b.Loop() {
				dst = k.AppendNewlines(dst[:0], data)
			}
		})
	}
}

func BenchmarkCountNucleotides(b *testing.B) {
	for _, n := range []int{150, 10_000} {
		data := benchInput(7, n)
		for _, isa := range benchTiers {
			k := KernelsFor(isa)
			b.Run(isa.String()+"/len="+strconv.Itoa(n), func(b *testing.B) {
				b.SetBytes(int64(len(data)))
				for b.Loop() {
					_ = k.CountNucleotides(data)
				}
			})
		}
	}
}

func BenchmarkValidateASCII(b *testing.B) {
	data := asciiOnly(benchInput(8, 1<<16))
	for _, isa := range benchTiers {
		k := KernelsFor(isa)
		b.Run(isa.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for b.Loop() {
				_ = k.ValidateASCII(data)
			}
		})
	}
}

func BenchmarkCountChars(b *testing.B) {
	data := benchInput(9, 1<<20)
	for _, isa := range benchTiers {
		k := KernelsFor(isa)
		b.Run(isa.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for b.Loop() {
				_ = k.CountChars(data, '\n')
			}
		})
	}
}

// BenchmarkAlignment measures the active tier on cache-line aligned input
// and on input offset by one byte.
func BenchmarkAlignment(b *testing.B) {
	const n = 1 << 20
	aligned := mem.AllocAligned(n + 1)
	copy(aligned, benchInput(10, n+1))

	for name, data := range map[string][]byte{
		"aligned":   aligned[:n],
		"unaligned": aligned[1 : n+1],
	} {
		b.Run(name, func(b *testing.B) {
			b.SetBytes(n)
			for b.Loop() {
				_ = CountChars(data, '\n')
			}
		})
	}
}
