package simd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestISAString(t *testing.T) {
	for _, isa := range []ISA{Generic, SWAR, Vector} {
		parsed, ok := ParseISA(isa.String())
		assert.True(t, ok)
		assert.Equal(t, isa, parsed)
	}
	assert.Equal(t, "unknown", ISA(99).String())

	_, ok := ParseISA("avx9000")
	assert.False(t, ok)
}

func TestActiveISAIsStable(t *testing.T) {
	first := ActiveISA()
	for range 10 {
		assert.Equal(t, first, ActiveISA())
	}
	assert.True(t, IsAvailable(first))
	assert.True(t, IsAvailable(Generic))
	assert.True(t, IsAvailable(SWAR))
	assert.False(t, IsAvailable(ISA(99)))
}

func TestSelectBestISA(t *testing.T) {
	assert.Equal(t, Vector, selectBestISA(Features{AVX2: true}))
	assert.Equal(t, Vector, selectBestISA(Features{ASIMD: true}))
	assert.Equal(t, SWAR, selectBestISA(Features{SSE42: true}))
	assert.Equal(t, SWAR, selectBestISA(Features{}))
}

func TestKernelsForUnknownFallsBackToGeneric(t *testing.T) {
	assert.Equal(t, Generic, KernelsFor(ISA(42)).ISA)
}
