package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocAligned(t *testing.T) {
	for _, size := range []int{1, 10, 31, 32, 63, 64, 65, 100, 1 << 16} {
		buf := AllocAligned(size)
		assert.Len(t, buf, size)
		assert.Equal(t, size, cap(buf), "capacity is clipped to size")
		assert.True(t, IsAligned(buf), "size %d", size)
	}

	assert.Nil(t, AllocAligned(0))
	assert.Nil(t, AllocAligned(-1))
}

func TestIsAligned(t *testing.T) {
	buf := AllocAligned(128)
	assert.True(t, IsAligned(buf))
	assert.False(t, IsAligned(buf[1:]))
	assert.True(t, IsAligned(buf[Alignment:]))
	assert.True(t, IsAligned(nil))
}

func BenchmarkAllocAligned(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_ = AllocAligned(1 << 20)
	}
}
