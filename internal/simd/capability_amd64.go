//go:build amd64

package simd

import "golang.org/x/sys/cpu"

func detectFeatures() Features {
	return Features{
		AVX2:  cpu.X86.HasAVX2,
		SSE42: cpu.X86.HasSSE42,
	}
}
