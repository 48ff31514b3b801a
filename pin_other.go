//go:build !linux

package fastq

import "runtime"

// pinThread wires the calling goroutine to its OS thread. CPU affinity is
// not available on this platform.
func pinThread(int) {
	runtime.LockOSThread()
}
