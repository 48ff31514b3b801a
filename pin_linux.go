//go:build linux

package fastq

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinThread wires the calling goroutine to its OS thread and binds that
// thread to one CPU. The thread is never unlocked, so it exits with the
// goroutine and the affinity does not leak to other goroutines. Failure to
// set the affinity is ignored.
func pinThread(slot int) {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(slot % runtime.NumCPU())
	_ = unix.SchedSetaffinity(0, &set)
}
