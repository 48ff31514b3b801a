// Package mmap maps FASTQ input files read-only into memory.
//
// A mapped file is handed to the parser as one contiguous slice, so chunk
// boundary detection and the parallel coordinator see the whole input without
// copying it through kernel buffers.
//
//	m, err := mmap.Open("reads.fastq")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	records, err := coordinator.Parse(ctx, m.Bytes())
//
// Unix uses mmap(2) and madvise(2). Windows uses CreateFileMapping and
// MapViewOfFile; access advice is a no-op there.
//
// Bytes must not be used after Close. Close is idempotent.
package mmap
