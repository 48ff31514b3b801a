// Package testutil provides testing utilities for the FASTQ parser.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded RNG and generators for well-formed and deliberately
// corrupted FASTQ input.
//
// # Record Generation
//
//	rng := testutil.NewRNG(seed)
//	data := rng.FASTQ(1000, testutil.ReadSpec{MinLen: 50, MaxLen: 150})
//
// # Corruption
//
//	bad := testutil.Corrupt(data, testutil.DropSeparator, 3) // record index 3
package testutil
