// Package scan provides the public byte-scanning API used by the FASTQ parser.
//
// All functions dispatch to the fastest implementation tier the CPU supports
// (see ActiveISA). The tier is chosen once, lazily, and never changes for the
// lifetime of the process. Every tier produces results identical to a naive
// byte-by-byte scan; Scalar exposes that reference path directly.
//
//	offsets := scan.FindNewlines(data)
//	counts := scan.CountNucleotides(seq)
//	gc := scan.GCContent(seq) // percentage, 0 for empty input
package scan
