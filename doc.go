// Package fastq provides a high-throughput FASTQ parser.
//
// A FASTQ record is four lines: an identifier starting with '@', a sequence,
// a separator starting with '+', and a quality line as long as the sequence.
// The parser turns a byte slice (in memory or memory-mapped) or a stream into
// records at memory bandwidth, and stays correct on malformed, huge and
// parallel-split input.
//
// # Quick Start
//
//	records, err := fastq.Parse(data) // strict, owned records
//
//	views, err := fastq.ParseZeroCopy(data) // fields borrow from data
//
// # Strict and Lenient Parsing
//
// The default configuration is strict: the first malformed record aborts the
// parse with a *ParseError that carries the kind, line, column and record
// number. The decoded records before it are returned alongside the error.
//
//	p, _ := fastq.NewParser(fastq.LenientParseConfig())
//	records, err := p.Parse(data)
//
// In lenient mode a malformed identifier or separator makes the parser skip
// to the next line starting with '@'; length mismatches and quality bytes
// out of range keep the record and set Record.Flags. Truncation at the end
// of input is always an error.
//
// ParseWithRecovery never aborts and collects every violation:
//
//	res := p.ParseWithRecovery(data)
//	fmt.Print(fastq.FormatReport(res.Errors))
//
// # Parallel Parsing
//
// The Coordinator splits the input at record boundaries and parses the chunks
// concurrently. Records come back in input order; chunk failures are
// collected into a *ParallelError while successful chunks still contribute
// their records:
//
//	co, _ := fastq.NewCoordinator(fastq.ParallelConfig{NumThreads: 8}, fastq.DefaultParseConfig())
//	records, err := co.Parse(ctx, data)
//
// Parallel results equal single-threaded results for well-formed input.
//
// # Streaming
//
// StreamReader parses an io.Reader in constant memory through a pooled ring
// buffer, and Coordinator.ParseStream does the same with parallel workers:
//
//	r, _ := fastq.NewStreamReader(file, fastq.DefaultParseConfig())
//	defer r.Close()
//	for rec, err := range r.All() {
//	    ...
//	}
//
// # Ownership
//
// RecordView fields borrow from the input and are valid only while it is.
// Record fields are owned: they never alias the input, and appending to one
// field never overwrites another.
//
// # Byte Scanning
//
// Line splitting and counting use the vectorized kernels of package scan,
// selected once per process from the CPU features.
package fastq
