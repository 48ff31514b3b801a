// Package source opens FASTQ inputs for the parser.
//
// Plain files are memory-mapped; gzip (including multi-member BGZF), zstd
// and LZ4 frame inputs are recognized by their magic bytes and decompressed.
// Remote inputs come from an ObjectStore such as source/s3 or source/minio.
//
// # Whole Inputs
//
//	src, err := source.Open(ctx, "reads.fq.gz")
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
//	records, err := co.Parse(ctx, src.Bytes())
//
// # Streams
//
//	r, comp, err := source.OpenStream(ctx, "reads.fq.zst",
//	    source.WithController(rc), // IO rate limit
//	)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	err = co.ParseStream(ctx, r, fn)
package source
