// Package s3 provides a source.ObjectStore backed by Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("runs/2024-05/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	src, err := source.OpenObject(ctx, store, "sample1_R1.fastq.gz")
//
// # Features
//
//   - Whole-object fetches use the transfer manager's parallel ranged downloads
//   - Streaming reads for ParseStream and StreamReader
//   - Automatic pagination for listing
//   - Custom endpoints with path-style addressing for S3-compatible services
package s3
