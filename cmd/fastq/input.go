package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/fastq/source"
	"github.com/hupe1980/fastq/source/minio"
	"github.com/hupe1980/fastq/source/s3"
)

// location is a parsed input argument.
type location struct {
	scheme string // "", "s3" or "minio"
	bucket string
	key    string
	path   string
}

func parseLocation(arg string) (location, error) {
	scheme, rest, ok := strings.Cut(arg, "://")
	if !ok {
		return location{path: arg}, nil
	}
	switch scheme {
	case "s3", "minio":
	default:
		return location{}, fmt.Errorf("unsupported scheme %q", scheme)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return location{}, fmt.Errorf("missing bucket in %q", arg)
	}
	return location{scheme: scheme, bucket: bucket, key: key}, nil
}

func (l location) remote() bool { return l.scheme != "" }

// store connects to the object store a remote location names.
func (a *app) store(ctx context.Context, loc location) (source.ObjectStore, error) {
	switch loc.scheme {
	case "s3":
		var opts []s3.Option
		if a.cfg.S3.Region != "" {
			opts = append(opts, s3.WithRegion(a.cfg.S3.Region))
		}
		if a.cfg.S3.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(a.cfg.S3.Endpoint))
		}
		return s3.New(ctx, loc.bucket, opts...)
	case "minio":
		m := a.cfg.MinIO
		if m.Endpoint == "" {
			return nil, fmt.Errorf("minio.endpoint is not configured")
		}
		return minio.Dial(m.Endpoint, m.AccessKey, m.SecretKey, m.Secure, loc.bucket, "")
	default:
		return nil, fmt.Errorf("%q is not an object store location", loc.path)
	}
}

func (a *app) sourceOptions() []source.Option {
	opts := []source.Option{source.WithController(a.controller)}
	if a.cfg.Input.MaxSize > 0 {
		opts = append(opts, source.WithMaxSize(a.cfg.Input.MaxSize))
	}
	if a.cfg.Input.NoMmap {
		opts = append(opts, source.WithoutMmap())
	}
	return opts
}

// open loads a whole input.
func (a *app) open(ctx context.Context, arg string) (*source.Source, error) {
	loc, err := parseLocation(arg)
	if err != nil {
		return nil, err
	}
	if !loc.remote() {
		if loc.path == "-" {
			return source.FromReader(ctx, "stdin", a.stdin, a.sourceOptions()...)
		}
		return source.Open(ctx, loc.path, a.sourceOptions()...)
	}
	store, err := a.store(ctx, loc)
	if err != nil {
		return nil, err
	}
	return source.OpenObject(ctx, store, loc.key, a.sourceOptions()...)
}

// openStream opens an input for sequential decoding.
func (a *app) openStream(ctx context.Context, arg string) (io.ReadCloser, source.Compression, error) {
	loc, err := parseLocation(arg)
	if err != nil {
		return nil, source.None, err
	}
	if !loc.remote() {
		if loc.path == "-" {
			return source.NewReader(source.RateLimited(ctx, a.stdin, a.controller))
		}
		return source.OpenStream(ctx, loc.path, a.sourceOptions()...)
	}
	store, err := a.store(ctx, loc)
	if err != nil {
		return nil, source.None, err
	}
	return source.OpenObjectStream(ctx, store, loc.key, a.sourceOptions()...)
}
