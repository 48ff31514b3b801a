package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// ObjectStore reads named objects from remote storage.
type ObjectStore interface {
	// Open streams the object. It returns an error satisfying
	// errors.Is(err, ErrNotFound) when the object does not exist.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// List returns the object names under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Downloader is implemented by stores that can fetch a whole object faster
// than streaming it, e.g. with parallel ranged requests.
type Downloader interface {
	Download(ctx context.Context, name string) ([]byte, error)
}

// OpenObject loads a whole object, decompressing it if needed. Stores that
// implement Downloader are fetched with Download.
func OpenObject(ctx context.Context, store ObjectStore, name string, optFns ...Option) (*Source, error) {
	o := applyOptions(optFns)

	if d, ok := store.(Downloader); ok {
		data, err := d.Download(ctx, name)
		if err != nil {
			return nil, err
		}
		if Detect(data) == None {
			if o.maxSize > 0 && int64(len(data)) > o.maxSize {
				return nil, fmt.Errorf("source: %s: %w (%d bytes)", name, ErrTooLarge, o.maxSize)
			}
			return &Source{name: name, data: data}, nil
		}
		return load(ctx, name, bytes.NewReader(data), o)
	}

	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return load(ctx, name, rc, o)
}

// OpenObjectStream streams an object, decompressing on the fly.
func OpenObjectStream(ctx context.Context, store ObjectStore, name string, optFns ...Option) (io.ReadCloser, Compression, error) {
	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, None, err
	}
	r, c, err := newStream(ctx, rc, applyOptions(optFns))
	if err != nil {
		_ = rc.Close()
		return nil, None, err
	}
	return r, c, nil
}
