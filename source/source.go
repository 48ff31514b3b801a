package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/fastq/internal/mmap"
	"github.com/hupe1980/fastq/resource"
)

// ErrNotFound is returned when an input does not exist. Object stores map
// their not-found responses to it.
var ErrNotFound = os.ErrNotExist

// ErrTooLarge is returned when decompressed input exceeds WithMaxSize.
var ErrTooLarge = errors.New("source: input exceeds size limit")

type options struct {
	controller *resource.Controller
	maxSize    int64
	noMmap     bool
}

// Option configures Open, OpenStream and OpenObject.
type Option func(*options)

// WithController rate-limits reads of the raw (compressed) input with the
// controller's IO limit and reserves decompressed buffers from its memory
// budget. Mapped files are not rate-limited.
func WithController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMaxSize bounds the decompressed size of a whole input. 0 means
// unbounded.
func WithMaxSize(n int64) Option {
	return func(o *options) {
		o.maxSize = n
	}
}

// WithoutMmap reads plain files into memory instead of mapping them.
func WithoutMmap() Option {
	return func(o *options) {
		o.noMmap = true
	}
}

func applyOptions(optFns []Option) options {
	var o options
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// Source is a whole input held as one contiguous slice.
type Source struct {
	name        string
	compression Compression
	data        []byte
	mapping     *mmap.Mapping
	release     func()
}

// Open loads the file at path. Plain files are memory-mapped with
// sequential access advice; compressed files are decompressed into memory.
func Open(ctx context.Context, path string, optFns ...Option) (*Source, error) {
	o := applyOptions(optFns)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, magicLen)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if Detect(header[:n]) == None && !o.noMmap {
		m, err := mmap.Open(path)
		if err != nil {
			return nil, err
		}
		// Advice is a hint; platforms without madvise ignore it.
		_ = m.Advise(mmap.AccessSequential)
		return &Source{name: path, data: m.Bytes(), mapping: m}, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return load(ctx, path, f, o)
}

// FromReader loads r fully, decompressing it if needed.
func FromReader(ctx context.Context, name string, r io.Reader, optFns ...Option) (*Source, error) {
	return load(ctx, name, r, applyOptions(optFns))
}

func load(ctx context.Context, name string, r io.Reader, o options) (*Source, error) {
	zr, c, err := NewReader(RateLimited(ctx, r, o.controller))
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", name, err)
	}
	defer zr.Close()

	var src io.Reader = zr
	if o.maxSize > 0 {
		src = io.LimitReader(zr, o.maxSize+1)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, fmt.Errorf("source: %s: %w", name, err)
	}
	if o.maxSize > 0 && int64(buf.Len()) > o.maxSize {
		return nil, fmt.Errorf("source: %s: %w (%d bytes)", name, ErrTooLarge, o.maxSize)
	}

	s := &Source{name: name, compression: c, data: buf.Bytes()}
	if o.controller != nil {
		n := int64(cap(s.data))
		if err := o.controller.AcquireMemory(ctx, n); err != nil {
			return nil, fmt.Errorf("source: %s: %w", name, err)
		}
		s.release = func() { o.controller.ReleaseMemory(n) }
	}
	return s, nil
}

// Name returns the path or object name the source was opened from.
func (s *Source) Name() string { return s.name }

// Compression returns the detected container format.
func (s *Source) Compression() Compression { return s.compression }

// Mapped reports whether Bytes is a file mapping.
func (s *Source) Mapped() bool { return s.mapping != nil }

// Bytes returns the decompressed input. The slice is valid until Close.
func (s *Source) Bytes() []byte { return s.data }

// Len returns len(Bytes()).
func (s *Source) Len() int { return len(s.data) }

// Reader returns a reader over Bytes.
func (s *Source) Reader() io.Reader { return bytes.NewReader(s.data) }

// WillNeed asks the kernel to read [off, off+n) of a mapped source ahead.
// It is a no-op for in-memory sources.
func (s *Source) WillNeed(off, n int) error {
	if s.mapping == nil {
		return nil
	}
	return s.mapping.AdviseRange(off, n, mmap.AccessWillNeed)
}

// Close unmaps or releases the input. It is idempotent.
func (s *Source) Close() error {
	s.data = nil
	if s.release != nil {
		s.release()
		s.release = nil
	}
	if s.mapping != nil {
		return s.mapping.Close()
	}
	return nil
}

// OpenStream opens path for streaming, decompressing on the fly. Use "-" for
// standard input.
func OpenStream(ctx context.Context, path string, optFns ...Option) (io.ReadCloser, Compression, error) {
	o := applyOptions(optFns)

	var in io.ReadCloser = io.NopCloser(os.Stdin)
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, None, err
		}
		in = f
	}
	r, c, err := newStream(ctx, in, o)
	if err != nil {
		_ = in.Close()
		return nil, None, err
	}
	return r, c, nil
}

// RateLimited wraps r with the controller's IO limit. A nil controller
// returns r unchanged.
func RateLimited(ctx context.Context, r io.Reader, rc *resource.Controller) io.Reader {
	if rc == nil {
		return r
	}
	return resource.NewRateLimitedReader(ctx, r, rc)
}

func newStream(ctx context.Context, rc io.ReadCloser, o options) (io.ReadCloser, Compression, error) {
	zr, c, err := NewReader(RateLimited(ctx, rc, o.controller))
	if err != nil {
		return nil, None, err
	}
	return &stream{Reader: zr, closers: []io.Closer{zr, rc}}, c, nil
}

// stream closes the decoder and then the underlying input.
type stream struct {
	io.Reader
	closers []io.Closer
}

func (s *stream) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
