package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fastq/resource"
	"github.com/hupe1980/fastq/testutil"
)

func compress(t *testing.T, c Compression, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch c {
	case None:
		buf.Write(data)
	case Gzip:
		// Two members, as written by bgzip.
		for _, part := range [][]byte{data[:len(data)/2], data[len(data)/2:]} {
			w := gzip.NewWriter(&buf)
			_, err := w.Write(part)
			require.NoError(t, err)
			require.NoError(t, w.Close())
		}
	case Zstd:
		w, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case LZ4:
		w := lz4.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

var allCompressions = []Compression{None, Gzip, Zstd, LZ4}

func TestDetect(t *testing.T) {
	data := []byte("@r1\nACGT\n+\nIIII\n")
	for _, c := range allCompressions {
		assert.Equal(t, c, Detect(compress(t, c, data)), c.String())
	}
	assert.Equal(t, None, Detect(nil))
	assert.Equal(t, None, Detect([]byte{0x1f}))
	assert.Equal(t, "compression(9)", Compression(9).String())
}

func TestNewReader(t *testing.T) {
	data := testutil.NewRNG(1).FASTQ(200, testutil.ReadSpec{MinLen: 50, MaxLen: 150})

	for _, c := range allCompressions {
		t.Run(c.String(), func(t *testing.T) {
			r, got, err := NewReader(bytes.NewReader(compress(t, c, data)))
			require.NoError(t, err)
			defer r.Close()
			assert.Equal(t, c, got)

			out, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, data, out)
		})
	}

	t.Run("Empty", func(t *testing.T) {
		r, c, err := NewReader(bytes.NewReader(nil))
		require.NoError(t, err)
		assert.Equal(t, None, c)
		out, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("CorruptGzip", func(t *testing.T) {
		_, _, err := NewReader(bytes.NewReader([]byte{0x1f, 0x8b, 0x00}))
		assert.Error(t, err)
	})
}

func TestOpen(t *testing.T) {
	data := testutil.NewRNG(2).FASTQ(100, testutil.ReadSpec{MinLen: 20, MaxLen: 80})

	for _, c := range allCompressions {
		t.Run(c.String(), func(t *testing.T) {
			path := writeFile(t, "reads.fq", compress(t, c, data))

			src, err := Open(t.Context(), path)
			require.NoError(t, err)
			defer src.Close()

			assert.Equal(t, path, src.Name())
			assert.Equal(t, c, src.Compression())
			assert.Equal(t, c == None, src.Mapped())
			assert.Equal(t, data, src.Bytes())
			assert.Equal(t, len(data), src.Len())

			out, err := io.ReadAll(src.Reader())
			require.NoError(t, err)
			assert.Equal(t, data, out)
			assert.NoError(t, src.WillNeed(0, src.Len()))
		})
	}

	t.Run("WithoutMmap", func(t *testing.T) {
		src, err := Open(t.Context(), writeFile(t, "reads.fq", data), WithoutMmap())
		require.NoError(t, err)
		defer src.Close()
		assert.False(t, src.Mapped())
		assert.Equal(t, data, src.Bytes())
	})

	t.Run("EmptyFile", func(t *testing.T) {
		src, err := Open(t.Context(), writeFile(t, "empty.fq", nil))
		require.NoError(t, err)
		assert.Equal(t, 0, src.Len())
		assert.NoError(t, src.Close())
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := Open(t.Context(), filepath.Join(t.TempDir(), "missing.fq"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("MaxSize", func(t *testing.T) {
		path := writeFile(t, "reads.fq.zst", compress(t, Zstd, data))
		_, err := Open(t.Context(), path, WithMaxSize(int64(len(data)-1)))
		assert.ErrorIs(t, err, ErrTooLarge)

		src, err := Open(t.Context(), path, WithMaxSize(int64(len(data))))
		require.NoError(t, err)
		assert.Equal(t, data, src.Bytes())
		require.NoError(t, src.Close())
	})

	t.Run("MemoryIsReleased", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
		src, err := Open(t.Context(), writeFile(t, "reads.fq.gz", compress(t, Gzip, data)), WithController(rc))
		require.NoError(t, err)
		assert.Positive(t, rc.MemoryUsage())

		require.NoError(t, src.Close())
		require.NoError(t, src.Close())
		assert.Equal(t, int64(0), rc.MemoryUsage())
	})
}

func TestOpenStream(t *testing.T) {
	data := testutil.NewRNG(3).FASTQ(100, testutil.ReadSpec{MinLen: 20, MaxLen: 80})

	for _, c := range allCompressions {
		t.Run(c.String(), func(t *testing.T) {
			r, got, err := OpenStream(t.Context(), writeFile(t, "reads", compress(t, c, data)))
			require.NoError(t, err)
			assert.Equal(t, c, got)

			out, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, data, out)
			assert.NoError(t, r.Close())
		})
	}

	t.Run("NotFound", func(t *testing.T) {
		_, _, err := OpenStream(t.Context(), filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRateLimited(t *testing.T) {
	r := strings.NewReader("abc")
	assert.Same(t, r, RateLimited(t.Context(), r, nil))

	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})
	out, err := io.ReadAll(RateLimited(t.Context(), strings.NewReader("abc"), rc))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	t.Run("Canceled", func(t *testing.T) {
		slow := resource.NewController(resource.Config{IOLimitBytesPerSec: 1})
		ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
		defer cancel()

		_, err := io.ReadAll(RateLimited(ctx, strings.NewReader(strings.Repeat("x", 64)), slow))
		assert.Error(t, err)
	})
}

// memStore is an in-memory ObjectStore without Download.
type memStore map[string][]byte

func (m memStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	b, ok := m[name]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m memStore) List(context.Context, string) ([]string, error) {
	return nil, errors.New("not implemented")
}

func TestOpenObject(t *testing.T) {
	data := testutil.NewRNG(4).FASTQ(50, testutil.ReadSpec{MinLen: 20, MaxLen: 80})
	store := memStore{"a.fq.lz4": compress(t, LZ4, data)}

	src, err := OpenObject(t.Context(), store, "a.fq.lz4")
	require.NoError(t, err)
	assert.Equal(t, LZ4, src.Compression())
	assert.Equal(t, data, src.Bytes())
	assert.False(t, src.Mapped())
	require.NoError(t, src.Close())

	r, c, err := OpenObjectStream(t.Context(), store, "a.fq.lz4")
	require.NoError(t, err)
	assert.Equal(t, LZ4, c)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, out)
	require.NoError(t, r.Close())

	_, err = OpenObject(t.Context(), store, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
