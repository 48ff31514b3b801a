package fastq

import (
	"errors"
	"io"
	"iter"

	"github.com/hupe1980/fastq/buffer"
)

// StreamReader parses records from an io.Reader in constant memory. Input is
// buffered in a ring whose storage is taken from a buffer pool, so the
// largest record it can hold is the pool's buffer size. A StreamReader is
// not safe for concurrent use.
type StreamReader struct {
	r      io.Reader
	parser *Parser
	ring   *buffer.Ring
	eof    bool
	err    error

	// Position of the ring head in the whole stream.
	offset int
	line   int
	record int
}

// NewStreamReader returns a reader that decodes r with cfg. WithBufferPool
// and WithBlockSize control the ring buffer.
func NewStreamReader(r io.Reader, cfg ParseConfig, optFns ...Option) (*StreamReader, error) {
	p, err := NewParser(cfg)
	if err != nil {
		return nil, err
	}
	o := applyOptions(optFns)
	return &StreamReader{
		r:      r,
		parser: p,
		ring:   buffer.NewRingFrom(o.pool.Get()),
	}, nil
}

// Next returns the next record. It returns io.EOF after the last record.
// Errors are sticky: once Next fails, every later call returns the same
// error.
func (s *StreamReader) Next() (Record, error) {
	if s.err != nil {
		return Record{}, s.err
	}
	for {
		data := s.ring.Contiguous()
		c := newCursor(data, 0, len(data), s.eof)
		c.record = s.record

		v, err := s.parser.next(&c)
		switch {
		case err == nil:
			rec := v.ToOwned()
			s.advance(&c)
			return rec, nil
		case errors.Is(err, errNeedMore):
			s.advance(&c)
			if err := s.fill(); err != nil {
				s.err = err
				return Record{}, err
			}
		case err == io.EOF:
			s.err = io.EOF
			return Record{}, io.EOF
		default:
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line += s.line
				pe.Offset += s.offset
			}
			s.err = err
			return Record{}, err
		}
	}
}

// advance drops the bytes the cursor consumed.
func (s *StreamReader) advance(c *cursor) {
	s.ring.Discard(c.pos)
	s.offset += c.pos
	s.line += c.line - 1
	s.record = c.record
}

func (s *StreamReader) fill() error {
	if s.ring.Available() == 0 {
		return &ParseError{
			Kind:   KindBufferOverflow,
			Line:   s.line + 1,
			Column: 1,
			Offset: s.offset,
			Record: s.record + 1,
		}
	}
	s.ring.Compact()
	_, err := s.ring.Fill(s.r)
	if err == io.EOF {
		s.eof = true
		return nil
	}
	return err
}

// All returns an iterator over the remaining records. Iteration ends at
// io.EOF; any other error is yielded once.
func (s *StreamReader) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			rec, err := s.Next()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// Close returns the ring buffer to its pool. It does not close the
// underlying reader.
func (s *StreamReader) Close() error {
	s.ring.Close()
	if s.err == nil {
		s.err = errors.New("fastq: stream reader closed")
	}
	return nil
}
