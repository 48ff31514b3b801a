package fastq

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
)

// RecordReader yields records until io.EOF. *StreamReader implements it.
type RecordReader interface {
	Next() (Record, error)
}

// Pair holds the two mates of a paired-end read.
type Pair struct {
	R1 Record
	R2 Record
}

// PairView is a Pair that borrows its input.
type PairView struct {
	R1 RecordView
	R2 RecordView
}

// DefaultPairSample is the number of pairs ValidatePairing inspects when
// sample is 0.
const DefaultPairSample = 1000

type mate interface {
	ID() []byte
	MateID() []byte
}

// checkMates returns a *PairError when r1 and r2 do not share a mate ID.
func checkMates[R mate](n int, r1, r2 R) error {
	if bytes.Equal(r1.MateID(), r2.MateID()) {
		return nil
	}
	return &PairError{Pair: n, R1ID: string(r1.ID()), R2ID: string(r2.ID()), Err: ErrMateMismatch}
}

// PairedReader joins the records of two mate inputs (R1 and R2) in order.
// Unless WithoutMateCheck is set, each pair must share its MateID. A
// PairedReader is not safe for concurrent use.
type PairedReader struct {
	r1, r2 RecordReader
	check  bool
	pairs  int
	err    error
}

// NewPairedReader returns a reader over the mate inputs r1 and r2.
func NewPairedReader(r1, r2 RecordReader, optFns ...Option) *PairedReader {
	o := applyOptions(optFns)
	return &PairedReader{r1: r1, r2: r2, check: !o.skipMateCheck}
}

// Next returns the next pair, or io.EOF when both inputs are exhausted
// together. Errors are sticky.
func (p *PairedReader) Next() (Pair, error) {
	if p.err != nil {
		return Pair{}, p.err
	}
	pair, err := p.next()
	if err != nil {
		p.err = err
		return Pair{}, err
	}
	return pair, nil
}

func (p *PairedReader) next() (Pair, error) {
	n := p.pairs + 1
	r1, err1 := p.r1.Next()
	if err1 != nil && err1 != io.EOF {
		return Pair{}, fmt.Errorf("mate 1: %w", err1)
	}
	r2, err2 := p.r2.Next()
	if err2 != nil && err2 != io.EOF {
		return Pair{}, fmt.Errorf("mate 2: %w", err2)
	}
	switch {
	case err1 == io.EOF && err2 == io.EOF:
		return Pair{}, io.EOF
	case err1 == io.EOF || err2 == io.EOF:
		return Pair{}, &PairError{Pair: n, Err: ErrPairCountMismatch}
	}
	if p.check {
		if err := checkMates(n, r1, r2); err != nil {
			return Pair{}, err
		}
	}
	p.pairs = n
	return Pair{R1: r1, R2: r2}, nil
}

// Pairs returns the number of pairs read so far.
func (p *PairedReader) Pairs() int { return p.pairs }

// All returns an iterator over the remaining pairs. Iteration ends at
// io.EOF; any other error is yielded once.
func (p *PairedReader) All() iter.Seq2[Pair, error] {
	return allPairs(p.Next)
}

// InterleavedReader reads pairs from one input holding R1 and R2 records in
// alternation. An input ending after an R1 record fails with
// ErrOddInterleaved.
type InterleavedReader struct {
	r     RecordReader
	check bool
	pairs int
	err   error
}

// NewInterleavedReader returns a pair reader over r.
func NewInterleavedReader(r RecordReader, optFns ...Option) *InterleavedReader {
	o := applyOptions(optFns)
	return &InterleavedReader{r: r, check: !o.skipMateCheck}
}

// Next returns the next pair, or io.EOF after the last one. Errors are
// sticky.
func (p *InterleavedReader) Next() (Pair, error) {
	if p.err != nil {
		return Pair{}, p.err
	}
	pair, err := p.next()
	if err != nil {
		p.err = err
		return Pair{}, err
	}
	return pair, nil
}

func (p *InterleavedReader) next() (Pair, error) {
	n := p.pairs + 1
	r1, err := p.r.Next()
	if err != nil {
		return Pair{}, err
	}
	r2, err := p.r.Next()
	if err == io.EOF {
		return Pair{}, &PairError{Pair: n, Err: ErrOddInterleaved}
	}
	if err != nil {
		return Pair{}, err
	}
	if p.check {
		if err := checkMates(n, r1, r2); err != nil {
			return Pair{}, err
		}
	}
	p.pairs = n
	return Pair{R1: r1, R2: r2}, nil
}

// Pairs returns the number of pairs read so far.
func (p *InterleavedReader) Pairs() int { return p.pairs }

// All returns an iterator over the remaining pairs.
func (p *InterleavedReader) All() iter.Seq2[Pair, error] {
	return allPairs(p.Next)
}

func allPairs(next func() (Pair, error)) iter.Seq2[Pair, error] {
	return func(yield func(Pair, error) bool) {
		for {
			pair, err := next()
			if err == io.EOF {
				return
			}
			if !yield(pair, err) || err != nil {
				return
			}
		}
	}
}

// ValidatePairing reports whether the first sample pairs of r1 and r2 line
// up: same record count and matching mate IDs. A sample of 0 means
// DefaultPairSample; a negative sample reads both inputs to the end. Parse
// errors are returned as errors, not as false.
func ValidatePairing(r1, r2 RecordReader, sample int) (bool, error) {
	if sample == 0 {
		sample = DefaultPairSample
	}
	pr := NewPairedReader(r1, r2)
	for n := 0; sample < 0 || n < sample; n++ {
		_, err := pr.Next()
		switch {
		case err == io.EOF:
			return true, nil
		case errors.Is(err, ErrMateMismatch), errors.Is(err, ErrPairCountMismatch):
			return false, nil
		case err != nil:
			return false, err
		}
	}
	return true, nil
}

// AllPairs returns an iterator over the pairs formed by the records of the
// mate inputs r1 and r2. Iteration stops after the first error.
func (p *Parser) AllPairs(r1, r2 []byte, optFns ...Option) iter.Seq2[PairView, error] {
	check := !applyOptions(optFns).skipMateCheck
	return func(yield func(PairView, error) bool) {
		next1, stop1 := iter.Pull2(p.All(r1))
		defer stop1()
		next2, stop2 := iter.Pull2(p.All(r2))
		defer stop2()

		for n := 1; ; n++ {
			v1, err1, ok1 := next1()
			if err1 != nil {
				yield(PairView{}, fmt.Errorf("mate 1: %w", err1))
				return
			}
			v2, err2, ok2 := next2()
			if err2 != nil {
				yield(PairView{}, fmt.Errorf("mate 2: %w", err2))
				return
			}
			switch {
			case !ok1 && !ok2:
				return
			case !ok1 || !ok2:
				yield(PairView{}, &PairError{Pair: n, Err: ErrPairCountMismatch})
				return
			}
			if check {
				if err := checkMates(n, v1, v2); err != nil {
					yield(PairView{}, err)
					return
				}
			}
			if !yield(PairView{R1: v1, R2: v2}, nil) {
				return
			}
		}
	}
}

// AllInterleaved returns an iterator over the pairs of an interleaved input.
// Iteration stops after the first error.
func (p *Parser) AllInterleaved(data []byte, optFns ...Option) iter.Seq2[PairView, error] {
	check := !applyOptions(optFns).skipMateCheck
	return func(yield func(PairView, error) bool) {
		var (
			r1      RecordView
			pending bool
			n       int
		)
		for v, err := range p.All(data) {
			if err != nil {
				yield(PairView{}, err)
				return
			}
			if !pending {
				r1, pending = v, true
				continue
			}
			pending = false
			n++
			if check {
				if err := checkMates(n, r1, v); err != nil {
					yield(PairView{}, err)
					return
				}
			}
			if !yield(PairView{R1: r1, R2: v}, nil) {
				return
			}
		}
		if pending {
			yield(PairView{}, &PairError{Pair: n + 1, Err: ErrOddInterleaved})
		}
	}
}
