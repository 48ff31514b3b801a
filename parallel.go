package fastq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/fastq/buffer"
	"github.com/hupe1980/fastq/internal/arena"
	"github.com/hupe1980/fastq/internal/simd"
)

// Coordinator parses large inputs in parallel. The input is split into
// record-aligned chunks, each chunk is parsed by one worker, and the results
// are joined in input order. A Coordinator is safe for concurrent use.
type Coordinator struct {
	pcfg   ParallelConfig
	parser *Parser
	opts   options
}

// NewCoordinator validates both configurations and returns a Coordinator.
func NewCoordinator(pcfg ParallelConfig, cfg ParseConfig, optFns ...Option) (*Coordinator, error) {
	if err := pcfg.Validate(); err != nil {
		return nil, err
	}
	p, err := NewParser(cfg)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		pcfg:   pcfg,
		parser: p,
		opts:   applyOptions(optFns),
	}, nil
}

// Parser returns the parser every worker uses.
func (co *Coordinator) Parser() *Parser { return co.parser }

// Chunks returns the boundaries Parse would use for data.
func (co *Coordinator) Chunks(data []byte) []Chunk {
	return FindChunkBoundaries(data, co.pcfg.chunkCount(len(data)))
}

type chunkResult struct {
	records []Record
	arena   *arena.Arena
}

// Parse decodes data into owned records. Every chunk is parsed to
// completion independently: the records of all successful chunks are
// returned in input order, and failures are reported together as a
// *ParallelError. Canceling ctx stops the submission of further chunks;
// those chunks fail with ctx.Err().
func (co *Coordinator) Parse(ctx context.Context, data []byte) ([]Record, error) {
	start := time.Now()
	chunks := co.Chunks(data)
	results := make([]chunkResult, len(chunks))

	errs, counts := co.dispatch(ctx, data, chunks, func(ctx context.Context, ch Chunk) (int, error) {
		a := arena.New(co.opts.arenaChunkSize,
			arena.WithMemoryAcquirer(co.opts.controller),
			arena.WithContext(ctx),
		)
		res := &results[ch.Index]
		res.arena = a

		c := newCursor(data, ch.Start, ch.End, true)
		for {
			v, err := co.parser.next(&c)
			if err == io.EOF {
				return len(res.records), nil
			}
			if err != nil {
				return len(res.records), err
			}
			r, err := materialize(a, v)
			if err != nil {
				return len(res.records), err
			}
			res.records = append(res.records, r)
			co.opts.progress.addRecord(v.EncodedLen())
		}
	})

	total := 0
	for i, res := range results {
		if res.arena != nil {
			res.arena.Release()
		}
		if errs[i] == nil {
			total += len(res.records)
		}
	}
	out := make([]Record, 0, total)
	for i, res := range results {
		if errs[i] == nil {
			out = append(out, res.records...)
		}
	}

	err := co.collect(ctx, data, chunks, errs, counts)
	co.opts.metricsCollector.RecordParse(len(data), len(out), time.Since(start), err)
	co.opts.logger.LogParse(ctx, len(data), len(out), time.Since(start), err)
	return out, err
}

// ParseWithCallback decodes data and calls fn for every record. fn runs
// concurrently on the worker goroutines and sees records of one chunk in
// order, with no ordering across chunks. The views are valid while data is.
// An error returned by fn fails that chunk.
func (co *Coordinator) ParseWithCallback(ctx context.Context, data []byte, fn func(RecordView) error) error {
	start := time.Now()
	chunks := co.Chunks(data)
	var count atomic.Int64

	errs, counts := co.dispatch(ctx, data, chunks, func(_ context.Context, ch Chunk) (int, error) {
		n := 0
		c := newCursor(data, ch.Start, ch.End, true)
		for {
			v, err := co.parser.next(&c)
			if err == io.EOF {
				return n, nil
			}
			if err != nil {
				return n, err
			}
			if err := fn(v); err != nil {
				return n, err
			}
			n++
			count.Add(1)
			co.opts.progress.addRecord(v.EncodedLen())
		}
	})

	err := co.collect(ctx, data, chunks, errs, counts)
	co.opts.metricsCollector.RecordParse(len(data), int(count.Load()), time.Since(start), err)
	co.opts.logger.LogParse(ctx, len(data), int(count.Load()), time.Since(start), err)
	return err
}

// dispatch runs work for every non-empty chunk on at most
// min(threads, len(chunks)) goroutines and returns the per-chunk errors.
// work reports the records it produced. Failed chunks are logged by collect
// once their positions are global.
func (co *Coordinator) dispatch(ctx context.Context, data []byte, chunks []Chunk, work func(context.Context, Chunk) (int, error)) ([]error, []int) {
	errs := make([]error, len(chunks))
	counts := make([]int, len(chunks))

	var g errgroup.Group
	g.SetLimit(min(co.pcfg.threads(), len(chunks)))

	for i, ch := range chunks {
		if ch.Empty() {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		g.Go(func() error {
			begin := time.Now()
			records := 0
			defer func() {
				if r := recover(); r != nil {
					errs[i] = &WorkerPanicError{Chunk: i, Value: r, Stack: debug.Stack()}
				}
				counts[i] = records
				co.opts.metricsCollector.RecordChunk(ch.Len(), records, time.Since(begin), errs[i])
				if errs[i] == nil {
					co.opts.logger.LogChunk(ctx, ch, records, nil)
				}
			}()
			if co.pcfg.PinThreads {
				pinThread(i)
			}
			if co.pcfg.Prefetch {
				prefetch(data[ch.Start:ch.End])
			}
			records, errs[i] = work(ctx, ch)
			return nil
		})
	}
	_ = g.Wait()
	return errs, counts
}

// collect wraps per-chunk errors into a *ParallelError with whole-input line
// and record numbers, or returns nil. counts holds the records each chunk
// produced; a failed chunk's records are counted from its record starts.
func (co *Coordinator) collect(ctx context.Context, data []byte, chunks []Chunk, errs []error, counts []int) error {
	var (
		out     []error
		records int
	)
	for i, err := range errs {
		ch := chunks[i]
		if err == nil {
			records += counts[i]
			continue
		}
		rebase(err, simd.CountChars(data[:ch.Start], '\n'), records, 0)
		records += countRecordStarts(data[ch.Start:ch.End])
		if k := KindOf(err); k != 0 {
			co.opts.metricsCollector.RecordViolation(k)
		}
		co.opts.logger.LogChunk(ctx, ch, 0, err)
		var wp *WorkerPanicError
		if errors.As(err, &wp) {
			out = append(out, wp)
			continue
		}
		out = append(out, &ChunkError{Chunk: ch.Index, Start: ch.Start, End: ch.End, Err: err})
	}
	if len(out) == 0 {
		return nil
	}
	return &ParallelError{Errors: out}
}

// rebase shifts the position of a *ParseError found in a chunk or block by
// the lines, records and bytes that precede it.
func rebase(err error, lines, records, offset int) {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return
	}
	if pe.Line > 0 {
		pe.Line += lines
	}
	if pe.Record > 0 {
		pe.Record += records
	}
	pe.Offset += offset
}

const pageSize = 4096

var prefetchSink atomic.Uint32

// prefetch touches one byte per page so the first parse pass does not stall
// on page faults of a memory-mapped input.
func prefetch(b []byte) {
	var x byte
	for i := 0; i < len(b); i += pageSize {
		x ^= b[i]
	}
	prefetchSink.Add(uint32(x))
}

// ParseStream decodes r in constant memory. Blocks of the pool's buffer size
// are read in turn, cut after the last complete record, and parsed
// NumThreads blocks at a time; fn receives the records in input order on the
// calling goroutine. A record larger than one block fails with
// KindBufferOverflow. ParseStream stops at the first failing block. Error
// positions are relative to the whole stream.
func (co *Coordinator) ParseStream(ctx context.Context, r io.Reader, fn func(Record) error) (err error) {
	start := time.Now()
	var (
		pos     streamPos
		total   int
		emitted int
		carry   *buffer.Buffer
		eof     bool
	)
	defer func() {
		if carry != nil {
			carry.Release()
		}
		co.opts.metricsCollector.RecordParse(total, emitted, time.Since(start), err)
		co.opts.logger.LogParse(ctx, total, emitted, time.Since(start), err)
	}()

	batchSize := co.pcfg.threads()
	for !eof {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Read up to batchSize blocks; each block owns one pool buffer.
		var batch []*buffer.Buffer
		for len(batch) < batchSize && !eof {
			b := co.opts.pool.Get()
			carried := 0
			if carry != nil {
				carried = len(carry.B)
				b.B = append(b.B, carry.B...)
				carry.Release()
				carry = nil
			}
			var err error
			eof, err = fillBlock(r, b)
			if err != nil {
				b.Release()
				releaseAll(batch)
				return err
			}
			total += len(b.B) - carried

			if !eof {
				cut := lastRecordStart(b.B)
				if cut == 0 {
					err := pos.overflow(batch)
					b.Release()
					releaseAll(batch)
					return err
				}
				carry = co.opts.pool.Get()
				carry.B = append(carry.B, b.B[cut:]...)
				b.B = b.B[:cut]
			}
			batch = append(batch, b)
		}

		n, err := co.parseBatch(ctx, batch, &pos, fn)
		emitted += n
		if err != nil {
			return err
		}
	}
	return nil
}

// streamPos is the position of the next block in a stream.
type streamPos struct {
	block  int
	offset int
	line   int // lines before the block
	record int // records before the block
}

// advance moves past a parsed block.
func (p *streamPos) advance(size, lines, records int) {
	p.block++
	p.offset += size
	p.line += lines
	p.record += records
}

// overflow reports a record that does not fit in the block following the
// pending blocks of batch.
func (p streamPos) overflow(batch []*buffer.Buffer) error {
	offset, records := p.offset, p.record
	for _, b := range batch {
		offset += len(b.B)
		records += countRecordStarts(b.B)
	}
	return &ParseError{
		Kind:   KindBufferOverflow,
		Line:   p.line + countLines(batch) + 1,
		Column: 1,
		Offset: offset,
		Record: records + 1,
	}
}

// parseBatch parses blocks in parallel, emits their records in order, moves
// pos past every block it completes and releases every block. It returns the
// number of records passed to fn.
func (co *Coordinator) parseBatch(ctx context.Context, batch []*buffer.Buffer, pos *streamPos, fn func(Record) error) (int, error) {
	defer releaseAll(batch)

	results := make([]chunkResult, len(batch))
	lines := make([]int, len(batch))

	var g errgroup.Group
	g.SetLimit(min(co.pcfg.threads(), len(batch)))
	errs := make([]error, len(batch))
	for i, b := range batch {
		block := pos.block + i
		g.Go(func() error {
			begin := time.Now()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = &WorkerPanicError{Chunk: block, Value: r, Stack: debug.Stack()}
				}
				co.opts.metricsCollector.RecordChunk(len(b.B), len(results[i].records), time.Since(begin), errs[i])
			}()
			a := arena.New(co.opts.arenaChunkSize,
				arena.WithMemoryAcquirer(co.opts.controller),
				arena.WithContext(ctx),
			)
			results[i].arena = a

			c := newCursor(b.B, 0, len(b.B), true)
			for {
				v, err := co.parser.next(&c)
				if err == io.EOF {
					break
				}
				if err != nil {
					errs[i] = err
					break
				}
				rec, err := materialize(a, v)
				if err != nil {
					errs[i] = err
					break
				}
				results[i].records = append(results[i].records, rec)
				co.opts.progress.addRecord(v.EncodedLen())
			}
			lines[i] = c.line - 1
			return nil
		})
	}
	_ = g.Wait()

	defer func() {
		for _, res := range results {
			if res.arena != nil {
				res.arena.Release()
			}
		}
	}()

	emitted := 0
	for i, res := range results {
		ch := Chunk{Index: pos.block, Start: pos.offset, End: pos.offset + len(batch[i].B)}
		if err := errs[i]; err != nil {
			rebase(err, pos.line, pos.record, pos.offset)
			if k := KindOf(err); k != 0 {
				co.opts.metricsCollector.RecordViolation(k)
			}
			co.opts.logger.LogChunk(ctx, ch, len(res.records), err)
			var wp *WorkerPanicError
			if errors.As(err, &wp) {
				return emitted, &ParallelError{Errors: []error{wp}}
			}
			return emitted, &ParallelError{Errors: []error{
				&ChunkError{Chunk: ch.Index, Start: ch.Start, End: ch.End, Err: err},
			}}
		}
		co.opts.logger.LogChunk(ctx, ch, len(res.records), nil)
		for _, rec := range res.records {
			if err := fn(rec); err != nil {
				return emitted, fmt.Errorf("fastq: stream callback: %w", err)
			}
			emitted++
		}
		pos.advance(len(batch[i].B), lines[i], len(res.records))
	}
	return emitted, nil
}

func countLines(bufs []*buffer.Buffer) int {
	n := 0
	for _, b := range bufs {
		n += simd.CountChars(b.B, '\n')
	}
	return n
}

func releaseAll(bufs []*buffer.Buffer) {
	for _, b := range bufs {
		b.Release()
	}
}

// fillBlock reads into b until it is full or r is exhausted.
func fillBlock(r io.Reader, b *buffer.Buffer) (eof bool, err error) {
	size := cap(b.B)
	for len(b.B) < size {
		n, err := r.Read(b.B[len(b.B):size])
		b.B = b.B[:len(b.B)+n]
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
	}
	return false, nil
}
