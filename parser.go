package fastq

import (
	"bytes"
	"errors"
	"io"
	"iter"

	"github.com/hupe1980/fastq/internal/arena"
	"github.com/hupe1980/fastq/internal/simd"
)

// ParserState is a state of the record state machine.
type ParserState uint8

const (
	StateExpectingIdentifier ParserState = iota
	StateReadingSequence
	StateExpectingSeparator
	StateReadingQuality
)

func (s ParserState) String() string {
	switch s {
	case StateExpectingIdentifier:
		return "expecting-identifier"
	case StateReadingSequence:
		return "reading-sequence"
	case StateExpectingSeparator:
		return "expecting-separator"
	case StateReadingQuality:
		return "reading-quality"
	default:
		return "unknown"
	}
}

// errNeedMore is returned by a non-final cursor when the record at pos is not
// complete in the buffered data.
var errNeedMore = errors.New("fastq: need more data")

// Parser decodes four-line FASTQ records. A Parser is immutable after
// NewParser and safe for concurrent use; every call keeps its own cursor.
type Parser struct {
	cfg      ParseConfig
	qlo, qhi byte
}

// NewParser validates cfg and returns a Parser.
func NewParser(cfg ParseConfig) (*Parser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lo, hi := cfg.QualityEncoding.Range()
	return &Parser{cfg: cfg, qlo: lo, qhi: hi}, nil
}

var defaultParser = &Parser{cfg: DefaultParseConfig(), qlo: '!', qhi: '~'}

// Config returns the parser configuration.
func (p *Parser) Config() ParseConfig { return p.cfg }

// Parse decodes every record in data into owned records. It stops at the
// first error that the configuration does not tolerate and returns the
// records decoded before it together with the error.
func (p *Parser) Parse(data []byte) ([]Record, error) {
	a := arena.New(0)
	c := newCursor(data, 0, len(data), true)
	var out []Record
	for {
		v, err := p.next(&c)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		r, err := materialize(a, v)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
}

// ParseZeroCopy is Parse without copying: the views borrow from data.
func (p *Parser) ParseZeroCopy(data []byte) ([]RecordView, error) {
	c := newCursor(data, 0, len(data), true)
	var out []RecordView
	for {
		v, err := p.next(&c)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

// ParseSingle decodes the first record of data and returns it with the
// number of bytes consumed, including its final line terminator. It returns
// io.EOF when data holds no record.
func (p *Parser) ParseSingle(data []byte) (Record, int, error) {
	c := newCursor(data, 0, len(data), true)
	v, err := p.next(&c)
	if err != nil {
		return Record{}, 0, err
	}
	return v.ToOwned(), c.pos, nil
}

// All returns an iterator over the records of data. Iteration stops after
// the first error, which is yielded with a zero RecordView.
func (p *Parser) All(data []byte) iter.Seq2[RecordView, error] {
	return func(yield func(RecordView, error) bool) {
		c := newCursor(data, 0, len(data), true)
		for {
			v, err := p.next(&c)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(RecordView{}, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Parse decodes data with DefaultParseConfig.
func Parse(data []byte) ([]Record, error) {
	return defaultParser.Parse(data)
}

// ParseZeroCopy decodes data with DefaultParseConfig without copying.
func ParseZeroCopy(data []byte) ([]RecordView, error) {
	return defaultParser.ParseZeroCopy(data)
}

// materialize copies the fields of v into arena memory.
func materialize(a *arena.Arena, v RecordView) (Record, error) {
	var (
		r   = Record{Flags: v.Flags}
		err error
	)
	if r.Identifier, err = a.Copy(v.Identifier); err != nil {
		return Record{}, err
	}
	if r.Sequence, err = a.Copy(v.Sequence); err != nil {
		return Record{}, err
	}
	if r.Separator, err = a.Copy(v.Separator); err != nil {
		return Record{}, err
	}
	if r.Quality, err = a.Copy(v.Quality); err != nil {
		return Record{}, err
	}
	return r, nil
}

// cursor is the mutable state of one parse over data[:end].
type cursor struct {
	data   []byte
	pos    int
	line   int // 1-based line number at pos
	record int // identifiers accepted so far
	state  ParserState
	final  bool // data[:end] is the true end of input

	// sink, when set, receives violations that would otherwise abort; the
	// cursor then resynchronizes instead.
	sink func(*ParseError)
}

// newCursor parses data[start:end]. Offsets are relative to data; line
// numbers count from start, so chunk callers rebase them with rebase.
func newCursor(data []byte, start, end int, final bool) cursor {
	return cursor{
		data:  data[:end],
		pos:   start,
		line:  1,
		final: final,
	}
}

// readLine consumes one line. ok is false when no line is available: either
// the input is exhausted or, for a non-final cursor, the line is unterminated.
func (c *cursor) readLine() (line []byte, ok bool) {
	rest := c.data[c.pos:]
	if len(rest) == 0 {
		return nil, false
	}
	j := simd.IndexByte(rest, '\n')
	if j < 0 {
		if !c.final {
			return nil, false
		}
		line = rest
		c.pos = len(c.data)
	} else {
		line = rest[:j]
		c.pos += j + 1
		c.line++
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, true
}

// seek moves to pos, keeping the line count in step.
func (c *cursor) seek(pos, line int) {
	c.pos, c.line = pos, line
}

// resync advances to the first line start at or after from whose first byte
// is '@', or to the end of input.
func (c *cursor) resync(from int) {
	target := nextRecordStart(c.data, from)
	if target == len(c.data) && !c.final && from < len(c.data) {
		// Stop at the last complete line; the rest may not have arrived.
		target = from
		if i := bytes.LastIndexByte(c.data[from:], '\n'); i >= 0 {
			target = from + i + 1
		}
	}
	if target >= c.pos {
		c.line += simd.CountChars(c.data[c.pos:target], '\n')
	} else {
		c.line -= simd.CountChars(c.data[target:c.pos], '\n')
	}
	c.pos = target
}

func firstByte(b []byte) byte {
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

// next decodes the record at the cursor. It returns io.EOF at a clean end of
// input and errNeedMore when a non-final cursor runs out of data.
func (p *Parser) next(c *cursor) (RecordView, error) {
	strict := p.cfg.StrictMode
	for {
		c.state = StateExpectingIdentifier
		recPos, recLine := c.pos, c.line

		// Identifier.
		if c.pos >= len(c.data) {
			if !c.final {
				return RecordView{}, errNeedMore
			}
			return RecordView{}, io.EOF
		}
		idPos, idLine := c.pos, c.line
		id, ok := c.readLine()
		if !ok {
			return RecordView{}, errNeedMore
		}
		if len(id) == 0 && p.cfg.AllowEmptyLines {
			continue
		}
		if len(id) == 0 || id[0] != '@' {
			perr := &ParseError{
				Kind: KindInvalidIdentifier, State: StateExpectingIdentifier,
				Line: idLine, Column: 1, Offset: idPos, Record: c.record + 1, Byte: firstByte(id),
			}
			if strict && c.sink == nil {
				c.seek(idPos, idLine)
				return RecordView{}, perr
			}
			if c.sink != nil {
				c.sink(perr)
			}
			c.resync(idPos + 1)
			continue
		}
		c.record++

		// Sequence.
		c.state = StateReadingSequence
		seqPos, seqLine := c.pos, c.line
		seq, ok := c.readLine()
		if !ok {
			if err := p.incomplete(c, recPos, recLine); err != nil {
				return RecordView{}, err
			}
			continue
		}

		// Separator.
		c.state = StateExpectingSeparator
		sepPos, sepLine := c.pos, c.line
		sep, ok := c.readLine()
		if !ok {
			if err := p.incomplete(c, recPos, recLine); err != nil {
				return RecordView{}, err
			}
			continue
		}
		if len(sep) == 0 || sep[0] != '+' {
			perr := &ParseError{
				Kind: KindInvalidSeparator, State: StateExpectingSeparator,
				Line: sepLine, Column: 1, Offset: sepPos, Record: c.record, Byte: firstByte(sep),
			}
			if strict && c.sink == nil {
				c.seek(sepPos, sepLine)
				return RecordView{}, perr
			}
			if c.sink != nil {
				c.sink(perr)
			}
			// The offending line may itself be the next record's identifier.
			c.seek(sepPos, sepLine)
			c.resync(sepPos)
			continue
		}

		// Quality.
		c.state = StateReadingQuality
		qualPos, qualLine := c.pos, c.line
		qual, ok := c.readLine()
		if !ok {
			if err := p.incomplete(c, recPos, recLine); err != nil {
				return RecordView{}, err
			}
			continue
		}

		v := RecordView{Identifier: id, Sequence: seq, Separator: sep, Quality: qual}
		perr := p.check(c, &v, seqPos, seqLine, qualPos, qualLine, idPos)
		if perr == nil {
			c.state = StateExpectingIdentifier
			return v, nil
		}
		if c.sink == nil {
			c.seek(recPos, recLine)
			return RecordView{}, perr
		}
		c.sink(perr)
		if v.Flags != 0 && perr.Kind != KindRecordTooLarge && perr.Kind != KindInvalidCharacter {
			// Tolerated and flagged; the violation was only reported.
			c.state = StateExpectingIdentifier
			return v, nil
		}
		c.resync(c.pos)
	}
}

// check applies the record-level rules. Violations that the configuration
// tolerates are recorded in v.Flags; the first one that it does not is
// returned. With a sink, the first tolerated violation is also returned so
// it can be reported.
func (p *Parser) check(c *cursor, v *RecordView, seqPos, seqLine, qualPos, qualLine, idPos int) *ParseError {
	strict := p.cfg.StrictMode
	var reported *ParseError
	report := func(e *ParseError) {
		if reported == nil {
			reported = e
		}
	}

	if len(v.Sequence) != len(v.Quality) {
		perr := &ParseError{
			Kind: KindLengthMismatch, State: StateReadingQuality,
			Line: qualLine, Column: min(len(v.Sequence), len(v.Quality)) + 1, Offset: qualPos,
			Record: c.record, SeqLen: len(v.Sequence), QualLen: len(v.Quality),
		}
		if strict {
			return perr
		}
		v.Flags |= FlagLengthMismatch
		report(perr)
	}

	if strict {
		if i := simd.FirstNonASCII(v.Sequence); i >= 0 {
			return &ParseError{
				Kind: KindInvalidCharacter, State: StateReadingSequence,
				Line: seqLine, Column: i + 1, Offset: seqPos, Record: c.record, Byte: v.Sequence[i],
			}
		}
		if i := simd.FirstNonASCII(v.Quality); i >= 0 {
			return &ParseError{
				Kind: KindInvalidCharacter, State: StateReadingQuality,
				Line: qualLine, Column: i + 1, Offset: qualPos, Record: c.record, Byte: v.Quality[i],
			}
		}
	}

	if p.cfg.ValidateQuality {
		for i, q := range v.Quality {
			if q >= p.qlo && q <= p.qhi {
				continue
			}
			perr := &ParseError{
				Kind: KindInvalidQuality, State: StateReadingQuality,
				Line: qualLine, Column: i + 1, Offset: qualPos, Record: c.record, Byte: q,
			}
			if strict {
				return perr
			}
			v.Flags |= FlagInvalidQuality
			report(perr)
			break
		}
	}

	if p.cfg.MaxRecordSize > 0 {
		if size := c.pos - idPos; size > p.cfg.MaxRecordSize {
			// Oversized records are dropped in every mode.
			return &ParseError{
				Kind: KindRecordTooLarge, State: StateReadingQuality,
				Line: qualLine, Column: 1, Offset: idPos, Record: c.record, SeqLen: size,
			}
		}
	}

	if c.sink != nil {
		return reported
	}
	return nil
}

// incomplete handles end of input inside a record, after its identifier was
// accepted. A non-final cursor rewinds to the record start and asks for more
// data; otherwise the truncation is always reported.
func (p *Parser) incomplete(c *cursor, recPos, recLine int) error {
	if !c.final {
		// The identifier will be read again.
		c.seek(recPos, recLine)
		c.record--
		return errNeedMore
	}
	perr := &ParseError{
		Kind: KindIncompleteRecord, State: c.state,
		Line: c.line, Column: 1, Offset: len(c.data), Record: c.record,
	}
	if c.sink != nil {
		c.sink(perr)
		c.pos = len(c.data)
		return nil
	}
	return perr
}
