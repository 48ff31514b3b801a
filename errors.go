package fastq

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/fastq/buffer"
)

// ErrorKind classifies a parse failure.
type ErrorKind uint8

const (
	// KindInvalidIdentifier: the identifier line does not start with '@'.
	KindInvalidIdentifier ErrorKind = iota + 1
	// KindInvalidSeparator: the separator line does not start with '+'.
	KindInvalidSeparator
	// KindLengthMismatch: sequence and quality lengths differ.
	KindLengthMismatch
	// KindInvalidQuality: a quality byte is outside the configured range.
	KindInvalidQuality
	// KindInvalidCharacter: a non-ASCII byte in the sequence or quality line.
	KindInvalidCharacter
	// KindIncompleteRecord: input ended in the middle of a record.
	KindIncompleteRecord
	// KindBufferOverflow: a record does not fit the stream buffer.
	KindBufferOverflow
	// KindRecordTooLarge: a record exceeds ParseConfig.MaxRecordSize.
	KindRecordTooLarge
)

// Sentinels matched by errors.Is against a *ParseError of the same kind.
var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrInvalidSeparator  = errors.New("invalid separator")
	ErrLengthMismatch    = errors.New("sequence and quality length mismatch")
	ErrInvalidQuality    = errors.New("invalid quality score")
	ErrInvalidCharacter  = errors.New("invalid character")
	ErrIncompleteRecord  = errors.New("incomplete record")
	ErrRecordTooLarge    = errors.New("record too large")

	// ErrBufferOverflow is shared with package buffer.
	ErrBufferOverflow = buffer.ErrBufferOverflow
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidIdentifier:
		return ErrInvalidIdentifier
	case KindInvalidSeparator:
		return ErrInvalidSeparator
	case KindLengthMismatch:
		return ErrLengthMismatch
	case KindInvalidQuality:
		return ErrInvalidQuality
	case KindInvalidCharacter:
		return ErrInvalidCharacter
	case KindIncompleteRecord:
		return ErrIncompleteRecord
	case KindBufferOverflow:
		return ErrBufferOverflow
	case KindRecordTooLarge:
		return ErrRecordTooLarge
	default:
		return nil
	}
}

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidIdentifier:
		return "invalid-identifier"
	case KindInvalidSeparator:
		return "invalid-separator"
	case KindLengthMismatch:
		return "length-mismatch"
	case KindInvalidQuality:
		return "invalid-quality"
	case KindInvalidCharacter:
		return "invalid-character"
	case KindIncompleteRecord:
		return "incomplete-record"
	case KindBufferOverflow:
		return "buffer-overflow"
	case KindRecordTooLarge:
		return "record-too-large"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseError describes a malformed record.
//
// Line and Column are 1-based. Offset is the byte offset of the offending
// line start. Record is the 1-based index of the record being decoded.
type ParseError struct {
	Kind    ErrorKind
	State   ParserState // state in which the violation was detected
	Line    int
	Column  int
	Offset  int
	Record  int
	SeqLen  int  // KindLengthMismatch
	QualLen int  // KindLengthMismatch
	Byte    byte // offending byte, when there is one
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ", column %d", e.Column)
		}
		b.WriteString(": ")
	}
	if s := e.Kind.sentinel(); s != nil {
		b.WriteString(s.Error())
	} else {
		b.WriteString(e.Kind.String())
	}
	switch e.Kind {
	case KindInvalidIdentifier:
		fmt.Fprintf(&b, ": expected '@', found %s", quoteByte(e.Byte))
	case KindInvalidSeparator:
		fmt.Fprintf(&b, ": expected '+', found %s", quoteByte(e.Byte))
	case KindLengthMismatch:
		fmt.Fprintf(&b, ": sequence %d, quality %d", e.SeqLen, e.QualLen)
	case KindInvalidQuality, KindInvalidCharacter:
		fmt.Fprintf(&b, ": %s", quoteByte(e.Byte))
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Kind.sentinel() }

func quoteByte(c byte) string {
	if c == 0 {
		return "end of line"
	}
	if c >= 0x20 && c < 0x7F {
		return fmt.Sprintf("%q", rune(c))
	}
	return fmt.Sprintf("0x%02X", c)
}

// ChunkError wraps the failure of one parallel chunk.
type ChunkError struct {
	Chunk int
	Start int
	End   int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d [%d:%d]: %v", e.Chunk, e.Start, e.End, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// WorkerPanicError reports a panic recovered from a parse worker.
type WorkerPanicError struct {
	Chunk int
	Value any
	Stack []byte
}

func (e *WorkerPanicError) Error() string {
	return fmt.Sprintf("chunk %d: worker panic: %v", e.Chunk, e.Value)
}

// ParallelError collects every chunk failure of a parallel parse, ordered by
// chunk index.
type ParallelError struct {
	Errors []error
}

func (e *ParallelError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "parallel parse failed"
	case 1:
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d chunks failed; first: %v", len(e.Errors), e.Errors[0])
}

func (e *ParallelError) Unwrap() []error { return e.Errors }

// ConfigError indicates an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// ErrInvalidConfig is matched by every *ConfigError.
var ErrInvalidConfig = errors.New("invalid config")

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// Pairing failures, matched by errors.Is against a *PairError.
var (
	ErrMateMismatch      = errors.New("mate identifiers differ")
	ErrPairCountMismatch = errors.New("mate inputs hold different numbers of records")
	ErrOddInterleaved    = errors.New("interleaved input holds an odd number of records")
)

// PairError describes a read pair that could not be formed. Pair is the
// 1-based index of the pair. R1ID and R2ID are set for ErrMateMismatch.
type PairError struct {
	Pair int
	R1ID string
	R2ID string
	Err  error
}

func (e *PairError) Error() string {
	if e.R1ID != "" || e.R2ID != "" {
		return fmt.Sprintf("pair %d: %v: %q and %q", e.Pair, e.Err, e.R1ID, e.R2ID)
	}
	return fmt.Sprintf("pair %d: %v", e.Pair, e.Err)
}

func (e *PairError) Unwrap() error { return e.Err }

// KindOf returns the ErrorKind of the first *ParseError in err's tree, or 0.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
