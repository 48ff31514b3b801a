package fastq

import (
	"errors"
	"fmt"
	"strings"
)

// Remediation returns a short suggested fix for an error kind.
func Remediation(kind ErrorKind) string {
	switch kind {
	case KindInvalidIdentifier:
		return "each record must start with a line beginning with '@'; check for a missing or extra line in the previous record"
	case KindInvalidSeparator:
		return "the third line of a record must begin with '+'; multi-line sequences are not supported"
	case KindLengthMismatch:
		return "sequence and quality lines must have the same length; the file may be truncated or corrupted"
	case KindInvalidQuality:
		return "quality bytes are outside the configured encoding; check the encoding (phred33/phred64)"
	case KindInvalidCharacter:
		return "remove non-ASCII bytes or parse in lenient mode"
	case KindIncompleteRecord:
		return "the input ends inside a record; the file is probably truncated"
	case KindBufferOverflow:
		return "a record is larger than the stream buffer; increase the block size"
	case KindRecordTooLarge:
		return "a record exceeds max_record_size; raise the limit or check for missing line breaks"
	default:
		return "inspect the input around the reported position"
	}
}

// FormatReport renders errors as a numbered, human-readable report with a
// remediation per parse error. Chunk and panic wrappers are unpacked, and a
// *ParallelError is expanded into its parts.
func FormatReport(errs []error) string {
	flat := flatten(errs)
	if len(flat) == 0 {
		return "no errors\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d error(s):\n", len(flat))
	for i, err := range flat {
		fmt.Fprintf(&b, "%3d. ", i+1)

		var ce *ChunkError
		if errors.As(err, &ce) {
			fmt.Fprintf(&b, "[chunk %d] ", ce.Chunk)
		}

		var wp *WorkerPanicError
		if errors.As(err, &wp) {
			fmt.Fprintf(&b, "[chunk %d] worker panic: %v\n", wp.Chunk, wp.Value)
			continue
		}

		var pe *ParseError
		if !errors.As(err, &pe) {
			fmt.Fprintf(&b, "%v\n", err)
			continue
		}
		if pe.Record > 0 {
			fmt.Fprintf(&b, "record %d, ", pe.Record)
		}
		fmt.Fprintf(&b, "%v\n", pe)
		fmt.Fprintf(&b, "     fix: %s\n", Remediation(pe.Kind))
	}
	return b.String()
}

func flatten(errs []error) []error {
	var out []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		var pe *ParallelError
		if errors.As(err, &pe) {
			out = append(out, flatten(pe.Errors)...)
			continue
		}
		out = append(out, err)
	}
	return out
}
