package fastq

import (
	"io"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/fastq/internal/arena"
)

// RecoveryResult is the outcome of ParseWithRecovery.
type RecoveryResult struct {
	// Records holds every record that was kept, in input order.
	Records []Record
	// Errors holds one *ParseError per violation, in input order. Records
	// that were dropped and records that were kept but flagged both appear.
	Errors []error
	// Flagged indexes the entries of Records whose Flags are non-zero.
	Flagged *roaring.Bitmap
}

// OK reports whether no violation was found.
func (r *RecoveryResult) OK() bool { return len(r.Errors) == 0 }

// FlaggedRecords returns the flagged records.
func (r *RecoveryResult) FlaggedRecords() []Record {
	out := make([]Record, 0, r.Flagged.GetCardinality())
	it := r.Flagged.Iterator()
	for it.HasNext() {
		out = append(out, r.Records[it.Next()])
	}
	return out
}

// ParseWithRecovery decodes data without ever aborting. Each violation is
// collected and the parser resynchronizes to the next line starting with
// '@'. Violations the configuration tolerates (lenient mode) keep the record
// with flags set; all others drop it. Truncation at the end of input is
// collected like any other violation.
func (p *Parser) ParseWithRecovery(data []byte) RecoveryResult {
	res := RecoveryResult{Flagged: roaring.New()}
	c := newCursor(data, 0, len(data), true)
	c.sink = func(e *ParseError) {
		res.Errors = append(res.Errors, e)
	}

	a := arena.New(0)
	for {
		v, err := p.next(&c)
		if err == io.EOF {
			return res
		}
		if err != nil {
			res.Errors = append(res.Errors, err)
			return res
		}
		r, err := materialize(a, v)
		if err != nil {
			res.Errors = append(res.Errors, err)
			return res
		}
		if r.Flags != 0 {
			res.Flagged.Add(uint32(len(res.Records)))
		}
		res.Records = append(res.Records, r)
	}
}
