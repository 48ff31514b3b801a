package fastq

import "sync/atomic"

// Progress counts records as workers produce them. It is safe for concurrent
// use and may be read while a parse is running.
type Progress struct {
	records atomic.Int64
	bytes   atomic.Int64
	total   atomic.Int64
}

// NewProgress creates a counter for an input of totalBytes (0 if unknown).
func NewProgress(totalBytes int64) *Progress {
	p := &Progress{}
	p.total.Store(totalBytes)
	return p
}

func (p *Progress) addRecord(encoded int) {
	if p == nil {
		return
	}
	p.records.Add(1)
	p.bytes.Add(int64(encoded))
}

// Records returns the number of records produced so far.
func (p *Progress) Records() int64 { return p.records.Load() }

// Bytes returns the encoded bytes of the records produced so far.
func (p *Progress) Bytes() int64 { return p.bytes.Load() }

// SetTotal sets the expected input size.
func (p *Progress) SetTotal(totalBytes int64) { p.total.Store(totalBytes) }

// Fraction returns a best-effort completion estimate in [0, 1]. It is 0 when
// the total is unknown. Records are counted as they are emitted, so the value
// may lag behind the bytes actually scanned.
func (p *Progress) Fraction() float64 {
	total := p.total.Load()
	if total <= 0 {
		return 0
	}
	return min(float64(p.bytes.Load())/float64(total), 1)
}
