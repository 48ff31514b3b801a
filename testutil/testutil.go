package testutil

import (
	"bytes"
	"fmt"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// ReadSpec shapes generated records.
type ReadSpec struct {
	MinLen int // minimum sequence length (default 1)
	MaxLen int // maximum sequence length, inclusive (default MinLen)

	// Alphabet for bases (default "ACGT").
	Alphabet string
	// QualityMin and QualityMax bound quality bytes (default '!'..'J').
	// A QualityMin of '@' or more makes some quality lines start with '@'.
	QualityMin byte
	QualityMax byte

	// Description, when set, is appended to identifiers after a space.
	Description string
	// RepeatID repeats the identifier on the separator line ("+read1").
	RepeatID bool
	// CRLF terminates lines with "\r\n".
	CRLF bool
	// OmitFinalNewline drops the terminator of the last line.
	OmitFinalNewline bool
}

func (s ReadSpec) withDefaults() ReadSpec {
	if s.MinLen <= 0 {
		s.MinLen = 1
	}
	if s.MaxLen < s.MinLen {
		s.MaxLen = s.MinLen
	}
	if s.Alphabet == "" {
		s.Alphabet = "ACGT"
	}
	if s.QualityMin == 0 {
		s.QualityMin = '!'
	}
	if s.QualityMax < s.QualityMin {
		s.QualityMax = 'J'
		if s.QualityMax < s.QualityMin {
			s.QualityMax = s.QualityMin
		}
	}
	return s
}

// Read is one generated record without line terminators.
type Read struct {
	ID       string
	Sequence string
	Sep      string
	Quality  string
}

// Reads generates n records.
func (r *RNG) Reads(n int, rs ReadSpec) []Read {
	rs = rs.withDefaults()
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Read, n)
	for i := range out {
		l := rs.MinLen + r.rand.Intn(rs.MaxLen-rs.MinLen+1)
		seq := make([]byte, l)
		qual := make([]byte, l)
		for j := range l {
			seq[j] = rs.Alphabet[r.rand.Intn(len(rs.Alphabet))]
			qual[j] = rs.QualityMin + byte(r.rand.Intn(int(rs.QualityMax-rs.QualityMin)+1))
		}
		id := fmt.Sprintf("@read%d", i+1)
		if rs.Description != "" {
			id += " " + rs.Description
		}
		sep := "+"
		if rs.RepeatID {
			sep += id[1:]
		}
		out[i] = Read{ID: id, Sequence: string(seq), Sep: sep, Quality: string(qual)}
	}
	return out
}

// Encode renders reads as FASTQ text.
func Encode(reads []Read, rs ReadSpec) []byte {
	nl := "\n"
	if rs.CRLF {
		nl = "\r\n"
	}
	var b bytes.Buffer
	for _, rd := range reads {
		b.WriteString(rd.ID)
		b.WriteString(nl)
		b.WriteString(rd.Sequence)
		b.WriteString(nl)
		b.WriteString(rd.Sep)
		b.WriteString(nl)
		b.WriteString(rd.Quality)
		b.WriteString(nl)
	}
	out := b.Bytes()
	if rs.OmitFinalNewline && len(out) > 0 {
		out = out[:len(out)-len(nl)]
	}
	return out
}

// FASTQ generates n records and encodes them.
func (r *RNG) FASTQ(n int, rs ReadSpec) []byte {
	return Encode(r.Reads(n, rs), rs)
}

// Corruption names a way to break one record.
type Corruption int

const (
	// BadIdentifier replaces the leading '@' with 'X'.
	BadIdentifier Corruption = iota
	// DropSeparator removes the separator line.
	DropSeparator
	// ShortQuality removes the last quality byte.
	ShortQuality
	// HighByte puts 0xFF in the middle of the sequence.
	HighByte
	// Truncate cuts the input in the middle of the record.
	Truncate
)

// Corrupt returns a copy of well-formed "\n"-terminated FASTQ data with
// record idx (0-based) broken in the given way.
func Corrupt(data []byte, c Corruption, idx int) []byte {
	lines := bytes.SplitAfter(bytes.Clone(data), []byte("\n"))
	base := 4 * idx
	if base+3 >= len(lines) {
		panic("testutil: record index out of range")
	}
	switch c {
	case BadIdentifier:
		lines[base][0] = 'X'
	case DropSeparator:
		lines[base+2] = nil
	case ShortQuality:
		q := lines[base+3]
		lines[base+3] = append(q[:len(q)-2:len(q)-2], '\n')
	case HighByte:
		lines[base+1][len(lines[base+1])/2] = 0xFF
	case Truncate:
		return bytes.Join(append(lines[:base+1], lines[base+1][:len(lines[base+1])/2]), nil)
	}
	return bytes.Join(lines, nil)
}
