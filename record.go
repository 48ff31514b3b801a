package fastq

import (
	"bytes"
)

// Flags marks problems tolerated in lenient mode.
type Flags uint8

const (
	// FlagLengthMismatch marks a record whose sequence and quality lengths differ.
	FlagLengthMismatch Flags = 1 << iota
	// FlagInvalidQuality marks a record with a quality byte outside the
	// configured encoding range.
	FlagInvalidQuality
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

func (f Flags) String() string {
	switch f {
	case 0:
		return "none"
	case FlagLengthMismatch:
		return "length-mismatch"
	case FlagInvalidQuality:
		return "invalid-quality"
	case FlagLengthMismatch | FlagInvalidQuality:
		return "length-mismatch|invalid-quality"
	default:
		return "unknown"
	}
}

// RecordView is a FASTQ record whose fields borrow from the parsed input.
// It is valid only while the input buffer is alive and unmodified.
//
// Identifier includes the leading '@' and Separator the leading '+'. Line
// terminators are not part of any field.
type RecordView struct {
	Identifier []byte
	Sequence   []byte
	Separator  []byte
	Quality    []byte
	Flags      Flags
}

// Record is an owned FASTQ record. Its fields never alias the parsed input.
type Record struct {
	Identifier []byte
	Sequence   []byte
	Separator  []byte
	Quality    []byte
	Flags      Flags
}

// ToOwned copies the view into a Record. Each field gets its own
// allocation.
func (v RecordView) ToOwned() Record {
	return Record{
		Identifier: bytes.Clone(v.Identifier),
		Sequence:   bytes.Clone(v.Sequence),
		Separator:  bytes.Clone(v.Separator),
		Quality:    bytes.Clone(v.Quality),
		Flags:      v.Flags,
	}
}

// View borrows the record's fields.
func (r Record) View() RecordView {
	return RecordView(r)
}

// ID returns the identifier without '@', up to the first space or tab.
func (v RecordView) ID() []byte {
	id := v.Identifier
	if len(id) > 0 && id[0] == '@' {
		id = id[1:]
	}
	if i := bytes.IndexAny(id, " \t"); i >= 0 {
		return id[:i]
	}
	return id
}

// MateID returns ID up to the first '/', the part both mates of a read pair
// share ("r1/1" and "r1/2" both give "r1").
func (v RecordView) MateID() []byte {
	id := v.ID()
	if i := bytes.IndexByte(id, '/'); i >= 0 {
		return id[:i]
	}
	return id
}

// Description returns the identifier text after the first space or tab, or
// nil when there is none.
func (v RecordView) Description() []byte {
	if i := bytes.IndexAny(v.Identifier, " \t"); i >= 0 {
		return v.Identifier[i+1:]
	}
	return nil
}

// Len returns the sequence length.
func (v RecordView) Len() int { return len(v.Sequence) }

// Validate checks that sequence and quality lengths match, every base is one
// of ACGTN (either case) and every quality byte is printable ('!'..'~').
func (v RecordView) Validate() error {
	if len(v.Sequence) != len(v.Quality) {
		return &ParseError{
			Kind:    KindLengthMismatch,
			SeqLen:  len(v.Sequence),
			QualLen: len(v.Quality),
		}
	}
	for i, b := range v.Sequence {
		switch b {
		case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n':
		default:
			return &ParseError{Kind: KindInvalidCharacter, Column: i + 1, Byte: b}
		}
	}
	for i, q := range v.Quality {
		if q < '!' || q > '~' {
			return &ParseError{Kind: KindInvalidQuality, Column: i + 1, Byte: q}
		}
	}
	return nil
}

// Encoding guesses the quality encoding from the observed byte range.
func (v RecordView) Encoding() QualityEncoding {
	return DetectEncoding(v.Quality)
}

// PhredScores decodes the quality line using the detected encoding. An
// Unknown encoding decodes to all zeros.
func (v RecordView) PhredScores() []uint8 {
	enc := v.Encoding()
	scores := make([]uint8, len(v.Quality))
	if enc == EncodingUnknown {
		return scores
	}
	off := enc.Offset()
	for i, q := range v.Quality {
		if q > off {
			scores[i] = q - off
		}
	}
	return scores
}

// MeanQuality returns the mean Phred score, 0 for an empty record.
func (v RecordView) MeanQuality() float64 {
	scores := v.PhredScores()
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += int(s)
	}
	return float64(sum) / float64(len(scores))
}

// AppendTo appends the four-line encoding of the record, each line ending
// in '\n'.
func (v RecordView) AppendTo(dst []byte) []byte {
	dst = append(dst, v.Identifier...)
	dst = append(dst, '\n')
	dst = append(dst, v.Sequence...)
	dst = append(dst, '\n')
	dst = append(dst, v.Separator...)
	dst = append(dst, '\n')
	dst = append(dst, v.Quality...)
	return append(dst, '\n')
}

// EncodedLen returns len(v.AppendTo(nil)).
func (v RecordView) EncodedLen() int {
	return len(v.Identifier) + len(v.Sequence) + len(v.Separator) + len(v.Quality) + 4
}

func (v RecordView) String() string {
	b := v.AppendTo(make([]byte, 0, v.EncodedLen()))
	return string(b[:len(b)-1])
}

// ID returns the identifier without '@', up to the first space or tab.
func (r Record) ID() []byte { return r.View().ID() }

// MateID returns ID up to the first '/'.
func (r Record) MateID() []byte { return r.View().MateID() }

// Description returns the identifier text after the first space or tab.
func (r Record) Description() []byte { return r.View().Description() }

// Len returns the sequence length.
func (r Record) Len() int { return len(r.Sequence) }

// Validate checks bases, quality bytes and lengths. See RecordView.Validate.
func (r Record) Validate() error { return r.View().Validate() }

// Encoding guesses the quality encoding.
func (r Record) Encoding() QualityEncoding { return r.View().Encoding() }

// PhredScores decodes the quality line.
func (r Record) PhredScores() []uint8 { return r.View().PhredScores() }

// MeanQuality returns the mean Phred score.
func (r Record) MeanQuality() float64 { return r.View().MeanQuality() }

// AppendTo appends the four-line encoding of the record.
func (r Record) AppendTo(dst []byte) []byte { return r.View().AppendTo(dst) }

func (r Record) String() string { return r.View().String() }

// QualityEncoding is the ASCII offset scheme of a quality line.
type QualityEncoding uint8

const (
	// EncodingUnknown means the range is not valid for either scheme.
	EncodingUnknown QualityEncoding = iota
	// EncodingPhred33 is Sanger / Illumina 1.8+ ('!' = Q0).
	EncodingPhred33
	// EncodingPhred64 is Illumina 1.3 to 1.7 ('@' = Q0).
	EncodingPhred64
)

// Offset returns the ASCII value of Q0. Unknown uses the Phred33 offset.
func (e QualityEncoding) Offset() byte {
	if e == EncodingPhred64 {
		return 64
	}
	return 33
}

// Range returns the inclusive byte range accepted by quality validation.
func (e QualityEncoding) Range() (lo, hi byte) {
	if e == EncodingPhred64 {
		return '@', '~'
	}
	return '!', '~'
}

func (e QualityEncoding) String() string {
	switch e {
	case EncodingPhred33:
		return "phred33"
	case EncodingPhred64:
		return "phred64"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e QualityEncoding) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *QualityEncoding) UnmarshalText(text []byte) error {
	switch string(bytes.ToLower(text)) {
	case "phred33", "sanger", "":
		*e = EncodingPhred33
	case "phred64", "illumina":
		*e = EncodingPhred64
	default:
		return &ConfigError{Field: "QualityEncoding", Reason: "unknown encoding " + string(text)}
	}
	return nil
}

// DetectEncoding classifies a quality line by its minimum and maximum bytes.
// Anything below ';' is only possible in Phred33; a line entirely at or
// above '@' that reaches past 'h' is taken as Phred64.
func DetectEncoding(qual []byte) QualityEncoding {
	if len(qual) == 0 {
		return EncodingPhred33
	}
	lo, hi := qual[0], qual[0]
	for _, q := range qual[1:] {
		lo = min(lo, q)
		hi = max(hi, q)
	}
	switch {
	case lo < '!' || hi > '~':
		return EncodingUnknown
	case lo < ';':
		return EncodingPhred33
	case lo >= '@' && hi > 'h':
		return EncodingPhred64
	default:
		return EncodingPhred33
	}
}
