package fastq

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fastq/testutil"
)

func mustParser(t *testing.T, cfg ParseConfig) *Parser {
	t.Helper()
	p, err := NewParser(cfg)
	require.NoError(t, err)
	return p
}

func requireParseError(t *testing.T, err error) *ParseError {
	t.Helper()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	return pe
}

func TestParse(t *testing.T) {
	t.Run("TwoRecords", func(t *testing.T) {
		data := []byte("@r1 sample=a\nACGT\n+\nIIII\n@r2\nGG\n+r2\n#$\n")

		recs, err := Parse(data)
		require.NoError(t, err)
		require.Len(t, recs, 2)

		assert.Equal(t, "@r1 sample=a", string(recs[0].Identifier))
		assert.Equal(t, "r1", string(recs[0].ID()))
		assert.Equal(t, "sample=a", string(recs[0].Description()))
		assert.Equal(t, "ACGT", string(recs[0].Sequence))
		assert.Equal(t, "+", string(recs[0].Separator))
		assert.Equal(t, "IIII", string(recs[0].Quality))
		assert.Equal(t, "+r2", string(recs[1].Separator))
		assert.Equal(t, Flags(0), recs[1].Flags)
	})

	t.Run("Empty", func(t *testing.T) {
		recs, err := Parse(nil)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("NoFinalNewline", func(t *testing.T) {
		recs, err := Parse([]byte("@r1\nAC\n+\nII"))
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "II", string(recs[0].Quality))
	})

	t.Run("CRLF", func(t *testing.T) {
		recs, err := Parse([]byte("@r1\r\nAC\r\n+\r\nII\r\n@r2\r\nG\r\n+\r\nI\r\n"))
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "@r1", string(recs[0].Identifier))
		assert.Equal(t, "AC", string(recs[0].Sequence))
		assert.Equal(t, "II", string(recs[0].Quality))
	})

	t.Run("QualityStartingWithAt", func(t *testing.T) {
		recs, err := Parse([]byte("@r1\nAC\n+\n@I\n@r2\nG\n+\n@\n"))
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "@I", string(recs[0].Quality))
		assert.Equal(t, "@r2", string(recs[1].Identifier))
	})

	t.Run("OwnedRecordsDoNotAlias", func(t *testing.T) {
		data := []byte("@r1\nACGT\n+\nIIII\n")
		recs, err := Parse(data)
		require.NoError(t, err)

		copy(data, bytes.Repeat([]byte{'x'}, len(data)))
		assert.Equal(t, "ACGT", string(recs[0].Sequence))
	})
}

func TestParseRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(4711)
	data := rng.FASTQ(500, testutil.ReadSpec{MinLen: 1, MaxLen: 150, Description: "lane=1"})

	recs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, recs, 500)

	var out []byte
	for _, r := range recs {
		out = r.AppendTo(out)
	}
	assert.Equal(t, data, out)
}

func TestParseStrictErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		kind    ErrorKind
		target  error
		line    int
		column  int
		offset  int
		kept    int
		byteVal byte
	}{
		{
			name: "LengthMismatch", data: "@r1\nACG\n+\nIIII\n",
			kind: KindLengthMismatch, target: ErrLengthMismatch, line: 4, column: 4, offset: 10,
		},
		{
			name: "InvalidIdentifier", data: "@r1\nAC\n+\nII\nr2\nAC\n+\nII\n",
			kind: KindInvalidIdentifier, target: ErrInvalidIdentifier, line: 5, column: 1, offset: 12, kept: 1, byteVal: 'r',
		},
		{
			name: "InvalidSeparator", data: "@r1\nAC\n-\nII\n",
			kind: KindInvalidSeparator, target: ErrInvalidSeparator, line: 3, column: 1, offset: 7, byteVal: '-',
		},
		{
			name: "BlankLine", data: "@r1\nAC\n+\nII\n\n@r2\nAC\n+\nII\n",
			kind: KindInvalidIdentifier, target: ErrInvalidIdentifier, line: 5, column: 1, offset: 12, kept: 1,
		},
		{
			name: "NonASCIISequence", data: "@r1\nA\xffC\n+\nIII\n",
			kind: KindInvalidCharacter, target: ErrInvalidCharacter, line: 2, column: 2, offset: 4, byteVal: 0xFF,
		},
		{
			name: "NonASCIIQuality", data: "@r1\nACG\n+\nII\x80\n",
			kind: KindInvalidCharacter, target: ErrInvalidCharacter, line: 4, column: 3, offset: 10, byteVal: 0x80,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recs, err := Parse([]byte(tc.data))
			require.Error(t, err)
			assert.Len(t, recs, tc.kept)
			assert.ErrorIs(t, err, tc.target)
			assert.Equal(t, tc.kind, KindOf(err))

			pe := requireParseError(t, err)
			assert.Equal(t, tc.line, pe.Line)
			assert.Equal(t, tc.column, pe.Column)
			assert.Equal(t, tc.offset, pe.Offset)
			assert.Equal(t, tc.byteVal, pe.Byte)
		})
	}
}

func TestParseLengthMismatchDetails(t *testing.T) {
	_, err := Parse([]byte("@r1\nACG\n+\nIIII\n"))
	pe := requireParseError(t, err)

	assert.Equal(t, 3, pe.SeqLen)
	assert.Equal(t, 4, pe.QualLen)
	assert.Equal(t, 1, pe.Record)
	assert.Equal(t, StateReadingQuality, pe.State)
	assert.Equal(t, "line 4, column 4: sequence and quality length mismatch: sequence 3, quality 4", pe.Error())
}

func TestParseIncomplete(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		state ParserState
	}{
		{"AfterIdentifier", "@r1\n", StateReadingSequence},
		{"AfterSequence", "@r1\nAC\n", StateExpectingSeparator},
		{"AfterSeparator", "@r1\nAC\n+\n", StateReadingQuality},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, cfg := range []ParseConfig{DefaultParseConfig(), LenientParseConfig()} {
				_, err := mustParser(t, cfg).Parse([]byte(tc.data))
				require.ErrorIs(t, err, ErrIncompleteRecord)
				assert.Equal(t, tc.state, requireParseError(t, err).State)
			}
		})
	}
}

func TestParseLenient(t *testing.T) {
	p := mustParser(t, LenientParseConfig())

	t.Run("LengthMismatchFlagged", func(t *testing.T) {
		recs, err := p.Parse([]byte("@r1\nACG\n+\nIIII\n@r2\nAC\n+\nII\n"))
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.True(t, recs[0].Flags.Has(FlagLengthMismatch))
		assert.Equal(t, Flags(0), recs[1].Flags)
	})

	t.Run("SkipsJunkBeforeRecord", func(t *testing.T) {
		recs, err := p.Parse([]byte("junk\n@r1\nAC\n+\nII\n"))
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "@r1", string(recs[0].Identifier))
	})

	t.Run("InvalidSeparatorResyncs", func(t *testing.T) {
		recs, err := p.Parse([]byte("@r1\nAC\nXX\nII\n@r2\nAC\n+\nII\n"))
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "@r2", string(recs[0].Identifier))
	})

	t.Run("SeparatorIsNextIdentifier", func(t *testing.T) {
		recs, err := p.Parse([]byte("@r1\nAC\n@r2\nAC\n+\nII\n"))
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "@r2", string(recs[0].Identifier))
	})

	t.Run("BlankLines", func(t *testing.T) {
		recs, err := p.Parse([]byte("\n@r1\nAC\n+\nII\n\n\n@r2\nAC\n+\nII\n\n"))
		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})

	t.Run("NonASCIIAccepted", func(t *testing.T) {
		recs, err := p.Parse([]byte("@r1\nA\xffC\n+\nIII\n"))
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, Flags(0), recs[0].Flags)
	})
}

func TestParseValidateQuality(t *testing.T) {
	t.Run("Phred33", func(t *testing.T) {
		cfg := DefaultParseConfig()
		cfg.ValidateQuality = true

		_, err := mustParser(t, cfg).Parse([]byte("@r1\nACG\n+\nI I\n"))
		require.ErrorIs(t, err, ErrInvalidQuality)
		pe := requireParseError(t, err)
		assert.Equal(t, 2, pe.Column)
		assert.Equal(t, byte(' '), pe.Byte)
	})

	t.Run("Phred64", func(t *testing.T) {
		cfg := DefaultParseConfig()
		cfg.ValidateQuality = true
		cfg.QualityEncoding = EncodingPhred64
		p := mustParser(t, cfg)

		_, err := p.Parse([]byte("@r1\nAC\n+\nhh\n"))
		require.NoError(t, err)

		_, err = p.Parse([]byte("@r1\nAC\n+\nh#\n"))
		require.ErrorIs(t, err, ErrInvalidQuality)
	})

	t.Run("LenientFlags", func(t *testing.T) {
		cfg := LenientParseConfig()
		cfg.ValidateQuality = true

		recs, err := mustParser(t, cfg).Parse([]byte("@r1\nAC\n+\nI\x7f\n"))
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.True(t, recs[0].Flags.Has(FlagInvalidQuality))
	})
}

func TestParseMaxRecordSize(t *testing.T) {
	data := []byte("@r1\nAC\n+\nII\n@r2\nACGTACGT\n+\nIIIIIIII\n")

	for _, cfg := range []ParseConfig{DefaultParseConfig(), LenientParseConfig()} {
		cfg.MaxRecordSize = 16
		recs, err := mustParser(t, cfg).Parse(data)
		require.ErrorIs(t, err, ErrRecordTooLarge)
		assert.Len(t, recs, 1)
		assert.Equal(t, 2, requireParseError(t, err).Record)
	}
}

func TestParseZeroCopy(t *testing.T) {
	rng := testutil.NewRNG(7)
	data := rng.FASTQ(200, testutil.ReadSpec{MinLen: 20, MaxLen: 80})

	owned, err := Parse(data)
	require.NoError(t, err)
	views, err := ParseZeroCopy(data)
	require.NoError(t, err)
	require.Len(t, views, len(owned))

	for i := range views {
		assert.Equal(t, owned[i].View(), views[i])
	}

	// Views alias the input.
	first := views[0].Sequence[0]
	views[0].Sequence[0] = 'x'
	assert.Equal(t, byte('x'), data[len(views[0].Identifier)+1])
	assert.Equal(t, first, owned[0].Sequence[0])
}

func TestParseSingle(t *testing.T) {
	p := mustParser(t, DefaultParseConfig())
	data := []byte("@r1\nAC\n+\nII\n@r2\nG\n+\nI\n")

	rec, n, err := p.ParseSingle(data)
	require.NoError(t, err)
	assert.Equal(t, "@r1", string(rec.Identifier))
	assert.Equal(t, 12, n)

	rec, n, err = p.ParseSingle(data[n:])
	require.NoError(t, err)
	assert.Equal(t, "@r2", string(rec.Identifier))
	assert.Equal(t, 10, n)

	_, _, err = p.ParseSingle(nil)
	assert.ErrorIs(t, err, io.EOF)

	_, _, err = p.ParseSingle([]byte("@r1\nAC\n"))
	assert.ErrorIs(t, err, ErrIncompleteRecord)
}

func TestParserAll(t *testing.T) {
	p := mustParser(t, DefaultParseConfig())
	data := []byte("@r1\nAC\n+\nII\n@r2\nG\n+\nI\nbad\n")

	var ids []string
	var iterErr error
	for v, err := range p.All(data) {
		if err != nil {
			iterErr = err
			break
		}
		ids = append(ids, string(v.ID()))
	}
	assert.Equal(t, []string{"r1", "r2"}, ids)
	assert.ErrorIs(t, iterErr, ErrInvalidIdentifier)

	t.Run("EarlyBreak", func(t *testing.T) {
		count := 0
		for range p.All(data) {
			count++
			break
		}
		assert.Equal(t, 1, count)
	})
}

func TestNewParserInvalidConfig(t *testing.T) {
	_, err := NewParser(ParseConfig{MaxRecordSize: -1})
	require.ErrorIs(t, err, ErrInvalidConfig)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "MaxRecordSize", ce.Field)

	_, err = NewParser(ParseConfig{ValidateQuality: true})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewParser(ParseConfig{QualityEncoding: 9})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseErrorMessages(t *testing.T) {
	tests := []struct {
		err  *ParseError
		want string
	}{
		{&ParseError{Kind: KindInvalidIdentifier, Line: 5, Column: 1, Byte: 'r'}, "line 5, column 1: invalid identifier: expected '@', found 'r'"},
		{&ParseError{Kind: KindInvalidSeparator, Line: 3, Column: 1}, "line 3, column 1: invalid separator: expected '+', found end of line"},
		{&ParseError{Kind: KindInvalidCharacter, Line: 2, Column: 2, Byte: 0xFF}, "line 2, column 2: invalid character: 0xFF"},
		{&ParseError{Kind: KindIncompleteRecord}, "incomplete record"},
		{&ParseError{}, "kind(0)"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.err.Error())
	}

	assert.True(t, errors.Is(&ParseError{Kind: KindBufferOverflow}, ErrBufferOverflow))
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("other")))
}
