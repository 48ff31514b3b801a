package testutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReads(t *testing.T) {
	rng := NewRNG(4711)
	reads := rng.Reads(50, ReadSpec{MinLen: 10, MaxLen: 20})

	require.Len(t, reads, 50)
	for _, rd := range reads {
		assert.Equal(t, byte('@'), rd.ID[0])
		assert.Equal(t, "+", rd.Sep)
		assert.Len(t, rd.Quality, len(rd.Sequence))
		assert.GreaterOrEqual(t, len(rd.Sequence), 10)
		assert.LessOrEqual(t, len(rd.Sequence), 20)
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	a := rng.FASTQ(5, ReadSpec{MinLen: 8})

	rng.Reset()
	b := rng.FASTQ(5, ReadSpec{MinLen: 8})

	assert.Equal(t, a, b)
}

func TestEncodeOptions(t *testing.T) {
	reads := []Read{{ID: "@r1", Sequence: "AC", Sep: "+", Quality: "II"}}

	assert.Equal(t, "@r1\nAC\n+\nII\n", string(Encode(reads, ReadSpec{})))
	assert.Equal(t, "@r1\r\nAC\r\n+\r\nII\r\n", string(Encode(reads, ReadSpec{CRLF: true})))
	assert.Equal(t, "@r1\nAC\n+\nII", string(Encode(reads, ReadSpec{OmitFinalNewline: true})))
}

func TestCorrupt(t *testing.T) {
	data := []byte("@r1\nACGT\n+\nIIII\n@r2\nACGT\n+\nIIII\n")

	assert.Equal(t, "@r1\nACGT\n+\nIIII\nXr2\nACGT\n+\nIIII\n", string(Corrupt(data, BadIdentifier, 1)))
	assert.Equal(t, "@r1\nACGT\nIIII\n@r2\nACGT\n+\nIIII\n", string(Corrupt(data, DropSeparator, 0)))
	assert.Equal(t, "@r1\nACGT\n+\nIII\n@r2\nACGT\n+\nIIII\n", string(Corrupt(data, ShortQuality, 0)))
	assert.Equal(t, "@r1\nACGT\n+\nIIII\n@r2\nAC", string(Corrupt(data, Truncate, 1)))

	high := Corrupt(data, HighByte, 0)
	assert.Equal(t, 1, bytes.Count(high, []byte{0xFF}))

	assert.Equal(t, "@r1\nACGT\n+\nIIII\n@r2\nACGT\n+\nIIII\n", string(data), "input is not modified")
	assert.Panics(t, func() { Corrupt(data, BadIdentifier, 2) })
}
