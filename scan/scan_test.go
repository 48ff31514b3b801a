package scan

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScannersAgree(t *testing.T) {
	data := bytes.Repeat([]byte("@r1\nACGTN\n+\nIIIII\n"), 13)
	data = append(data, 0xC3, 0xA9, '\n')

	for _, s := range []Scanner{SWAR, Vector} {
		t.Run(s.Name(), func(t *testing.T) {
			assert.Equal(t, Scalar.FindNewlines(data), s.FindNewlines(data))
			assert.Equal(t, Scalar.ValidateASCII(data), s.ValidateASCII(data))
			assert.Equal(t, Scalar.CountChars(data, '@'), s.CountChars(data, '@'))
			assert.Equal(t, Scalar.CountNucleotides(data), s.CountNucleotides(data))
			assert.Equal(t, Scalar.GCContent(data), s.GCContent(data))
		})
	}
	assert.Equal(t, Scalar.FindNewlines(data), FindNewlines(data))
}

func TestExampleCounts(t *testing.T) {
	seq := []byte("AACCGGTTN")
	assert.Equal(t, NucleotideCounts{A: 2, C: 2, G: 2, T: 2, N: 1}, CountNucleotides(seq))
	assert.InDelta(t, 44.444, GCContent(seq), 0.001)
	assert.Equal(t, 0.0, Scalar.GCContent(nil))
}

func TestActiveISAName(t *testing.T) {
	assert.Contains(t, []string{"generic", "swar", "vector"}, ActiveISA())
	assert.Equal(t, "generic", Scalar.Name())
}

func TestFindNewlinesEmpty(t *testing.T) {
	assert.Empty(t, FindNewlines(nil))
	assert.True(t, ValidateASCII(nil))
	assert.Equal(t, 0, CountChars(nil, 'A'))
	assert.Equal(t, -1, IndexByte(nil, 'A'))
}
