package fastq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fastq/testutil"
)

const damaged = "@r1\nAC\n+\nII\n" +
	"bad\n" +
	"@r2\nACG\n+\nII\n" +
	"@r3\nA\xffA\n+\nIII\n" +
	"@r4\nAC\n+\nII\n"

func kinds(errs []error) []ErrorKind {
	out := make([]ErrorKind, len(errs))
	for i, err := range errs {
		out[i] = KindOf(err)
	}
	return out
}

func ids(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = string(r.ID())
	}
	return out
}

func TestParseWithRecovery(t *testing.T) {
	t.Run("Strict", func(t *testing.T) {
		res := mustParser(t, DefaultParseConfig()).ParseWithRecovery([]byte(damaged))

		assert.False(t, res.OK())
		assert.Equal(t, []string{"r1", "r4"}, ids(res.Records))
		assert.Equal(t, []ErrorKind{KindInvalidIdentifier, KindLengthMismatch, KindInvalidCharacter}, kinds(res.Errors))
		assert.True(t, res.Flagged.IsEmpty())

		pe := requireParseError(t, res.Errors[0])
		assert.Equal(t, 5, pe.Line)
		assert.Equal(t, 12, pe.Offset)
	})

	t.Run("Lenient", func(t *testing.T) {
		res := mustParser(t, LenientParseConfig()).ParseWithRecovery([]byte(damaged))

		assert.Equal(t, []string{"r1", "r2", "r3", "r4"}, ids(res.Records))
		assert.Equal(t, []ErrorKind{KindInvalidIdentifier, KindLengthMismatch}, kinds(res.Errors))
		assert.Equal(t, []uint32{1}, res.Flagged.ToArray())

		flagged := res.FlaggedRecords()
		require.Len(t, flagged, 1)
		assert.Equal(t, "r2", string(flagged[0].ID()))
		assert.True(t, flagged[0].Flags.Has(FlagLengthMismatch))
	})

	t.Run("Truncated", func(t *testing.T) {
		res := mustParser(t, DefaultParseConfig()).ParseWithRecovery([]byte("@r1\nAC\n+\nII\n@r2\nAC\n"))

		assert.Equal(t, []string{"r1"}, ids(res.Records))
		assert.Equal(t, []ErrorKind{KindIncompleteRecord}, kinds(res.Errors))
	})

	t.Run("RecordTooLargeDropped", func(t *testing.T) {
		cfg := LenientParseConfig()
		cfg.MaxRecordSize = 16
		res := mustParser(t, cfg).ParseWithRecovery([]byte("@r1\nACGTACGT\n+\nIIIIIIII\n@r2\nAC\n+\nII\n"))

		assert.Equal(t, []string{"r2"}, ids(res.Records))
		assert.Equal(t, []ErrorKind{KindRecordTooLarge}, kinds(res.Errors))
	})

	t.Run("Clean", func(t *testing.T) {
		data := testutil.NewRNG(1).FASTQ(100, testutil.ReadSpec{MinLen: 10, MaxLen: 50})
		res := mustParser(t, DefaultParseConfig()).ParseWithRecovery(data)

		assert.True(t, res.OK())
		assert.Len(t, res.Records, 100)
		assert.Empty(t, res.FlaggedRecords())
	})

	t.Run("MatchesParseOnCleanInput", func(t *testing.T) {
		data := testutil.NewRNG(2).FASTQ(50, testutil.ReadSpec{MinLen: 1, MaxLen: 30})
		p := mustParser(t, DefaultParseConfig())

		want, err := p.Parse(data)
		require.NoError(t, err)
		assert.Equal(t, want, p.ParseWithRecovery(data).Records)
	})
}
