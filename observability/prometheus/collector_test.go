package prometheus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/fastq"
	"github.com/hupe1980/fastq/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg, "fastq")
	require.NoError(t, err)

	_, err = NewCollector(reg, "fastq")
	require.Error(t, err, "duplicate registration must fail")

	assert.Panics(t, func() { MustNewCollector(reg, "fastq") })
}

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := MustNewCollector(reg, "fastq")

	c.RecordParse(1000, 10, time.Millisecond, nil)
	c.RecordParse(500, 4, time.Millisecond, errors.New("boom"))
	c.RecordChunk(250, 3, time.Microsecond, nil)
	c.RecordViolation(fastq.KindLengthMismatch)
	c.RecordViolation(fastq.KindLengthMismatch)
	c.RecordViolation(fastq.KindInvalidIdentifier)

	assert.InDelta(t, 1500, promtest.ToFloat64(c.parseBytes), 0)
	assert.InDelta(t, 14, promtest.ToFloat64(c.records), 0)
	assert.InDelta(t, 2, promtest.ToFloat64(c.violations.WithLabelValues("length-mismatch")), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(c.violations.WithLabelValues("invalid-identifier")), 0)
	assert.Equal(t, 2, promtest.CollectAndCount(c.parseLatency), "one series per status")
	assert.Equal(t, 1, promtest.CollectAndCount(c.chunkLatency))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fastq_parse_duration_seconds")
	assert.Contains(t, names, "fastq_violations_total")
	assert.Contains(t, names, "fastq_chunk_size_bytes")
}

func TestCollector_WithCoordinator(t *testing.T) {
	c := MustNewCollector(prometheus.NewRegistry(), "")
	data := testutil.NewRNG(7).FASTQ(200, testutil.ReadSpec{MinLen: 50, MaxLen: 150})

	co, err := fastq.NewCoordinator(
		fastq.ParallelConfig{NumThreads: 4},
		fastq.DefaultParseConfig(),
		fastq.WithMetricsCollector(c),
	)
	require.NoError(t, err)

	records, err := co.Parse(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, records, 200)

	assert.InDelta(t, 200, promtest.ToFloat64(c.records), 0)
	assert.InDelta(t, float64(len(data)), promtest.ToFloat64(c.parseBytes), 0)
	assert.Equal(t, 0, promtest.CollectAndCount(c.violations))
}
