package fastq

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see
// observability/prometheus for a Prometheus implementation.
type MetricsCollector interface {
	// RecordParse is called after each Coordinator call with the input
	// size, the records produced and the total time taken.
	RecordParse(bytes, records int, duration time.Duration, err error)

	// RecordChunk is called after each chunk or stream block.
	RecordChunk(bytes, records int, duration time.Duration, err error)

	// RecordViolation is called once per malformed record observed.
	RecordViolation(kind ErrorKind)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordParse(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordChunk(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordViolation(ErrorKind)                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ParseCount      atomic.Int64
	ParseErrors     atomic.Int64
	ParseTotalNanos atomic.Int64
	BytesParsed     atomic.Int64
	RecordsParsed   atomic.Int64
	ChunkCount      atomic.Int64
	ChunkErrors     atomic.Int64
	ChunkTotalNanos atomic.Int64
	Violations      atomic.Int64
}

// RecordParse implements MetricsCollector.
func (b *BasicMetricsCollector) RecordParse(bytes, records int, duration time.Duration, err error) {
	b.ParseCount.Add(1)
	b.ParseTotalNanos.Add(duration.Nanoseconds())
	b.BytesParsed.Add(int64(bytes))
	b.RecordsParsed.Add(int64(records))
	if err != nil {
		b.ParseErrors.Add(1)
	}
}

// RecordChunk implements MetricsCollector.
func (b *BasicMetricsCollector) RecordChunk(_, _ int, duration time.Duration, err error) {
	b.ChunkCount.Add(1)
	b.ChunkTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ChunkErrors.Add(1)
	}
}

// RecordViolation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordViolation(ErrorKind) {
	b.Violations.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ParseCount:     b.ParseCount.Load(),
		ParseErrors:    b.ParseErrors.Load(),
		ParseAvgNanos:  avg(b.ParseTotalNanos.Load(), b.ParseCount.Load()),
		BytesParsed:    b.BytesParsed.Load(),
		RecordsParsed:  b.RecordsParsed.Load(),
		ChunkCount:     b.ChunkCount.Load(),
		ChunkErrors:    b.ChunkErrors.Load(),
		ChunkAvgNanos:  avg(b.ChunkTotalNanos.Load(), b.ChunkCount.Load()),
		ViolationCount: b.Violations.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ParseCount     int64
	ParseErrors    int64
	ParseAvgNanos  int64
	BytesParsed    int64
	RecordsParsed  int64
	ChunkCount     int64
	ChunkErrors    int64
	ChunkAvgNanos  int64
	ViolationCount int64
}
