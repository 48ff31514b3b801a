package prometheus

import (
	"time"

	"github.com/hupe1980/fastq"
	"github.com/prometheus/client_golang/prometheus"
)

var _ fastq.MetricsCollector = (*Collector)(nil)

// Collector implements fastq.MetricsCollector on Prometheus metrics.
type Collector struct {
	parseLatency *prometheus.HistogramVec
	parseBytes   prometheus.Counter
	records      prometheus.Counter
	chunkLatency *prometheus.HistogramVec
	chunkBytes   prometheus.Histogram
	violations   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
// An empty namespace leaves metric names unprefixed.
func NewCollector(reg prometheus.Registerer, namespace string) (*Collector, error) {
	c := &Collector{
		parseLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Latency of whole-input parses",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		parseBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parsed_bytes_total",
			Help:      "Total input bytes handed to the parser",
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Total records produced",
		}),
		chunkLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_duration_seconds",
			Help:      "Latency of single chunk or stream block parses",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"status"}),
		chunkBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_size_bytes",
			Help:      "Size of parsed chunks",
			Buckets:   prometheus.ExponentialBuckets(4096, 4, 10),
		}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Malformed records observed, by kind",
		}, []string{"kind"}),
	}

	for _, m := range []prometheus.Collector{
		c.parseLatency, c.parseBytes, c.records,
		c.chunkLatency, c.chunkBytes, c.violations,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// MustNewCollector is like NewCollector but panics on registration errors.
func MustNewCollector(reg prometheus.Registerer, namespace string) *Collector {
	c, err := NewCollector(reg, namespace)
	if err != nil {
		panic(err)
	}
	return c
}

// RecordParse implements fastq.MetricsCollector.
func (c *Collector) RecordParse(bytes, records int, d time.Duration, err error) {
	c.parseLatency.WithLabelValues(status(err)).Observe(d.Seconds())
	c.parseBytes.Add(float64(bytes))
	c.records.Add(float64(records))
}

// RecordChunk implements fastq.MetricsCollector.
func (c *Collector) RecordChunk(bytes, _ int, d time.Duration, err error) {
	c.chunkLatency.WithLabelValues(status(err)).Observe(d.Seconds())
	c.chunkBytes.Observe(float64(bytes))
}

// RecordViolation implements fastq.MetricsCollector.
func (c *Collector) RecordViolation(kind fastq.ErrorKind) {
	c.violations.WithLabelValues(kind.String()).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
