package fastq

import (
	"log/slog"

	"github.com/hupe1980/fastq/buffer"
	"github.com/hupe1980/fastq/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	progress         *Progress
	pool             *buffer.Pool
	controller       *resource.Controller
	arenaChunkSize   int
	blockSize        int
	skipMateCheck    bool
}

// Option configures Coordinator, StreamReader and pair reader behavior.
type Option func(*options)

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &fastq.BasicMetricsCollector{}
//	co, _ := fastq.NewCoordinator(pcfg, cfg, fastq.WithMetricsCollector(metrics))
//	// ... parse ...
//	stats := metrics.GetStats()
//	fmt.Printf("Records: %d, Avg parse: %dns\n", stats.RecordsParsed, stats.ParseAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
//	logger := fastq.NewJSONLogger(slog.LevelInfo)
//	co, _ := fastq.NewCoordinator(pcfg, cfg, fastq.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithProgress attaches a shared progress counter.
func WithProgress(p *Progress) Option {
	return func(o *options) {
		o.progress = p
	}
}

// WithBufferPool sets the pool that stream blocks and ring buffers are taken
// from. Pools may be shared between coordinators and readers.
func WithBufferPool(p *buffer.Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithMemoryLimit bounds the bytes of owned record data one call may hold.
// A chunk that cannot reserve memory within the limit fails with an error
// wrapping ErrMemoryLimitExceeded. 0 disables the limit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		if bytes <= 0 {
			o.controller = nil
			return
		}
		o.controller = resource.NewController(resource.Config{MemoryLimitBytes: bytes})
	}
}

// WithResourceController shares a resource controller, and so its memory
// budget, between several coordinators.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithArenaChunkSize sets the allocation unit used to materialize owned
// records.
func WithArenaChunkSize(n int) Option {
	return func(o *options) {
		o.arenaChunkSize = n
	}
}

// WithBlockSize sets the stream block (and ring buffer) size. It bounds the
// largest record a stream can hold.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

// WithoutMateCheck makes pair readers join records by position only, without
// comparing their mate identifiers.
func WithoutMateCheck() Option {
	return func(o *options) {
		o.skipMateCheck = true
	}
}

// ErrMemoryLimitExceeded is returned when owned output exceeds the budget
// set by WithMemoryLimit.
var ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.blockSize <= 0 {
		o.blockSize = buffer.DefaultBufferSize
	}
	if o.pool == nil {
		o.pool = buffer.NewPool(o.blockSize, buffer.DefaultMaxHeld)
	}
	return o
}
