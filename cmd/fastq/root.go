package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/fastq"
	"github.com/hupe1980/fastq/internal/config"
	"github.com/hupe1980/fastq/ledger"
	fastqprom "github.com/hupe1980/fastq/observability/prometheus"
	"github.com/hupe1980/fastq/resource"
)

// flags holds the persistent command line flags. Flags that were set
// explicitly override the configuration file.
type flags struct {
	configPath  string
	logLevel    string
	logFormat   string
	threads     int
	lenient     bool
	stream      bool
	metricsFile string
	ioLimit     int64
	memoryLimit int64
	output      string
}

// app is the state shared by all subcommands.
type app struct {
	flags flags
	stdin io.Reader

	cfg        *config.Config
	logger     *fastq.Logger
	registry   *prometheus.Registry
	metrics    *fastqprom.Collector
	controller *resource.Controller
}

// openLedger connects to the configured validation ledger.
var openLedger = func(ctx context.Context, cfg config.Ledger) (*ledger.Ledger, error) {
	return ledger.Open(ctx, cfg.Table, cfg.Region, cfg.Endpoint)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "fastq",
		Short: "fastq - parallel FASTQ parser",
		Long: `Inspect and validate FASTQ files with a parallel, zero-copy parser.

Inputs may be local files (plain, gzip, zstd or lz4), "-" for stdin,
s3://bucket/key or minio://bucket/key.

Examples:
  fastq stats reads.fq.gz
  fastq validate --lenient s3://runs/sample1.fq.zst
  fastq count --stream - < reads.fq`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "path to a YAML configuration file")
	pf.StringVar(&a.flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&a.flags.logFormat, "log-format", "text", "log format (text or json)")
	pf.IntVarP(&a.flags.threads, "threads", "t", 0, "worker threads (0 = one per CPU)")
	pf.BoolVar(&a.flags.lenient, "lenient", false, "recover from malformed records instead of failing")
	pf.BoolVar(&a.flags.stream, "stream", false, "parse in constant memory instead of loading the input")
	pf.StringVar(&a.flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	pf.Int64Var(&a.flags.ioLimit, "io-limit", 0, "input throughput limit in bytes per second (0 = unlimited)")
	pf.Int64Var(&a.flags.memoryLimit, "memory-limit", 0, "memory budget for loaded input and records in bytes (0 = unlimited)")
	pf.StringVarP(&a.flags.output, "output", "o", "table", "output format (table or json)")

	root.AddCommand(
		newStatsCmd(a),
		newValidateCmd(a),
		newCountCmd(a),
		newPairsCmd(a),
		newChunksCmd(a),
		newListCmd(a),
		newHistoryCmd(a),
		newCPUCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.flags.configPath != "" {
		var err error
		if cfg, err = config.Load(a.flags.configPath); err != nil {
			return err
		}
	}

	fs := cmd.Flags()
	if fs.Changed("log-level") {
		cfg.Logging.Level = a.flags.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Logging.Format = a.flags.logFormat
	}
	if fs.Changed("threads") {
		cfg.Parallel.NumThreads = a.flags.threads
	}
	if a.flags.lenient {
		cfg.Parse.StrictMode = false
		cfg.Parse.AllowEmptyLines = true
	}
	if a.flags.stream {
		cfg.Input.Stream = true
	}
	if fs.Changed("metrics-file") {
		cfg.Metrics.File = a.flags.metricsFile
	}
	if fs.Changed("io-limit") {
		cfg.Input.IOLimit = a.flags.ioLimit
	}
	if fs.Changed("memory-limit") {
		cfg.Input.MemoryLimit = a.flags.memoryLimit
	}
	switch a.flags.output {
	case "table", "json":
	default:
		return fmt.Errorf("unknown output format %q", a.flags.output)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	metrics, err := fastqprom.NewCollector(a.registry, cfg.Metrics.Namespace)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	a.cfg = cfg
	a.stdin = cmd.InOrStdin()
	a.logger = logger
	a.metrics = metrics
	a.controller = resource.NewController(resource.Config{
		MemoryLimitBytes:   cfg.Input.MemoryLimit,
		IOLimitBytesPerSec: cfg.Input.IOLimit,
	})
	return nil
}

// coordinator builds a Coordinator logging under the input name.
func (a *app) coordinator(name string, optFns ...fastq.Option) (*fastq.Coordinator, error) {
	opts := append([]fastq.Option{
		fastq.WithLogger(a.logger.WithSource(name)),
		fastq.WithMetricsCollector(a.metrics),
		fastq.WithResourceController(a.controller),
		fastq.WithBlockSize(a.cfg.Input.BlockSize),
	}, optFns...)
	return fastq.NewCoordinator(a.cfg.Parallel, a.cfg.Parse, opts...)
}

// ledger returns the validation ledger, or nil when none is configured.
func (a *app) ledger(ctx context.Context) (*ledger.Ledger, error) {
	if a.cfg.Ledger.Table == "" {
		return nil, nil
	}
	return openLedger(ctx, a.cfg.Ledger)
}

// finish writes the metrics file, if one is configured, and joins its error
// with the command result.
func (a *app) finish(err error) error {
	if a.cfg == nil || a.cfg.Metrics.File == "" {
		return err
	}
	if werr := prometheus.WriteToTextfile(a.cfg.Metrics.File, a.registry); werr != nil {
		return errors.Join(err, fmt.Errorf("failed to write metrics: %w", werr))
	}
	return err
}
