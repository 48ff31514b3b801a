package fastq

import (
	"fmt"
	"runtime"
)

// ParseConfig controls how strictly the Parser interprets its input.
// It is immutable once handed to NewParser.
type ParseConfig struct {
	// StrictMode turns every malformed record into an error. When false,
	// malformed identifiers and separators are skipped by resynchronizing to
	// the next '@' line and tolerable problems are flagged on the record.
	StrictMode bool `yaml:"strict_mode"`

	// AllowEmptyLines skips blank lines where an identifier is expected.
	AllowEmptyLines bool `yaml:"allow_empty_lines"`

	// ValidateQuality checks every quality byte against QualityEncoding.
	ValidateQuality bool `yaml:"validate_quality"`

	// QualityEncoding selects the accepted quality range.
	QualityEncoding QualityEncoding `yaml:"quality_encoding"`

	// MaxRecordSize bounds the encoded size of one record. 0 means unbounded.
	MaxRecordSize int `yaml:"max_record_size"`
}

// DefaultParseConfig returns the strict configuration.
func DefaultParseConfig() ParseConfig {
	return ParseConfig{
		StrictMode:      true,
		QualityEncoding: EncodingPhred33,
	}
}

// LenientParseConfig returns a configuration that recovers from malformed
// records and tolerates blank lines.
func LenientParseConfig() ParseConfig {
	return ParseConfig{
		StrictMode:      false,
		AllowEmptyLines: true,
		QualityEncoding: EncodingPhred33,
	}
}

// Validate reports the first invalid field.
func (c ParseConfig) Validate() error {
	if c.MaxRecordSize < 0 {
		return &ConfigError{Field: "MaxRecordSize", Reason: fmt.Sprintf("must be >= 0, got %d", c.MaxRecordSize)}
	}
	switch c.QualityEncoding {
	case EncodingPhred33, EncodingPhred64:
	case EncodingUnknown:
		if c.ValidateQuality {
			return &ConfigError{Field: "QualityEncoding", Reason: "required when ValidateQuality is set"}
		}
	default:
		return &ConfigError{Field: "QualityEncoding", Reason: fmt.Sprintf("unknown value %d", c.QualityEncoding)}
	}
	return nil
}

// ParallelConfig controls how the Coordinator splits and schedules work.
type ParallelConfig struct {
	// NumThreads is the worker count. 0 uses runtime.GOMAXPROCS(0).
	NumThreads int `yaml:"num_threads"`

	// ChunkSizeHint is the target chunk size in bytes. 0 creates one chunk
	// per worker.
	ChunkSizeHint int `yaml:"chunk_size_hint"`

	// Prefetch touches every page of a chunk before parsing it.
	Prefetch bool `yaml:"prefetch"`

	// PinThreads locks each worker goroutine to an OS thread and, on Linux,
	// pins that thread to one CPU.
	PinThreads bool `yaml:"pin_threads"`
}

// DefaultParallelConfig returns a configuration with one worker per CPU.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{}
}

// Validate reports the first invalid field.
func (c ParallelConfig) Validate() error {
	if c.NumThreads < 0 {
		return &ConfigError{Field: "NumThreads", Reason: fmt.Sprintf("must be >= 0, got %d", c.NumThreads)}
	}
	if c.ChunkSizeHint < 0 {
		return &ConfigError{Field: "ChunkSizeHint", Reason: fmt.Sprintf("must be >= 0, got %d", c.ChunkSizeHint)}
	}
	return nil
}

// threads resolves NumThreads.
func (c ParallelConfig) threads() int {
	if c.NumThreads > 0 {
		return c.NumThreads
	}
	return runtime.GOMAXPROCS(0)
}

// chunkCount returns the number of chunks for n input bytes, clamped to
// [1, n].
func (c ParallelConfig) chunkCount(n int) int {
	k := c.threads()
	if c.ChunkSizeHint > 0 {
		k = (n + c.ChunkSizeHint - 1) / c.ChunkSizeHint
	}
	return max(1, min(k, n))
}
