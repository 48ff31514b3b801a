// Package config loads the fastq command line configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/fastq"
	"gopkg.in/yaml.v3"
)

// Config represents the fastq CLI configuration.
type Config struct {
	Parse    fastq.ParseConfig    `yaml:"parse"`
	Parallel fastq.ParallelConfig `yaml:"parallel"`
	Input    Input                `yaml:"input"`
	Logging  Logging              `yaml:"logging"`
	Metrics  Metrics              `yaml:"metrics"`
	S3       S3                   `yaml:"s3"`
	MinIO    MinIO                `yaml:"minio"`
	Ledger   Ledger               `yaml:"ledger"`
}

// Input controls how sources are opened.
type Input struct {
	// Stream parses with bounded memory instead of loading the input.
	Stream bool `yaml:"stream"`
	// BlockSize is the stream block size in bytes.
	BlockSize int `yaml:"block_size"`
	// MaxSize bounds decompressed input that is loaded into memory.
	MaxSize int64 `yaml:"max_size"`
	// MemoryLimit bounds owned record memory.
	MemoryLimit int64 `yaml:"memory_limit"`
	// IOLimit throttles reads in bytes per second.
	IOLimit int64 `yaml:"io_limit"`
	// NoMmap reads local files instead of mapping them.
	NoMmap bool `yaml:"no_mmap"`
}

// Logging contains logging configuration.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics configures the Prometheus textfile export.
type Metrics struct {
	File      string `yaml:"file"`
	Namespace string `yaml:"namespace"`
}

// S3 configures s3:// inputs.
type S3 struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// MinIO configures minio:// inputs.
type MinIO struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// Ledger configures the DynamoDB validation history. An empty Table
// disables it.
type Ledger struct {
	Table    string `yaml:"table"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Parse:    fastq.DefaultParseConfig(),
		Parallel: fastq.DefaultParallelConfig(),
		Input: Input{
			BlockSize: 1 << 20,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Metrics: Metrics{
			Namespace: "fastq",
		},
		MinIO: MinIO{
			Secure: true,
		},
	}
}

// Load reads the configuration at path. Fields absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		path = abs
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Credentials may be stored in the file.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Parse.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Parallel.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Input.BlockSize < 0 {
		errs = append(errs, fmt.Errorf("input.block_size must be >= 0, got %d", c.Input.BlockSize))
	}
	if c.Input.MaxSize < 0 || c.Input.MemoryLimit < 0 || c.Input.IOLimit < 0 {
		errs = append(errs, errors.New("input limits must be >= 0"))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// LogLevel parses Logging.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Logging.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// Logger builds the logger described by Logging.
func (c *Config) Logger() (*fastq.Logger, error) {
	level, err := c.LogLevel()
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(c.Logging.Format, "json") {
		return fastq.NewJSONLogger(level), nil
	}
	return fastq.NewTextLogger(level), nil
}
