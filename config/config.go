package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/formatter"
	"github.com/philipp01105/rlog/reporter"
)

// Config describes a logger and its reporters.
type Config struct {
	// Level is the threshold name: silent, fatal, error, warn, info, debug or trace
	Level string `mapstructure:"level"`
	// Caller captures file and line for every event
	Caller bool `mapstructure:"caller"`
	// CoarseClock trades timestamp precision for speed
	CoarseClock bool `mapstructure:"coarse_clock"`
	// Fields are attached to every event as string fields. From the
	// environment they are read as RLOG_FIELDS=k1=v1,k2=v2.
	Fields map[string]string `mapstructure:"-"`

	Console ConsoleConfig `mapstructure:"console"`
	File    FileConfig    `mapstructure:"file"`
	Zap     ZapConfig     `mapstructure:"zap"`
	Zerolog ZerologConfig `mapstructure:"zerolog"`
	Logrus  LogrusConfig  `mapstructure:"logrus"`
}

// ConsoleConfig configures the console reporter.
type ConsoleConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Format          string `mapstructure:"format"` // text or json
	Output          string `mapstructure:"output"` // stdout or stderr
	TimestampFormat string `mapstructure:"timestamp_format"`
	Async           bool   `mapstructure:"async"`
	BufferSize      int    `mapstructure:"buffer_size"`
	Overflow        string `mapstructure:"overflow"` // drop_newest, drop_oldest or block; empty keeps per-level defaults
}

// FileConfig configures the file reporter.
type FileConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Path           string        `mapstructure:"path"`
	Format         string        `mapstructure:"format"`
	Async          bool          `mapstructure:"async"`
	BufferSize     int           `mapstructure:"buffer_size"`
	Overflow       string        `mapstructure:"overflow"`
	MaxSizeMB      int           `mapstructure:"max_size_mb"`
	MaxAge         time.Duration `mapstructure:"max_age"`
	MaxBackups     int           `mapstructure:"max_backups"`
	RotateInterval time.Duration `mapstructure:"rotate_interval"`
}

// ZapConfig configures the zap reporter.
type ZapConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Console bool   `mapstructure:"console"` // zap console encoder instead of JSON
	Output  string `mapstructure:"output"`
}

// ZerologConfig configures the zerolog reporter.
type ZerologConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Console bool   `mapstructure:"console"` // zerolog.ConsoleWriter instead of JSON
	Output  string `mapstructure:"output"`
}

// LogrusConfig configures the logrus reporter.
type LogrusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Text    bool   `mapstructure:"text"` // logrus text formatter instead of JSON
	Output  string `mapstructure:"output"`
}

// Default returns the configuration used when nothing is set: info level,
// text to stdout.
func Default() Config {
	return Config{
		Level: "info",
		Console: ConsoleConfig{
			Enabled: true,
			Format:  "text",
			Output:  "stdout",
		},
		File: FileConfig{
			Format: "json",
		},
		Zap: ZapConfig{
			Output: "stdout",
		},
		Zerolog: ZerologConfig{
			Output: "stdout",
		},
		Logrus: LogrusConfig{
			Output: "stdout",
		},
	}
}

// NewDevelopment returns a configuration for local work: debug level,
// caller information and synchronous text output.
func NewDevelopment() Config {
	cfg := Default()
	cfg.Level = "debug"
	cfg.Caller = true
	return cfg
}

// NewProduction returns a configuration for services: info level and
// async JSON on stdout with the default per-level overflow policies.
func NewProduction() Config {
	cfg := Default()
	cfg.Console.Format = "json"
	cfg.Console.Async = true
	cfg.Console.BufferSize = 4096
	return cfg
}

// ParsedLevel returns the threshold as a core.Level.
func (c Config) ParsedLevel() (core.Level, error) {
	return core.ParseLevel(c.Level)
}

// Validate checks every setting and returns all problems at once.
func (c Config) Validate() error {
	var errs error

	if _, err := c.ParsedLevel(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("level: %w", err))
	}

	if c.Console.Enabled {
		errs = multierr.Append(errs, validateFormat("console.format", c.Console.Format))
		errs = multierr.Append(errs, validateOutput("console.output", c.Console.Output))
		errs = multierr.Append(errs, validateOverflow("console.overflow", c.Console.Overflow))
	}

	if c.File.Enabled {
		if strings.TrimSpace(c.File.Path) == "" {
			errs = multierr.Append(errs, errors.New("file.path: required when file output is enabled"))
		}
		errs = multierr.Append(errs, validateFormat("file.format", c.File.Format))
		errs = multierr.Append(errs, validateOverflow("file.overflow", c.File.Overflow))
		if c.File.MaxSizeMB < 0 || c.File.MaxBackups < 0 || c.File.MaxAge < 0 || c.File.RotateInterval < 0 {
			errs = multierr.Append(errs, errors.New("file: rotation limits must not be negative"))
		}
	}

	if c.Zap.Enabled {
		errs = multierr.Append(errs, validateOutput("zap.output", c.Zap.Output))
	}
	if c.Zerolog.Enabled {
		errs = multierr.Append(errs, validateOutput("zerolog.output", c.Zerolog.Output))
	}
	if c.Logrus.Enabled {
		errs = multierr.Append(errs, validateOutput("logrus.output", c.Logrus.Output))
	}

	return errs
}

func validateFormat(key, name string) error {
	if _, err := formatter.New(name, formatter.Config{}); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func validateOutput(key, name string) error {
	switch strings.ToLower(name) {
	case "", "stdout", "stderr":
		return nil
	default:
		return fmt.Errorf("%s: unknown output %q", key, name)
	}
}

func validateOverflow(key, name string) error {
	if _, err := reporter.ParseOverflowPolicy(name); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
