package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/formatter"
	"github.com/philipp01105/rlog/logger"
	"github.com/philipp01105/rlog/reporter"
	"github.com/philipp01105/rlog/reporter/consolereporter"
	"github.com/philipp01105/rlog/reporter/filereporter"
	"github.com/philipp01105/rlog/reporter/logrusreporter"
	"github.com/philipp01105/rlog/reporter/zapreporter"
	"github.com/philipp01105/rlog/reporter/zerologreporter"
)

// Option adjusts how Build wires reporters.
type Option func(*buildOptions)

type buildOptions struct {
	stdout       io.Writer
	stderr       io.Writer
	errorHandler logger.ErrorHandler
}

// WithStdout replaces os.Stdout as the "stdout" output.
func WithStdout(w io.Writer) Option {
	return func(o *buildOptions) { o.stdout = w }
}

// WithStderr replaces os.Stderr as the "stderr" output.
func WithStderr(w io.Writer) Option {
	return func(o *buildOptions) { o.stderr = w }
}

// WithErrorHandler sets the logger's reporter failure handler.
func WithErrorHandler(h logger.ErrorHandler) Option {
	return func(o *buildOptions) { o.errorHandler = h }
}

// Build validates cfg and returns a logger with the enabled reporters
// registered in the order console, file, zap, zerolog, logrus. Reporters
// created before a failure are closed.
func Build(cfg Config, opts ...Option) (*logger.Logger, error) {
	o := buildOptions{stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	level, _ := cfg.ParsedLevel()

	var reporters []logger.Reporter
	fail := func(err error) (*logger.Logger, error) {
		for _, r := range reporters {
			if c, ok := r.(io.Closer); ok {
				err = multierr.Append(err, c.Close())
			}
		}
		return nil, err
	}

	if cfg.Console.Enabled {
		f, _ := formatter.New(cfg.Console.Format, formatter.Config{
			IncludeCaller:   cfg.Caller,
			TimestampFormat: cfg.Console.TimestampFormat,
		})
		reporters = append(reporters, consolereporter.New(consolereporter.Config{
			Writer:         o.output(cfg.Console.Output),
			Formatter:      f,
			Async:          cfg.Console.Async,
			BufferSize:     cfg.Console.BufferSize,
			OverflowPolicy: overflowPolicy(cfg.Console.Overflow),
		}))
	}

	if cfg.File.Enabled {
		f, _ := formatter.New(cfg.File.Format, formatter.Config{IncludeCaller: cfg.Caller})
		fr, err := filereporter.New(filereporter.Config{
			Filename:       cfg.File.Path,
			Formatter:      f,
			Async:          cfg.File.Async,
			BufferSize:     cfg.File.BufferSize,
			OverflowPolicy: overflowPolicy(cfg.File.Overflow),
			MaxSize:        int64(cfg.File.MaxSizeMB) * 1024 * 1024,
			MaxAge:         cfg.File.MaxAge,
			MaxBackups:     cfg.File.MaxBackups,
			RotateInterval: cfg.File.RotateInterval,
		})
		if err != nil {
			return fail(err)
		}
		reporters = append(reporters, fr)
	}

	if cfg.Zap.Enabled {
		reporters = append(reporters, zapreporter.NewWithConfig(zapreporter.Config{
			Writer:  o.output(cfg.Zap.Output),
			Console: cfg.Zap.Console,
		}))
	}

	if cfg.Zerolog.Enabled {
		reporters = append(reporters, zerologreporter.NewWithConfig(zerologreporter.Config{
			Writer:  o.output(cfg.Zerolog.Output),
			Console: cfg.Zerolog.Console,
		}))
	}

	if cfg.Logrus.Enabled {
		reporters = append(reporters, logrusreporter.NewWithConfig(logrusreporter.Config{
			Writer: o.output(cfg.Logrus.Output),
			Text:   cfg.Logrus.Text,
		}))
	}

	b := logger.NewBuilder().
		WithLevel(level).
		WithCaller(cfg.Caller).
		WithReporter(reporters...).
		WithFields(fieldsOf(cfg.Fields)...)
	if cfg.CoarseClock {
		b = b.WithCoarseClock()
	}
	if o.errorHandler != nil {
		b = b.WithErrorHandler(o.errorHandler)
	}

	l, err := b.Build()
	if err != nil {
		return fail(err)
	}
	return l, nil
}

// MustBuild is like Build but panics on error.
func MustBuild(cfg Config, opts ...Option) *logger.Logger {
	l, err := Build(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

func (o buildOptions) output(name string) io.Writer {
	if strings.EqualFold(name, "stderr") {
		return o.stderr
	}
	return o.stdout
}

// overflowPolicy applies one policy to every level, or returns nil to
// keep reporter.DefaultLevelPolicy.
func overflowPolicy(name string) map[core.Level]reporter.OverflowPolicy {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	p, _ := reporter.ParseOverflowPolicy(name)
	out := make(map[core.Level]reporter.OverflowPolicy, len(core.AllLevels()))
	for _, l := range core.AllLevels() {
		out[l] = p
	}
	return out
}

// fieldsOf turns the configured fields into string fields sorted by key.
func fieldsOf(m map[string]string) []core.Field {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]core.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, logger.String(k, m[k]))
	}
	return fields
}
