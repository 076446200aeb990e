package logger

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xclock"
	"go.uber.org/multierr"

	"github.com/philipp01105/rlog/core"
)

// defaultCallerSkip skips GetCaller, the log method, the emit table
// entry and the public method to land on the call site.
const defaultCallerSkip = 4

// EmitFunc logs a plain message at a fixed level.
type EmitFunc func(msg string, args ...any)

// EmitwFunc logs a structured message at a fixed level.
type EmitwFunc func(msg string, fields ...core.Field)

// shared is the part of a Logger that children created by With share
// with their parent: threshold, registry and counters.
type shared struct {
	level         atomic.Int32
	registry      registry
	stats         *Stats
	clock         func() time.Time
	errHandler    ErrorHandler
	includeCaller bool
	callerSkip    int
}

// Logger dispatches log objects to its registered reporters
type Logger struct {
	*shared
	fields []core.Field

	// Fixed level -> emit bindings, built once per Logger.
	plain      [core.NumLevels]EmitFunc
	structured [core.NumLevels]EmitwFunc
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	level         core.Level
	reporters     []Reporter
	fields        []core.Field
	includeCaller bool
	callerSkip    int
	clock         func() time.Time
	errHandler    ErrorHandler
}

// NewBuilder creates a new logger builder
func NewBuilder() *Builder {
	return &Builder{
		level:      core.InfoLevel,
		callerSkip: defaultCallerSkip,
	}
}

// WithLevel sets the threshold
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.level = level
	return b
}

// WithReporter registers reporters in the given order when the logger
// is built.
func (b *Builder) WithReporter(reporters ...Reporter) *Builder {
	b.reporters = append(b.reporters, reporters...)
	return b
}

// WithFields adds context fields to every log object
func (b *Builder) WithFields(fields ...core.Field) *Builder {
	b.fields = append(b.fields, fields...)
	return b
}

// WithCaller enables caller information
func (b *Builder) WithCaller(enabled bool) *Builder {
	b.includeCaller = enabled
	return b
}

// WithCallerSkip adds extra frames to skip, for wrappers around Logger.
func (b *Builder) WithCallerSkip(skip int) *Builder {
	b.callerSkip = defaultCallerSkip + skip
	return b
}

// WithClock sets the timestamp source. The default is xclock.Now, so a
// frozen xclock default makes timestamps deterministic.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// WithCoarseClock uses core.CoarseNow for timestamps.
func (b *Builder) WithCoarseClock() *Builder {
	core.StartCoarseClock()
	b.clock = core.CoarseNow
	return b
}

// WithErrorHandler sets the side channel for reporter failures. The
// default writes them to stderr.
func (b *Builder) WithErrorHandler(h ErrorHandler) *Builder {
	b.errHandler = h
	return b
}

// Build creates the Logger instance and registers the configured
// reporters in order.
func (b *Builder) Build() (*Logger, error) {
	if !b.level.Valid() {
		return nil, fmt.Errorf("build logger: %w: %d", core.ErrInvalidLevel, int(b.level))
	}

	s := &shared{
		stats:         newStats(),
		clock:         b.clock,
		errHandler:    b.errHandler,
		includeCaller: b.includeCaller,
		callerSkip:    b.callerSkip,
	}
	if s.clock == nil {
		s.clock = func() time.Time { return xclock.Now() }
	}
	if s.errHandler == nil {
		s.errHandler = StderrErrorHandler
	}
	s.level.Store(int32(b.level))

	l := newLogger(s, b.fields)
	for _, r := range b.reporters {
		l.AddReporter(r)
	}
	return l, nil
}

// MustBuild is like Build but panics on an invalid configuration.
func (b *Builder) MustBuild() *Logger {
	l, err := b.Build()
	if err != nil {
		panic(err)
	}
	return l
}

// New returns a Logger at InfoLevel with no reporters.
func New() *Logger {
	return NewBuilder().MustBuild()
}

func newLogger(s *shared, fields []core.Field) *Logger {
	l := &Logger{shared: s}
	if len(fields) > 0 {
		l.fields = make([]core.Field, len(fields))
		copy(l.fields, fields)
	}
	for _, level := range core.AllLevels() {
		l.plain[level] = func(msg string, args ...any) {
			l.logPlain(level, msg, args)
		}
		l.structured[level] = func(msg string, fields ...core.Field) {
			l.logStructured(level, msg, fields)
		}
	}
	return l
}

// With creates a child Logger carrying additional context fields. The
// child shares threshold, registry and stats with l.
func (l *Logger) With(fields ...core.Field) *Logger {
	merged := make([]core.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return newLogger(l.shared, merged)
}

// SetLevel replaces the threshold for all subsequent calls
func (l *Logger) SetLevel(level core.Level) error {
	if !level.Valid() {
		return fmt.Errorf("set level: %w: %d", core.ErrInvalidLevel, int(level))
	}
	l.level.Store(int32(level))
	return nil
}

// Level returns the current threshold
func (l *Logger) Level() core.Level {
	return core.Level(l.level.Load())
}

// Enabled reports whether an event at level would be dispatched.
func (l *Logger) Enabled(level core.Level) bool {
	return core.Admits(l.Level(), level)
}

// AddReporter initializes r with l and appends it to the registry.
// Duplicates are kept. Dispatches already in progress do not see r.
func (l *Logger) AddReporter(r Reporter) {
	if r == nil {
		return
	}
	// Init happens before r is published so no Write can precede it.
	r.Init(l)
	l.registry.add(r)
}

// RemoveReporter removes the first registration of r. It reports
// whether a registration was found. Once it returns, r receives no
// further writes, including from dispatches already in progress.
func (l *Logger) RemoveReporter(r Reporter) bool {
	if r == nil {
		return false
	}
	return l.registry.remove(r)
}

// Reporters returns the registered reporters in registration order.
func (l *Logger) Reporters() []Reporter {
	return l.registry.reporters()
}

// Stats returns a snapshot of dispatch counters.
func (l *Logger) Stats() Snapshot {
	return l.stats.GetSnapshot()
}

// Emitter returns the plain emit function bound to level.
func (l *Logger) Emitter(level core.Level) (EmitFunc, error) {
	if !level.Emittable() {
		return nil, fmt.Errorf("emitter: %w: %d", core.ErrInvalidLevel, int(level))
	}
	f := l.plain[level]
	return func(msg string, args ...any) { f(msg, args...) }, nil
}

// EmitterByName returns the plain emit function for a level name.
func (l *Logger) EmitterByName(name string) (EmitFunc, error) {
	level, err := core.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return l.Emitter(level)
}

// StructuredEmitter returns the structured emit function bound to level.
func (l *Logger) StructuredEmitter(level core.Level) (EmitwFunc, error) {
	if !level.Emittable() {
		return nil, fmt.Errorf("emitter: %w: %d", core.ErrInvalidLevel, int(level))
	}
	f := l.structured[level]
	return func(msg string, fields ...core.Field) { f(msg, fields...) }, nil
}

// Log logs a plain message at a dynamic level.
func (l *Logger) Log(level core.Level, msg string, args ...any) error {
	if !level.Emittable() {
		return fmt.Errorf("log: %w: %d", core.ErrInvalidLevel, int(level))
	}
	l.plain[level](msg, args...)
	return nil
}

// Logw logs a structured message at a dynamic level.
func (l *Logger) Logw(level core.Level, msg string, fields ...core.Field) error {
	if !level.Emittable() {
		return fmt.Errorf("log: %w: %d", core.ErrInvalidLevel, int(level))
	}
	l.structured[level](msg, fields...)
	return nil
}

// LogwCaller is Logw with caller information supplied by the caller,
// for bridges that already know the call site. c is attached only when
// caller capture is enabled and c is defined.
func (l *Logger) LogwCaller(level core.Level, c core.CallerInfo, msg string, fields ...core.Field) error {
	if !level.Emittable() {
		return fmt.Errorf("log: %w: %d", core.ErrInvalidLevel, int(level))
	}
	regs, ok := l.admit(level)
	if !ok {
		return nil
	}
	obj := core.NewStructuredLogObject(l.clock(), level, msg, fields)
	if l.includeCaller && c.Defined {
		obj = obj.WithCaller(c)
	}
	l.dispatch(obj.WithContext(l.fields), regs)
	return nil
}

// Trace logs a trace message
func (l *Logger) Trace(msg string, args ...any) { l.plain[core.TraceLevel](msg, args...) }

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) { l.plain[core.DebugLevel](msg, args...) }

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) { l.plain[core.InfoLevel](msg, args...) }

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) { l.plain[core.WarnLevel](msg, args...) }

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) { l.plain[core.ErrorLevel](msg, args...) }

// Fatal logs a fatal message. It does not exit the process.
func (l *Logger) Fatal(msg string, args ...any) { l.plain[core.FatalLevel](msg, args...) }

// Tracew logs a structured trace message
func (l *Logger) Tracew(msg string, fields ...core.Field) { l.structured[core.TraceLevel](msg, fields...) }

// Debugw logs a structured debug message
func (l *Logger) Debugw(msg string, fields ...core.Field) { l.structured[core.DebugLevel](msg, fields...) }

// Infow logs a structured info message
func (l *Logger) Infow(msg string, fields ...core.Field) { l.structured[core.InfoLevel](msg, fields...) }

// Warnw logs a structured warning message
func (l *Logger) Warnw(msg string, fields ...core.Field) { l.structured[core.WarnLevel](msg, fields...) }

// Errorw logs a structured error message
func (l *Logger) Errorw(msg string, fields ...core.Field) { l.structured[core.ErrorLevel](msg, fields...) }

// Fatalw logs a structured fatal message. It does not exit the process.
func (l *Logger) Fatalw(msg string, fields ...core.Field) { l.structured[core.FatalLevel](msg, fields...) }

func (l *Logger) logPlain(level core.Level, msg string, args []any) {
	regs, ok := l.admit(level)
	if !ok {
		return
	}
	obj := core.NewLogObject(l.clock(), level, msg, args)
	if l.includeCaller {
		obj = obj.WithCaller(core.GetCaller(l.callerSkip))
	}
	l.dispatch(obj.WithContext(l.fields), regs)
}

func (l *Logger) logStructured(level core.Level, msg string, fields []core.Field) {
	regs, ok := l.admit(level)
	if !ok {
		return
	}
	obj := core.NewStructuredLogObject(l.clock(), level, msg, fields)
	if l.includeCaller {
		obj = obj.WithCaller(core.GetCaller(l.callerSkip))
	}
	l.dispatch(obj.WithContext(l.fields), regs)
}

// admit applies the threshold and takes the registry snapshot. Nothing
// is built when the level is filtered or no reporter is registered.
func (l *Logger) admit(level core.Level) ([]*registration, bool) {
	if !core.Admits(l.Level(), level) {
		l.stats.incFiltered(level)
		return nil, false
	}
	regs := l.registry.snapshot()
	return regs, len(regs) > 0
}

// dispatch writes obj to every registration of the snapshot in order.
// A registration removed after the snapshot was taken is skipped when
// its turn comes. Failures do not stop the loop; they are combined and
// reported once every reporter has been called.
func (l *Logger) dispatch(obj *core.LogObject, regs []*registration) {
	l.stats.incDispatched(obj.Level())

	var errs error
	for i, reg := range regs {
		if reg.removed.Load() {
			continue
		}
		if err := l.write(i, reg.reporter, obj); err != nil {
			l.stats.failed.Add(1)
			errs = multierr.Append(errs, err)
			continue
		}
		l.stats.delivered.Add(1)
	}

	if errs != nil {
		l.errHandler(errs)
	}
}

func (l *Logger) write(index int, r Reporter, obj *core.LogObject) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &ReporterError{
				Index:    index,
				Reporter: r,
				Level:    obj.Level(),
				Message:  obj.Message(),
				Panicked: true,
				Err:      fmt.Errorf("%v", p),
			}
		}
	}()

	if werr := r.Write(obj); werr != nil {
		return &ReporterError{
			Index:    index,
			Reporter: r,
			Level:    obj.Level(),
			Message:  obj.Message(),
			Err:      werr,
		}
	}
	return nil
}

// Close closes every registered reporter that implements io.Closer,
// once per distinct reporter. Reporters stay registered.
func (l *Logger) Close() error {
	var (
		errs   error
		closed []Reporter
	)
	for _, r := range l.registry.reporters() {
		c, ok := r.(io.Closer)
		if !ok || containsReporter(closed, r) {
			continue
		}
		closed = append(closed, r)
		errs = multierr.Append(errs, c.Close())
	}
	return errs
}

func containsReporter(list []Reporter, r Reporter) bool {
	for _, x := range list {
		if sameReporter(x, r) {
			return true
		}
	}
	return false
}
