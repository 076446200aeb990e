package logger

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/trickstertwo/xclock"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/rlog/core"
)

// callLog records the order of Write calls across reporters.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) add(s string) {
	c.mu.Lock()
	c.calls = append(c.calls, s)
	c.mu.Unlock()
}

func (c *callLog) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// recorder is a Reporter that keeps every object it receives.
type recorder struct {
	BaseReporter
	name    string
	log     *callLog
	mu      sync.Mutex
	objs    []*core.LogObject
	inits   int
	onWrite func(*core.LogObject) error
}

func newRecorder(name string, log *callLog) *recorder {
	return &recorder{name: name, log: log}
}

func (r *recorder) Init(l *Logger) {
	r.inits++
	r.BaseReporter.Init(l)
}

func (r *recorder) Write(obj *core.LogObject) error {
	r.mu.Lock()
	r.objs = append(r.objs, obj)
	r.mu.Unlock()
	if r.log != nil {
		r.log.add(r.name + ".write")
	}
	if r.onWrite != nil {
		return r.onWrite(obj)
	}
	return nil
}

func (r *recorder) received() []*core.LogObject {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*core.LogObject(nil), r.objs...)
}

func newTestLogger(t *testing.T, level core.Level, reporters ...Reporter) *Logger {
	t.Helper()
	l, err := NewBuilder().
		WithLevel(level).
		WithReporter(reporters...).
		WithErrorHandler(func(err error) { t.Errorf("unexpected reporter error: %v", err) }).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return l
}

func TestLogger_LevelGate(t *testing.T) {
	r := newRecorder("r", nil)
	log := newTestLogger(t, InfoLevel, r)

	log.Debug("x")
	if n := len(r.received()); n != 0 {
		t.Fatalf("debug reached reporter at info threshold: %d objects", n)
	}

	log.Info("y")
	got := r.received()
	if len(got) != 1 || got[0].Level() != InfoLevel || got[0].Message() != "y" {
		t.Fatalf("after Info: %+v", got)
	}

	log.Error("z")
	got = r.received()
	if len(got) != 2 || got[1].Level() != ErrorLevel || got[1].Message() != "z" {
		t.Fatalf("after Error: %+v", got)
	}
}

func TestLogger_SilentAndTrace(t *testing.T) {
	r := newRecorder("r", nil)
	log := newTestLogger(t, SilentLevel, r)

	for _, level := range core.AllLevels() {
		if err := log.Log(level, "m"); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(r.received()); n != 0 {
		t.Fatalf("silent threshold delivered %d objects", n)
	}

	if err := log.SetLevel(TraceLevel); err != nil {
		t.Fatal(err)
	}
	for _, level := range core.AllLevels() {
		_ = log.Log(level, "m")
	}
	if n := len(r.received()); n != len(core.AllLevels()) {
		t.Fatalf("trace threshold delivered %d objects, want %d", n, len(core.AllLevels()))
	}
}

func TestLogger_RegistrationOrder(t *testing.T) {
	calls := &callLog{}
	r1 := newRecorder("r1", calls)
	r2 := newRecorder("r2", calls)
	log := newTestLogger(t, InfoLevel, r1, r2)

	log.Warn("m")

	if got := strings.Join(calls.snapshot(), ","); got != "r1.write,r2.write" {
		t.Fatalf("call order = %s", got)
	}
	o1, o2 := r1.received(), r2.received()
	if len(o1) != 1 || len(o2) != 1 || o1[0] != o2[0] {
		t.Fatal("reporters did not receive the same LogObject")
	}
	if o1[0].Level() != WarnLevel || o1[0].Message() != "m" {
		t.Errorf("unexpected object %v %q", o1[0].Level(), o1[0].Message())
	}
}

func TestLogger_ExactlyOncePerReporter(t *testing.T) {
	const n = 5
	calls := &callLog{}
	var reporters []Reporter
	var recs []*recorder
	for i := 0; i < n; i++ {
		r := newRecorder(fmt.Sprintf("r%d", i), calls)
		recs = append(recs, r)
		reporters = append(reporters, r)
	}
	log := newTestLogger(t, DebugLevel, reporters...)

	log.Info("a")
	log.Debug("b")
	log.Trace("filtered")

	for i, r := range recs {
		got := r.received()
		if len(got) != 2 || got[0].Message() != "a" || got[1].Message() != "b" {
			t.Errorf("reporter %d received %d objects", i, len(got))
		}
	}

	var want []string
	for range 2 {
		for i := 0; i < n; i++ {
			want = append(want, fmt.Sprintf("r%d.write", i))
		}
	}
	if got := calls.snapshot(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("call order = %v, want %v", got, want)
	}
}

func TestLogger_DuplicateRegistration(t *testing.T) {
	r := newRecorder("r", nil)
	log := newTestLogger(t, InfoLevel, r, r)

	log.Info("dup")
	if n := len(r.received()); n != 2 {
		t.Fatalf("duplicate registration received %d writes, want 2", n)
	}
	if r.inits != 2 {
		t.Errorf("Init called %d times, want 2", r.inits)
	}

	if !log.RemoveReporter(r) {
		t.Fatal("RemoveReporter returned false")
	}
	log.Info("once")
	if n := len(r.received()); n != 3 {
		t.Fatalf("after removing one registration got %d writes, want 3", n)
	}
}

func TestLogger_NoReporters(t *testing.T) {
	log := New()
	log.Info("nobody listens")
	log.Fatal("still fine")

	if got := log.Stats().TotalDispatched(); got != 0 {
		t.Errorf("dispatched = %d, want 0", got)
	}
}

func TestLogger_AddAfterKEvents(t *testing.T) {
	first := newRecorder("first", nil)
	log := newTestLogger(t, InfoLevel, first)

	for i := 0; i < 3; i++ {
		log.Info(fmt.Sprintf("early-%d", i))
	}

	late := newRecorder("late", nil)
	log.AddReporter(late)
	if late.Logger() != log {
		t.Error("AddReporter did not Init the reporter with the logger")
	}

	log.Info("late-1")
	log.Debug("filtered")
	log.Error("late-2")

	got := late.received()
	if len(got) != 2 || got[0].Message() != "late-1" || got[1].Message() != "late-2" {
		t.Fatalf("late reporter received %d objects", len(got))
	}
	if n := len(first.received()); n != 5 {
		t.Errorf("first reporter received %d objects, want 5", n)
	}
}

func TestLogger_RemoveReporter(t *testing.T) {
	r1 := newRecorder("r1", nil)
	r2 := newRecorder("r2", nil)
	log := newTestLogger(t, InfoLevel, r1, r2)

	log.Info("both")
	if !log.RemoveReporter(r1) {
		t.Fatal("RemoveReporter(r1) = false")
	}
	log.Info("only r2")

	if n := len(r1.received()); n != 1 {
		t.Errorf("removed reporter received %d objects, want 1", n)
	}
	if n := len(r2.received()); n != 2 {
		t.Errorf("remaining reporter received %d objects, want 2", n)
	}

	if log.RemoveReporter(r1) {
		t.Error("removing an unregistered reporter should report false")
	}
	if log.RemoveReporter(newRecorder("never", nil)) {
		t.Error("removing a never-registered reporter should report false")
	}
}

// A reporter removed by an earlier reporter of the same dispatch is
// skipped; a reporter added during a dispatch only sees later events.
func TestLogger_SnapshotPolicy(t *testing.T) {
	calls := &callLog{}
	victim := newRecorder("victim", calls)
	newcomer := newRecorder("newcomer", calls)

	var log *Logger
	remover := newRecorder("remover", calls)
	remover.onWrite = func(obj *core.LogObject) error {
		if obj.Message() == "first" {
			log.RemoveReporter(victim)
			log.AddReporter(newcomer)
		}
		return nil
	}
	log = newTestLogger(t, InfoLevel, remover, victim)

	log.Info("first")
	if got := strings.Join(calls.snapshot(), ","); got != "remover.write" {
		t.Fatalf("first dispatch calls = %s", got)
	}

	log.Info("second")
	if got := strings.Join(calls.snapshot(), ","); got != "remover.write,remover.write,newcomer.write" {
		t.Fatalf("second dispatch calls = %s", got)
	}
	if n := len(victim.received()); n != 0 {
		t.Errorf("victim received %d objects", n)
	}
}

func TestLogger_ReporterFailureIsolation(t *testing.T) {
	var handled []error
	failing := newRecorder("failing", nil)
	failing.onWrite = func(*core.LogObject) error { return errors.New("disk full") }
	panicking := newRecorder("panicking", nil)
	panicking.onWrite = func(*core.LogObject) error { panic("boom") }
	healthy := newRecorder("healthy", nil)

	log, err := NewBuilder().
		WithReporter(failing, panicking, healthy).
		WithErrorHandler(func(err error) { handled = append(handled, err) }).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	log.Error("still delivered")

	if n := len(healthy.received()); n != 1 {
		t.Fatalf("healthy reporter received %d objects, want 1", n)
	}
	if len(handled) != 1 {
		t.Fatalf("error handler called %d times, want 1", len(handled))
	}

	errs := multierr.Errors(handled[0])
	if len(errs) != 2 {
		t.Fatalf("aggregated %d errors, want 2", len(errs))
	}

	var re *ReporterError
	if !errors.As(errs[0], &re) || re.Index != 0 || re.Panicked || re.Level != ErrorLevel {
		t.Errorf("first error = %#v", errs[0])
	}
	if !errors.As(errs[1], &re) || re.Index != 1 || !re.Panicked {
		t.Errorf("second error = %#v", errs[1])
	}
	if !strings.Contains(errs[1].Error(), "boom") {
		t.Errorf("panic value missing from %q", errs[1].Error())
	}

	stats := log.Stats()
	if stats.Failed != 2 || stats.Delivered != 1 {
		t.Errorf("stats failed=%d delivered=%d", stats.Failed, stats.Delivered)
	}
}

func TestLogger_InvalidLevels(t *testing.T) {
	log := New()

	if err := log.SetLevel(Level(99)); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("SetLevel(99) error = %v", err)
	}
	if log.Level() != InfoLevel {
		t.Errorf("threshold changed after invalid SetLevel: %v", log.Level())
	}
	if err := log.Log(SilentLevel, "x"); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("Log(silent) error = %v", err)
	}
	if err := log.Logw(Level(-1), "x"); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("Logw(-1) error = %v", err)
	}
	if _, err := NewBuilder().WithLevel(Level(12)).Build(); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("Build() error = %v", err)
	}
	if err := log.SetLevel(SilentLevel); err != nil {
		t.Errorf("SetLevel(silent) error = %v", err)
	}
}

func TestLogger_Emitters(t *testing.T) {
	r := newRecorder("r", nil)
	log := newTestLogger(t, TraceLevel, r)

	for _, level := range core.AllLevels() {
		emit, err := log.EmitterByName(level.String())
		if err != nil {
			t.Fatalf("EmitterByName(%s) error = %v", level, err)
		}
		emit(level.String())
	}

	got := r.received()
	if len(got) != len(core.AllLevels()) {
		t.Fatalf("received %d objects", len(got))
	}
	for i, level := range core.AllLevels() {
		if got[i].Level() != level || got[i].Message() != level.String() {
			t.Errorf("object %d = %v %q", i, got[i].Level(), got[i].Message())
		}
	}

	if _, err := log.EmitterByName("verbose"); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("EmitterByName(verbose) error = %v", err)
	}
	if _, err := log.Emitter(SilentLevel); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("Emitter(silent) error = %v", err)
	}
}

func TestLogger_PlainAndStructured(t *testing.T) {
	r := newRecorder("r", nil)
	log := newTestLogger(t, InfoLevel, r)

	log.Info("plain", "a", 1)
	log.Infow("structured", String("str", "value"), Int("int", 42))

	got := r.received()
	if got[0].Type() != core.PlainType || got[0].NumArgs() != 2 || got[0].Text() != "plain a 1" {
		t.Errorf("plain object: type=%v text=%q", got[0].Type(), got[0].Text())
	}
	if got[1].Type() != core.StructuredType || got[1].NumFields() != 2 {
		t.Errorf("structured object: type=%v fields=%d", got[1].Type(), got[1].NumFields())
	}
}

func TestLogger_With(t *testing.T) {
	r := newRecorder("r", nil)
	parent, err := NewBuilder().
		WithReporter(r).
		WithFields(String("app", "test")).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	child := parent.With(String("request_id", "123"))
	parent.Infow("parent")
	child.Infow("child", Int("status", 200))

	got := r.received()
	if n := got[0].NumFields(); n != 1 {
		t.Errorf("parent object has %d fields, want 1", n)
	}
	fields := got[1].Fields()
	if len(fields) != 3 || fields[0].Key != "app" || fields[1].Key != "request_id" || fields[2].Key != "status" {
		t.Errorf("child fields = %+v", fields)
	}

	// Threshold and registry are shared
	if err := child.SetLevel(ErrorLevel); err != nil {
		t.Fatal(err)
	}
	parent.Info("filtered")
	if n := len(r.received()); n != 2 {
		t.Errorf("received %d objects after raising threshold through child", n)
	}
}

func TestLogger_Timestamp(t *testing.T) {
	ft := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	old := xclock.Default()
	defer xclock.SetDefault(old)
	xclock.SetDefault(xclock.NewFrozen(ft))

	r := newRecorder("r", nil)
	log := newTestLogger(t, InfoLevel, r)
	log.Info("frozen")

	if got := r.received()[0].Time(); !got.Equal(ft) {
		t.Errorf("Time() = %v, want %v", got, ft)
	}

	fixed := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	r2 := newRecorder("r2", nil)
	custom := NewBuilder().WithReporter(r2).WithClock(func() time.Time { return fixed }).MustBuild()
	custom.Info("custom")
	if got := r2.received()[0].Time(); !got.Equal(fixed) {
		t.Errorf("Time() = %v, want %v", got, fixed)
	}
}

func TestWriterErrorHandler_UsesClock(t *testing.T) {
	ft := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	old := xclock.Default()
	defer xclock.SetDefault(old)
	xclock.SetDefault(xclock.NewFrozen(ft))

	var buf bytes.Buffer
	h := WriterErrorHandler(zapcore.AddSync(&buf))
	h(multierr.Combine(errors.New("first"), errors.New("second")))

	want := "2026-01-02T03:04:05Z rlog: first\n2026-01-02T03:04:05Z rlog: second\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLogger_Caller(t *testing.T) {
	r := newRecorder("r", nil)
	log := NewBuilder().WithReporter(r).WithCaller(true).MustBuild()

	log.Info("here")
	log.Warnw("here too")
	emit, _ := log.Emitter(ErrorLevel)
	emit("and here")
	_ = log.Log(InfoLevel, "dynamic")

	for i, obj := range r.received() {
		c := obj.Caller()
		if !c.Defined || c.ShortFile != "logger_test.go" {
			t.Errorf("object %d caller = %+v", i, c)
		}
	}
}

func TestLogger_LogwCaller(t *testing.T) {
	site := core.CallerInfo{File: "/src/bridge.go", ShortFile: "bridge.go", Line: 9, Defined: true}

	r := newRecorder("r", nil)
	log := NewBuilder().WithReporter(r).WithCaller(true).MustBuild()
	if err := log.LogwCaller(InfoLevel, site, "bridged"); err != nil {
		t.Fatal(err)
	}
	if got := r.received()[0].Caller(); got != site {
		t.Errorf("caller = %+v, want %+v", got, site)
	}

	r2 := newRecorder("r2", nil)
	plain := NewBuilder().WithReporter(r2).MustBuild()
	if err := plain.LogwCaller(InfoLevel, site, "no capture"); err != nil {
		t.Fatal(err)
	}
	if r2.received()[0].Caller().Defined {
		t.Error("caller attached while capture is disabled")
	}

	if err := log.LogwCaller(SilentLevel, site, "bad"); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("LogwCaller(silent) error = %v", err)
	}
}

func TestLogger_Stats(t *testing.T) {
	r := newRecorder("r", nil)
	log := newTestLogger(t, WarnLevel, r)

	log.Error("a")
	log.Warn("b")
	log.Info("c")
	log.Debug("d")

	s := log.Stats()
	if s.Dispatched[ErrorLevel] != 1 || s.Dispatched[WarnLevel] != 1 {
		t.Errorf("dispatched = %v", s.Dispatched)
	}
	if s.Filtered[InfoLevel] != 1 || s.Filtered[DebugLevel] != 1 {
		t.Errorf("filtered = %v", s.Filtered)
	}
	if s.Delivered != 2 || s.Failed != 0 {
		t.Errorf("delivered=%d failed=%d", s.Delivered, s.Failed)
	}
}

type closingReporter struct {
	BaseReporter
	closed int
	err    error
}

func (c *closingReporter) Write(*core.LogObject) error { return nil }

func (c *closingReporter) Close() error {
	c.closed++
	return c.err
}

func TestLogger_Close(t *testing.T) {
	a := &closingReporter{}
	b := &closingReporter{err: errors.New("flush failed")}
	log := newTestLogger(t, InfoLevel, a, a, b, ReporterFunc(func(*core.LogObject) error { return nil }))

	err := log.Close()
	if err == nil || !strings.Contains(err.Error(), "flush failed") {
		t.Errorf("Close() error = %v", err)
	}
	if a.closed != 1 || b.closed != 1 {
		t.Errorf("close counts a=%d b=%d, want 1 each", a.closed, b.closed)
	}
	if len(log.Reporters()) != 4 {
		t.Errorf("Close should not unregister reporters")
	}
}

func TestLogger_ConcurrentRegistry(t *testing.T) {
	base := newRecorder("base", nil)
	log := NewBuilder().WithReporter(base).WithErrorHandler(IgnoreErrors).MustBuild()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				log.Info("concurrent")
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				r := newRecorder("tmp", nil)
				log.AddReporter(r)
				log.RemoveReporter(r)
			}
		}()
	}
	wg.Wait()

	if n := len(base.received()); n != 8*200 {
		t.Errorf("base reporter received %d objects, want %d", n, 8*200)
	}
	if n := len(log.Reporters()); n != 1 {
		t.Errorf("registry has %d reporters, want 1", n)
	}
}

func TestSameReporter_Incomparable(t *testing.T) {
	f := ReporterFunc(func(*core.LogObject) error { return nil })
	log := newTestLogger(t, InfoLevel, f)

	if log.RemoveReporter(f) {
		t.Error("function reporters are not comparable and must not match")
	}
}
