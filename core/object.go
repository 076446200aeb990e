package core

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Type tags how an event was emitted.
type Type uint8

const (
	// PlainType marks a message followed by free-form arguments
	PlainType Type = iota
	// StructuredType marks a message carrying key/value Fields
	StructuredType
)

// String returns the string representation of the type
func (t Type) String() string {
	switch t {
	case PlainType:
		return "plain"
	case StructuredType:
		return "structured"
	default:
		return "unknown"
	}
}

// LogObject is the immutable record of one log event. A single instance
// is handed to every Reporter of a dispatch; accessors return copies of
// the slices so no Reporter can change what the next one sees.
type LogObject struct {
	level  Level
	msg    string
	args   []any
	fields []Field
	time   time.Time
	typ    Type
	caller CallerInfo
}

// NewLogObject builds a plain LogObject. It panics when level is not an
// emittable level; callers validate levels before construction.
func NewLogObject(t time.Time, level Level, msg string, args []any) *LogObject {
	mustEmittable(level)
	o := &LogObject{level: level, msg: msg, time: t, typ: PlainType}
	if len(args) > 0 {
		o.args = make([]any, len(args))
		copy(o.args, args)
	}
	return o
}

// NewStructuredLogObject builds a structured LogObject from fields.
func NewStructuredLogObject(t time.Time, level Level, msg string, fields []Field) *LogObject {
	mustEmittable(level)
	o := &LogObject{level: level, msg: msg, time: t, typ: StructuredType}
	if len(fields) > 0 {
		o.fields = make([]Field, len(fields))
		copy(o.fields, fields)
	}
	return o
}

// WithCaller returns a copy of o carrying caller information.
func (o *LogObject) WithCaller(c CallerInfo) *LogObject {
	cp := *o
	cp.caller = c
	return &cp
}

// WithContext returns a copy of o whose fields are ctx followed by the
// fields of o. The type tag is unchanged.
func (o *LogObject) WithContext(ctx []Field) *LogObject {
	if len(ctx) == 0 {
		return o
	}
	cp := *o
	cp.fields = make([]Field, 0, len(ctx)+len(o.fields))
	cp.fields = append(cp.fields, ctx...)
	cp.fields = append(cp.fields, o.fields...)
	return &cp
}

func mustEmittable(level Level) {
	if !level.Emittable() {
		panic(fmt.Sprintf("core: cannot build log object at level %s (%d)", level, int(level)))
	}
}

// Level returns the event level
func (o *LogObject) Level() Level { return o.level }

// Message returns the raw message
func (o *LogObject) Message() string { return o.msg }

// Time returns the instant the object was built
func (o *LogObject) Time() time.Time { return o.time }

// Type returns the emission tag
func (o *LogObject) Type() Type { return o.typ }

// Caller returns caller information; Defined is false when not captured.
func (o *LogObject) Caller() CallerInfo { return o.caller }

// NumArgs returns the number of auxiliary arguments.
func (o *LogObject) NumArgs() int { return len(o.args) }

// Args returns a copy of the auxiliary arguments.
func (o *LogObject) Args() []any {
	if len(o.args) == 0 {
		return nil
	}
	out := make([]any, len(o.args))
	copy(out, o.args)
	return out
}

// NumFields returns the number of structured fields.
func (o *LogObject) NumFields() int { return len(o.fields) }

// Fields returns a copy of the structured fields.
func (o *LogObject) Fields() []Field {
	if len(o.fields) == 0 {
		return nil
	}
	out := make([]Field, len(o.fields))
	copy(out, o.fields)
	return out
}

// EachField calls fn for every field in order without copying the slice.
func (o *LogObject) EachField(fn func(Field)) {
	for _, f := range o.fields {
		fn(f)
	}
}

// EachArg calls fn for every argument in order without copying the slice.
func (o *LogObject) EachArg(fn func(int, any)) {
	for i, a := range o.args {
		fn(i, a)
	}
}

// Text renders the message followed by its arguments, separated by
// single spaces.
func (o *LogObject) Text() string {
	if len(o.args) == 0 {
		return o.msg
	}
	var sb strings.Builder
	sb.WriteString(o.msg)
	for _, a := range o.args {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprint(&sb, a)
	}
	return sb.String()
}

// CallerInfo contains information about the caller
type CallerInfo struct {
	File      string
	ShortFile string
	Line      int
	Function  string
	Defined   bool
}

// GetCaller retrieves caller information
func GetCaller(skip int) CallerInfo {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return CallerInfo{}
	}

	fn := runtime.FuncForPC(pc)
	var funcName string
	if fn != nil {
		funcName = fn.Name()
	}

	return CallerInfo{
		File:      file,
		ShortFile: filepath.Base(file),
		Line:      line,
		Function:  funcName,
		Defined:   true,
	}
}

// CallerFromPC resolves a program counter, such as slog.Record.PC, into
// caller information. A zero or unknown pc yields an undefined CallerInfo.
func CallerFromPC(pc uintptr) CallerInfo {
	if pc == 0 {
		return CallerInfo{}
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return CallerInfo{}
	}
	return CallerInfo{
		File:      frame.File,
		ShortFile: filepath.Base(frame.File),
		Line:      frame.Line,
		Function:  frame.Function,
		Defined:   true,
	}
}
