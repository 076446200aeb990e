package zerologreporter

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/logger"
)

// Reporter writes log objects through a zerolog.Logger. Fatal is written
// at zerolog's ErrorLevel so the process never exits. zerolog's global
// level still applies; trace events need zerolog.SetGlobalLevel(zerolog.TraceLevel).
type Reporter struct {
	logger.BaseReporter

	zl      zerolog.Logger
	tsKey   string
	argsKey string
}

// New wraps zl.
func New(zl zerolog.Logger) *Reporter {
	return &Reporter{zl: zl, tsKey: "ts", argsKey: "args"}
}

// Config builds a zerolog logger for NewWithConfig.
type Config struct {
	// Writer receives encoded output (default: os.Stdout)
	Writer io.Writer
	// Console selects zerolog.ConsoleWriter instead of JSON
	Console bool
	// ConsoleTimeFormat is used when Console is set (default RFC3339Nano)
	ConsoleTimeFormat string
	// TimestampFieldName is the key of the event timestamp (default "ts")
	TimestampFieldName string
	// ArgsFieldName is the key of plain event arguments (default "args")
	ArgsFieldName string
}

// NewWithConfig builds a zerolog logger from cfg and wraps it.
func NewWithConfig(cfg Config) *Reporter {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	var zl zerolog.Logger
	if cfg.Console {
		cw := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: cfg.ConsoleTimeFormat}
		if cw.TimeFormat == "" {
			cw.TimeFormat = time.RFC3339Nano
		}
		zl = zerolog.New(cw)
	} else {
		zl = zerolog.New(w)
	}

	r := New(zl.Level(zerolog.TraceLevel))
	if cfg.TimestampFieldName != "" {
		r.tsKey = cfg.TimestampFieldName
	}
	if cfg.ArgsFieldName != "" {
		r.argsKey = cfg.ArgsFieldName
	}
	return r
}

// Zerolog returns the wrapped logger.
func (r *Reporter) Zerolog() zerolog.Logger {
	return r.zl
}

// Write emits obj as one zerolog event.
func (r *Reporter) Write(obj *core.LogObject) error {
	lvl := ToZerologLevel(obj.Level())
	if lvl < r.zl.GetLevel() || lvl < zerolog.GlobalLevel() {
		return nil
	}

	ev := r.zl.WithLevel(lvl)
	ev.Str(r.tsKey, obj.Time().UTC().Format(time.RFC3339Nano))

	if c := obj.Caller(); c.Defined {
		ev.Str(zerolog.CallerFieldName, zerolog.CallerMarshalFunc(0, c.File, c.Line))
	}

	if obj.NumArgs() > 0 {
		arr := zerolog.Arr()
		obj.EachArg(func(_ int, a any) {
			appendArg(arr, a)
		})
		ev.Array(r.argsKey, arr)
	}

	obj.EachField(func(f core.Field) {
		appendField(ev, f)
	})

	ev.Msg(obj.Message())
	return nil
}

// ToZerologLevel maps a level to zerolog. Fatal collapses into Error.
func ToZerologLevel(l core.Level) zerolog.Level {
	switch l {
	case core.TraceLevel:
		return zerolog.TraceLevel
	case core.DebugLevel:
		return zerolog.DebugLevel
	case core.InfoLevel:
		return zerolog.InfoLevel
	case core.WarnLevel:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func appendField(ev *zerolog.Event, f core.Field) {
	switch f.Type {
	case core.StringType:
		ev.Str(f.Key, f.Str)
	case core.IntType, core.Int64Type:
		ev.Int64(f.Key, f.Int64)
	case core.Uint64Type:
		ev.Uint64(f.Key, uint64(f.Int64))
	case core.Float64Type:
		ev.Float64(f.Key, f.Float64)
	case core.BoolType:
		ev.Bool(f.Key, f.Int64 == 1)
	case core.TimeType:
		ev.Time(f.Key, time.Unix(0, f.Int64))
	case core.DurationType:
		ev.Dur(f.Key, time.Duration(f.Int64))
	case core.ErrorType:
		if f.Str != "" {
			ev.Str(f.Key, f.Str)
		}
	default:
		ev.Interface(f.Key, f.Any)
	}
}

func appendArg(arr *zerolog.Array, a any) {
	switch x := a.(type) {
	case string:
		arr.Str(x)
	case int:
		arr.Int(x)
	case int64:
		arr.Int64(x)
	case float64:
		arr.Float64(x)
	case bool:
		arr.Bool(x)
	case error:
		arr.Str(x.Error())
	case time.Duration:
		arr.Dur(x)
	default:
		arr.Interface(x)
	}
}
