package zapreporter

import (
	"errors"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/logger"
)

// Reporter forwards log objects to a *zap.Logger.
//
// The owning Logger has already applied its threshold, so the zap core is
// normally built at DebugLevel; a stricter zap level still filters through
// Logger.Check. Fatal is written at zap's ErrorLevel so zap never exits
// the process.
type Reporter struct {
	logger.BaseReporter

	zl      *zap.Logger
	tsKey   string
	argsKey string
}

// New creates a reporter for the provided zap logger. A nil logger is
// replaced by zap.NewNop.
func New(zl *zap.Logger) *Reporter {
	if zl == nil {
		zl = zap.NewNop()
	}
	return &Reporter{zl: zl, tsKey: "ts", argsKey: "args"}
}

// Config builds a zap logger for NewWithConfig.
type Config struct {
	// Writer receives encoded output (default: os.Stdout)
	Writer io.Writer
	// Console selects zap's console encoder instead of JSON
	Console bool
	// EncoderConfig overrides the default encoder settings when non-zero
	EncoderConfig zapcore.EncoderConfig
	// TimestampFieldName is the key of the event timestamp (default "ts")
	TimestampFieldName string
	// ArgsFieldName is the key of plain event arguments (default "args")
	ArgsFieldName string
}

// NewWithConfig builds a zap logger from cfg and wraps it.
func NewWithConfig(cfg Config) *Reporter {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	encCfg := cfg.EncoderConfig
	if encCfg.LevelKey == "" && encCfg.MessageKey == "" {
		encCfg = zapcore.EncoderConfig{
			LevelKey:       "level",
			MessageKey:     "message",
			CallerKey:      "caller",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}
	}
	// The log object carries the authoritative timestamp
	encCfg.TimeKey = ""

	var enc zapcore.Encoder
	if cfg.Console {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	zl := zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel))

	r := New(zl)
	if cfg.TimestampFieldName != "" {
		r.tsKey = cfg.TimestampFieldName
	}
	if cfg.ArgsFieldName != "" {
		r.argsKey = cfg.ArgsFieldName
	}
	return r
}

// Zap returns the wrapped zap logger.
func (r *Reporter) Zap() *zap.Logger {
	return r.zl
}

// Write emits obj as one zap entry.
func (r *Reporter) Write(obj *core.LogObject) error {
	ce := r.zl.Check(ToZapLevel(obj.Level()), obj.Message())
	if ce == nil {
		return nil
	}

	if c := obj.Caller(); c.Defined {
		ce.Caller = zapcore.EntryCaller{Defined: true, File: c.File, Line: c.Line, Function: c.Function}
	}

	zfs := make([]zap.Field, 0, 2+obj.NumFields())
	zfs = append(zfs, zap.String(r.tsKey, obj.Time().UTC().Format(time.RFC3339Nano)))

	if obj.NumArgs() > 0 {
		zfs = append(zfs, zap.Array(r.argsKey, argsMarshaler(obj.Args())))
	}

	obj.EachField(func(f core.Field) {
		zfs = append(zfs, ToZapField(f))
	})

	ce.Write(zfs...)
	return nil
}

// Sync flushes the zap logger.
func (r *Reporter) Sync() error {
	return r.zl.Sync()
}

// Close flushes the zap logger. Sync errors from terminals are ignored.
func (r *Reporter) Close() error {
	err := r.zl.Sync()
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return nil
	}
	return err
}

// ToZapLevel maps a level to zap. Trace collapses into Debug and Fatal
// into Error.
func ToZapLevel(l core.Level) zapcore.Level {
	switch l {
	case core.TraceLevel, core.DebugLevel:
		return zapcore.DebugLevel
	case core.InfoLevel:
		return zapcore.InfoLevel
	case core.WarnLevel:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// ToZapField converts a field to its typed zap equivalent.
func ToZapField(f core.Field) zap.Field {
	switch f.Type {
	case core.StringType:
		return zap.String(f.Key, f.Str)
	case core.IntType:
		return zap.Int(f.Key, int(f.Int64))
	case core.Int64Type:
		return zap.Int64(f.Key, f.Int64)
	case core.Uint64Type:
		return zap.Uint64(f.Key, uint64(f.Int64))
	case core.Float64Type:
		return zap.Float64(f.Key, f.Float64)
	case core.BoolType:
		return zap.Bool(f.Key, f.Int64 == 1)
	case core.TimeType:
		return zap.Time(f.Key, time.Unix(0, f.Int64))
	case core.DurationType:
		return zap.Duration(f.Key, time.Duration(f.Int64))
	case core.ErrorType:
		if f.Str == "" {
			return zap.Skip()
		}
		return zap.String(f.Key, f.Str)
	default:
		return zap.Any(f.Key, f.Any)
	}
}

// argsMarshaler encodes plain arguments as a zap array.
type argsMarshaler []any

func (a argsMarshaler) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, v := range a {
		switch x := v.(type) {
		case string:
			enc.AppendString(x)
		case int:
			enc.AppendInt(x)
		case int64:
			enc.AppendInt64(x)
		case float64:
			enc.AppendFloat64(x)
		case bool:
			enc.AppendBool(x)
		case error:
			enc.AppendString(x.Error())
		case time.Duration:
			enc.AppendDuration(x)
		default:
			if err := enc.AppendReflected(x); err != nil {
				return err
			}
		}
	}
	return nil
}
