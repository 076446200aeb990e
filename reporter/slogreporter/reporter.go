package slogreporter

import (
	"context"
	"log/slog"
	"time"

	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/logger"
)

// Custom slog levels for the two levels slog lacks.
const (
	LevelTrace = slog.LevelDebug - 4
	LevelFatal = slog.LevelError + 4
)

// Reporter forwards log objects to a slog.Handler.
type Reporter struct {
	logger.BaseReporter

	h       slog.Handler
	argsKey string
}

// New wraps h. A nil handler falls back to slog.Default().Handler().
func New(h slog.Handler) *Reporter {
	if h == nil {
		h = slog.Default().Handler()
	}
	return &Reporter{h: h, argsKey: "args"}
}

// Write converts obj to a slog.Record and hands it to the handler when
// the handler is enabled for the mapped level.
func (r *Reporter) Write(obj *core.LogObject) error {
	ctx := context.Background()
	level := ToSlogLevel(obj.Level())
	if !r.h.Enabled(ctx, level) {
		return nil
	}

	rec := slog.NewRecord(obj.Time(), level, obj.Message(), 0)
	if obj.NumArgs() > 0 {
		rec.AddAttrs(slog.Any(r.argsKey, obj.Args()))
	}
	obj.EachField(func(f core.Field) {
		rec.AddAttrs(ToAttr(f))
	})

	return r.h.Handle(ctx, rec)
}

// ToSlogLevel maps a level onto slog's scale.
func ToSlogLevel(l core.Level) slog.Level {
	switch l {
	case core.TraceLevel:
		return LevelTrace
	case core.DebugLevel:
		return slog.LevelDebug
	case core.InfoLevel:
		return slog.LevelInfo
	case core.WarnLevel:
		return slog.LevelWarn
	case core.ErrorLevel:
		return slog.LevelError
	default:
		return LevelFatal
	}
}

// ToAttr converts a field to a slog.Attr.
func ToAttr(f core.Field) slog.Attr {
	switch f.Type {
	case core.StringType, core.ErrorType:
		return slog.String(f.Key, f.Str)
	case core.IntType, core.Int64Type:
		return slog.Int64(f.Key, f.Int64)
	case core.Uint64Type:
		return slog.Uint64(f.Key, uint64(f.Int64))
	case core.Float64Type:
		return slog.Float64(f.Key, f.Float64)
	case core.BoolType:
		return slog.Bool(f.Key, f.Int64 == 1)
	case core.TimeType:
		return slog.Time(f.Key, time.Unix(0, f.Int64))
	case core.DurationType:
		return slog.Duration(f.Key, time.Duration(f.Int64))
	default:
		return slog.Any(f.Key, f.Any)
	}
}
