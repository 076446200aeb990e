package slogreporter

import (
	"context"
	"log/slog"

	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/logger"
)

// Handler implements slog.Handler on top of a *logger.Logger, so code
// written against log/slog fans out to the logger's reporters.
type Handler struct {
	l     *logger.Logger
	group string
}

// NewHandler creates a slog.Handler that logs through l. The logger's
// threshold decides Enabled.
func NewHandler(l *logger.Logger) *Handler {
	return &Handler{l: l}
}

// Enabled reports whether the logger admits the mapped level.
func (s *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return s.l.Enabled(FromSlogLevel(level))
}

// Handle converts the record's attributes to fields and emits a
// structured event. The record's PC, when set, becomes the caller.
func (s *Handler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]core.Field, 0, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, s.group, a)
		return true
	})
	return s.l.LogwCaller(FromSlogLevel(record.Level), core.CallerFromPC(record.PC), record.Message, fields...)
}

// WithAttrs returns a Handler whose logger carries attrs as context fields.
func (s *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	fields := make([]core.Field, 0, len(attrs))
	for _, a := range attrs {
		fields = appendAttr(fields, s.group, a)
	}
	return &Handler{l: s.l.With(fields...), group: s.group}
}

// WithGroup returns a Handler that prefixes subsequent keys with name.
func (s *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	group := name
	if s.group != "" {
		group = s.group + "." + name
	}
	return &Handler{l: s.l, group: group}
}

// FromSlogLevel converts a slog.Level to a core.Level.
func FromSlogLevel(level slog.Level) core.Level {
	switch {
	case level >= LevelFatal:
		return core.FatalLevel
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarnLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	case level >= slog.LevelDebug:
		return core.DebugLevel
	default:
		return core.TraceLevel
	}
}

// appendAttr converts a to fields, flattening groups into dotted keys.
func appendAttr(dst []core.Field, group string, a slog.Attr) []core.Field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}

	key := a.Key
	if group != "" && key != "" {
		key = group + "." + key
	} else if key == "" {
		key = group
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return append(dst, core.Field{Key: key, Type: core.StringType, Str: a.Value.String()})
	case slog.KindInt64:
		return append(dst, core.Field{Key: key, Type: core.Int64Type, Int64: a.Value.Int64()})
	case slog.KindUint64:
		return append(dst, core.Field{Key: key, Type: core.Uint64Type, Int64: int64(a.Value.Uint64())})
	case slog.KindFloat64:
		return append(dst, core.Field{Key: key, Type: core.Float64Type, Float64: a.Value.Float64()})
	case slog.KindBool:
		val := int64(0)
		if a.Value.Bool() {
			val = 1
		}
		return append(dst, core.Field{Key: key, Type: core.BoolType, Int64: val})
	case slog.KindTime:
		return append(dst, core.Field{Key: key, Type: core.TimeType, Int64: a.Value.Time().UnixNano()})
	case slog.KindDuration:
		return append(dst, core.Field{Key: key, Type: core.DurationType, Int64: int64(a.Value.Duration())})
	case slog.KindGroup:
		// An inline group (empty key) keeps the current prefix
		for _, ga := range a.Value.Group() {
			dst = appendAttr(dst, key, ga)
		}
		return dst
	default:
		v := a.Value.Any()
		if err, ok := v.(error); ok {
			return append(dst, core.Field{Key: key, Type: core.ErrorType, Str: err.Error()})
		}
		return append(dst, core.Field{Key: key, Type: core.AnyType, Any: v})
	}
}
