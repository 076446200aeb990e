package logger

import (
	"time"

	"github.com/philipp01105/rlog/core"
)

// Field is re-exported so structured call sites need a single import.
type Field = core.Field

// String creates a string field
func String(key, val string) Field {
	return Field{Key: key, Type: core.StringType, Str: val}
}

// Int creates an int field
func Int(key string, val int) Field {
	return Field{Key: key, Type: core.IntType, Int64: int64(val)}
}

// Int64 creates an int64 field
func Int64(key string, val int64) Field {
	return Field{Key: key, Type: core.Int64Type, Int64: val}
}

// Uint64 creates a uint64 field
func Uint64(key string, val uint64) Field {
	return Field{Key: key, Type: core.Uint64Type, Int64: int64(val)}
}

// Float64 creates a float64 field
func Float64(key string, val float64) Field {
	return Field{Key: key, Type: core.Float64Type, Float64: val}
}

// Bool creates a bool field
func Bool(key string, val bool) Field {
	var v int64
	if val {
		v = 1
	}
	return Field{Key: key, Type: core.BoolType, Int64: v}
}

// Time creates a time field
func Time(key string, val time.Time) Field {
	return Field{Key: key, Type: core.TimeType, Int64: val.UnixNano()}
}

// Duration creates a duration field
func Duration(key string, val time.Duration) Field {
	return Field{Key: key, Type: core.DurationType, Int64: int64(val)}
}

// Err creates an error field keyed "error"
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Type: core.ErrorType}
	}
	return Field{Key: "error", Type: core.ErrorType, Str: err.Error()}
}

// Any creates a field with any value
func Any(key string, val interface{}) Field {
	return Field{Key: key, Type: core.AnyType, Any: val}
}
