package logger

import (
	"github.com/philipp01105/rlog/core"
)

// Level Re-export type and constants for convenience
type Level = core.Level

const (
	SilentLevel = core.SilentLevel
	FatalLevel  = core.FatalLevel
	ErrorLevel  = core.ErrorLevel
	WarnLevel   = core.WarnLevel
	InfoLevel   = core.InfoLevel
	DebugLevel  = core.DebugLevel
	TraceLevel  = core.TraceLevel
)

// ParseLevel converts a string to a Level
func ParseLevel(s string) (Level, error) {
	return core.ParseLevel(s)
}
