package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLevel is returned when a value outside the closed set of
// levels is used as a threshold or as an event level.
var ErrInvalidLevel = errors.New("invalid log level")

// Level represents the severity of a log event. The numeric value is the
// rank: a lower rank is more severe.
type Level int8

const (
	// SilentLevel is only meaningful as a threshold and admits nothing
	SilentLevel Level = iota
	// FatalLevel for unrecoverable conditions (does not exit the process)
	FatalLevel
	// ErrorLevel for error messages
	ErrorLevel
	// WarnLevel for warning messages
	WarnLevel
	// InfoLevel for general informational messages (default)
	InfoLevel
	// DebugLevel for detailed debugging information
	DebugLevel
	// TraceLevel for the most verbose diagnostics
	TraceLevel
)

// NumLevels is the size of the closed set, silent included.
const NumLevels = int(TraceLevel) + 1

var levelNames = [NumLevels]string{
	SilentLevel: "silent",
	FatalLevel:  "fatal",
	ErrorLevel:  "error",
	WarnLevel:   "warn",
	InfoLevel:   "info",
	DebugLevel:  "debug",
	TraceLevel:  "trace",
}

// Rank returns the integer ordering key of the level.
func (l Level) Rank() int {
	return int(l)
}

// Valid reports whether l belongs to the closed set of levels.
func (l Level) Valid() bool {
	return l >= SilentLevel && l <= TraceLevel
}

// Emittable reports whether events may carry this level. Silent is a
// threshold value only.
func (l Level) Emittable() bool {
	return l > SilentLevel && l <= TraceLevel
}

// String returns the lower-case name of the level
func (l Level) String() string {
	if !l.Valid() {
		return "unknown"
	}
	return levelNames[l]
}

// CapitalString returns the upper-case name of the level, as used by
// the text and JSON formatters.
func (l Level) CapitalString() string {
	return strings.ToUpper(l.String())
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel converts a level name to a Level. Unknown names are an
// error rather than a silent fallback to a default.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return SilentLevel, nil
	case "fatal":
		return FatalLevel, nil
	case "error":
		return ErrorLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "info":
		return InfoLevel, nil
	case "debug":
		return DebugLevel, nil
	case "trace":
		return TraceLevel, nil
	default:
		return SilentLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// MustParseLevel is like ParseLevel but panics on unknown names.
func MustParseLevel(s string) Level {
	l, err := ParseLevel(s)
	if err != nil {
		panic(err)
	}
	return l
}

// AllLevels returns the emittable levels, most severe first.
func AllLevels() []Level {
	return []Level{FatalLevel, ErrorLevel, WarnLevel, InfoLevel, DebugLevel, TraceLevel}
}

// Admits reports whether an event at candidate passes threshold, i.e.
// candidate is at least as severe as threshold. A silent threshold
// admits nothing.
func Admits(threshold, candidate Level) bool {
	if !candidate.Emittable() || !threshold.Valid() {
		return false
	}
	return candidate.Rank() <= threshold.Rank()
}
