// Package formatter renders a *core.LogObject into bytes for the
// reporters that write to byte streams (console, file).
//
// Formatter returns a []byte; WriterFormatter writes straight to an
// io.Writer and BufferFormatter appends into a caller-owned buffer.
// Reporters check for the optional interfaces once at construction.
//
// TextFormatter writes one line per event:
//
//	2026-01-15T12:00:00Z [INFO] [main.go:42] message arg1 arg2 key=value
//
// JSONFormatter writes one JSON document per line with time, level,
// type, message, an optional caller object, an args array for plain
// events and one top-level key per structured field.
//
// Buffers larger than 64 KiB are not returned to the pool.
package formatter
