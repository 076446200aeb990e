// Package zapreporter forwards log objects to go.uber.org/zap.
//
// Structured fields become typed zap fields, plain arguments become an
// "args" array and the object's timestamp is written as an RFC3339Nano
// "ts" string so zap's own clock never disagrees with the logger's.
package zapreporter
