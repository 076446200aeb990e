// Package zerologreporter forwards log objects to github.com/rs/zerolog.
//
// Fields become typed zerolog event fields, plain arguments an "args"
// array, and the object's timestamp an RFC3339Nano "ts" string.
package zerologreporter
