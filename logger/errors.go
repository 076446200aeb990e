package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/trickstertwo/xclock"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/rlog/core"
)

// ErrInvalidLevel is re-exported from core for errors.Is checks at call sites.
var ErrInvalidLevel = core.ErrInvalidLevel

// ReporterError describes one failed Write during a dispatch.
type ReporterError struct {
	// Index is the position of the reporter in the dispatch snapshot
	Index    int
	Reporter Reporter
	Level    core.Level
	Message  string
	// Panicked is true when Write panicked instead of returning an error
	Panicked bool
	Err      error
}

func (e *ReporterError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("reporter #%d (%T) panicked on %s %q: %v", e.Index, e.Reporter, e.Level, e.Message, e.Err)
	}
	return fmt.Sprintf("reporter #%d (%T) failed on %s %q: %v", e.Index, e.Reporter, e.Level, e.Message, e.Err)
}

func (e *ReporterError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives the failures of a dispatch after every reporter
// has been called. err combines one *ReporterError per failed reporter;
// multierr.Errors splits it.
type ErrorHandler func(err error)

// errorOutput mirrors zap's internal ErrorOutput: a locked stderr.
var errorOutput zapcore.WriteSyncer = zapcore.Lock(zapcore.AddSync(os.Stderr))

// StderrErrorHandler writes every failure on its own line to stderr.
func StderrErrorHandler(err error) {
	writeErrors(errorOutput, err)
}

// WriterErrorHandler returns an ErrorHandler writing to ws.
func WriterErrorHandler(ws zapcore.WriteSyncer) ErrorHandler {
	return func(err error) {
		writeErrors(ws, err)
	}
}

func writeErrors(ws zapcore.WriteSyncer, err error) {
	now := xclock.Now().Format(time.RFC3339)
	for _, e := range multierr.Errors(err) {
		fmt.Fprintf(ws, "%s rlog: %v\n", now, e)
	}
	_ = ws.Sync()
}

// IgnoreErrors discards dispatch failures.
func IgnoreErrors(error) {}
