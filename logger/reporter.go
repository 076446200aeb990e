package logger

import (
	"github.com/philipp01105/rlog/core"
)

// Reporter is a sink that receives admitted log objects from a Logger.
//
// Init is called once by AddReporter before the reporter becomes visible
// to any dispatch. Write is only ever called with objects that already
// passed the owning Logger's threshold; the object is shared with the
// other reporters of the same dispatch and must not be retained beyond
// its documented immutability guarantees.
type Reporter interface {
	// Init stores the back-reference to the owning logger
	Init(l *Logger)

	// Write processes one log object
	Write(obj *core.LogObject) error
}

// ReporterFunc adapts an ordinary function to the Reporter interface.
// Init is a no-op.
type ReporterFunc func(obj *core.LogObject) error

// Init implements Reporter.
func (f ReporterFunc) Init(*Logger) {}

// Write implements Reporter.
func (f ReporterFunc) Write(obj *core.LogObject) error { return f(obj) }

// BaseReporter can be embedded by reporters that need the owning logger,
// e.g. to consult its threshold or to log their own failures.
type BaseReporter struct {
	logger *Logger
}

// Init stores l. Calling it again overwrites the previous reference.
func (b *BaseReporter) Init(l *Logger) {
	b.logger = l
}

// Logger returns the logger passed to Init, or nil before registration.
func (b *BaseReporter) Logger() *Logger {
	return b.logger
}
