// Package logger is the public API of rlog. Most users only need to
// import this package and one reporter package.
//
// A Logger holds a threshold and an ordered registry of Reporters. Each
// call to Trace, Debug, Info, Warn, Error or Fatal (or their structured
// w-suffixed variants) is checked against the threshold; an admitted
// call builds one immutable core.LogObject and hands that same object
// to every registered Reporter, in registration order, before
// returning. There is no package-level logger: build one with the
// Builder and pass it where it is needed.
//
//	log := logger.NewBuilder().
//	    WithLevel(logger.DebugLevel).
//	    WithReporter(console, file).
//	    MustBuild()
//
// AddReporter calls Reporter.Init with the logger before the reporter
// becomes visible to dispatch, so Init always precedes the first Write.
//
// The registry is copy-on-write. A dispatch iterates the snapshot that
// was current when it started: reporters added later are not seen by
// it, while a reporter removed later is skipped when its turn comes.
// After RemoveReporter returns, the reporter receives no further
// writes.
//
// A Reporter that returns an error or panics does not stop delivery to
// the reporters after it. The failures of one dispatch are combined
// with multierr and passed to the ErrorHandler; the default writes them
// to stderr. Fatal logs and returns; it never exits the process.
//
// Level checks happen before any allocation, so filtered-out messages
// cost only an atomic load and an integer comparison.
package logger
