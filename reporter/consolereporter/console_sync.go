package consolereporter

import (
	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/reporter"
)

// SyncReporter writes each log object on the caller's goroutine before
// Write returns.
type SyncReporter struct {
	consoleBase
}

func newSyncReporter(cfg Config) *SyncReporter {
	r := &SyncReporter{}
	r.init(cfg)
	return r
}

// Write formats obj and writes it. Returns reporter.ErrClosed after Close.
func (r *SyncReporter) Write(obj *core.LogObject) error {
	if r.isClosed() {
		return reporter.ErrClosed
	}
	return r.write(obj)
}

// Close marks the reporter closed. The writer is not closed; it is owned
// by the caller.
func (r *SyncReporter) Close() error {
	r.closeOnce.Do(func() { close(r.closed) })
	return nil
}
