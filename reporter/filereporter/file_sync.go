package filereporter

import (
	"os"

	"github.com/philipp01105/rlog/core"
)

// SyncReporter writes each log object into the file buffer before Write
// returns. Call Sync to force the buffer to disk.
type SyncReporter struct {
	fileBase
}

func newSyncReporter(cfg Config, file *os.File, fileSize int64) *SyncReporter {
	r := &SyncReporter{}
	initFileBase(&r.fileBase, cfg, file, fileSize)
	return r
}

// Write formats obj and appends it to the file.
func (r *SyncReporter) Write(obj *core.LogObject) error {
	return r.write(obj)
}

// Close flushes and closes the file. Calling Close twice is a no-op.
func (r *SyncReporter) Close() error {
	return r.closeFile()
}
