package filereporter

import (
	"os"

	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/reporter"
)

// AsyncReporter queues log objects for a background goroutine that owns
// all file writes except Block-policy timeouts, which write inline.
type AsyncReporter struct {
	fileBase
	async *reporter.Async
}

func newAsyncReporter(cfg Config, file *os.File, fileSize int64) *AsyncReporter {
	r := &AsyncReporter{}
	initFileBase(&r.fileBase, cfg, file, fileSize)
	r.async = reporter.NewAsync(reporter.AsyncConfig{
		BufferSize:     cfg.BufferSize,
		OverflowPolicy: cfg.OverflowPolicy,
		BlockTimeout:   cfg.BlockTimeout,
		DrainTimeout:   cfg.DrainTimeout,
		OnError:        cfg.OnError,
	}, r.write, r.stats)
	return r
}

// Write sends obj to the queue.
func (r *AsyncReporter) Write(obj *core.LogObject) error {
	return r.async.Enqueue(obj)
}

// Close drains the queue, then flushes and closes the file.
func (r *AsyncReporter) Close() error {
	r.async.Close()
	return r.closeFile()
}
