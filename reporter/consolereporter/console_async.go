package consolereporter

import (
	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/reporter"
)

// AsyncReporter queues log objects for a dedicated background goroutine.
// Write returns as soon as the object is queued or dropped according to
// the level's OverflowPolicy.
type AsyncReporter struct {
	consoleBase
	async *reporter.Async
}

func newAsyncReporter(cfg Config) *AsyncReporter {
	r := &AsyncReporter{}
	r.init(cfg)
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

// Close drains the queue within DrainTimeout and stops the background
// goroutine. Calling Close twice is a no-op.
func (r *AsyncReporter) Close() error {
	r.async.Close()
	r.closeOnce.Do(func() { close(r.closed) })
	return nil
}
