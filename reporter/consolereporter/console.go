package consolereporter

import (
	"bytes"
	"io"
	"os"
	"sync"
	"time"

	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/formatter"
	"github.com/philipp01105/rlog/logger"
	"github.com/philipp01105/rlog/reporter"
)

// Reporter is the common surface of the sync and async console reporters.
type Reporter interface {
	logger.Reporter
	io.Closer
	reporter.StatsProvider
}

// lockedWriter wraps an io.Writer with a mutex, acquiring the lock only
// for Write calls. Formatters prepare data in their own pooled buffers
// and call Write once, so the lock is held only during the actual I/O.
type lockedWriter struct {
	mu *sync.Mutex // points to the reporter's mu
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	n, err = lw.w.Write(p)
	lw.mu.Unlock()
	return
}

// isConcurrentSafeWriter returns true if the writer is known to be safe for
// concurrent Write calls, allowing the reporter to skip write-level locking.
func isConcurrentSafeWriter(w io.Writer) bool {
	if w == io.Discard {
		return true
	}
	_, ok := w.(*os.File)
	return ok
}

// consoleBase contains shared fields and methods for console reporters.
type consoleBase struct {
	logger.BaseReporter

	writer          io.Writer
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
	bufferFormatter formatter.BufferFormatter
	concurrentSafe  bool // true if writer is safe for concurrent Write calls
	stats           *reporter.Stats
	mu              sync.Mutex // protects syncBuf and writer
	lw              lockedWriter
	syncBuf         bytes.Buffer
	parBufPool      sync.Pool // *bytes.Buffer for the contended path
	closed          chan struct{}
	closeOnce       sync.Once
}

func (b *consoleBase) init(cfg Config) {
	b.writer = cfg.Writer
	b.formatter = cfg.Formatter
	b.concurrentSafe = cfg.ConcurrentWriter || isConcurrentSafeWriter(cfg.Writer)
	b.stats = reporter.NewStats()
	b.closed = make(chan struct{})

	b.writerFormatter, _ = cfg.Formatter.(formatter.WriterFormatter)
	b.bufferFormatter, _ = cfg.Formatter.(formatter.BufferFormatter)

	b.lw = lockedWriter{mu: &b.mu, w: b.writer}

	if b.bufferFormatter != nil {
		b.syncBuf.Grow(256)
		b.parBufPool = sync.Pool{
			New: func() interface{} {
				buf := new(bytes.Buffer)
				buf.Grow(256)
				return buf
			},
		}
	}
}

// write formats and writes obj.
// Uses TryLock on mu to reuse the reporter-owned buffer when uncontended.
// When contended and bufferFormatter is available, formats into a pooled
// buffer outside the lock and then writes under mu. Otherwise falls
// through to the writerFormatter or generic formatter paths.
func (b *consoleBase) write(obj *core.LogObject) error {
	err := b.format(obj)
	if err != nil {
		b.stats.IncrementErrors()
		return err
	}
	b.stats.IncrementProcessed()
	return nil
}

func (b *consoleBase) format(obj *core.LogObject) error {
	if b.bufferFormatter != nil {
		if b.mu.TryLock() {
			b.syncBuf.Reset()
			b.bufferFormatter.FormatObject(obj, &b.syncBuf)
			_, err := b.writer.Write(b.syncBuf.Bytes())
			b.mu.Unlock()
			return err
		}

		buf := b.parBufPool.Get().(*bytes.Buffer)
		buf.Reset()
		b.bufferFormatter.FormatObject(obj, buf)
		var err error
		if b.concurrentSafe {
			_, err = b.writer.Write(buf.Bytes())
		} else {
			b.mu.Lock()
			_, err = b.writer.Write(buf.Bytes())
			b.mu.Unlock()
		}
		b.parBufPool.Put(buf)
		return err
	}

	if b.writerFormatter != nil {
		if b.concurrentSafe {
			return b.writerFormatter.FormatTo(obj, b.writer)
		}
		return b.writerFormatter.FormatTo(obj, &b.lw)
	}

	data, err := b.formatter.Format(obj)
	if err != nil {
		return err
	}

	if b.concurrentSafe {
		_, err = b.writer.Write(data)
		return err
	}

	b.mu.Lock()
	_, err = b.writer.Write(data)
	b.mu.Unlock()
	return err
}

func (b *consoleBase) isClosed() bool {
	select {
	case <-b.closed:
		return true
	default:
		return false
	}
}

// Stats returns a snapshot of the current statistics
func (b *consoleBase) Stats() reporter.Snapshot {
	return b.stats.GetSnapshot()
}

// Config holds configuration for the console reporters
type Config struct {
	// Writer to write to (default: os.Stdout)
	Writer io.Writer
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
	// Async enables asynchronous writing on a background goroutine
	Async bool
	// BufferSize is the size of the async queue (default: 1000)
	BufferSize int
	// OverflowPolicy defines per-level overflow behavior (default: reporter.DefaultLevelPolicy)
	OverflowPolicy map[core.Level]reporter.OverflowPolicy
	// BlockTimeout is the timeout for the Block overflow policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout bounds how long Close drains the queue (default: 5s)
	DrainTimeout time.Duration
	// ConcurrentWriter indicates the Writer supports concurrent Write calls.
	// Detected automatically for io.Discard and *os.File.
	ConcurrentWriter bool
	// OnError receives write failures of the async goroutine, which has no
	// caller to return them to. Sync writes return their error instead.
	OnError func(error)
}

// applyDefaults fills in zero-value fields with defaults.
func applyDefaults(cfg *Config) {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
}

// New creates a console reporter.
// Returns a *SyncReporter when Async is false, or an *AsyncReporter
// when Async is true.
func New(cfg Config) Reporter {
	applyDefaults(&cfg)
	if cfg.Async {
		return newAsyncReporter(cfg)
	}
	return newSyncReporter(cfg)
}
