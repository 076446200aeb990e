package reporter

import (
	"sync"
	"time"

	"github.com/philipp01105/rlog/core"
)

// WriteFunc performs the actual write of one log object.
type WriteFunc func(obj *core.LogObject) error

// AsyncConfig configures an Async queue
type AsyncConfig struct {
	// BufferSize is the queue capacity (default: 1000)
	BufferSize int
	// OverflowPolicy defines per-level overflow behavior (default: DefaultLevelPolicy)
	OverflowPolicy map[core.Level]OverflowPolicy
	// BlockTimeout is the timeout for the Block policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout bounds how long Close drains the queue (default: 5s)
	DrainTimeout time.Duration
	// OnError receives failures of writes made by the background goroutine
	OnError func(error)
}

func (c *AsyncConfig) applyDefaults() {
	if c.BufferSize <= 0 {
		c.BufferSize = 1000
	}
	if c.OverflowPolicy == nil {
		c.OverflowPolicy = DefaultLevelPolicy()
	}
	if c.BlockTimeout == 0 {
		c.BlockTimeout = 100 * time.Millisecond
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = 5 * time.Second
	}
}

// Async is a bounded queue drained by one background goroutine. Async
// reporters embed it and supply the WriteFunc. Log objects are
// immutable, so the queue holds the same instance the logger dispatched.
type Async struct {
	write          WriteFunc
	stats          *Stats
	queue          chan *core.LogObject
	wg             sync.WaitGroup
	overflowPolicy map[core.Level]OverflowPolicy
	blockTimeout   time.Duration
	drainTimeout   time.Duration
	timerMu        sync.Mutex
	blockTimer     *time.Timer
	onError        func(error)
	closed         chan struct{}
	closeOnce      sync.Once
}

// NewAsync starts the background goroutine. write is also called on the
// caller's goroutine when a Block wait times out, so it must be safe for
// concurrent use.
func NewAsync(cfg AsyncConfig, write WriteFunc, stats *Stats) *Async {
	cfg.applyDefaults()
	a := &Async{
		write:          write,
		stats:          stats,
		queue:          make(chan *core.LogObject, cfg.BufferSize),
		overflowPolicy: cfg.OverflowPolicy,
		blockTimeout:   cfg.BlockTimeout,
		drainTimeout:   cfg.DrainTimeout,
		blockTimer:     NewStoppedTimer(),
		onError:        cfg.OnError,
		closed:         make(chan struct{}),
	}
	a.wg.Add(1)
	go a.process()
	return a
}

// Enqueue sends obj to the queue with overflow policy handling.
// Returns ErrClosed after Close.
func (a *Async) Enqueue(obj *core.LogObject) error {
	if a.Closed() {
		return ErrClosed
	}

	policy, ok := a.overflowPolicy[obj.Level()]
	if !ok {
		policy = DropNewest
	}

	select {
	case a.queue <- obj:
		return nil
	default:
	}

	switch policy {
	case Block:
		return a.block(obj)

	case DropOldest:
		select {
		case old := <-a.queue:
			a.stats.IncrementDropped(old.Level())
		default:
		}
		select {
		case a.queue <- obj:
		default:
			// Still full, drop this one
			a.stats.IncrementDropped(obj.Level())
		}
		return nil

	default:
		a.stats.IncrementDropped(obj.Level())
		return nil
	}
}

// block waits up to blockTimeout for queue space and falls back to a
// synchronous write when the wait times out or the queue closes.
func (a *Async) block(obj *core.LogObject) error {
	if !a.timerMu.TryLock() {
		// Another caller owns the shared timer.
		t := time.NewTimer(a.blockTimeout)
		defer t.Stop()
		return a.waitOrWrite(obj, t)
	}
	defer a.timerMu.Unlock()

	a.blockTimer.Reset(a.blockTimeout)
	err := a.waitOrWrite(obj, a.blockTimer)
	StopTimer(a.blockTimer)
	return err
}

func (a *Async) waitOrWrite(obj *core.LogObject, t *time.Timer) error {
	select {
	case a.queue <- obj:
		return nil
	case <-t.C:
		a.stats.IncrementBlocked()
		return a.write(obj)
	case <-a.closed:
		return a.write(obj)
	}
}

func (a *Async) process() {
	defer a.wg.Done()

	for {
		select {
		case obj := <-a.queue:
			a.processWrite(obj)
			// Batch drain without blocking
		batchDrain:
			for {
				select {
				case obj := <-a.queue:
					a.processWrite(obj)
				default:
					break batchDrain
				}
			}
		case <-a.closed:
			deadline := time.After(a.drainTimeout)
			for {
				select {
				case obj := <-a.queue:
					a.processWrite(obj)
				case <-deadline:
					return
				default:
					return
				}
			}
		}
	}
}

func (a *Async) processWrite(obj *core.LogObject) {
	if err := a.write(obj); err != nil && a.onError != nil {
		a.onError(err)
	}
}

// Closed reports whether Close has been called.
func (a *Async) Closed() bool {
	select {
	case <-a.closed:
		return true
	default:
		return false
	}
}

// Close stops accepting objects, drains the queue within DrainTimeout and
// waits for the background goroutine. Subsequent calls return immediately.
func (a *Async) Close() {
	first := false
	a.closeOnce.Do(func() {
		close(a.closed)
		first = true
	})
	if first {
		a.wg.Wait()
	}
}
