package core

import (
	"sync"
	"sync/atomic"
	"time"
)

// CoarseResolution is the refresh period of the coarse clock.
const CoarseResolution = 500 * time.Microsecond

var (
	coarseClockOnce sync.Once
	coarseNow       atomic.Pointer[time.Time]
)

// StartCoarseClock starts the background goroutine that caches
// time.Now() every CoarseResolution. It is safe to call multiple times;
// the goroutine is started exactly once and runs for the lifetime of
// the process.
func StartCoarseClock() {
	coarseClockOnce.Do(func() {
		t := time.Now()
		coarseNow.Store(&t)
		go func() {
			ticker := time.NewTicker(CoarseResolution)
			for range ticker.C {
				t := time.Now()
				coarseNow.Store(&t)
			}
		}()
	})
}

// CoarseNow returns the most recently cached time. It starts the clock
// on first use.
func CoarseNow() time.Time {
	p := coarseNow.Load()
	if p == nil {
		StartCoarseClock()
		p = coarseNow.Load()
	}
	return *p
}
