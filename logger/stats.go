package logger

import (
	"sync/atomic"

	"github.com/philipp01105/rlog/core"
)

// Stats tracks dispatch counters of a Logger and its children
type Stats struct {
	// Per-level counters of admitted events that reached a dispatch
	dispatched [core.NumLevels]atomic.Uint64
	// Per-level counters of events rejected by the threshold
	filtered [core.NumLevels]atomic.Uint64
	// Writes that returned without error
	delivered atomic.Uint64
	// Writes that returned an error or panicked
	failed atomic.Uint64
}

func newStats() *Stats {
	return &Stats{}
}

func (s *Stats) incDispatched(level core.Level) {
	s.dispatched[level].Add(1)
}

func (s *Stats) incFiltered(level core.Level) {
	if level.Valid() {
		s.filtered[level].Add(1)
	}
}

// Dispatched returns the dispatch count for a level
func (s *Stats) Dispatched(level core.Level) uint64 {
	if !level.Valid() {
		return 0
	}
	return s.dispatched[level].Load()
}

// Filtered returns the number of events at level rejected by the threshold
func (s *Stats) Filtered(level core.Level) uint64 {
	if !level.Valid() {
		return 0
	}
	return s.filtered[level].Load()
}

// Delivered returns the number of successful reporter writes
func (s *Stats) Delivered() uint64 {
	return s.delivered.Load()
}

// Failed returns the number of failed reporter writes
func (s *Stats) Failed() uint64 {
	return s.failed.Load()
}

// Reset resets all counters to zero
func (s *Stats) Reset() {
	for i := range s.dispatched {
		s.dispatched[i].Store(0)
		s.filtered[i].Store(0)
	}
	s.delivered.Store(0)
	s.failed.Store(0)
}

// Snapshot is a point-in-time copy of Stats
type Snapshot struct {
	Dispatched map[core.Level]uint64
	Filtered   map[core.Level]uint64
	Delivered  uint64
	Failed     uint64
}

// TotalDispatched sums Dispatched over all levels.
func (s Snapshot) TotalDispatched() uint64 {
	var n uint64
	for _, v := range s.Dispatched {
		n += v
	}
	return n
}

// GetSnapshot returns a snapshot of current statistics
func (s *Stats) GetSnapshot() Snapshot {
	snap := Snapshot{
		Dispatched: make(map[core.Level]uint64, core.NumLevels-1),
		Filtered:   make(map[core.Level]uint64, core.NumLevels-1),
		Delivered:  s.Delivered(),
		Failed:     s.Failed(),
	}
	for _, l := range core.AllLevels() {
		snap.Dispatched[l] = s.Dispatched(l)
		snap.Filtered[l] = s.Filtered(l)
	}
	return snap
}
