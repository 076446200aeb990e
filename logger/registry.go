package logger

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// registration is one registry slot. removed is flipped by
// RemoveReporter so that a dispatch already iterating an older snapshot
// skips the slot from that point on.
type registration struct {
	reporter Reporter
	removed  atomic.Bool
}

// registry is an ordered, copy-on-write list of registrations. Readers
// load the current slice without locking; writers serialize on mu and
// publish a fresh slice. Published slices are never modified.
type registry struct {
	mu      sync.Mutex
	entries atomic.Pointer[[]*registration]
}

func (r *registry) snapshot() []*registration {
	p := r.entries.Load()
	if p == nil {
		return nil
	}
	return *p
}

func (r *registry) add(rep Reporter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snapshot()
	next := make([]*registration, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, &registration{reporter: rep})
	r.entries.Store(&next)
}

// remove drops the first registration holding rep.
func (r *registry) remove(rep Reporter) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snapshot()
	for i, reg := range cur {
		if !sameReporter(reg.reporter, rep) {
			continue
		}
		reg.removed.Store(true)
		next := make([]*registration, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		r.entries.Store(&next)
		return true
	}
	return false
}

func (r *registry) reporters() []Reporter {
	cur := r.snapshot()
	if len(cur) == 0 {
		return nil
	}
	out := make([]Reporter, len(cur))
	for i, reg := range cur {
		out[i] = reg.reporter
	}
	return out
}

// sameReporter reports identity of two reporters. Values whose dynamic
// type cannot be compared never match.
func sameReporter(a, b Reporter) (same bool) {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	// Comparable structs may still hold incomparable interface values.
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
