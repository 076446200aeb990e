// Package reportertest provides a Reporter that records what it receives,
// for tests of code that logs through a *logger.Logger.
package reportertest

import (
	"sync"

	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/logger"
)

// Recorder stores every log object passed to Write. It is safe for
// concurrent use.
type Recorder struct {
	logger.BaseReporter

	mu     sync.Mutex
	objs   []*core.LogObject
	inits  int
	err    error
	closed bool
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Init records the call and stores l.
func (r *Recorder) Init(l *logger.Logger) {
	r.mu.Lock()
	r.inits++
	r.mu.Unlock()
	r.BaseReporter.Init(l)
}

// Write records obj and returns the error set with FailWith.
func (r *Recorder) Write(obj *core.LogObject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objs = append(r.objs, obj)
	return r.err
}

// FailWith makes subsequent Write calls return err. Objects are still
// recorded. A nil err restores success.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Objects returns the recorded objects in arrival order.
func (r *Recorder) Objects() []*core.LogObject {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*core.LogObject, len(r.objs))
	copy(out, r.objs)
	return out
}

// Messages returns the rendered text of each recorded object.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.objs))
	for i, o := range r.objs {
		out[i] = o.Text()
	}
	return out
}

// Levels returns the level of each recorded object.
func (r *Recorder) Levels() []core.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Level, len(r.objs))
	for i, o := range r.objs {
		out[i] = o.Level()
	}
	return out
}

// Len returns the number of recorded objects.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objs)
}

// Inits returns how many times Init was called.
func (r *Recorder) Inits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inits
}

// Reset drops the recorded objects.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.objs = nil
	r.mu.Unlock()
}

// Close marks the recorder closed; see Closed.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
