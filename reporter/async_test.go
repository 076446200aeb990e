package reporter

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/rlog/core"
)

type collector struct {
	mu   sync.Mutex
	msgs []string
}

func (c *collector) write(obj *core.LogObject) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, obj.Message())
	return nil
}

func (c *collector) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

func obj(level core.Level, msg string) *core.LogObject {
	return core.NewLogObject(time.Now(), level, msg, nil)
}

func TestAsync_PreservesOrder(t *testing.T) {
	c := &collector{}
	a := NewAsync(AsyncConfig{BufferSize: 100}, c.write, NewStats())

	for _, m := range []string{"a", "b", "c", "d"} {
		require.NoError(t, a.Enqueue(obj(core.InfoLevel, m)))
	}
	a.Close()

	assert.Equal(t, []string{"a", "b", "c", "d"}, c.messages())
	assert.True(t, a.Closed())
	assert.ErrorIs(t, a.Enqueue(obj(core.InfoLevel, "late")), ErrClosed)
}

func TestAsync_OnError(t *testing.T) {
	errCh := make(chan error, 1)
	a := NewAsync(AsyncConfig{OnError: func(err error) { errCh <- err }}, func(*core.LogObject) error {
		return errors.New("write failed")
	}, NewStats())
	defer a.Close()

	require.NoError(t, a.Enqueue(obj(core.ErrorLevel, "x")))

	select {
	case err := <-errCh:
		assert.EqualError(t, err, "write failed")
	case <-time.After(time.Second):
		t.Fatal("OnError not called")
	}
}

func TestAsync_DropNewestWhenFull(t *testing.T) {
	release := make(chan struct{})
	stats := NewStats()
	a := NewAsync(AsyncConfig{
		BufferSize:     1,
		OverflowPolicy: map[core.Level]OverflowPolicy{core.DebugLevel: DropNewest},
	}, func(*core.LogObject) error {
		<-release
		return nil
	}, stats)

	for range 5 {
		require.NoError(t, a.Enqueue(obj(core.DebugLevel, "d")))
	}
	close(release)
	a.Close()

	// One in flight and one queued at most; the rest were dropped.
	assert.GreaterOrEqual(t, stats.GetDropped(core.DebugLevel), uint64(3))
}

func TestAsync_CloseTwice(t *testing.T) {
	a := NewAsync(AsyncConfig{}, func(*core.LogObject) error { return nil }, NewStats())
	a.Close()
	a.Close()
}
