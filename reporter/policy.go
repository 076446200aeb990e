package reporter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/philipp01105/rlog/core"
)

// OverflowPolicy defines how an async reporter handles a full queue
type OverflowPolicy int

const (
	// DropNewest drops the incoming log object when the queue is full
	DropNewest OverflowPolicy = iota
	// DropOldest evicts the oldest queued object to make room
	DropOldest
	// Block waits for space up to a timeout, then writes synchronously
	Block
)

// String returns the string representation of the policy
func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// ParseOverflowPolicy converts a policy name such as "drop_newest",
// "DropOldest" or "block" to an OverflowPolicy.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(strings.TrimSpace(s))) {
	case "dropnewest", "":
		return DropNewest, nil
	case "dropoldest":
		return DropOldest, nil
	case "block":
		return Block, nil
	default:
		return DropNewest, fmt.Errorf("unknown overflow policy %q", s)
	}
}

// DefaultLevelPolicy returns the default level-based overflow policies.
// Verbose levels are dropped under pressure; error and fatal block.
func DefaultLevelPolicy() map[core.Level]OverflowPolicy {
	return map[core.Level]OverflowPolicy{
		core.TraceLevel: DropNewest,
		core.DebugLevel: DropNewest,
		core.InfoLevel:  DropNewest,
		core.WarnLevel:  DropNewest,
		core.ErrorLevel: Block,
		core.FatalLevel: Block,
	}
}

// NewStoppedTimer returns a timer that is stopped and drained, ready for
// Reset. Async reporters keep one per instance for Block timeouts.
func NewStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	StopTimer(t)
	return t
}

// StopTimer stops t and drains its channel if it already fired.
func StopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// ErrClosed is returned by Write after a reporter has been closed.
var ErrClosed = errors.New("reporter is closed")
