package formatter

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/philipp01105/rlog/core"
)

// Formatter defines the interface for log formatters
type Formatter interface {
	// Format renders a log object into bytes
	Format(obj *core.LogObject) ([]byte, error)
}

// WriterFormatter is an optional interface that formatters can implement
// to write directly to a writer without intermediate byte slice allocation.
type WriterFormatter interface {
	// FormatTo renders a log object and writes it directly to the writer
	FormatTo(obj *core.LogObject, w io.Writer) error
}

// BufferFormatter is an optional interface that formatters can implement
// to format directly into a caller-provided buffer, avoiding internal
// buffer pool overhead.
type BufferFormatter interface {
	// FormatObject renders a log object into the given buffer.
	FormatObject(obj *core.LogObject, buf *bytes.Buffer)
}

// Config holds common formatter configuration
type Config struct {
	// IncludeCaller enables caller information in log output
	IncludeCaller bool
	// TimestampFormat specifies the time format (empty for RFC3339)
	TimestampFormat string
	// OmitType drops the plain/structured tag from JSON output
	OmitType bool
}

// New returns the formatter registered under name: "text" or "json".
func New(name string, cfg Config) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "text", "console":
		return NewTextFormatter(cfg), nil
	case "json":
		return NewJSONFormatter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown formatter %q", name)
	}
}

// bufferPool is a pool of bytes.Buffer to reduce allocations
var bufferPool = &sync.Pool{
	New: func() interface{} {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 { // Don't keep very large buffers
		return
	}
	bufferPool.Put(buf)
}
