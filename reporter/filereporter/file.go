package filereporter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/trickstertwo/xclock"
	"go.uber.org/multierr"

	"github.com/philipp01105/rlog/core"
	"github.com/philipp01105/rlog/formatter"
	"github.com/philipp01105/rlog/logger"
	"github.com/philipp01105/rlog/reporter"
)

// backupTimeFormat is the timestamp appended to rotated files.
const backupTimeFormat = "2006-01-02T15-04-05"

// Reporter is the common surface of the sync and async file reporters.
type Reporter interface {
	logger.Reporter
	io.Closer
	reporter.StatsProvider
	// Sync flushes buffered output to the file and fsyncs it.
	Sync() error
	// Rotate forces a rotation regardless of the configured triggers.
	Rotate() error
}

// sizeTrackingWriter wraps an io.Writer and tracks total bytes written
type sizeTrackingWriter struct {
	w       io.Writer
	written int64
}

func (s *sizeTrackingWriter) Write(p []byte) (n int, err error) {
	n, err = s.w.Write(p)
	s.written += int64(n)
	return
}

func (s *sizeTrackingWriter) reset(w io.Writer) {
	s.w = w
	s.written = 0
}

// fileBase contains shared fields and methods for file reporters.
type fileBase struct {
	logger.BaseReporter

	filename        string
	file            *os.File
	bufWriter       *bufio.Writer
	sizeWriter      *sizeTrackingWriter
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
	bufferFormatter formatter.BufferFormatter
	mu              sync.Mutex
	syncBuf         bytes.Buffer
	maxSize         int64
	maxAge          time.Duration
	maxBackups      int
	rotateInterval  time.Duration
	currentSize     int64
	lastRotateTime  time.Time
	hasRotation     bool
	now             func() time.Time
	stats           *reporter.Stats
	closed          bool
}

// write formats and writes obj, rotating first when a trigger fired.
func (b *fileBase) write(obj *core.LogObject) error {
	err := b.writeLocked(obj)
	if err != nil {
		b.stats.IncrementErrors()
		return err
	}
	b.stats.IncrementProcessed()
	return nil
}

func (b *fileBase) writeLocked(obj *core.LogObject) error {
	var data []byte
	if b.bufferFormatter == nil && b.writerFormatter == nil {
		// Format outside the lock; only the generic path allocates.
		var err error
		if data, err = b.formatter.Format(obj); err != nil {
			return err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return reporter.ErrClosed
	}
	if b.file == nil {
		if err := b.reopen(); err != nil {
			return fmt.Errorf("reopen %s: %w", b.filename, err)
		}
	}

	// A failed rotation keeps the current file, so the event is still written.
	rotateErr := b.rotateIfNeeded()
	if b.file == nil {
		return rotateErr
	}
	return multierr.Append(rotateErr, b.writeObject(obj, data))
}

// writeObject appends one formatted object. Caller holds mu.
func (b *fileBase) writeObject(obj *core.LogObject, data []byte) error {
	switch {
	case b.bufferFormatter != nil:
		b.syncBuf.Reset()
		b.bufferFormatter.FormatObject(obj, &b.syncBuf)
		n, err := b.bufWriter.Write(b.syncBuf.Bytes())
		b.currentSize += int64(n)
		return err

	case b.writerFormatter != nil:
		prevFlushed := b.sizeWriter.written
		prevBuffered := b.bufWriter.Buffered()
		err := b.writerFormatter.FormatTo(obj, b.bufWriter)
		b.currentSize += (b.sizeWriter.written - prevFlushed) + int64(b.bufWriter.Buffered()-prevBuffered)
		return err

	default:
		n, err := b.bufWriter.Write(data)
		b.currentSize += int64(n)
		return err
	}
}

// rotateIfNeeded checks the triggers and rotates. Caller holds mu.
func (b *fileBase) rotateIfNeeded() error {
	if !b.hasRotation {
		return nil
	}

	now := b.now()
	needRotate := false

	if b.maxSize > 0 && b.currentSize >= b.maxSize {
		needRotate = true
	}

	// Age of the current file
	if b.maxAge > 0 && now.Sub(b.lastRotateTime) >= b.maxAge {
		needRotate = true
	}

	// Interval boundaries are aligned to wall-clock multiples
	if b.rotateInterval > 0 && !now.Truncate(b.rotateInterval).Equal(b.lastRotateTime.Truncate(b.rotateInterval)) {
		needRotate = true
	}

	if !needRotate {
		return nil
	}

	return b.rotate(now)
}

// rotate renames the current file to a timestamped backup and opens a
// fresh one. When the rename fails the original file is reopened and the
// triggers restart from its current size and now. b.file is nil only when
// no file could be opened; the next write retries. Caller holds mu.
func (b *fileBase) rotate(now time.Time) error {
	if b.file == nil {
		if err := b.reopen(); err != nil {
			return fmt.Errorf("rotate %s: %w", b.filename, err)
		}
	}
	if err := b.bufWriter.Flush(); err != nil {
		return err
	}
	if err := b.file.Sync(); err != nil {
		return err
	}
	err := b.file.Close()
	b.file = nil
	if err != nil {
		return err
	}

	rotatedName := b.backupName(now)

	if err := os.Rename(b.filename, rotatedName); err != nil {
		b.lastRotateTime = now
		if openErr := b.reopen(); openErr != nil {
			err = multierr.Append(err, openErr)
		}
		return fmt.Errorf("rotate %s: %w", b.filename, err)
	}

	if err := b.reopen(); err != nil {
		return fmt.Errorf("rotate %s: %w", b.filename, err)
	}
	b.lastRotateTime = now

	if b.maxBackups > 0 {
		return b.cleanupOldBackups()
	}
	return nil
}

// reopen opens filename and points the writers at it, taking the size
// from the file itself. Caller holds mu.
func (b *fileBase) reopen() error {
	file, err := openFile(b.filename)
	if err != nil {
		return err
	}
	var size int64
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}
	b.file = file
	b.sizeWriter.reset(file)
	b.bufWriter.Reset(b.sizeWriter)
	b.currentSize = size
	return nil
}

// backupName returns a free backup path for now. Rotations within the
// same second get a numeric suffix.
func (b *fileBase) backupName(now time.Time) string {
	name := b.filename + "." + now.Format(backupTimeFormat)
	candidate := name
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
		candidate = name + "." + strconv.Itoa(i)
	}
}

type backup struct {
	path  string
	stamp string
	seq   int
}

// listBackups returns the rotated files of filename, oldest first.
func listBackups(filename string) ([]backup, error) {
	prefix := filepath.Base(filename) + "."
	entries, err := os.ReadDir(filepath.Dir(filename))
	if err != nil {
		return nil, err
	}

	var backups []backup
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		stamp, seqStr, _ := strings.Cut(rest, ".")
		if _, err := time.Parse(backupTimeFormat, stamp); err != nil {
			continue
		}
		seq := 0
		if seqStr != "" {
			if seq, err = strconv.Atoi(seqStr); err != nil {
				continue
			}
		}
		backups = append(backups, backup{
			path:  filepath.Join(filepath.Dir(filename), name),
			stamp: stamp,
			seq:   seq,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].stamp != backups[j].stamp {
			return backups[i].stamp < backups[j].stamp
		}
		return backups[i].seq < backups[j].seq
	})
	return backups, nil
}

// cleanupOldBackups removes the oldest backups beyond maxBackups
func (b *fileBase) cleanupOldBackups() error {
	backups, err := listBackups(b.filename)
	if err != nil {
		return err
	}
	if len(backups) <= b.maxBackups {
		return nil
	}

	var errs error
	for _, old := range backups[:len(backups)-b.maxBackups] {
		errs = multierr.Append(errs, os.Remove(old.path))
	}
	return errs
}

// Rotate forces a rotation.
func (b *fileBase) Rotate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return reporter.ErrClosed
	}
	return b.rotate(b.now())
}

// Sync flushes buffered output and fsyncs the file.
func (b *fileBase) Sync() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return reporter.ErrClosed
	}
	if b.file == nil {
		if err := b.reopen(); err != nil {
			return fmt.Errorf("reopen %s: %w", b.filename, err)
		}
	}
	return multierr.Append(b.bufWriter.Flush(), b.file.Sync())
}

// Stats returns a snapshot of the current statistics
func (b *fileBase) Stats() reporter.Snapshot {
	return b.stats.GetSnapshot()
}

// closeFile flushes, syncs and closes the underlying file.
func (b *fileBase) closeFile() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.file == nil {
		return nil
	}

	return multierr.Combine(
		b.bufWriter.Flush(),
		b.file.Sync(),
		b.file.Close(),
	)
}

// Config holds configuration for the file reporters
type Config struct {
	// Filename is the path to the log file
	Filename string
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
	// Async enables asynchronous writing on a background goroutine
	Async bool
	// BufferSize is the size of the async queue (default: 1000)
	BufferSize int
	// MaxSize is the maximum size in bytes before rotation (0 = no size rotation)
	MaxSize int64
	// MaxAge is the maximum age of the current file before rotation (0 = no age rotation)
	MaxAge time.Duration
	// MaxBackups is the maximum number of rotated files to retain (0 = keep all)
	MaxBackups int
	// RotateInterval rotates on wall-clock boundaries, e.g. every hour on the hour
	RotateInterval time.Duration
	// OverflowPolicy defines per-level overflow behavior (default: reporter.DefaultLevelPolicy)
	OverflowPolicy map[core.Level]reporter.OverflowPolicy
	// BlockTimeout is the timeout for the Block overflow policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout bounds how long Close drains the queue (default: 5s)
	DrainTimeout time.Duration
	// OnError receives write failures of the async goroutine
	OnError func(error)
	// Clock drives rotation decisions and backup names (default: xclock.Now)
	Clock func() time.Time
}

// applyDefaults fills in zero-value fields with defaults.
func applyDefaults(cfg *Config) {
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
	if cfg.Clock == nil {
		cfg.Clock = xclock.Now
	}
}

func openFile(name string) (*os.File, error) {
	return os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// initFileBase initializes b with the given config and opened file.
func initFileBase(b *fileBase, cfg Config, file *os.File, fileSize int64) {
	sw := &sizeTrackingWriter{w: file}
	b.filename = cfg.Filename
	b.file = file
	b.sizeWriter = sw
	b.bufWriter = bufio.NewWriterSize(sw, 4096)
	b.formatter = cfg.Formatter
	b.maxSize = cfg.MaxSize
	b.maxAge = cfg.MaxAge
	b.maxBackups = cfg.MaxBackups
	b.rotateInterval = cfg.RotateInterval
	b.currentSize = fileSize
	b.now = cfg.Clock
	b.lastRotateTime = b.now()
	b.hasRotation = cfg.MaxSize > 0 || cfg.MaxAge > 0 || cfg.RotateInterval > 0
	b.stats = reporter.NewStats()

	b.writerFormatter, _ = cfg.Formatter.(formatter.WriterFormatter)
	b.bufferFormatter, _ = cfg.Formatter.(formatter.BufferFormatter)

	if b.bufferFormatter != nil {
		b.syncBuf.Grow(256)
	}
}

// New creates a file reporter, creating the parent directory when needed.
// Returns a *SyncReporter when Async is false, or an *AsyncReporter
// when Async is true.
func New(cfg Config) (Reporter, error) {
	if cfg.Filename == "" {
		return nil, errors.New("filereporter: filename is required")
	}
	applyDefaults(&cfg)

	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0755); err != nil {
		return nil, fmt.Errorf("filereporter: %w", err)
	}

	file, err := openFile(cfg.Filename)
	if err != nil {
		return nil, fmt.Errorf("filereporter: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("filereporter: %w", multierr.Append(err, file.Close()))
	}

	if cfg.Async {
		return newAsyncReporter(cfg, file, info.Size()), nil
	}
	return newSyncReporter(cfg, file, info.Size()), nil
}
