// Package consolereporter provides reporters that write formatted log
// objects to any io.Writer (default: os.Stdout).
//
// Two variants share one formatting core:
//
//   - SyncReporter writes on the caller's goroutine. It reuses an owned
//     buffer under TryLock and falls back to pooled buffers when contended.
//   - AsyncReporter hands objects to a background goroutine through a
//     bounded queue with a per-level OverflowPolicy.
//
// New picks the variant from Config.Async.
package consolereporter
