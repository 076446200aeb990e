// Package filereporter provides reporters that append formatted log
// objects to a file with optional rotation.
//
// A rotation renames the current file to <name>.<timestamp> and opens a
// fresh one. It is triggered by any of:
//
//   - MaxSize: the current file reached the byte limit
//   - MaxAge: the current file is older than the limit
//   - RotateInterval: a wall-clock boundary was crossed
//
// MaxBackups keeps only the newest rotated files. Rotation checks use
// Config.Clock, which defaults to xclock.Now so tests can freeze time.
//
// SyncReporter writes on the caller's goroutine into a bufio.Writer;
// AsyncReporter shares the reporter.Async queue with the console reporter.
package filereporter
