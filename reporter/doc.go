// Package reporter holds infrastructure shared by the built-in reporters:
// overflow policies for async queues, per-level drop statistics and timer
// helpers.
//
// The reporters themselves live in subpackages:
//
//   - consolereporter writes formatted lines to an io.Writer, sync or async
//   - filereporter writes to a file with size, age and interval rotation
//   - zapreporter forwards log objects to a *zap.Logger
//   - zerologreporter forwards log objects to a zerolog.Logger
//   - logrusreporter forwards log objects to a *logrus.Logger
//   - slogreporter forwards log objects to a log/slog Handler
//   - reportertest records calls for use in tests
package reporter
