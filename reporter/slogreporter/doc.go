// Package slogreporter bridges the logger and log/slog in both
// directions.
//
// Reporter forwards log objects into any slog.Handler, so the standard
// library's text and JSON handlers can serve as sinks. Handler goes the
// other way: it implements slog.Handler over a *logger.Logger so packages
// that log through slog reach every registered reporter.
//
// slog has no trace or fatal level; LevelTrace and LevelFatal sit four
// steps below Debug and above Error.
package slogreporter
