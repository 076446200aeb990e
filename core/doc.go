// Package core defines the shared types of rlog.
//
// Level is a closed, totally ordered set of severities. Its numeric
// value is the rank: lower is more severe, and Silent (rank 0) is a
// threshold-only value that admits nothing. Admits is the single
// filtering rule used by the logger.
//
// LogObject is the immutable record of one event. It is built once per
// admitted call and the same pointer is handed to every Reporter, so
// its fields are unexported and slice accessors return copies. The Type
// tag (plain or structured) is chosen by the caller through the method
// it uses, never inferred from the message.
//
// Field encodes values into fixed-size numeric fields (Int64, Float64)
// wherever possible so that common types like int, bool, and time.Time
// never escape to the heap. The Any field exists as a fallback for
// arbitrary types but will cause an allocation.
package core
