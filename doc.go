// Package mprobe is an in-process instrumentation library. Application code
// declares named, tagged metric sources, pushes typed data points through them
// at call sites, and a single pluggable reporter receives the data points that
// belong to active sources.
//
// A source is declared once with a fixed tag schema and field schema. Whether a
// source actually produces data is decided by a process-wide activation
// predicate: an enable-all flag plus a set of enabled tag names. The cost of a
// disabled source at a call site is one boolean check; the closures that would
// build tags and fields are never invoked.
//
// Registry mutation (source creation, predicate updates, reporter installation)
// assumes a single logical writer. A multi-goroutine host must serialize these
// operations externally. Dispatch runs synchronously in the caller's goroutine
// and the installed reporter may block it.
package mprobe
