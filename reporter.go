package mprobe

import "time"

// Reporter is the single pluggable sink receiving active data points.
//
// Report must invoke ack, then complete, before returning; ack signals that
// the data point has been durably recorded in order, complete hands control
// back to the dispatch wrapper so the wrapped computation's result becomes
// visible to the caller. No ordering beyond "ack before complete" is
// guaranteed to reporters. Report runs inline in the dispatching goroutine
// and may block it; a fault raised by Report propagates to the dispatch
// caller.
type Reporter interface {
	// Now returns the clock reading used for durations and timestamps.
	Now() time.Time
	// Report delivers one data point of one active source.
	Report(src *Source, tags []Tag, point *DataPoint, ack func(), complete func())
	// AtExit runs once at process shutdown.
	AtExit()
}

// nopReporter discards everything. Installed by default.
type nopReporter struct{}

// Now returns the zero instant.
// Params: none.
// Returns: zero time.Time.
func (nopReporter) Now() time.Time {
	return time.Time{}
}

// Report acknowledges and completes without recording anything.
// Params: reporter contract arguments.
// Returns: none.
func (nopReporter) Report(_ *Source, _ []Tag, _ *DataPoint, ack func(), complete func()) {
	ack()
	complete()
}

// AtExit is a no-op.
// Params: none.
// Returns: none.
func (nopReporter) AtExit() {}

// SetReporter installs the process-wide reporter on the default registry.
// Params: r replacement reporter; nil restores the no-op reporter.
// Returns: none.
func SetReporter(r Reporter) {
	std.SetReporter(r)
}

// CurrentReporter returns the installed reporter of the default registry.
// Params: none.
// Returns: installed reporter.
func CurrentReporter() Reporter {
	return std.Reporter()
}

// Now reads the installed reporter's clock on the default registry.
// Params: none.
// Returns: reporter clock reading.
func Now() time.Time {
	return std.Now()
}

// Shutdown invokes the installed reporter's AtExit hook, once per registry
// lifetime, on the default registry.
// Params: none.
// Returns: none.
func Shutdown() {
	std.Shutdown()
}

// SetReporter installs the reporter for this registry.
// Params: r replacement reporter; nil restores the no-op reporter.
// Returns: none.
func (r *Registry) SetReporter(rep Reporter) {
	if rep == nil {
		rep = nopReporter{}
	}
	r.reporter = rep
}

// Reporter returns the installed reporter.
// Params: none.
// Returns: installed reporter, never nil.
func (r *Registry) Reporter() Reporter {
	return r.reporter
}

// Now reads the installed reporter's clock.
// Params: none.
// Returns: reporter clock reading.
func (r *Registry) Now() time.Time {
	return r.reporter.Now()
}

// Shutdown invokes the installed reporter's AtExit hook exactly once.
// Params: none.
// Returns: none.
func (r *Registry) Shutdown() {
	r.exitOnce.Do(func() {
		r.reporter.AtExit()
	})
}

// Timestamp renders an instant in the wire format used by reporters.
// Params: t stamped instant.
// Returns: RFC3339 string in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
