// Package memory provides an in-memory reporter that records every delivered
// data point. It exists for tests and assertions against instrumented code.
package memory

import (
	"sync"
	"time"

	"mprobe"
)

// Record is one delivered data point with its source and rendered tags.
// Params: source handle, tag pairs, and data point copy.
// Returns: assertion-friendly delivery record.
type Record struct {
	Source *mprobe.Source
	Tags   []mprobe.Tag
	Point  mprobe.DataPoint
}

// Reporter records deliveries in order. Unlike the core registry it locks
// internally: tests read it while instrumented code reports into it.
type Reporter struct {
	mu      sync.Mutex
	clock   func() time.Time
	records []Record
	acks    int
	exits   int
}

// Option mutates reporter construction settings.
type Option func(*Reporter)

// WithClock replaces the wall clock.
// Params: clock function consulted by Now.
// Returns: option applying the clock.
func WithClock(clock func() time.Time) Option {
	return func(r *Reporter) { r.clock = clock }
}

// StepClock builds a deterministic clock advancing by step on every reading.
// Params: start first reading; step advance per reading.
// Returns: clock function for WithClock.
func StepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		out := next
		next = next.Add(step)
		return out
	}
}

// New creates an empty in-memory reporter.
// Params: opts construction options.
// Returns: reporter using the wall clock unless overridden.
func New(opts ...Option) *Reporter {
	r := &Reporter{clock: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now reads the configured clock.
// Params: none.
// Returns: clock reading.
func (r *Reporter) Now() time.Time {
	return r.clock()
}

// Report stamps the data point when needed and records the delivery.
// Params: reporter contract arguments.
// Returns: none.
func (r *Reporter) Report(src *mprobe.Source, tags []mprobe.Tag, point *mprobe.DataPoint, ack func(), complete func()) {
	if point.Timestamp == "" {
		point.Timestamp = mprobe.Timestamp(r.clock())
	}

	r.mu.Lock()
	r.records = append(r.records, Record{
		Source: src,
		Tags:   append([]mprobe.Tag(nil), tags...),
		Point: mprobe.DataPoint{
			Timestamp: point.Timestamp,
			Fields:    append([]mprobe.Field(nil), point.Fields...),
		},
	})
	r.acks++
	r.mu.Unlock()

	ack()
	complete()
}

// AtExit counts shutdown invocations.
// Params: none.
// Returns: none.
func (r *Reporter) AtExit() {
	r.mu.Lock()
	r.exits++
	r.mu.Unlock()
}

// Records returns all recorded deliveries in report order.
// Params: none.
// Returns: copy of the record list.
func (r *Reporter) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of recorded deliveries.
// Params: none.
// Returns: record count.
func (r *Reporter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Acks returns the number of acknowledged deliveries.
// Params: none.
// Returns: ack count.
func (r *Reporter) Acks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acks
}

// Exits returns the number of AtExit invocations.
// Params: none.
// Returns: exit hook count.
func (r *Reporter) Exits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exits
}

// Reset drops all recorded state.
// Params: none.
// Returns: none.
func (r *Reporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	r.acks = 0
	r.exits = 0
}
