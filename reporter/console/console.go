// Package console provides a reporter that renders one text line per data
// point, suitable for terminals and log files.
package console

import (
	"bufio"
	"io"
	"strings"
	"sync"
	"time"

	"mprobe"
)

// Reporter writes rendered data points to one writer. Writes are buffered;
// every report flushes so lines appear promptly, AtExit flushes once more.
type Reporter struct {
	mu      sync.Mutex
	w       *bufio.Writer
	now     func() time.Time
	lastErr error
}

// Option mutates reporter construction settings.
type Option func(*Reporter)

// WithClock replaces the wall clock.
// Params: clock function consulted by Now.
// Returns: option applying the clock.
func WithClock(clock func() time.Time) Option {
	return func(r *Reporter) { r.now = clock }
}

// New creates a console reporter writing to w.
// Params: w destination writer; opts construction options.
// Returns: reporter using the wall clock unless overridden.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{w: bufio.NewWriter(w), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now reads the configured clock.
// Params: none.
// Returns: clock reading.
func (r *Reporter) Now() time.Time {
	return r.now()
}

// Report renders and writes one line, then acknowledges and completes.
// Params: reporter contract arguments.
// Returns: none.
func (r *Reporter) Report(src *mprobe.Source, tags []mprobe.Tag, point *mprobe.DataPoint, ack func(), complete func()) {
	if point.Timestamp == "" {
		point.Timestamp = mprobe.Timestamp(r.now())
	}

	var line strings.Builder
	line.WriteString(point.Timestamp)
	line.WriteByte(' ')
	line.WriteString(src.Name())

	for _, tag := range tags {
		line.WriteByte(' ')
		line.WriteString(tag.Name)
		line.WriteByte('=')
		line.WriteString(tag.Value)
	}
	for _, field := range point.Fields {
		line.WriteByte(' ')
		line.WriteString(field.Key)
		line.WriteByte('=')
		line.WriteString(field.Render())
		if field.Unit != "" {
			line.WriteString(field.Unit)
		}
	}
	line.WriteByte('\n')

	r.mu.Lock()
	if _, err := r.w.WriteString(line.String()); err != nil {
		r.lastErr = err
	}
	if err := r.w.Flush(); err != nil {
		r.lastErr = err
	}
	r.mu.Unlock()

	ack()
	complete()
}

// AtExit flushes any buffered output.
// Params: none.
// Returns: none.
func (r *Reporter) AtExit() {
	r.mu.Lock()
	if err := r.w.Flush(); err != nil {
		r.lastErr = err
	}
	r.mu.Unlock()
}

// Err returns the last write error, if any.
// Params: none.
// Returns: last write/flush error or nil.
func (r *Reporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}
