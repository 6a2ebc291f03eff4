package mprobe

import "time"

const (
	// KeyDuration is the field key appended for captured durations.
	KeyDuration = "duration"
	// KeyStatus is the field key appended for captured completion status.
	KeyStatus = "status"

	// StatusOK marks a computation that completed normally.
	StatusOK = "ok"
	// StatusError marks a computation that failed or panicked.
	StatusError = "error"
)

// DataPoint is one timestamped ordered set of fields emitted through an
// active source. Reporters stamp Timestamp when it is empty.
type DataPoint struct {
	Timestamp string
	Fields    []Field
}

// Push emits one data point through a source. When the source is inactive,
// produce is never invoked: the cost of a disabled source is one boolean
// check.
// Params: src dispatching source; produce builds rendered tags and fields.
// Returns: none.
func Push(src *Source, produce func() ([]Tag, []Field)) {
	if src == nil || !src.active {
		return
	}

	tags, fields := produce()
	point := &DataPoint{Fields: fields}
	src.registry.reporter.Report(src, tags, point, func() {}, func() {})
}

// Add emits one data point through a source from split tag and field
// closures. Neither closure is invoked when the source is inactive.
// Params: src dispatching source; tags builds rendered tags; fields builds data fields.
// Returns: none.
func Add(src *Source, tags func() []Tag, fields func() []Field) {
	if src == nil || !src.active {
		return
	}

	point := &DataPoint{Fields: fields()}
	src.registry.reporter.Report(src, tags(), point, func() {}, func() {})
}

// Run evaluates body under the source, capturing duration and status per the
// source flags. When the source is inactive, body is evaluated directly with
// no timing and the tag/field closures are never invoked. A panic inside body
// is recorded as status=error and re-panicked unchanged; the library never
// swallows user faults.
// Params: src dispatching source; tags builds rendered tags; extra builds user fields, may be nil; body wrapped computation.
// Returns: body's return value on the success path.
func Run[T any](src *Source, tags func() []Tag, extra func() []Field, body func() T) T {
	if src == nil || !src.active {
		return body()
	}

	rep := src.registry.reporter
	start := rep.Now()

	var result T
	panicValue, panicked := capture(func() {
		result = body()
	})
	end := rep.Now()

	reportRun(src, rep, tags, extra, start, end, !panicked)
	if panicked {
		panic(panicValue)
	}
	return result
}

// RRun is Run for computations returning a value and an error. A non-nil
// error classifies the data point as status=error while the result is still
// returned, not raised; a panic is classified as status=error and re-panicked.
// Params: src dispatching source; tags builds rendered tags; extra builds user fields, may be nil; body wrapped computation.
// Returns: body's value and error unchanged.
func RRun[T any](src *Source, tags func() []Tag, extra func() []Field, body func() (T, error)) (T, error) {
	if src == nil || !src.active {
		return body()
	}

	rep := src.registry.reporter
	start := rep.Now()

	var result T
	var err error
	panicValue, panicked := capture(func() {
		result, err = body()
	})
	end := rep.Now()

	reportRun(src, rep, tags, extra, start, end, !panicked && err == nil)
	if panicked {
		panic(panicValue)
	}
	return result, err
}

// capture runs fn inside a recover boundary.
// Params: fn wrapped computation.
// Returns: recovered panic value and whether fn panicked.
func capture(fn func()) (value any, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			value = r
			panicked = true
		}
	}()

	fn()
	return nil, false
}

// reportRun assembles and reports one run/rrun data point. User fields come
// first, then duration, then status, per the source capture flags.
// Params: src dispatching source; rep installed reporter; tags/extra builder closures; start/end clock readings; ok success classification.
// Returns: none.
func reportRun(
	src *Source,
	rep Reporter,
	tags func() []Tag,
	extra func() []Field,
	start, end time.Time,
	ok bool,
) {
	var fields []Field
	if extra != nil {
		fields = append(fields, extra()...)
	}
	if src.wantsDuration {
		fields = append(fields, Int64(KeyDuration, end.Sub(start).Milliseconds(), WithUnit("ms")))
	}
	if src.wantsStatus {
		status := StatusOK
		if !ok {
			status = StatusError
		}
		fields = append(fields, String(KeyStatus, status))
	}

	point := &DataPoint{Fields: fields}
	rep.Report(src, tags(), point, func() {}, func() {})
}
