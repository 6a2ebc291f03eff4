package mprobe

import (
	"fmt"
	"sort"
)

// Kind discriminates source constructors.
// Params: none.
// Returns: enum value for push/timer sources.
type Kind uint8

const (
	// KindPush marks event sources that push explicit data points.
	KindPush Kind = iota
	// KindTimer marks sources wrapping a computation with duration/status capture.
	KindTimer
)

// String returns the kind label.
// Params: none.
// Returns: "push" or "timer".
func (k Kind) String() string {
	if k == KindTimer {
		return "timer"
	}
	return "push"
}

// Source is one named, tagged declaration point for a class of metrics. The
// registry owns every source for the process lifetime; only the active flag
// changes after creation.
type Source struct {
	uid  int
	name string
	doc  string
	kind Kind

	tagSchema   TagSchema
	fieldSchema FieldSchema
	domain      map[string]struct{}

	active        bool
	wantsDuration bool
	wantsStatus   bool

	registry *Registry
}

// SourceOption mutates optional source settings at creation.
type SourceOption func(*Source)

// WithDoc attaches a one-line description to the source.
// Params: doc text.
// Returns: option applying the doc.
func WithDoc(doc string) SourceOption {
	return func(s *Source) { s.doc = doc }
}

// WithDuration overrides duration capture for run/rrun dispatch.
// Params: enabled flag.
// Returns: option applying the flag.
func WithDuration(enabled bool) SourceOption {
	return func(s *Source) { s.wantsDuration = enabled }
}

// WithStatus overrides status capture for run/rrun dispatch.
// Params: enabled flag.
// Returns: option applying the flag.
func WithStatus(enabled bool) SourceOption {
	return func(s *Source) { s.wantsStatus = enabled }
}

// UID returns the creation-ordered process-wide id.
// Params: none.
// Returns: strictly increasing id.
func (s *Source) UID() int {
	return s.uid
}

// Name returns the declared source name.
// Params: none.
// Returns: source name string.
func (s *Source) Name() string {
	return s.name
}

// Doc returns the source description.
// Params: none.
// Returns: doc text, "undocumented" when none was declared.
func (s *Source) Doc() string {
	return s.doc
}

// Kind returns the source kind.
// Params: none.
// Returns: KindPush or KindTimer.
func (s *Source) Kind() Kind {
	return s.kind
}

// Domain returns the set of declared tag names.
// Params: none.
// Returns: sorted copy of the tag-name domain.
func (s *Source) Domain() []string {
	out := make([]string, 0, len(s.domain))
	for name := range s.domain {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsActive reports whether dispatch through the source produces data.
// Params: none.
// Returns: current active flag.
func (s *Source) IsActive() bool {
	return s.active
}

// WantsDuration reports whether run/rrun append a duration field.
// Params: none.
// Returns: duration capture flag.
func (s *Source) WantsDuration() bool {
	return s.wantsDuration
}

// WantsStatus reports whether run/rrun append a status field.
// Params: none.
// Returns: status capture flag.
func (s *Source) WantsStatus() bool {
	return s.wantsStatus
}

// Enable activates the source regardless of the predicate. The next predicate
// update overwrites it.
// Params: none.
// Returns: none.
func (s *Source) Enable() {
	s.active = true
}

// Disable deactivates the source regardless of the predicate. The next
// predicate update overwrites it.
// Params: none.
// Returns: none.
func (s *Source) Disable() {
	s.active = false
}

// Equal reports source identity.
// Params: other source handle.
// Returns: true when both handles carry the same uid.
func (s *Source) Equal(other *Source) bool {
	return other != nil && s.uid == other.uid
}

// Compare orders sources by creation.
// Params: other source handle.
// Returns: -1/0/+1 per uid ordering.
func (s *Source) Compare(other *Source) int {
	switch {
	case s.uid < other.uid:
		return -1
	case s.uid > other.uid:
		return 1
	default:
		return 0
	}
}

// NewSource declares a push source on the default registry. Push sources do
// not capture duration or status unless overridden by options.
// Params: name dot-separated source name; tags tag schema; fields field schema; opts creation options.
// Returns: registered source handle; panics on an invalid tag or field name.
func NewSource(name string, tags TagSchema, fields FieldSchema, opts ...SourceOption) *Source {
	return std.NewSource(name, tags, fields, opts...)
}

// NewTimer declares a timer source on the default registry. Timer sources
// capture both duration and status unless overridden by options.
// Params: name dot-separated source name; tags tag schema; fields field schema; opts creation options.
// Returns: registered source handle; panics on an invalid tag or field name.
func NewTimer(name string, tags TagSchema, fields FieldSchema, opts ...SourceOption) *Source {
	return std.NewTimer(name, tags, fields, opts...)
}

// NewSource declares a push source on this registry.
// Params: name source name; tags tag schema; fields field schema; opts creation options.
// Returns: registered source handle; panics on an invalid tag or field name.
func (r *Registry) NewSource(name string, tags TagSchema, fields FieldSchema, opts ...SourceOption) *Source {
	return r.register(KindPush, name, tags, fields, false, false, opts)
}

// NewTimer declares a timer source on this registry.
// Params: name source name; tags tag schema; fields field schema; opts creation options.
// Returns: registered source handle; panics on an invalid tag or field name.
func (r *Registry) NewTimer(name string, tags TagSchema, fields FieldSchema, opts ...SourceOption) *Source {
	return r.register(KindTimer, name, tags, fields, true, true, opts)
}

// register validates schemas, allocates the next uid, computes the initial
// active flag from the current predicate, and appends the source.
// Params: kind source kind; name source name; tags/fields schemas; duration/status kind defaults; opts options.
// Returns: registered source handle; panics on configuration error.
func (r *Registry) register(
	kind Kind,
	name string,
	tags TagSchema,
	fields FieldSchema,
	duration bool,
	status bool,
	opts []SourceOption,
) *Source {
	domain := make(map[string]struct{}, len(tags))
	for _, slot := range tags {
		if !validName(slot.name) {
			panic(fmt.Sprintf("mprobe: source %q: invalid tag name %q", name, slot.name))
		}
		domain[slot.name] = struct{}{}
	}
	for _, key := range fields {
		if !validName(key) {
			panic(fmt.Sprintf("mprobe: source %q: invalid field name %q", name, key))
		}
	}

	r.nextUID++
	src := &Source{
		uid:           r.nextUID,
		name:          name,
		doc:           "undocumented",
		kind:          kind,
		tagSchema:     tags,
		fieldSchema:   fields,
		domain:        domain,
		wantsDuration: duration,
		wantsStatus:   status,
		registry:      r,
	}
	for _, opt := range opts {
		opt(src)
	}

	src.active = r.evalActive(src)
	r.sources = append(r.sources, src)
	return src
}
