package mprobe

import "sync"

// Registry holds every declared source, the activation predicate, the graph
// table, and the installed reporter. A process normally uses the package-level
// default registry; explicit registries exist for test isolation.
type Registry struct {
	nextUID     int
	nextGraphID int
	sources     []*Source

	enableAll   bool
	enabledTags map[string]struct{}

	graphs    map[string]*Graph
	graphList []*Graph

	reporter Reporter
	exitOnce sync.Once
}

// std is the process-wide default registry.
var std = NewRegistry()

// NewRegistry creates an empty registry with the no-op reporter installed.
// Params: none.
// Returns: registry ready for source declaration.
func NewRegistry() *Registry {
	return &Registry{
		enabledTags: make(map[string]struct{}),
		graphs:      make(map[string]*Graph),
		reporter:    nopReporter{},
	}
}

// Default returns the process-wide default registry.
// Params: none.
// Returns: default registry handle.
func Default() *Registry {
	return std
}

// Reset replaces the default registry with a fresh one. Sources declared
// before the reset keep reporting into their original registry. Intended for
// test isolation only.
// Params: none.
// Returns: none.
func Reset() {
	std = NewRegistry()
}

// Sources lists every source declared on the default registry.
// Params: none.
// Returns: sources in creation order.
func Sources() []*Source {
	return std.Sources()
}

// Sources lists every source declared on this registry.
// Params: none.
// Returns: copy of the source list in creation order.
func (r *Registry) Sources() []*Source {
	out := make([]*Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// EnableTag adds one tag name to the enabled set on the default registry.
// Params: name enabled tag name.
// Returns: none.
func EnableTag(name string) {
	std.EnableTag(name)
}

// DisableTag removes one tag name from the enabled set on the default registry.
// Params: name disabled tag name.
// Returns: none.
func DisableTag(name string) {
	std.DisableTag(name)
}

// EnableAll activates every source on the default registry.
// Params: none.
// Returns: none.
func EnableAll() {
	std.EnableAll()
}

// DisableAll clears the enabled tag set and deactivates every source on the
// default registry.
// Params: none.
// Returns: none.
func DisableAll() {
	std.DisableAll()
}

// EnableTag adds one tag name to the enabled set and refreshes all sources.
// Params: name enabled tag name.
// Returns: none.
func (r *Registry) EnableTag(name string) {
	r.enabledTags[name] = struct{}{}
	r.refreshActive()
}

// DisableTag removes one tag name from the enabled set and refreshes all
// sources.
// Params: name disabled tag name.
// Returns: none.
func (r *Registry) DisableTag(name string) {
	delete(r.enabledTags, name)
	r.refreshActive()
}

// EnableAll sets the enable-all flag and refreshes all sources.
// Params: none.
// Returns: none.
func (r *Registry) EnableAll() {
	r.enableAll = true
	r.refreshActive()
}

// DisableAll clears the enable-all flag and the enabled tag set, then
// refreshes all sources.
// Params: none.
// Returns: none.
func (r *Registry) DisableAll() {
	r.enableAll = false
	r.enabledTags = make(map[string]struct{})
	r.refreshActive()
}

// EnabledTags lists the currently enabled tag names.
// Params: none.
// Returns: copy of the enabled tag set in arbitrary order.
func (r *Registry) EnabledTags() []string {
	out := make([]string, 0, len(r.enabledTags))
	for name := range r.enabledTags {
		out = append(out, name)
	}
	return out
}

// refreshActive recomputes the active flag of every source against the
// current predicate. Runs synchronously inside each predicate mutation and
// overwrites manual per-source overrides.
// Params: none.
// Returns: none.
func (r *Registry) refreshActive() {
	for _, src := range r.sources {
		src.active = r.evalActive(src)
	}
}

// evalActive evaluates the predicate for one source.
// Params: src evaluated source.
// Returns: enableAll or non-empty intersection of domain and enabled tags.
func (r *Registry) evalActive(src *Source) bool {
	if r.enableAll {
		return true
	}
	for name := range src.domain {
		if _, ok := r.enabledTags[name]; ok {
			return true
		}
	}
	return false
}
