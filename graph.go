package mprobe

// Graph is an optional plotting annotation shared by fields with the same key.
// Params: process-unique id, axis label, optional unit and title.
// Returns: annotation consumed by plotting backends.
type Graph struct {
	ID    int
	Label string
	Unit  string
	Title string
}

// NewGraph creates a standalone graph annotation.
// Params: label axis label; unit optional unit; title optional graph title.
// Returns: graph with the next process-wide id.
func NewGraph(label, unit, title string) *Graph {
	return std.newGraph(label, unit, title)
}

// Graphs lists all graphs created so far, keyed-cache and explicit alike.
// Params: none.
// Returns: graphs in creation order.
func Graphs() []*Graph {
	return std.Graphs()
}

// newGraph allocates a graph inside the registry.
// Params: label/unit/title annotation values.
// Returns: graph with a fresh id.
func (r *Registry) newGraph(label, unit, title string) *Graph {
	r.nextGraphID++
	g := &Graph{ID: r.nextGraphID, Label: label, Unit: unit, Title: title}
	r.graphList = append(r.graphList, g)
	return g
}

// graphFor returns the cached graph for a field key, creating it on first use.
// Params: key field key; unit unit of the first field seen under key.
// Returns: shared graph for the key.
func (r *Registry) graphFor(key, unit string) *Graph {
	if g, ok := r.graphs[key]; ok {
		return g
	}
	g := r.newGraph(key, unit, "")
	r.graphs[key] = g
	return g
}

// Graphs lists graphs created through this registry.
// Params: none.
// Returns: copy of the graph list in creation order.
func (r *Registry) Graphs() []*Graph {
	out := make([]*Graph, len(r.graphList))
	copy(out, r.graphList)
	return out
}
