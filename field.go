package mprobe

import "strconv"

// Field is one named typed value inside a reported data point.
// Params: key, optional unit/doc/graph metadata, typed value, and renderer.
// Returns: data point building block.
type Field struct {
	Key  string
	Unit string
	Doc  string

	graph *Graph
	value any
	text  string
}

// FieldSchema is the ordered list of field keys a source declares.
// Params: field keys in declaration order.
// Returns: schema consumed by NewSource/NewTimer.
type FieldSchema []string

// FieldOption mutates optional field metadata at construction.
type FieldOption func(*Field)

// WithUnit attaches a display unit to the field.
// Params: unit label such as "ms" or "bytes".
// Returns: option applying the unit.
func WithUnit(unit string) FieldOption {
	return func(f *Field) { f.Unit = unit }
}

// WithFieldDoc attaches a one-line description to the field.
// Params: doc text.
// Returns: option applying the doc.
func WithFieldDoc(doc string) FieldOption {
	return func(f *Field) { f.Doc = doc }
}

// WithGraph pins the field to an explicit graph instead of the key-cached one.
// Params: g graph annotation.
// Returns: option applying the graph.
func WithGraph(g *Graph) FieldOption {
	return func(f *Field) { f.graph = g }
}

// Value returns the typed value supplied at construction.
// Params: none.
// Returns: field value as supplied.
func (f Field) Value() any {
	return f.value
}

// Render returns the string form of the field value used for reporting.
// Params: none.
// Returns: rendered value string.
func (f Field) Render() string {
	return f.text
}

// Graph returns the graph annotation attached to the field.
// Params: none.
// Returns: explicit or key-cached graph.
func (f Field) Graph() *Graph {
	return f.graph
}

// newField builds a field and resolves its graph annotation.
// Params: key field key; value typed value; text rendered form; opts metadata options.
// Returns: completed field.
func newField(key string, value any, text string, opts []FieldOption) Field {
	f := Field{Key: key, value: value, text: text}
	for _, opt := range opts {
		opt(&f)
	}
	if f.graph == nil {
		f.graph = std.graphFor(key, f.Unit)
	}
	return f
}

// Bool builds a bool field.
// Params: key field key; v value; opts optional metadata.
// Returns: field rendering as "true"/"false".
func Bool(key string, v bool, opts ...FieldOption) Field {
	return newField(key, v, strconv.FormatBool(v), opts)
}

// Int builds an int field.
// Params: key field key; v value; opts optional metadata.
// Returns: field rendering in base 10.
func Int(key string, v int, opts ...FieldOption) Field {
	return newField(key, v, strconv.Itoa(v), opts)
}

// Int32 builds an int32 field.
// Params: key field key; v value; opts optional metadata.
// Returns: field rendering in base 10.
func Int32(key string, v int32, opts ...FieldOption) Field {
	return newField(key, v, strconv.FormatInt(int64(v), 10), opts)
}

// Int64 builds an int64 field.
// Params: key field key; v value; opts optional metadata.
// Returns: field rendering in base 10.
func Int64(key string, v int64, opts ...FieldOption) Field {
	return newField(key, v, strconv.FormatInt(v, 10), opts)
}

// Uint builds a uint field.
// Params: key field key; v value; opts optional metadata.
// Returns: field rendering in base 10.
func Uint(key string, v uint, opts ...FieldOption) Field {
	return newField(key, v, strconv.FormatUint(uint64(v), 10), opts)
}

// Uint32 builds a uint32 field.
// Params: key field key; v value; opts optional metadata.
// Returns: field rendering in base 10.
func Uint32(key string, v uint32, opts ...FieldOption) Field {
	return newField(key, v, strconv.FormatUint(uint64(v), 10), opts)
}

// Uint64 builds a uint64 field.
// Params: key field key; v value; opts optional metadata.
// Returns: field rendering in base 10.
func Uint64(key string, v uint64, opts ...FieldOption) Field {
	return newField(key, v, strconv.FormatUint(v, 10), opts)
}

// Float builds a float64 field.
// Params: key field key; v value; opts optional metadata.
// Returns: field rendering in shortest decimal form.
func Float(key string, v float64, opts ...FieldOption) Field {
	return newField(key, v, strconv.FormatFloat(v, 'g', -1, 64), opts)
}

// String builds a string field.
// Params: key field key; v value; opts optional metadata.
// Returns: field carrying v unchanged.
func String(key string, v string, opts ...FieldOption) Field {
	return newField(key, v, v, opts)
}
