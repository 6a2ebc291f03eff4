package mprobe

import (
	"fmt"
	"regexp"
	"strconv"
)

// namePattern restricts tag and field names to word characters and dots.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// validName reports whether name is a legal tag or field name.
// Params: name is a declared tag slot or field key.
// Returns: true when name matches [A-Za-z0-9_.]+.
func validName(name string) bool {
	return namePattern.MatchString(name)
}

// Tag is one rendered tag pair of a built source instance.
// Params: declared slot name and rendered value.
// Returns: tag pair carried to the reporter.
type Tag struct {
	Name  string
	Value string
}

// TagSlot is one named typed slot of a tag schema.
// Params: slot name, type label for diagnostics, and renderer.
// Returns: schema building block for TagSchema.
type TagSlot struct {
	name     string
	typeName string
	render   func(any) (string, bool)
}

// Name returns the declared slot name.
// Params: none.
// Returns: slot name string.
func (s TagSlot) Name() string {
	return s.name
}

// TagSchema is the ordered, fixed-arity tag declaration of one source.
// Params: slots in declaration order.
// Returns: schema consumed by NewSource/NewTimer.
type TagSchema []TagSlot

// TagBool declares a bool tag slot.
// Params: name is the slot name.
// Returns: slot rendering bool values as "true"/"false".
func TagBool(name string) TagSlot {
	return TagSlot{name: name, typeName: "bool", render: func(v any) (string, bool) {
		b, ok := v.(bool)
		if !ok {
			return "", false
		}
		return strconv.FormatBool(b), true
	}}
}

// TagInt declares an int tag slot.
// Params: name is the slot name.
// Returns: slot rendering int values in base 10.
func TagInt(name string) TagSlot {
	return TagSlot{name: name, typeName: "int", render: func(v any) (string, bool) {
		i, ok := v.(int)
		if !ok {
			return "", false
		}
		return strconv.Itoa(i), true
	}}
}

// TagInt32 declares an int32 tag slot.
// Params: name is the slot name.
// Returns: slot rendering int32 values in base 10.
func TagInt32(name string) TagSlot {
	return TagSlot{name: name, typeName: "int32", render: func(v any) (string, bool) {
		i, ok := v.(int32)
		if !ok {
			return "", false
		}
		return strconv.FormatInt(int64(i), 10), true
	}}
}

// TagInt64 declares an int64 tag slot.
// Params: name is the slot name.
// Returns: slot rendering int64 values in base 10.
func TagInt64(name string) TagSlot {
	return TagSlot{name: name, typeName: "int64", render: func(v any) (string, bool) {
		i, ok := v.(int64)
		if !ok {
			return "", false
		}
		return strconv.FormatInt(i, 10), true
	}}
}

// TagUint declares a uint tag slot.
// Params: name is the slot name.
// Returns: slot rendering uint values in base 10.
func TagUint(name string) TagSlot {
	return TagSlot{name: name, typeName: "uint", render: func(v any) (string, bool) {
		u, ok := v.(uint)
		if !ok {
			return "", false
		}
		return strconv.FormatUint(uint64(u), 10), true
	}}
}

// TagUint32 declares a uint32 tag slot.
// Params: name is the slot name.
// Returns: slot rendering uint32 values in base 10.
func TagUint32(name string) TagSlot {
	return TagSlot{name: name, typeName: "uint32", render: func(v any) (string, bool) {
		u, ok := v.(uint32)
		if !ok {
			return "", false
		}
		return strconv.FormatUint(uint64(u), 10), true
	}}
}

// TagUint64 declares a uint64 tag slot.
// Params: name is the slot name.
// Returns: slot rendering uint64 values in base 10.
func TagUint64(name string) TagSlot {
	return TagSlot{name: name, typeName: "uint64", render: func(v any) (string, bool) {
		u, ok := v.(uint64)
		if !ok {
			return "", false
		}
		return strconv.FormatUint(u, 10), true
	}}
}

// TagFloat declares a float64 tag slot.
// Params: name is the slot name.
// Returns: slot rendering float64 values in shortest form.
func TagFloat(name string) TagSlot {
	return TagSlot{name: name, typeName: "float64", render: func(v any) (string, bool) {
		f, ok := v.(float64)
		if !ok {
			return "", false
		}
		return strconv.FormatFloat(f, 'g', -1, 64), true
	}}
}

// TagString declares a string tag slot.
// Params: name is the slot name.
// Returns: slot passing string values through unchanged.
func TagString(name string) TagSlot {
	return TagSlot{name: name, typeName: "string", render: func(v any) (string, bool) {
		s, ok := v.(string)
		if !ok {
			return "", false
		}
		return s, true
	}}
}

// TagCustom declares a tag slot with a caller-supplied renderer.
// Params: name is the slot name; render converts a supplied value or reports false on type mismatch.
// Returns: slot using render for value conversion.
func TagCustom(name string, render func(any) (string, bool)) TagSlot {
	return TagSlot{name: name, typeName: "custom", render: render}
}

// Tags builds one tag instance of the source from concrete slot values.
// Exactly one value per declared slot must be supplied in declaration order
// and with the declared Go type; any mismatch is a caller contract violation
// and panics.
// Params: values are slot values in declaration order.
// Returns: rendered tag pairs preserving declaration order.
func (s *Source) Tags(values ...any) []Tag {
	if len(values) != len(s.tagSchema) {
		panic(fmt.Sprintf(
			"mprobe: source %q: tag builder called with %d values, schema declares %d slots",
			s.name, len(values), len(s.tagSchema),
		))
	}

	tags := make([]Tag, 0, len(values))
	for idx, slot := range s.tagSchema {
		rendered, ok := slot.render(values[idx])
		if !ok {
			panic(fmt.Sprintf(
				"mprobe: source %q: tag %q expects a %s value, got %T",
				s.name, slot.name, slot.typeName, values[idx],
			))
		}
		tags = append(tags, Tag{Name: slot.name, Value: rendered})
	}

	return tags
}
