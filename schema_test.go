package mprobe_test

import (
	"testing"

	"mprobe"
)

// mustPanic runs fn and fails the test when it does not panic.
// Params: t test handle; fn function expected to panic.
// Returns: recovered panic value.
func mustPanic(t *testing.T, fn func()) any {
	t.Helper()

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		fn()
	}()

	if recovered == nil {
		t.Fatalf("expected panic")
	}
	return recovered
}

// TestNewSource_RejectsInvalidNames verifies fatal validation of tag and field names.
// Params: testing.T for assertions.
// Returns: none.
func TestNewSource_RejectsInvalidNames(t *testing.T) {
	mprobe.Reset()
	t.Cleanup(mprobe.Reset)

	valid := []string{"cpu.usage_1", "a", "A.B_C.9", "...", "_"}
	for _, name := range valid {
		mprobe.NewSource(name, mprobe.TagSchema{mprobe.TagInt(name)}, mprobe.FieldSchema{name})
	}

	invalid := []string{"cpu usage", "", "cpu-usage", "cpu/usage", "héllo", "a\tb"}
	for _, name := range invalid {
		badTag := name
		mustPanic(t, func() {
			mprobe.NewSource("src.tags", mprobe.TagSchema{mprobe.TagInt(badTag)}, nil)
		})
		mustPanic(t, func() {
			mprobe.NewSource("src.fields", nil, mprobe.FieldSchema{badTag})
		})
	}
}

// TestTags_RendersInDeclarationOrder verifies builder rendering and ordering.
// Params: testing.T for assertions.
// Returns: none.
func TestTags_RendersInDeclarationOrder(t *testing.T) {
	mprobe.Reset()
	t.Cleanup(mprobe.Reset)

	src := mprobe.NewSource("app.cpu", mprobe.TagSchema{
		mprobe.TagInt("pid"),
		mprobe.TagString("host"),
		mprobe.TagBool("vm"),
		mprobe.TagFloat("load"),
		mprobe.TagUint64("boot_id"),
	}, nil)

	tags := src.Tags(42, "foo.local", true, 3.5, uint64(7))

	want := []mprobe.Tag{
		{Name: "pid", Value: "42"},
		{Name: "host", Value: "foo.local"},
		{Name: "vm", Value: "true"},
		{Name: "load", Value: "3.5"},
		{Name: "boot_id", Value: "7"},
	}
	if len(tags) != len(want) {
		t.Fatalf("unexpected tag count: %d", len(tags))
	}
	for idx, tag := range tags {
		if tag != want[idx] {
			t.Fatalf("tag[%d]: got %+v, want %+v", idx, tag, want[idx])
		}
	}
}

// TestTags_ContractViolations verifies arity and type mismatches panic.
// Params: testing.T for assertions.
// Returns: none.
func TestTags_ContractViolations(t *testing.T) {
	mprobe.Reset()
	t.Cleanup(mprobe.Reset)

	src := mprobe.NewSource("app.req", mprobe.TagSchema{
		mprobe.TagInt("pid"),
		mprobe.TagString("host"),
	}, nil)

	mustPanic(t, func() { src.Tags(42) })
	mustPanic(t, func() { src.Tags(42, "foo.local", "extra") })
	mustPanic(t, func() { src.Tags("42", "foo.local") })
	mustPanic(t, func() { src.Tags(42, 13) })
}

// TestTagCustom_UsesCallerRenderer verifies custom slot rendering.
// Params: testing.T for assertions.
// Returns: none.
func TestTagCustom_UsesCallerRenderer(t *testing.T) {
	mprobe.Reset()
	t.Cleanup(mprobe.Reset)

	type peer struct {
		host string
	}

	src := mprobe.NewSource("net.conn", mprobe.TagSchema{
		mprobe.TagCustom("peer", func(v any) (string, bool) {
			p, ok := v.(peer)
			if !ok {
				return "", false
			}
			return p.host, true
		}),
	}, nil)

	tags := src.Tags(peer{host: "db1"})
	if tags[0].Value != "db1" {
		t.Fatalf("unexpected custom rendering: %q", tags[0].Value)
	}

	mustPanic(t, func() { src.Tags("not-a-peer") })
}

// TestFields_RenderAndMetadata verifies field constructors and options.
// Params: testing.T for assertions.
// Returns: none.
func TestFields_RenderAndMetadata(t *testing.T) {
	mprobe.Reset()
	t.Cleanup(mprobe.Reset)

	f := mprobe.Float("cpu", 3.5, mprobe.WithUnit("percent"), mprobe.WithFieldDoc("CPU load"))
	if f.Render() != "3.5" {
		t.Fatalf("unexpected rendering: %q", f.Render())
	}
	if f.Value().(float64) != 3.5 {
		t.Fatalf("unexpected value: %v", f.Value())
	}
	if f.Unit != "percent" || f.Doc != "CPU load" {
		t.Fatalf("unexpected metadata: %+v", f)
	}

	if got := mprobe.Int("mem", 1024).Render(); got != "1024" {
		t.Fatalf("unexpected int rendering: %q", got)
	}
	if got := mprobe.Bool("up", false).Render(); got != "false" {
		t.Fatalf("unexpected bool rendering: %q", got)
	}
	if got := mprobe.String("state", "idle").Render(); got != "idle" {
		t.Fatalf("unexpected string rendering: %q", got)
	}
}

// TestGraphs_DeduplicatedByFieldKey verifies the process-wide graph cache.
// Params: testing.T for assertions.
// Returns: none.
func TestGraphs_DeduplicatedByFieldKey(t *testing.T) {
	mprobe.Reset()
	t.Cleanup(mprobe.Reset)

	first := mprobe.Float("cpu", 1.0, mprobe.WithUnit("percent"))
	second := mprobe.Float("cpu", 2.0)
	other := mprobe.Int("mem", 1)

	if first.Graph() == nil || first.Graph() != second.Graph() {
		t.Fatalf("expected shared graph for repeated field key")
	}
	if first.Graph() == other.Graph() {
		t.Fatalf("expected distinct graphs for distinct keys")
	}
	if first.Graph().Unit != "percent" {
		t.Fatalf("expected unit from first registration, got %q", first.Graph().Unit)
	}

	explicit := mprobe.NewGraph("custom cpu", "percent", "CPU")
	pinned := mprobe.Float("cpu", 3.0, mprobe.WithGraph(explicit))
	if pinned.Graph() != explicit {
		t.Fatalf("expected explicit graph to win over cache")
	}

	if len(mprobe.Graphs()) != 3 {
		t.Fatalf("unexpected graph count: %d", len(mprobe.Graphs()))
	}
}
