package memory_test

import (
	"strconv"
	"testing"
	"time"

	"mprobe"
	"mprobe/reporter/memory"
)

// TestStepClock_AdvancesPerReading verifies deterministic clock stepping.
// Params: testing.T for assertions.
// Returns: none.
func TestStepClock_AdvancesPerReading(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	clock := memory.StepClock(start, 5*time.Millisecond)

	if got := clock(); !got.Equal(start) {
		t.Fatalf("unexpected first reading: %v", got)
	}
	if got := clock(); !got.Equal(start.Add(5 * time.Millisecond)) {
		t.Fatalf("unexpected second reading: %v", got)
	}
}

// TestReport_RecordsInOrderAndCopies verifies record ordering and isolation.
// Params: testing.T for assertions.
// Returns: none.
func TestReport_RecordsInOrderAndCopies(t *testing.T) {
	mprobe.Reset()
	t.Cleanup(mprobe.Reset)

	rep := memory.New()
	mprobe.SetReporter(rep)

	src := mprobe.NewSource("app.evt", mprobe.TagSchema{mprobe.TagInt("seq")}, mprobe.FieldSchema{"n"})
	src.Enable()

	for i := 0; i < 3; i++ {
		mprobe.Push(src, func() ([]mprobe.Tag, []mprobe.Field) {
			return src.Tags(i), []mprobe.Field{mprobe.Int("n", i)}
		})
	}

	records := rep.Records()
	if len(records) != 3 || rep.Len() != 3 || rep.Acks() != 3 {
		t.Fatalf("unexpected counts: records=%d len=%d acks=%d", len(records), rep.Len(), rep.Acks())
	}
	for i, record := range records {
		if got := record.Tags[0].Value; got != strconv.Itoa(i) {
			t.Fatalf("record[%d]: unexpected seq tag %q", i, got)
		}
		if record.Point.Timestamp == "" {
			t.Fatalf("record[%d]: missing timestamp", i)
		}
	}

	rep.Reset()
	if rep.Len() != 0 || rep.Acks() != 0 {
		t.Fatalf("expected empty reporter after reset")
	}
}
