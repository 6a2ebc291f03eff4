// Package procstats declares ready-made sources for Go runtime GC statistics
// and operating-system process statistics. Both consume the core source and
// dispatch contract; they produce nothing while their sources are inactive.
package procstats

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/process"

	"mprobe"
)

// GC pushes Go runtime garbage-collector statistics.
// Params: none.
// Returns: stat producer bound to one registered source.
type GC struct {
	src *mprobe.Source
}

// NewGC declares the GC source and returns its producer. The source has an
// empty tag domain: it activates only via enable-all or a manual enable.
// Params: none.
// Returns: GC stat producer.
func NewGC() *GC {
	src := mprobe.NewSource("go.gc",
		mprobe.TagSchema{},
		mprobe.FieldSchema{"heap_alloc", "heap_objects", "gc_count", "pause_total"},
		mprobe.WithDoc("Go runtime garbage collector statistics"),
	)
	return &GC{src: src}
}

// Source returns the underlying source handle.
// Params: none.
// Returns: registered source.
func (g *GC) Source() *mprobe.Source {
	return g.src
}

// Push emits one GC data point when the source is active. Reading
// runtime.MemStats happens inside the producer, so an inactive source costs
// one boolean check.
// Params: ctx unused, present for the Pusher contract.
// Returns: nil; reading runtime stats cannot fail.
func (g *GC) Push(_ context.Context) error {
	mprobe.Push(g.src, func() ([]mprobe.Tag, []mprobe.Field) {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)

		return g.src.Tags(), []mprobe.Field{
			mprobe.Uint64("heap_alloc", ms.HeapAlloc, mprobe.WithUnit("bytes")),
			mprobe.Uint64("heap_objects", ms.HeapObjects),
			mprobe.Uint32("gc_count", ms.NumGC),
			mprobe.Int64("pause_total", int64(ms.PauseTotalNs)/1e6, mprobe.WithUnit("ms")),
		}
	})
	return nil
}

// Proc pushes CPU and memory statistics of one operating-system process.
// Params: none.
// Returns: stat producer bound to one registered source.
type Proc struct {
	src  *mprobe.Source
	proc *process.Process
	pid  int32
}

// NewProc declares a process stat source for pid. The source carries a pid
// tag, so EnableTag("pid") activates it.
// Params: pid observed process id.
// Returns: producer or error when the process cannot be opened.
func NewProc(pid int32) (*Proc, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil, fmt.Errorf("open process %d: %w", pid, err)
	}

	src := mprobe.NewSource("proc.stats",
		mprobe.TagSchema{mprobe.TagInt("pid")},
		mprobe.FieldSchema{"cpu_percent", "rss", "threads"},
		mprobe.WithDoc("process CPU and memory statistics"),
	)
	return &Proc{src: src, proc: proc, pid: pid}, nil
}

// Self declares a process stat source for the current process.
// Params: none.
// Returns: producer or error when the process cannot be opened.
func Self() (*Proc, error) {
	return NewProc(int32(os.Getpid()))
}

// Source returns the underlying source handle.
// Params: none.
// Returns: registered source.
func (p *Proc) Source() *mprobe.Source {
	return p.src
}

// Push reads process statistics and emits one data point. The reads happen
// only while the source is active; the scrape runs before dispatch because
// gopsutil reads can fail.
// Params: ctx bounds the process reads.
// Returns: scrape error, nil when inactive or delivered.
func (p *Proc) Push(ctx context.Context) error {
	if !p.src.IsActive() {
		return nil
	}

	cpuPct, err := p.proc.CPUPercentWithContext(ctx)
	if err != nil {
		return fmt.Errorf("read CPU percent for pid %d: %w", p.pid, err)
	}
	mem, err := p.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return fmt.Errorf("read memory info for pid %d: %w", p.pid, err)
	}
	threads, err := p.proc.NumThreadsWithContext(ctx)
	if err != nil {
		return fmt.Errorf("read thread count for pid %d: %w", p.pid, err)
	}

	mprobe.Push(p.src, func() ([]mprobe.Tag, []mprobe.Field) {
		return p.src.Tags(int(p.pid)), []mprobe.Field{
			mprobe.Float("cpu_percent", cpuPct, mprobe.WithUnit("percent")),
			mprobe.Uint64("rss", mem.RSS, mprobe.WithUnit("bytes")),
			mprobe.Int32("threads", threads),
		}
	})
	return nil
}
