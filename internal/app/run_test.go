package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mprobe"
	"mprobe/internal/config"
	"mprobe/procstats"
	"mprobe/reporter/memory"
)

// testLogger builds a discard logger for lifecycle tests.
// Params: none.
// Returns: slog logger writing nowhere.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testDeps builds a dependency set with no pushers and a memory reporter.
// Params: t test handle; rep installed reporter.
// Returns: dependency set for runWithDeps.
func testDeps(t *testing.T, rep *memory.Reporter) runDeps {
	t.Helper()

	return runDeps{
		loadConfig: config.Load,
		newLogger: func(config.LogConfig) (*slog.Logger, func(), error) {
			return testLogger(), func() {}, nil
		},
		setReporter: func(*config.Config) error {
			mprobe.SetReporter(rep)
			return nil
		},
		startPprof: func(context.Context, config.PprofConfig, *slog.Logger) (func(), error) {
			return func() {}, nil
		},
		newPushers: func(config.ProcstatsConfig) ([]procstats.Pusher, error) {
			return nil, nil
		},
	}
}

// writeRunConfig writes one temp agent config for a test.
// Params: t test handle; content TOML body.
// Returns: file path.
func writeRunConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestRun_AppliesPredicateAndShutsDownOnce verifies agent lifecycle semantics.
// Params: testing.T for assertions.
// Returns: none.
func TestRun_AppliesPredicateAndShutsDownOnce(t *testing.T) {
	mprobe.Reset()
	t.Cleanup(mprobe.Reset)

	src := mprobe.NewSource("app.req", mprobe.TagSchema{mprobe.TagString("method")}, nil)

	rep := memory.New()
	path := writeRunConfig(t, "[metrics]\nenable_tags = [\"method\"]\n")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runWithDeps(ctx, Runtime{ConfigPath: path}, testDeps(t, rep))
	}()

	deadline := time.After(2 * time.Second)
	for !src.IsActive() {
		select {
		case <-deadline:
			t.Fatalf("source never activated by config predicate")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop on cancellation")
	}

	if rep.Exits() != 1 {
		t.Fatalf("expected one AtExit invocation, got %d", rep.Exits())
	}
}

// TestRun_RejectsMissingConfig verifies startup error paths.
// Params: testing.T for assertions.
// Returns: none.
func TestRun_RejectsMissingConfig(t *testing.T) {
	mprobe.Reset()
	t.Cleanup(mprobe.Reset)

	if err := runWithDeps(context.Background(), Runtime{ConfigPath: " "}, testDeps(t, memory.New())); err == nil {
		t.Fatalf("expected error for empty config path")
	}

	err := runWithDeps(context.Background(), Runtime{ConfigPath: "/nonexistent/config.toml"}, testDeps(t, memory.New()))
	if err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

// TestRun_ReloadReappliesPredicate verifies reload semantics.
// Params: testing.T for assertions.
// Returns: none.
func TestRun_ReloadReappliesPredicate(t *testing.T) {
	mprobe.Reset()
	t.Cleanup(mprobe.Reset)

	src := mprobe.NewSource("app.req", mprobe.TagSchema{mprobe.TagString("method")}, nil)

	path := writeRunConfig(t, "[metrics]\n")

	reload := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- runWithDeps(ctx, Runtime{ConfigPath: path, Reload: reload}, testDeps(t, memory.New()))
	}()

	// Give startup a moment, then rewrite config and trigger reload.
	time.Sleep(50 * time.Millisecond)
	if src.IsActive() {
		t.Fatalf("expected source inactive under empty predicate")
	}

	if err := os.WriteFile(path, []byte("[metrics]\nenable_tags = [\"meth*\"]\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	reload <- struct{}{}

	deadline := time.After(2 * time.Second)
	for !src.IsActive() {
		select {
		case <-deadline:
			t.Fatalf("wildcard reload never activated the source")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("run returned error: %v", err)
	}
}

// TestApplyPredicate_WildcardExpansion verifies pattern expansion against domains.
// Params: testing.T for assertions.
// Returns: none.
func TestApplyPredicate_WildcardExpansion(t *testing.T) {
	mprobe.Reset()
	t.Cleanup(mprobe.Reset)

	netSrc := mprobe.NewSource("net.io", mprobe.TagSchema{mprobe.TagString("net.iface")}, nil)
	cpuSrc := mprobe.NewSource("cpu.load", mprobe.TagSchema{mprobe.TagInt("pid")}, nil)

	ApplyPredicate(config.MetricsConfig{EnableTags: []string{"net.*"}}, testLogger())
	if !netSrc.IsActive() || cpuSrc.IsActive() {
		t.Fatalf("expected wildcard to activate only net-domain source")
	}

	ApplyPredicate(config.MetricsConfig{EnableAll: true}, testLogger())
	if !netSrc.IsActive() || !cpuSrc.IsActive() {
		t.Fatalf("expected enable-all to activate everything")
	}

	ApplyPredicate(config.MetricsConfig{}, testLogger())
	if netSrc.IsActive() || cpuSrc.IsActive() {
		t.Fatalf("expected empty predicate to deactivate everything")
	}
}
